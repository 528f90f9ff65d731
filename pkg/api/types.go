package api

import "time"

// Project is a remote project resource.
type Project struct {
	ID      string    `json:"id"`
	OrgID   string    `json:"org_id"`
	Name    string    `json:"name"`
	Created time.Time `json:"created"`
}

// Experiment is a remote experiment resource scoped to a project.
type Experiment struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	Created   time.Time `json:"created"`
}

// Organization describes an org the API key belongs to.
type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LoginResponse carries the organizations visible to the API key.
type LoginResponse struct {
	OrgInfo []Organization `json:"org_info"`
}

// CreateExperimentRequest registers an experiment under a project.
type CreateExperimentRequest struct {
	ProjectID   string `json:"project_id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

// ScoreReport is the per-scorer slice of a reported summary.
type ScoreReport struct {
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Count  int     `json:"count"`
}

// SummaryReport forwards the aggregate outcome of a finished evaluation run
// to the platform.
type SummaryReport struct {
	Name              string                 `json:"name" validate:"required"`
	TotalCount        int                    `json:"total_count" validate:"min=0"`
	SuccessCount      int                    `json:"success_count" validate:"min=0"`
	ErrorCount        int                    `json:"error_count" validate:"min=0"`
	AverageDurationMS int64                  `json:"average_duration_ms"`
	Scores            map[string]ScoreReport `json:"scores,omitempty"`
}
