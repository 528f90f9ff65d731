// Package store archives finished evaluation runs in a local sqlite database
// so offline runs can be listed and compared later. It consumes the engine's
// output; the engine itself never touches storage.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/noah-isme/gema-eval-go/pkg/eval"
	gemalog "github.com/noah-isme/gema-eval-go/pkg/log"
)

// Run is the archived aggregate view of one evaluation run.
type Run struct {
	ID                uint   `gorm:"primaryKey"`
	RunID             string `gorm:"uniqueIndex;size:36"`
	Name              string `gorm:"index"`
	TotalCount        int
	SuccessCount      int
	ErrorCount        int
	AverageDurationMS int64
	ScoreStatistics   datatypes.JSON
	CreatedAt         time.Time
}

// CaseResult is one archived test case outcome belonging to a run.
type CaseResult struct {
	ID           uint   `gorm:"primaryKey"`
	RunID        string `gorm:"index;size:36"`
	CaseIndex    int
	Success      bool
	DurationMS   int64
	AverageScore float64
	Scores       datatypes.JSON
	ErrorMessage string
}

// Store wraps the archive database.
type Store struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// Open opens (or creates) the archive at path and migrates its schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("open results archive: %w", err)
	}

	if err := db.AutoMigrate(&Run{}, &CaseResult{}); err != nil {
		return nil, fmt.Errorf("migrate results archive: %w", err)
	}

	return &Store{db: db, logger: gemalog.Logger()}, nil
}

// SaveRun archives a finished run and returns its generated identifier.
func SaveRun[I, O any](ctx context.Context, s *Store, results eval.Results[I, O]) (string, error) {
	runID := uuid.NewString()

	stats, err := json.Marshal(results.Summary.ScoreStatistics)
	if err != nil {
		return "", fmt.Errorf("encode score statistics: %w", err)
	}

	run := Run{
		RunID:             runID,
		Name:              results.Name,
		TotalCount:        results.Summary.TotalCount,
		SuccessCount:      results.Summary.SuccessCount,
		ErrorCount:        results.Summary.ErrorCount,
		AverageDurationMS: results.Summary.AverageDuration.Milliseconds(),
		ScoreStatistics:   datatypes.JSON(stats),
		CreatedAt:         time.Now().UTC(),
	}

	cases := make([]CaseResult, 0, len(results.Results))
	for i, result := range results.Results {
		scores, err := json.Marshal(result.Scores)
		if err != nil {
			return "", fmt.Errorf("encode scores for case %d: %w", i, err)
		}

		row := CaseResult{
			RunID:        runID,
			CaseIndex:    i,
			Success:      result.IsSuccess(),
			DurationMS:   result.Duration.Milliseconds(),
			AverageScore: result.AverageScore(),
			Scores:       datatypes.JSON(scores),
		}
		if result.Err != nil {
			row.ErrorMessage = result.Err.Error()
		}
		cases = append(cases, row)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return err
		}
		if len(cases) == 0 {
			return nil
		}
		return tx.Create(&cases).Error
	})
	if err != nil {
		return "", fmt.Errorf("archive run %q: %w", results.Name, err)
	}

	s.logger.Debug().Str("run_id", runID).Str("name", results.Name).Msg("run archived")
	return runID, nil
}

// GetRun loads an archived run and its case rows in case order.
func (s *Store) GetRun(ctx context.Context, runID string) (Run, []CaseResult, error) {
	var run Run
	if err := s.db.WithContext(ctx).Where("run_id = ?", runID).First(&run).Error; err != nil {
		return Run{}, nil, fmt.Errorf("load run %q: %w", runID, err)
	}

	var cases []CaseResult
	if err := s.db.WithContext(ctx).Where("run_id = ?", runID).Order("case_index asc").Find(&cases).Error; err != nil {
		return Run{}, nil, fmt.Errorf("load cases for run %q: %w", runID, err)
	}

	return run, cases, nil
}

// ListRuns returns archived runs for the named evaluation, newest first. An
// empty name lists everything.
func (s *Store) ListRuns(ctx context.Context, name string) ([]Run, error) {
	query := s.db.WithContext(ctx).Order("created_at desc")
	if name != "" {
		query = query.Where("name = ?", name)
	}

	var runs []Run
	if err := query.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}
