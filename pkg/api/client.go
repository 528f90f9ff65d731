// Package api is the REST client for project and experiment resources and for
// reporting evaluation outcomes upstream. Requests are single-shot: retry
// policy belongs to the caller.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-eval-go/pkg/config"
	gemalog "github.com/noah-isme/gema-eval-go/pkg/log"
)

// ErrNotFound marks a lookup for a resource that does not exist.
var ErrNotFound = errors.New("resource not found")

// Client talks to the platform REST API.
type Client struct {
	cfg      config.Config
	http     *http.Client
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewClient builds a client from resolved configuration.
func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.RequestTimeout},
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   gemalog.Logger(),
	}
}

// RegisterProject creates the named project, or returns the existing one.
func (c *Client) RegisterProject(ctx context.Context, name string) (Project, error) {
	if name == "" {
		return Project{}, fmt.Errorf("project name is required")
	}

	var project Project
	body := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPost, "/v1/project", body, &project); err != nil {
		return Project{}, fmt.Errorf("register project %q: %w", name, err)
	}
	return project, nil
}

// GetProject looks up a project by identifier.
func (c *Client) GetProject(ctx context.Context, projectID string) (Project, error) {
	var project Project
	if err := c.do(ctx, http.MethodGet, "/v1/project/"+url.PathEscape(projectID), nil, &project); err != nil {
		return Project{}, fmt.Errorf("get project %q: %w", projectID, err)
	}
	return project, nil
}

// RegisterExperiment creates an experiment under a project, or returns the
// existing one with the same name.
func (c *Client) RegisterExperiment(ctx context.Context, req CreateExperimentRequest) (Experiment, error) {
	if err := c.validate.Struct(req); err != nil {
		return Experiment{}, fmt.Errorf("invalid experiment request: %w", err)
	}

	var experiment Experiment
	if err := c.do(ctx, http.MethodPost, "/v1/experiment", req, &experiment); err != nil {
		return Experiment{}, fmt.Errorf("register experiment %q: %w", req.Name, err)
	}
	return experiment, nil
}

// Login resolves the organizations visible to the configured API key.
func (c *Client) Login(ctx context.Context) (LoginResponse, error) {
	var resp LoginResponse
	body := map[string]string{"token": c.cfg.APIKey}
	if err := c.do(ctx, http.MethodPost, "/api/apikey/login", body, &resp); err != nil {
		return LoginResponse{}, fmt.Errorf("login: %w", err)
	}
	return resp, nil
}

// ReportSummary forwards a finished run's summary to the experiment it ran
// under.
func (c *Client) ReportSummary(ctx context.Context, experimentID string, report SummaryReport) error {
	if experimentID == "" {
		return fmt.Errorf("experiment id is required")
	}
	if err := c.validate.Struct(report); err != nil {
		return fmt.Errorf("invalid summary report: %w", err)
	}

	path := "/v1/experiment/" + url.PathEscape(experimentID) + "/summary"
	if err := c.do(ctx, http.MethodPost, path, report, nil); err != nil {
		return fmt.Errorf("report summary for experiment %q: %w", experimentID, err)
	}
	return nil
}

// ExperimentURL returns the app page for an experiment inside an org.
func (c *Client) ExperimentURL(orgName, projectName, experimentID string) string {
	return fmt.Sprintf("%s/app/%s/p/%s/experiments/%s",
		c.cfg.AppURL, url.PathEscape(orgName), url.PathEscape(projectName), url.PathEscape(experimentID))
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.APIURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Correlation-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		c.logger.Warn().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("api request failed")
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(payload))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
