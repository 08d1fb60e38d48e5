// Package responder implements the simulation's narrative, safety, and
// assessment collaborators against an external narrative gateway, with
// static stand-ins for when no gateway is configured.
package responder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinsim/clinsim/internal/domain/simulation"
	"github.com/clinsim/clinsim/internal/domain/treatment"
)

// Config locates the narrative gateway.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client is a thin JSON client for the narrative gateway.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  zerolog.Logger
}

func NewClient(cfg Config, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		c.logger.Warn().Str("path", path).Int("status", resp.StatusCode).Msg("gateway returned error status")
		return fmt.Errorf("gateway %s returned status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// RoleResponder produces one role's dialogue via the gateway.
type RoleResponder struct {
	client   *Client
	role     string
	fallback string
}

func NewRoleResponder(client *Client, role string) *RoleResponder {
	return &RoleResponder{client: client, role: role, fallback: fallbackLine(role)}
}

func (r *RoleResponder) Role() string     { return r.role }
func (r *RoleResponder) Fallback() string { return r.fallback }

type narrativeRequest struct {
	Role    string                      `json:"role"`
	Context simulation.NarrativeContext `json:"context"`
}

type narrativeResponse struct {
	Content string `json:"content"`
}

func (r *RoleResponder) Respond(ctx context.Context, nc simulation.NarrativeContext) (string, error) {
	var out narrativeResponse
	if err := r.client.post(ctx, "/v1/narrative", narrativeRequest{Role: r.role, Context: nc}, &out); err != nil {
		return "", err
	}
	return out.Content, nil
}

// Validator classifies orders via the gateway's safety endpoint.
type Validator struct {
	client *Client
}

func NewValidator(client *Client) *Validator {
	return &Validator{client: client}
}

func (v *Validator) Validate(ctx context.Context, check simulation.SafetyCheck) (simulation.SafetyVerdict, error) {
	var verdict simulation.SafetyVerdict
	if err := v.client.post(ctx, "/v1/safety", check, &verdict); err != nil {
		return simulation.SafetyVerdict{}, err
	}
	switch verdict.Tier {
	case simulation.SafetySafe, simulation.SafetyCaution, simulation.SafetyDangerous:
	default:
		return simulation.SafetyVerdict{}, fmt.Errorf("gateway returned unknown safety tier %q", verdict.Tier)
	}
	return verdict, nil
}

// Assessor judges treatments via the gateway's assessment endpoint.
type Assessor struct {
	client *Client
}

func NewAssessor(client *Client) *Assessor {
	return &Assessor{client: client}
}

type assessRequest struct {
	Description string                      `json:"description"`
	Context     simulation.NarrativeContext `json:"context"`
}

func (a *Assessor) Assess(ctx context.Context, description string, nc simulation.NarrativeContext) (treatment.Assessment, error) {
	var out treatment.Assessment
	if err := a.client.post(ctx, "/v1/assess", assessRequest{Description: description, Context: nc}, &out); err != nil {
		return treatment.Assessment{}, err
	}
	return out, nil
}
