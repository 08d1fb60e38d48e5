// Package simulation orchestrates the per-action pipeline of a clinical
// encounter session and exposes it over HTTP.
package simulation

import (
	"context"

	"github.com/clinsim/clinsim/internal/domain/session"
	"github.com/clinsim/clinsim/internal/domain/treatment"
)

// NarrativeContext is the state blob handed to narrative responders so their
// dialogue stays grounded in the live simulation.
type NarrativeContext struct {
	ActionKind     string             `json:"action_kind"`
	UserInput      string             `json:"user_input"`
	ElapsedMinutes int                `json:"elapsed_minutes"`
	Vitals         session.VitalSigns `json:"vitals"`
	Trajectory     session.Trajectory `json:"trajectory"`
	StateSummary   string             `json:"state_summary"`
	RecentEvents   []string           `json:"recent_events,omitempty"`
}

// NarrativeResponder produces in-character dialogue for one role (patient,
// nurse, family). Implementations may call out to a model provider; the
// orchestrator bounds every call and substitutes a fallback on failure.
type NarrativeResponder interface {
	Role() string
	Respond(ctx context.Context, nc NarrativeContext) (string, error)
	Fallback() string
}

// SafetyCheck is the input to the safety validator for order actions.
type SafetyCheck struct {
	ActionKind string                  `json:"action_kind"`
	ActionText string                  `json:"action_text"`
	Case       session.CaseDescription `json:"case"`
	Vitals     session.VitalSigns      `json:"vitals"`
	Treatments []string                `json:"treatments"`
}

// Safety tiers returned by the validator.
const (
	SafetySafe      = "safe"
	SafetyCaution   = "caution"
	SafetyDangerous = "dangerous"
)

// SafetyVerdict classifies a proposed order.
type SafetyVerdict struct {
	Tier          string   `json:"tier"`
	Interventions []string `json:"interventions,omitempty"`
	Proceed       bool     `json:"proceed"`
}

// SafetyValidator classifies treatment and investigation orders before the
// clock advances. An unreachable validator degrades to caution-and-proceed.
type SafetyValidator interface {
	Validate(ctx context.Context, check SafetyCheck) (SafetyVerdict, error)
}

// TreatmentAssessor judges a treatment's appropriateness and vital effects.
type TreatmentAssessor interface {
	Assess(ctx context.Context, description string, nc NarrativeContext) (treatment.Assessment, error)
}

// EventPublisher pushes simulation events to realtime subscribers. A nil
// publisher is valid and means no realtime delivery.
type EventPublisher interface {
	Publish(topic string, payload interface{})
}
