package responder

import (
	"context"
	"strings"

	"github.com/clinsim/clinsim/internal/domain/simulation"
	"github.com/clinsim/clinsim/internal/domain/treatment"
)

// fallbackLine is the canned dialogue used when a gateway call fails.
func fallbackLine(role string) string {
	switch role {
	case "patient":
		return "The patient shifts uncomfortably but doesn't answer clearly."
	case "nurse":
		return "Nurse: \"Noted, doctor. I'll get on it right away.\""
	case "senior":
		return "Senior: \"Go on with your assessment. Call me if anything changes.\""
	case "family":
		return "The family looks at you anxiously, waiting for news."
	default:
		return "No response."
	}
}

// StaticResponder answers every prompt with the role's canned line. It is
// wired when no gateway is configured so the pipeline shape stays identical.
type StaticResponder struct {
	role string
}

func NewStaticResponder(role string) *StaticResponder {
	return &StaticResponder{role: role}
}

func (r *StaticResponder) Role() string     { return r.role }
func (r *StaticResponder) Fallback() string { return fallbackLine(r.role) }

func (r *StaticResponder) Respond(_ context.Context, _ simulation.NarrativeContext) (string, error) {
	return fallbackLine(r.role), nil
}

// Phrases that a supervising senior would physically stop, checked as
// lowercase substrings of the order text.
var dangerousPhrases = []string{
	"potassium iv push",
	"kcl iv push",
	"undiluted potassium",
	"insulin 100 units",
	"adrenaline iv push",
	"epinephrine iv push",
}

var cautionPhrases = []string{
	"morphine",
	"sedation",
	"paralytic",
	"thrombolysis",
	"blood transfusion",
}

// StaticValidator applies a fixed phrase screen. It is deliberately blunt;
// anything it cannot place lands in the caution tier.
type StaticValidator struct{}

func NewStaticValidator() *StaticValidator { return &StaticValidator{} }

func (StaticValidator) Validate(_ context.Context, check simulation.SafetyCheck) (simulation.SafetyVerdict, error) {
	text := strings.ToLower(check.ActionText)
	for _, phrase := range dangerousPhrases {
		if strings.Contains(text, phrase) {
			return simulation.SafetyVerdict{
				Tier:    simulation.SafetyDangerous,
				Proceed: false,
				Interventions: []string{
					"Hold on — I'm stopping that order. Let's talk through it before anything reaches the patient.",
				},
			}, nil
		}
	}
	for _, phrase := range cautionPhrases {
		if strings.Contains(text, phrase) {
			return simulation.SafetyVerdict{
				Tier:    simulation.SafetyCaution,
				Proceed: true,
				Interventions: []string{
					"That's a higher-risk order. Double-check the dose and keep the patient on the monitor.",
				},
			}, nil
		}
	}
	return simulation.SafetyVerdict{Tier: simulation.SafetySafe, Proceed: true}, nil
}

// StaticAssessor treats every order as appropriate with no vital effects.
type StaticAssessor struct{}

func NewStaticAssessor() *StaticAssessor { return &StaticAssessor{} }

func (StaticAssessor) Assess(_ context.Context, _ string, _ simulation.NarrativeContext) (treatment.Assessment, error) {
	return treatment.Assessment{Appropriate: true, Monitoring: "Treatment given. Monitoring vitals."}, nil
}
