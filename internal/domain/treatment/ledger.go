// Package treatment records ordered treatments and applies their
// physiological effects.
package treatment

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinsim/clinsim/internal/domain/session"
)

// Assessment is the judged effect of a treatment, produced by the treatment
// assessor collaborator (or its fallback).
type Assessment struct {
	Appropriate bool           `json:"appropriate"`
	Effects     map[string]int `json:"effects"`
	TempEffect  float64        `json:"temp_effect"`
	Monitoring  string         `json:"monitoring"`
	SafetyNote  string         `json:"safety_note"`
}

// Treatment effects are bounded tighter than the physiological clamps: a
// single intervention cannot push vitals to the extremes.
const (
	effectMinHR   = 40
	effectMaxHR   = 180
	effectMinBP   = 60
	effectMaxBP   = 200
	effectMinSpO2 = 60
	effectMaxSpO2 = 100
	effectMinRR   = 8
	effectMaxRR   = 40
	effectMinTemp = 35.0
	effectMaxTemp = 42.0
)

// Ledger appends treatment records and applies their effects.
type Ledger struct {
	logger zerolog.Logger
}

func NewLedger(logger zerolog.Logger) *Ledger {
	return &Ledger{logger: logger}
}

// Record appends an immutable treatment record, applies its vital effects and
// moves the trajectory one step. Appropriate treatments improve, wrong ones
// worsen; neither ever jumps more than one step.
func (l *Ledger) Record(s *session.Session, description string, a Assessment) *session.TreatmentRecord {
	rec := &session.TreatmentRecord{
		ID:          uuid.New(),
		Description: description,
		OrderedAt:   s.ElapsedMinutes,
		Effects:     a.Effects,
		TempEffect:  a.TempEffect,
		Appropriate: a.Appropriate,
		SafetyNote:  a.SafetyNote,
	}
	s.Treatments = append(s.Treatments, rec)

	if a.Appropriate {
		s.Trajectory = s.Trajectory.StepBetter()
		applyEffects(&s.Vitals, a)
	} else {
		s.Trajectory = s.Trajectory.StepWorse()
	}

	l.logger.Info().
		Str("session_id", s.ID.String()).
		Str("treatment", description).
		Bool("appropriate", a.Appropriate).
		Str("trajectory", string(s.Trajectory)).
		Msg("treatment recorded")

	return rec
}

// applyEffects applies per-vital deltas within the treatment effect bounds.
// Only appropriate treatments carry direct vital effects.
func applyEffects(v *session.VitalSigns, a Assessment) {
	if d, ok := a.Effects["hr_change"]; ok {
		v.HeartRate = boundInt(v.HeartRate+d, effectMinHR, effectMaxHR)
	}
	if d, ok := a.Effects["bp_systolic_change"]; ok {
		v.BPSystolic = boundInt(v.BPSystolic+d, effectMinBP, effectMaxBP)
	}
	if d, ok := a.Effects["spo2_change"]; ok {
		v.SpO2 = boundInt(v.SpO2+d, effectMinSpO2, effectMaxSpO2)
	}
	if d, ok := a.Effects["rr_change"]; ok {
		v.RespRate = boundInt(v.RespRate+d, effectMinRR, effectMaxRR)
	}
	if a.TempEffect != 0 {
		t := v.Temperature + a.TempEffect
		if t < effectMinTemp {
			t = effectMinTemp
		}
		if t > effectMaxTemp {
			t = effectMaxTemp
		}
		v.Temperature = t
	}
	v.Clamp()
}

func boundInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
