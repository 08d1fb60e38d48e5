// Package vitals advances the simulated clock and evolves the patient's
// vital signs along the session trajectory.
package vitals

import (
	"fmt"

	"github.com/clinsim/clinsim/internal/domain/session"
)

// Minutes of simulated time consumed by each action kind.
var actionCosts = map[string]int{
	"talk":                10,
	"ask_nurse":           5,
	"consult_senior":      10,
	"examine":             15,
	"order_investigation": 5,
	"order_treatment":     5,
	"team_huddle":         15,
	"wait_for_results":    30,
	"review_results":      5,
}

const defaultActionCost = 10

// ActionCost returns the simulated minutes an action consumes.
func ActionCost(kind string) int {
	if cost, ok := actionCosts[kind]; ok {
		return cost
	}
	return defaultActionCost
}

// Improving trajectories decay toward these resting values.
const (
	targetHeartRate   = 80
	targetRespRate    = 16
	targetSpO2        = 98
	targetBPSystolic  = 120
	targetTemperature = 37.0
)

// Engine owns clock advancement and vitals evolution.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// AdvanceClock consumes the action's time cost, evolves vitals for that span,
// snapshots the result and appends any clock-triggered alert events. It
// returns the minutes consumed.
func (e *Engine) AdvanceClock(s *session.Session, actionKind string) int {
	minutes := ActionCost(actionKind)
	s.ElapsedMinutes += minutes
	s.ActionCount++

	e.evolve(s, minutes)
	s.Vitals.Clamp()
	s.Snapshot()
	e.checkPatientEvents(s)

	return minutes
}

func (e *Engine) evolve(s *session.Session, minutes int) {
	v := &s.Vitals
	switch s.Trajectory {
	case session.TrajectoryDeteriorating:
		// Gradual worsening plateaus short of the hard clamps; only a
		// critical patient drifts to the extremes.
		rate := float64(minutes) / 60.0
		v.HeartRate = min(180, v.HeartRate+int(3*rate+s.Rand.Float64()*2))
		v.RespRate = min(45, v.RespRate+int(2*rate+s.Rand.Float64()))
		v.SpO2 = max(70, v.SpO2-int(1*rate+s.Rand.Float64()))
		v.BPSystolic = max(60, v.BPSystolic-int(2*rate))
		v.Temperature = min(41.0, v.Temperature+0.1*rate)

	case session.TrajectoryCritical:
		rate := float64(minutes) / 30.0
		v.HeartRate += int(5 * rate)
		v.RespRate += int(3 * rate)
		v.SpO2 -= int(3 * rate)
		v.BPSystolic -= int(5 * rate)

	case session.TrajectoryImproving:
		// Recover 10% of the remaining gap per simulated hour.
		frac := 0.10 * float64(minutes) / 60.0
		v.HeartRate -= int(float64(v.HeartRate-targetHeartRate) * frac)
		v.RespRate -= int(float64(v.RespRate-targetRespRate) * frac)
		v.SpO2 -= int(float64(v.SpO2-targetSpO2) * frac)
		v.BPSystolic -= int(float64(v.BPSystolic-targetBPSystolic) * frac)
		v.Temperature -= (v.Temperature - targetTemperature) * frac

	default: // stable, small jitter only
		v.HeartRate += pick(s, -1, 0, 0, 1)
		v.RespRate += pick(s, -1, 0, 0, 0, 1)
	}
}

func pick(s *session.Session, choices ...int) int {
	return choices[s.Rand.Intn(len(choices))]
}

// checkPatientEvents emits one-shot alerts when vitals cross hard thresholds,
// and a senior prompt when a deteriorating patient has gone untreated.
func (e *Engine) checkPatientEvents(s *session.Session) {
	v := s.Vitals

	if v.SpO2 < 88 && !s.AlertFired("alert_spo2_low") {
		s.AppendEvent(session.EventVitalsAlert, "Oxygen saturation falling",
			fmt.Sprintf("Doctor, the sats are down to %d%% — should we escalate oxygen?", v.SpO2), "nurse")
	}
	if v.HeartRate > 140 && !s.AlertFired("alert_hr_high") {
		s.AppendEvent(session.EventVitalsAlert, "Marked tachycardia",
			fmt.Sprintf("Heart rate is up at %d, doctor.", v.HeartRate), "nurse")
	}
	if v.BPSystolic < 80 && !s.AlertFired("alert_bp_low") {
		s.AppendEvent(session.EventVitalsAlert, "Hypotension",
			fmt.Sprintf("BP has dropped to %s — the patient looks shut down.", v.BP()), "nurse")
	}
	if s.Trajectory == session.TrajectoryDeteriorating && s.ElapsedMinutes > 30 &&
		len(s.Treatments) == 0 && !s.AlertFired("alert_senior_concern") {
		s.AppendEvent(session.EventSeniorConcern, "Senior checking in",
			"It's been a while and the patient isn't improving. What's your management plan?", "senior")
	}
}
