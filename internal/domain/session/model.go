package session

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Trajectory is the coarse clinical direction of the simulated patient.
type Trajectory string

const (
	TrajectoryStable        Trajectory = "stable"
	TrajectoryImproving     Trajectory = "improving"
	TrajectoryDeteriorating Trajectory = "deteriorating"
	TrajectoryCritical      Trajectory = "critical"
)

// StepBetter moves the trajectory one step toward improving. Appropriate
// treatments never jump straight from deteriorating to improving.
func (t Trajectory) StepBetter() Trajectory {
	switch t {
	case TrajectoryCritical, TrajectoryDeteriorating:
		return TrajectoryStable
	case TrajectoryStable:
		return TrajectoryImproving
	}
	return t
}

// StepWorse moves the trajectory one step toward critical.
func (t Trajectory) StepWorse() Trajectory {
	switch t {
	case TrajectoryImproving, TrajectoryStable:
		return TrajectoryDeteriorating
	case TrajectoryDeteriorating:
		return TrajectoryCritical
	}
	return t
}

// Physiological clamp bounds. Every vitals mutation re-clamps into these
// ranges, so out-of-range vitals are structurally impossible.
const (
	MinHeartRate   = 30
	MaxHeartRate   = 200
	MinRespRate    = 6
	MaxRespRate    = 50
	MinSpO2        = 60
	MaxSpO2        = 100
	MinBPSystolic  = 50
	MaxBPSystolic  = 220
	MinBPDiastolic = 30
	MaxBPDiastolic = 130
	MinTemperature = 35.0
	MaxTemperature = 42.0
)

// VitalSigns is the patient's vital-sign vector.
type VitalSigns struct {
	BPSystolic  int     `json:"bp_systolic"`
	BPDiastolic int     `json:"bp_diastolic"`
	HeartRate   int     `json:"hr"`
	RespRate    int     `json:"rr"`
	Temperature float64 `json:"temp"`
	SpO2        int     `json:"spo2"`
}

// Clamp forces every field back into its physiological bounds.
func (v *VitalSigns) Clamp() {
	v.HeartRate = clampInt(v.HeartRate, MinHeartRate, MaxHeartRate)
	v.RespRate = clampInt(v.RespRate, MinRespRate, MaxRespRate)
	v.SpO2 = clampInt(v.SpO2, MinSpO2, MaxSpO2)
	v.BPSystolic = clampInt(v.BPSystolic, MinBPSystolic, MaxBPSystolic)
	v.BPDiastolic = clampInt(v.BPDiastolic, MinBPDiastolic, MaxBPDiastolic)
	v.Temperature = roundTenth(clampFloat(v.Temperature, MinTemperature, MaxTemperature))
}

// BP formats the blood pressure as "120/80".
func (v VitalSigns) BP() string {
	return strconv.Itoa(v.BPSystolic) + "/" + strconv.Itoa(v.BPDiastolic)
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func clampFloat(f, lo, hi float64) float64 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}

func roundTenth(f float64) float64 {
	return float64(int(f*10+0.5)) / 10
}

// VitalsSnapshot is one timestamped entry in the vitals history.
type VitalsSnapshot struct {
	Minute int        `json:"minute"`
	Vitals VitalSigns `json:"vitals"`
}

// Trend compares the current vitals against the previous snapshot.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendStable  Trend = "stable"
)

// InvestigationStatus is the lifecycle state of an ordered investigation.
// Transitions only move forward.
type InvestigationStatus string

const (
	StatusOrdered         InvestigationStatus = "ordered"
	StatusSampleCollected InvestigationStatus = "sample_collected"
	StatusProcessing      InvestigationStatus = "processing"
	StatusReady           InvestigationStatus = "ready"
	StatusDelivered       InvestigationStatus = "delivered"
)

// OrderedInvestigation tracks a single investigation order.
type OrderedInvestigation struct {
	ID         uuid.UUID           `json:"id"`
	TypeKey    string              `json:"type"`
	Label      string              `json:"label"`
	OrderedAt  int                 `json:"ordered_at"`
	Turnaround int                 `json:"turnaround"`
	Urgent     bool                `json:"urgent"`
	Status     InvestigationStatus `json:"status"`
	ResultText string              `json:"-"`
}

// TreatmentRecord is an immutable record of a treatment order.
type TreatmentRecord struct {
	ID          uuid.UUID      `json:"id"`
	Description string         `json:"description"`
	OrderedAt   int            `json:"ordered_at"`
	Effects     map[string]int `json:"effects,omitempty"`
	TempEffect  float64        `json:"temp_effect,omitempty"`
	Appropriate bool           `json:"appropriate"`
	SafetyNote  string         `json:"safety_note,omitempty"`
}

// Event categories.
const (
	EventInvestigationReady   = "investigation_ready"
	EventVitalsAlert          = "vitals_alert"
	EventSeniorConcern        = "senior_concern"
	EventCriticalComplication = "critical_complication"
	EventUrgentComplication   = "urgent_complication"
	EventDistraction          = "distraction"
)

// SimulationEvent is a timed event in the simulation. The Delivered flag
// guarantees at-most-once surfacing to the user.
type SimulationEvent struct {
	ID          uuid.UUID `json:"id"`
	Minute      int       `json:"minute"`
	Category    string    `json:"category"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Role        string    `json:"role"`
	Delivered   bool      `json:"delivered"`
}

// CaseDescription is the static case input consumed once at session creation.
type CaseDescription struct {
	Specialty      string  `json:"specialty"`
	Diagnosis      string  `json:"diagnosis"`
	Difficulty     string  `json:"difficulty"`
	ChiefComplaint string  `json:"chief_complaint"`
	BP             string  `json:"bp"`
	HeartRate      int     `json:"hr"`
	RespRate       int     `json:"rr"`
	Temperature    float64 `json:"temp"`
	SpO2           int     `json:"spo2"`
	HistoryText    string  `json:"history,omitempty"`
	ExamText       string  `json:"exam,omitempty"`
	LabText        string  `json:"labs,omitempty"`
}

// ComplicationCandidate is one resolved complication for this session, with
// its effective base probability after diagnosis boosts and cross-specialty
// damping. Source records the specialty table the definition came from: the
// same clinical name can exist in several specialties with different windows
// and prevention lists.
type ComplicationCandidate struct {
	Name            string  `json:"name"`
	Source          string  `json:"-"`
	BaseProbability float64 `json:"-"`
}

// ComplicationState is the per-session state of the complication engine.
// Fired complications never retrigger; distractions are capped at two.
type ComplicationState struct {
	Candidates           []ComplicationCandidate `json:"candidates"`
	Fired                map[string]bool         `json:"fired"`
	FiredDistractions    map[string]bool         `json:"fired_distractions"`
	DifficultyMultiplier float64                 `json:"difficulty_multiplier"`
}

// MaxDistractions caps one-shot distraction interruptions per session.
const MaxDistractions = 2

// Session owns all simulation state for one clinical encounter. It is mutated
// only by the orchestrator; callers must serialize access per session.
type Session struct {
	ID        uuid.UUID
	Case      CaseDescription
	Rand      *rand.Rand
	Mu        sync.Mutex
	StartedAt time.Time

	ElapsedMinutes int
	ActionCount    int

	Vitals         VitalSigns
	BaselineVitals VitalSigns
	History        []VitalsSnapshot
	Trajectory     Trajectory

	Investigations map[uuid.UUID]*OrderedInvestigation
	Treatments     []*TreatmentRecord
	Events         []*SimulationEvent

	Complications ComplicationState

	// firedAlerts keys one-shot vitals alerts by identity, not title text.
	firedAlerts map[string]bool
}

// New creates a session from a case description, parsing baseline vitals and
// deriving the initial trajectory from case severity.
func New(desc CaseDescription) *Session {
	return NewWithSeed(desc, time.Now().UnixNano())
}

// NewWithSeed creates a session with a deterministic random source. Tests use
// this to reproduce probabilistic runs.
func NewWithSeed(desc CaseDescription, seed int64) *Session {
	v := baselineVitals(desc)
	s := &Session{
		ID:             uuid.New(),
		Case:           desc,
		Rand:           rand.New(rand.NewSource(seed)),
		StartedAt:      time.Now(),
		Vitals:         v,
		BaselineVitals: v,
		History:        []VitalsSnapshot{{Minute: 0, Vitals: v}},
		Trajectory:     initialTrajectory(desc, v),
		Investigations: make(map[uuid.UUID]*OrderedInvestigation),
		Complications: ComplicationState{
			Fired:                make(map[string]bool),
			FiredDistractions:    make(map[string]bool),
			DifficultyMultiplier: 1.0,
		},
		firedAlerts: make(map[string]bool),
	}
	return s
}

func baselineVitals(desc CaseDescription) VitalSigns {
	sys, dia := ParseBP(desc.BP)
	v := VitalSigns{
		BPSystolic:  sys,
		BPDiastolic: dia,
		HeartRate:   desc.HeartRate,
		RespRate:    desc.RespRate,
		Temperature: desc.Temperature,
		SpO2:        desc.SpO2,
	}
	if v.HeartRate == 0 {
		v.HeartRate = 80
	}
	if v.RespRate == 0 {
		v.RespRate = 16
	}
	if v.Temperature == 0 {
		v.Temperature = 37.0
	}
	if v.SpO2 == 0 {
		v.SpO2 = 98
	}
	v.Clamp()
	return v
}

// ParseBP parses a blood-pressure string like "120/80". Malformed input
// degrades to 120/80 rather than failing.
func ParseBP(bp string) (systolic, diastolic int) {
	systolic, diastolic = 120, 80
	parts := strings.SplitN(strings.TrimSpace(bp), "/", 2)
	if len(parts) >= 1 {
		if n, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil {
			systolic = n
		}
	}
	if len(parts) == 2 {
		if n, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			diastolic = n
		}
	}
	return systolic, diastolic
}

// initialTrajectory derives the starting trajectory from case severity:
// advanced cases and severely deranged baseline vitals start deteriorating.
func initialTrajectory(desc CaseDescription, v VitalSigns) Trajectory {
	if strings.EqualFold(desc.Difficulty, "advanced") || v.SpO2 < 90 || v.HeartRate > 130 {
		return TrajectoryDeteriorating
	}
	return TrajectoryStable
}

// AppendEvent records an event on the session timeline and returns it.
func (s *Session) AppendEvent(category, title, description, role string) *SimulationEvent {
	evt := &SimulationEvent{
		ID:          uuid.New(),
		Minute:      s.ElapsedMinutes,
		Category:    category,
		Title:       title,
		Description: description,
		Role:        role,
	}
	s.Events = append(s.Events, evt)
	return evt
}

// AlertFired reports whether the one-shot alert key has fired, marking it
// fired on first call.
func (s *Session) AlertFired(key string) bool {
	if s.firedAlerts[key] {
		return true
	}
	s.firedAlerts[key] = true
	return false
}

// UndeliveredEvents returns pending events in order and marks them delivered.
func (s *Session) UndeliveredEvents() []*SimulationEvent {
	var out []*SimulationEvent
	for _, evt := range s.Events {
		if !evt.Delivered {
			evt.Delivered = true
			out = append(out, evt)
		}
	}
	return out
}

// Snapshot appends the current vitals to the history.
func (s *Session) Snapshot() {
	s.History = append(s.History, VitalsSnapshot{Minute: s.ElapsedMinutes, Vitals: s.Vitals})
}

// Trends compares current vitals to the previous snapshot, per field.
// Integer fields count a move of more than 2 units; temperature more than 0.2.
func (s *Session) Trends() map[string]Trend {
	trends := make(map[string]Trend)
	if len(s.History) < 2 {
		return trends
	}
	prev := s.History[len(s.History)-2].Vitals
	trends["hr"] = intTrend(s.Vitals.HeartRate - prev.HeartRate)
	trends["rr"] = intTrend(s.Vitals.RespRate - prev.RespRate)
	trends["spo2"] = intTrend(s.Vitals.SpO2 - prev.SpO2)
	trends["bp_systolic"] = intTrend(s.Vitals.BPSystolic - prev.BPSystolic)
	trends["temp"] = floatTrend(s.Vitals.Temperature - prev.Temperature)
	return trends
}

func intTrend(diff int) Trend {
	switch {
	case diff > 2:
		return TrendRising
	case diff < -2:
		return TrendFalling
	}
	return TrendStable
}

func floatTrend(diff float64) Trend {
	switch {
	case diff > 0.2:
		return TrendRising
	case diff < -0.2:
		return TrendFalling
	}
	return TrendStable
}

// FiredComplications returns the names of complications that have fired,
// in candidate order.
func (s *Session) FiredComplications() []string {
	var names []string
	for _, c := range s.Complications.Candidates {
		if s.Complications.Fired[c.Name] {
			names = append(names, c.Name)
		}
	}
	return names
}
