package complication

import (
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/clinsim/clinsim/internal/domain/session"
)

func newTestEngine() *Engine {
	return NewEngine(zerolog.Nop())
}

func newResolvedSession(t *testing.T, desc session.CaseDescription, seed int64) *session.Session {
	t.Helper()
	s := session.NewWithSeed(desc, seed)
	newTestEngine().Resolve(s)
	return s
}

func candidateBase(t *testing.T, s *session.Session, name string) float64 {
	t.Helper()
	for _, c := range s.Complications.Candidates {
		if c.Name == name {
			return c.BaseProbability
		}
	}
	t.Fatalf("candidate %q not resolved", name)
	return 0
}

func TestResolveAddsCrossCuttingDamped(t *testing.T) {
	s := newResolvedSession(t, session.CaseDescription{
		Specialty: "cardiology", Difficulty: "intermediate",
		BP: "120/80", HeartRate: 80, RespRate: 16, Temperature: 37.0, SpO2: 98,
	}, 1)

	if got := len(s.Complications.Candidates); got != 7 {
		t.Fatalf("cardiology candidates = %d, want 5 primary + 2 cross-cutting", got)
	}
	if base := candidateBase(t, s, "Anaphylaxis"); math.Abs(base-0.05*0.3) > 1e-9 {
		t.Errorf("cross-cutting anaphylaxis base = %v, want damped 0.015", base)
	}
	if base := candidateBase(t, s, "Cardiogenic Shock"); base != 0.15 {
		t.Errorf("primary base = %v, want table value 0.15", base)
	}
}

func TestResolveEmergencyHasNoDuplicates(t *testing.T) {
	s := newResolvedSession(t, session.CaseDescription{
		Specialty: "emergency", Difficulty: "intermediate",
		BP: "120/80", HeartRate: 80, SpO2: 98,
	}, 1)

	seen := make(map[string]int)
	for _, c := range s.Complications.Candidates {
		seen[c.Name]++
	}
	for name, n := range seen {
		if n > 1 {
			t.Errorf("candidate %q resolved %d times", name, n)
		}
	}
}

func TestResolveKeepsSpecialtyDefinition(t *testing.T) {
	// Compartment Syndrome exists in both the emergency and orthopedics
	// tables with different windows; each session must evaluate the one from
	// its own specialty.
	e := newTestEngine()

	windowFor := func(specialty string) [2]int {
		s := newResolvedSession(t, session.CaseDescription{
			Specialty: specialty, Difficulty: "intermediate",
			BP: "120/80", HeartRate: 80, RespRate: 16, Temperature: 37.0, SpO2: 98,
		}, 1)
		for _, cv := range e.Candidates(s) {
			if cv.Name == "Compartment Syndrome" {
				return cv.WindowMinutes
			}
		}
		t.Fatalf("%s: Compartment Syndrome not resolved", specialty)
		return [2]int{}
	}

	if got := windowFor("emergency"); got != [2]int{30, 240} {
		t.Errorf("emergency window = %v, want [30 240]", got)
	}
	if got := windowFor("orthopedics"); got != [2]int{60, 480} {
		t.Errorf("orthopedics window = %v, want [60 480]", got)
	}
}

func TestResolveUnknownSpecialtyFallsBack(t *testing.T) {
	s := newResolvedSession(t, session.CaseDescription{
		Specialty: "ophthalmology", Difficulty: "beginner",
		BP: "120/80", HeartRate: 80, SpO2: 98,
	}, 1)

	candidateBase(t, s, "Hemorrhagic Shock")
	if s.Complications.DifficultyMultiplier != 0.5 {
		t.Errorf("beginner multiplier = %v, want 0.5", s.Complications.DifficultyMultiplier)
	}
}

func TestDiagnosisBoostCapped(t *testing.T) {
	stemi := newResolvedSession(t, session.CaseDescription{
		Specialty: "cardiology", Diagnosis: "Acute STEMI, anterior wall",
		BP: "120/80", HeartRate: 80, SpO2: 98,
	}, 1)
	if base := candidateBase(t, stemi, "Cardiogenic Shock"); math.Abs(base-0.30) > 1e-9 {
		t.Errorf("stemi-boosted base = %v, want 0.30", base)
	}

	dengue := newResolvedSession(t, session.CaseDescription{
		Specialty: "infectious", Diagnosis: "severe dengue fever",
		BP: "120/80", HeartRate: 80, SpO2: 98,
	}, 1)
	if base := candidateBase(t, dengue, "Dengue Hemorrhagic Manifestations"); base != 0.5 {
		t.Errorf("boosted base = %v, want cap 0.5", base)
	}
}

func TestProbabilityTimeCurve(t *testing.T) {
	def, _ := definitionIn("cardiology", "Cardiogenic Shock") // window 30-180, peak at 142.5
	v := session.VitalSigns{BPSystolic: 120, BPDiastolic: 80, HeartRate: 80, RespRate: 16, Temperature: 37.0, SpO2: 98}

	atStart := probability(def, def.BaseProbability, 30, false, v, 1.0)
	if atStart != 0 {
		t.Errorf("probability at window open = %v, want 0", atStart)
	}

	mid := probability(def, def.BaseProbability, 86, false, v, 1.0)
	want := 0.15 * (56.0 / 112.5)
	if math.Abs(mid-want) > 1e-9 {
		t.Errorf("mid-window probability = %v, want %v", mid, want)
	}

	plateau := probability(def, def.BaseProbability, 175, false, v, 1.0)
	if math.Abs(plateau-0.15) > 1e-9 {
		t.Errorf("post-peak probability = %v, want plateau at base 0.15", plateau)
	}
}

func TestProbabilityTreatedReduction(t *testing.T) {
	def, _ := definitionIn("infectious", "Septic Shock")
	v := session.VitalSigns{BPSystolic: 120, BPDiastolic: 80, HeartRate: 80, RespRate: 16, Temperature: 37.0, SpO2: 98}

	untreated := probability(def, def.BaseProbability, 110, false, v, 1.0)
	treated := probability(def, def.BaseProbability, 110, true, v, 1.0)
	if math.Abs(treated-untreated*0.05) > 1e-9 {
		t.Errorf("treated probability = %v, want 5%% of %v", treated, untreated)
	}
}

func TestProbabilityVitalsBoostCompounds(t *testing.T) {
	def, _ := definitionIn("infectious", "Septic Shock") // bp<90, hr>110, temp>38.5
	calm := session.VitalSigns{BPSystolic: 120, BPDiastolic: 80, HeartRate: 80, RespRate: 16, Temperature: 37.0, SpO2: 98}
	deranged := session.VitalSigns{BPSystolic: 85, BPDiastolic: 60, HeartRate: 120, RespRate: 24, Temperature: 39.0, SpO2: 94}

	base := probability(def, def.BaseProbability, 90, false, calm, 1.0)
	boosted := probability(def, def.BaseProbability, 90, false, deranged, 1.0)
	if math.Abs(boosted-base*1.5*1.5*1.5) > 1e-9 {
		t.Errorf("three criteria should compound 1.5^3: base=%v boosted=%v", base, boosted)
	}
}

func TestProbabilityCap(t *testing.T) {
	def, _ := definitionIn("infectious", "Septic Shock")
	deranged := session.VitalSigns{BPSystolic: 85, BPDiastolic: 60, HeartRate: 120, RespRate: 24, Temperature: 39.0, SpO2: 94}

	p := probability(def, 0.5, 120, false, deranged, 1.5)
	if p != 0.6 {
		t.Errorf("probability = %v, want cap 0.6", p)
	}
}

func TestTickFiresAtMostOnce(t *testing.T) {
	s := newResolvedSession(t, session.CaseDescription{
		Specialty: "infectious", Diagnosis: "sepsis", Difficulty: "advanced",
		BP: "85/60", HeartRate: 125, RespRate: 26, Temperature: 39.2, SpO2: 93,
	}, 11)
	e := newTestEngine()

	s.ElapsedMinutes = 100
	for i := 0; i < 200; i++ {
		e.Tick(s)
	}

	if !s.Complications.Fired["Septic Shock"] {
		t.Fatal("septic shock never fired despite 200 high-probability ticks")
	}
	count := 0
	for _, evt := range s.Events {
		if evt.Title == "COMPLICATION: Septic Shock" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("septic shock fired %d times, want exactly once", count)
	}
	if s.Trajectory != session.TrajectoryCritical {
		t.Errorf("trajectory = %s, want critical after critical complication", s.Trajectory)
	}
}

func TestTickOutsideWindowNeverFires(t *testing.T) {
	s := newResolvedSession(t, session.CaseDescription{
		Specialty: "cardiology", Difficulty: "advanced",
		BP: "85/60", HeartRate: 160, RespRate: 30, Temperature: 39.0, SpO2: 85,
	}, 5)
	e := newTestEngine()

	s.ElapsedMinutes = 5 // before every cardiology window opens
	for i := 0; i < 500; i++ {
		e.Tick(s)
	}
	for name := range s.Complications.Fired {
		t.Errorf("complication %q fired before its window", name)
	}
}

func TestMessageFormatting(t *testing.T) {
	v := session.VitalSigns{BPSystolic: 78, BPDiastolic: 50, HeartRate: 132, RespRate: 30, Temperature: 39.4, SpO2: 84}
	got := formatMessage("BP {bp_systolic}/{bp_diastolic}, HR {hr}, SpO2 {spo2}%, temp {temp}C", v)
	want := "BP 78/50, HR 132, SpO2 84%, temp 39.4C"
	if got != want {
		t.Errorf("formatMessage = %q, want %q", got, want)
	}
}

func TestIsTreatedTokenAndSubstring(t *testing.T) {
	def, _ := definitionIn("infectious", "Septic Shock") // prevents antibiotics, iv_fluids, ...

	kw := collectTreatmentKeywords([]*session.TreatmentRecord{
		{Description: "Started broad-spectrum antibiotics, IV ceftriaxone 2g"},
	})
	if !isTreated(def, kw) {
		t.Error("antibiotics treatment not recognized")
	}

	kw = collectTreatmentKeywords([]*session.TreatmentRecord{
		{Description: "paracetamol for fever"},
	})
	if isTreated(def, kw) {
		t.Error("unrelated treatment matched prevention keywords")
	}
}

func TestForceFiresOnceThenErrors(t *testing.T) {
	s := newResolvedSession(t, session.CaseDescription{
		Specialty: "cardiology", BP: "120/80", HeartRate: 80, SpO2: 98,
	}, 1)
	e := newTestEngine()

	evt, err := e.Force(s, "Ventricular Tachycardia")
	if err != nil {
		t.Fatalf("Force: %v", err)
	}
	if evt.Category != session.EventCriticalComplication {
		t.Errorf("category = %s, want critical_complication", evt.Category)
	}
	if s.Trajectory != session.TrajectoryCritical {
		t.Errorf("trajectory = %s, want critical", s.Trajectory)
	}

	if _, err := e.Force(s, "Ventricular Tachycardia"); err == nil {
		t.Error("second force should fail")
	}
	if _, err := e.Force(s, "Eclampsia"); err == nil {
		t.Error("non-candidate force should fail")
	}
}

func TestDistractionsCapped(t *testing.T) {
	s := session.NewWithSeed(session.CaseDescription{
		Specialty: "cardiology", Difficulty: "advanced",
		BP: "120/80", HeartRate: 80, SpO2: 98,
	}, 9)
	s.Complications.DifficultyMultiplier = 1.5
	s.Complications.Candidates = nil // isolate the distraction pass
	e := newTestEngine()

	s.ElapsedMinutes = 60
	for i := 0; i < 1000; i++ {
		e.Tick(s)
	}

	count := 0
	for _, evt := range s.Events {
		if evt.Category == session.EventDistraction {
			count++
		}
	}
	if count != session.MaxDistractions {
		t.Errorf("distractions fired %d times, want cap %d", count, session.MaxDistractions)
	}
}

func TestUrgentComplicationPushesStableToDeteriorating(t *testing.T) {
	s := newResolvedSession(t, session.CaseDescription{
		Specialty: "cardiology", BP: "120/80", HeartRate: 80, SpO2: 98,
	}, 1)
	e := newTestEngine()

	evt, err := e.Force(s, "Acute Heart Failure / Pulmonary Edema")
	if err != nil {
		t.Fatalf("Force: %v", err)
	}
	if evt.Category != session.EventUrgentComplication {
		t.Errorf("category = %s, want urgent_complication", evt.Category)
	}
	if s.Trajectory != session.TrajectoryDeteriorating {
		t.Errorf("trajectory = %s, want deteriorating", s.Trajectory)
	}

	// An urgent complication never downgrades an already critical patient.
	s2 := newResolvedSession(t, session.CaseDescription{
		Specialty: "cardiology", BP: "120/80", HeartRate: 80, SpO2: 98,
	}, 1)
	s2.Trajectory = session.TrajectoryCritical
	if _, err := e.Force(s2, "Acute Heart Failure / Pulmonary Edema"); err != nil {
		t.Fatalf("Force: %v", err)
	}
	if s2.Trajectory != session.TrajectoryCritical {
		t.Errorf("trajectory = %s, want critical preserved", s2.Trajectory)
	}
}
