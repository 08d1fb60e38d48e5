package complication

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/clinsim/clinsim/internal/domain/session"
)

// Difficulty multipliers scale how often complications fire.
var difficultyMultipliers = map[string]float64{
	"beginner":     0.5,
	"intermediate": 1.0,
	"advanced":     1.5,
}

// A single tick never fires with certainty.
const maxTickProbability = 0.6

// Preventive treatment cuts the probability by 95%, not to zero.
const treatedFactor = 0.05

// Engine evaluates complications each tick and fires them at most once per
// session. All randomness comes from the session's own source.
type Engine struct {
	logger zerolog.Logger
}

func NewEngine(logger zerolog.Logger) *Engine {
	return &Engine{logger: logger}
}

// Resolve determines the complication candidates for a session from its
// specialty, diagnosis, and difficulty. Called once at session start.
//
// Unknown specialties fall back to the emergency profile. Cross-cutting
// complications join every non-emergency case at damped probability, and
// diagnosis boosts apply afterward so damped bases can still be raised.
func (e *Engine) Resolve(s *session.Session) {
	specialty := strings.ToLower(strings.TrimSpace(s.Case.Specialty))
	if specialty == "" {
		specialty = "emergency"
	}
	diagnosis := strings.ToLower(strings.TrimSpace(s.Case.Diagnosis))
	difficulty := strings.ToLower(strings.TrimSpace(s.Case.Difficulty))

	var candidates []session.ComplicationCandidate

	source := specialty
	primary := specialtyComplications[specialty]
	if len(primary) == 0 && specialty != "emergency" {
		e.logger.Info().Str("specialty", specialty).Msg("no complication profile, using emergency fallback")
		primary = specialtyComplications["emergency"]
		source = "emergency"
	}
	seen := make(map[string]bool)
	for _, d := range primary {
		candidates = append(candidates, session.ComplicationCandidate{
			Name:            d.Name,
			Source:          source,
			BaseProbability: d.BaseProbability,
		})
		seen[d.Name] = true
	}

	if source != "emergency" {
		for _, d := range specialtyComplications["emergency"] {
			if !seen[d.Name] && contains(crossCutting, d.Name) {
				candidates = append(candidates, session.ComplicationCandidate{
					Name:            d.Name,
					Source:          "emergency",
					BaseProbability: d.BaseProbability * crossCuttingDamping,
				})
				seen[d.Name] = true
			}
		}
	}

	candidates = applyDiagnosisBoosts(candidates, diagnosis)

	mult, ok := difficultyMultipliers[difficulty]
	if !ok {
		mult = 1.0
	}

	s.Complications.Candidates = candidates
	s.Complications.DifficultyMultiplier = mult

	e.logger.Info().
		Str("session_id", s.ID.String()).
		Str("specialty", specialty).
		Str("diagnosis", diagnosis).
		Float64("difficulty_multiplier", mult).
		Int("candidates", len(candidates)).
		Msg("complication candidates resolved")
}

func applyDiagnosisBoosts(candidates []session.ComplicationCandidate, diagnosis string) []session.ComplicationCandidate {
	if diagnosis == "" {
		return candidates
	}

	applicable := make(map[string]float64)
	for keyword, boosts := range diagnosisBoosts {
		if !strings.Contains(diagnosis, keyword) {
			continue
		}
		for name, mult := range boosts {
			if mult > applicable[name] {
				applicable[name] = mult
			}
		}
	}
	if len(applicable) == 0 {
		return candidates
	}

	for i, c := range candidates {
		if mult, ok := applicable[c.Name]; ok {
			boosted := c.BaseProbability * mult
			if boosted > maxBoostedBase {
				boosted = maxBoostedBase
			}
			candidates[i].BaseProbability = boosted
		}
	}
	return candidates
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// Tick evaluates every unfired candidate against the current clock and
// vitals, fires any that trigger, then runs the distraction pass. Fired
// complications escalate the trajectory per their definition.
func (e *Engine) Tick(s *session.Session) []*session.SimulationEvent {
	var fired []*session.SimulationEvent

	treatmentKeywords := collectTreatmentKeywords(s.Treatments)

	for _, c := range s.Complications.Candidates {
		if s.Complications.Fired[c.Name] {
			continue
		}
		def, ok := definitionIn(c.Source, c.Name)
		if !ok {
			continue
		}
		if s.ElapsedMinutes < def.WindowMin || s.ElapsedMinutes > def.WindowMax {
			continue
		}

		treated := isTreated(def, treatmentKeywords)
		p := probability(def, c.BaseProbability, s.ElapsedMinutes, treated,
			s.Vitals, s.Complications.DifficultyMultiplier)

		if s.Rand.Float64() < p {
			fired = append(fired, e.fire(s, def))
			e.logger.Warn().
				Str("session_id", s.ID.String()).
				Str("complication", def.Name).
				Int("elapsed_min", s.ElapsedMinutes).
				Float64("probability", p).
				Msg("complication triggered")
		}
	}

	if evt := e.checkDistractions(s); evt != nil {
		fired = append(fired, evt)
	}

	return fired
}

// Force fires a named complication regardless of probability, if it is a
// candidate and has not already fired. Used for targeted teaching scenarios.
func (e *Engine) Force(s *session.Session, name string) (*session.SimulationEvent, error) {
	for _, c := range s.Complications.Candidates {
		if c.Name != name || s.Complications.Fired[name] {
			continue
		}
		def, ok := definitionIn(c.Source, name)
		if !ok {
			break
		}
		evt := e.fire(s, def)
		e.logger.Warn().
			Str("session_id", s.ID.String()).
			Str("complication", name).
			Msg("complication force-triggered")
		return evt, nil
	}
	return nil, fmt.Errorf("complication %q: not a candidate or already fired", name)
}

func (e *Engine) fire(s *session.Session, def Definition) *session.SimulationEvent {
	s.Complications.Fired[def.Name] = true

	category := session.EventUrgentComplication
	if def.Urgency == UrgencyCritical {
		category = session.EventCriticalComplication
	}
	evt := s.AppendEvent(category, "COMPLICATION: "+def.Name, formatMessage(def.Message, s.Vitals), "nurse")

	switch def.Effect {
	case EffectCritical:
		s.Trajectory = session.TrajectoryCritical
	case EffectDeteriorating:
		if s.Trajectory == session.TrajectoryStable || s.Trajectory == session.TrajectoryImproving {
			s.Trajectory = session.TrajectoryDeteriorating
		}
	}
	return evt
}

// probability implements the per-tick model: the base ramps linearly to full
// strength at 75% of the window and plateaus, scaled by difficulty, cut by
// preventive treatment, and compounded 1.5x per matching vitals criterion.
func probability(def Definition, base float64, elapsed int, treated bool, v session.VitalSigns, difficultyMult float64) float64 {
	window := def.WindowMax - def.WindowMin
	if window < 1 {
		window = 1
	}
	peak := float64(window) * 0.75
	timeFactor := float64(elapsed-def.WindowMin) / peak
	if timeFactor > 1.0 {
		timeFactor = 1.0
	}
	if timeFactor < 0 {
		timeFactor = 0
	}

	p := base * timeFactor * difficultyMult
	if treated {
		p *= treatedFactor
	}
	p *= vitalsBoost(def, v)

	if p > maxTickProbability {
		p = maxTickProbability
	}
	if p < 0 {
		p = 0
	}
	return p
}

func vitalsBoost(def Definition, v session.VitalSigns) float64 {
	boost := 1.0
	for criterion, threshold := range def.Criteria {
		matched := false
		switch criterion {
		case "bp_systolic_below":
			matched = float64(v.BPSystolic) < threshold
		case "bp_systolic_above":
			matched = float64(v.BPSystolic) > threshold
		case "hr_above":
			matched = float64(v.HeartRate) > threshold
		case "hr_below":
			matched = float64(v.HeartRate) < threshold
		case "spo2_below":
			matched = float64(v.SpO2) < threshold
		case "rr_above":
			matched = float64(v.RespRate) > threshold
		case "temp_above":
			matched = v.Temperature > threshold
		case "temp_below":
			matched = v.Temperature < threshold
		}
		if matched {
			boost *= 1.5
		}
	}
	return boost
}

// collectTreatmentKeywords tokenizes treatment descriptions for prevention
// matching. Short tokens are noise and are dropped.
func collectTreatmentKeywords(treatments []*session.TreatmentRecord) map[string]bool {
	keywords := make(map[string]bool)
	for _, tx := range treatments {
		desc := strings.ToLower(tx.Description)
		normalized := strings.NewReplacer(",", " ", ".", " ", "-", "_", "/", " ").Replace(desc)
		for _, token := range strings.Fields(normalized) {
			if len(token) > 2 {
				keywords[token] = true
			}
		}
		keywords[desc] = true
	}
	return keywords
}

// isTreated reports whether any preventive keyword matches the administered
// treatments, directly or as a substring in either direction.
func isTreated(def Definition, treatmentKeywords map[string]bool) bool {
	for _, prevent := range def.Prevents {
		p := strings.ReplaceAll(strings.ToLower(prevent), "-", "_")
		if treatmentKeywords[p] {
			return true
		}
		for tk := range treatmentKeywords {
			if strings.Contains(tk, p) || strings.Contains(p, tk) {
				return true
			}
		}
	}
	return false
}

func (e *Engine) checkDistractions(s *session.Session) *session.SimulationEvent {
	if len(s.Complications.FiredDistractions) >= session.MaxDistractions {
		return nil
	}
	for _, d := range distractions {
		if s.Complications.FiredDistractions[d.Name] {
			continue
		}
		if s.ElapsedMinutes < d.WindowMin || s.ElapsedMinutes > d.WindowMax {
			continue
		}
		if s.Rand.Float64() < d.Probability*s.Complications.DifficultyMultiplier {
			s.Complications.FiredDistractions[d.Name] = true
			e.logger.Info().
				Str("session_id", s.ID.String()).
				Str("distraction", d.Name).
				Int("elapsed_min", s.ElapsedMinutes).
				Msg("distraction triggered")
			return s.AppendEvent(session.EventDistraction, "INTERRUPTION: "+d.Name, d.Message, "nurse")
		}
	}
	return nil
}

// CandidateView is the sanitized inspection view of a possible complication.
// Probabilities are withheld.
type CandidateView struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Urgency       string   `json:"urgency"`
	WindowMinutes [2]int   `json:"window_minutes"`
	PreventableBy []string `json:"preventable_by"`
}

// Candidates returns the session's possible complications without their
// probabilities.
func (e *Engine) Candidates(s *session.Session) []CandidateView {
	var out []CandidateView
	for _, c := range s.Complications.Candidates {
		def, ok := definitionIn(c.Source, c.Name)
		if !ok {
			continue
		}
		out = append(out, CandidateView{
			Name:          def.Name,
			Description:   def.Description,
			Urgency:       def.Urgency,
			WindowMinutes: [2]int{def.WindowMin, def.WindowMax},
			PreventableBy: def.Prevents,
		})
	}
	return out
}

// formatMessage substitutes live vitals into a message template.
func formatMessage(template string, v session.VitalSigns) string {
	return strings.NewReplacer(
		"{bp_systolic}", strconv.Itoa(v.BPSystolic),
		"{bp_diastolic}", strconv.Itoa(v.BPDiastolic),
		"{hr}", strconv.Itoa(v.HeartRate),
		"{rr}", strconv.Itoa(v.RespRate),
		"{spo2}", strconv.Itoa(v.SpO2),
		"{temp}", strconv.FormatFloat(v.Temperature, 'f', 1, 64),
	).Replace(template)
}
