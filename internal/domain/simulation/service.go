package simulation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinsim/clinsim/internal/domain/complication"
	"github.com/clinsim/clinsim/internal/domain/investigation"
	"github.com/clinsim/clinsim/internal/domain/session"
	"github.com/clinsim/clinsim/internal/domain/treatment"
	"github.com/clinsim/clinsim/internal/domain/vitals"
)

// Config bounds the narrative fan-out.
type Config struct {
	DispatchWorkers  int
	ResponderTimeout time.Duration
}

// Service owns the per-action pipeline. It is the only component that
// mutates a session, always in the same step order, under the session lock.
type Service struct {
	store         *session.Store
	clock         *vitals.Engine
	tracker       *investigation.Tracker
	ledger        *treatment.Ledger
	complications *complication.Engine
	responders    []NarrativeResponder
	validator     SafetyValidator
	assessor      TreatmentAssessor
	publisher     EventPublisher
	workers       int
	timeout       time.Duration
	logger        zerolog.Logger
}

func NewService(
	store *session.Store,
	validator SafetyValidator,
	assessor TreatmentAssessor,
	responders []NarrativeResponder,
	publisher EventPublisher,
	cfg Config,
	logger zerolog.Logger,
) *Service {
	workers := cfg.DispatchWorkers
	if workers < 1 {
		workers = 4
	}
	timeout := cfg.ResponderTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		store:         store,
		clock:         vitals.NewEngine(),
		tracker:       investigation.NewTracker(logger),
		ledger:        treatment.NewLedger(logger),
		complications: complication.NewEngine(logger),
		responders:    responders,
		validator:     validator,
		assessor:      assessor,
		publisher:     publisher,
		workers:       workers,
		timeout:       timeout,
		logger:        logger,
	}
}

// Message is one piece of narrative dialogue in an action response.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// VitalsView is the display form of the current vitals.
type VitalsView struct {
	BP             string                   `json:"bp"`
	HR             int                      `json:"hr"`
	RR             int                      `json:"rr"`
	Temp           float64                  `json:"temp"`
	SpO2           int                      `json:"spo2"`
	Trends         map[string]session.Trend `json:"trends"`
	Trajectory     session.Trajectory       `json:"trajectory"`
	ElapsedMinutes int                      `json:"elapsed_minutes"`
}

// ActionResponse is the outcome of one processed action.
type ActionResponse struct {
	SessionID          uuid.UUID                  `json:"session_id"`
	ActionKind         string                     `json:"action_kind"`
	Blocked            bool                       `json:"blocked,omitempty"`
	Safety             *SafetyVerdict             `json:"safety,omitempty"`
	MinutesConsumed    int                        `json:"minutes_consumed"`
	Vitals             VitalsView                 `json:"vitals"`
	Messages           []Message                  `json:"messages"`
	Events             []*session.SimulationEvent `json:"events"`
	Investigations     []investigation.Status     `json:"investigations"`
	FiredComplications []string                   `json:"fired_complications"`
}

// StartResult describes a newly created session.
type StartResult struct {
	SessionID             uuid.UUID  `json:"session_id"`
	Vitals                VitalsView `json:"vitals"`
	PossibleComplications int        `json:"possible_complications"`
}

// Start creates a session from a case description, resolves its complication
// candidates, and registers it in the store.
func (svc *Service) Start(desc session.CaseDescription) StartResult {
	s := session.New(desc)
	svc.complications.Resolve(s)
	svc.store.Put(s)

	svc.logger.Info().
		Str("session_id", s.ID.String()).
		Str("specialty", desc.Specialty).
		Str("difficulty", desc.Difficulty).
		Str("trajectory", string(s.Trajectory)).
		Msg("session started")

	return StartResult{
		SessionID:             s.ID,
		Vitals:                vitalsView(s),
		PossibleComplications: len(s.Complications.Candidates),
	}
}

func isOrderAction(kind string) bool {
	return kind == "order_treatment" || kind == "order_investigation"
}

// ProcessAction runs the fixed pipeline for one user action: safety gate,
// clock advance, narrative fan-out, order application, complication tick,
// event delivery. Callers are serialized per session by the session lock.
func (svc *Service) ProcessAction(ctx context.Context, id uuid.UUID, actionKind, input string) (*ActionResponse, error) {
	s, err := svc.store.Get(id)
	if err != nil {
		return nil, err
	}
	s.Mu.Lock()
	defer s.Mu.Unlock()

	resp := &ActionResponse{SessionID: s.ID, ActionKind: actionKind}

	if isOrderAction(actionKind) {
		verdict := svc.checkSafety(ctx, s, actionKind, input)
		resp.Safety = &verdict
		if verdict.Tier == SafetyDangerous && !verdict.Proceed {
			// Blocked orders consume no simulated time.
			resp.Blocked = true
			for _, msg := range verdict.Interventions {
				resp.Messages = append(resp.Messages, Message{Role: "senior", Content: msg})
			}
			resp.Vitals = vitalsView(s)
			resp.Investigations = svc.tracker.Statuses(s)
			resp.FiredComplications = s.FiredComplications()
			return resp, nil
		}
	}

	resp.MinutesConsumed = svc.clock.AdvanceClock(s, actionKind)
	svc.tracker.Check(s)

	resp.Messages = append(resp.Messages, svc.dispatchNarratives(ctx, s, actionKind, input)...)

	switch actionKind {
	case "order_treatment":
		assessment := svc.assessTreatment(ctx, s, input)
		svc.ledger.Record(s, input, assessment)
		if assessment.Monitoring != "" {
			resp.Messages = append(resp.Messages, Message{Role: "nurse", Content: assessment.Monitoring})
		}
	case "order_investigation":
		urgent := strings.Contains(strings.ToLower(input), "urgent") || strings.Contains(strings.ToLower(input), "stat")
		svc.tracker.Order(s, input, urgent)
	}

	svc.complications.Tick(s)

	resp.Events = s.UndeliveredEvents()
	for _, inv := range s.Investigations {
		svc.tracker.MarkDelivered(inv)
	}
	svc.publish(s, resp.Events)

	resp.Vitals = vitalsView(s)
	resp.Investigations = svc.tracker.Statuses(s)
	resp.FiredComplications = s.FiredComplications()
	return resp, nil
}

// checkSafety consults the validator for order actions. An unreachable
// validator degrades to caution-and-proceed so the simulation keeps moving.
func (svc *Service) checkSafety(ctx context.Context, s *session.Session, actionKind, input string) SafetyVerdict {
	if svc.validator == nil {
		return SafetyVerdict{Tier: SafetyCaution, Proceed: true}
	}

	var prior []string
	for _, tx := range s.Treatments {
		prior = append(prior, tx.Description)
	}
	callCtx, cancel := context.WithTimeout(ctx, svc.timeout)
	defer cancel()

	verdict, err := svc.validator.Validate(callCtx, SafetyCheck{
		ActionKind: actionKind,
		ActionText: input,
		Case:       s.Case,
		Vitals:     s.Vitals,
		Treatments: prior,
	})
	if err != nil {
		svc.logger.Warn().Err(err).Str("session_id", s.ID.String()).Msg("safety validator unreachable, proceeding with caution")
		return SafetyVerdict{
			Tier:          SafetyCaution,
			Proceed:       true,
			Interventions: []string{"Doctor, just confirming you want to go ahead with this order?"},
		}
	}
	return verdict
}

// assessTreatment consults the assessor, falling back to a neutral
// appropriate assessment so collaborator outages never punish the student.
func (svc *Service) assessTreatment(ctx context.Context, s *session.Session, description string) treatment.Assessment {
	if svc.assessor == nil {
		return treatment.Assessment{Appropriate: true, Monitoring: "Treatment given. Monitoring vitals."}
	}
	callCtx, cancel := context.WithTimeout(ctx, svc.timeout)
	defer cancel()

	a, err := svc.assessor.Assess(callCtx, description, svc.narrativeContext(s, "order_treatment", description))
	if err != nil {
		svc.logger.Warn().Err(err).Str("session_id", s.ID.String()).Msg("treatment assessor unreachable, using neutral assessment")
		return treatment.Assessment{Appropriate: true, Monitoring: "Treatment given. Monitoring vitals."}
	}
	return a
}

// actionRoles routes each action kind to the responder roles that react to
// it. Unlisted kinds default to the patient.
var actionRoles = map[string][]string{
	"talk":                {"patient"},
	"examine":             {"patient", "nurse"},
	"ask_nurse":           {"nurse"},
	"consult_senior":      {"senior"},
	"team_huddle":         {"nurse", "senior"},
	"order_investigation": {"nurse"},
	"order_treatment":     {"nurse"},
	"wait_for_results":    {"nurse"},
	"review_results":      {"nurse"},
}

// dispatchNarratives fans the action out to the relevant responders with a
// bounded pool and per-call timeouts. Failures fall back to the responder's
// static line, and results keep dispatch order regardless of completion.
func (svc *Service) dispatchNarratives(ctx context.Context, s *session.Session, actionKind, input string) []Message {
	roles, ok := actionRoles[actionKind]
	if !ok {
		roles = []string{"patient"}
	}
	var selected []NarrativeResponder
	for _, role := range roles {
		for _, r := range svc.responders {
			if r.Role() == role {
				selected = append(selected, r)
			}
		}
	}
	if len(selected) == 0 {
		return nil
	}

	nc := svc.narrativeContext(s, actionKind, input)
	results := make([]Message, len(selected))
	sem := make(chan struct{}, svc.workers)
	var wg sync.WaitGroup
	for i, r := range selected {
		wg.Add(1)
		go func(i int, r NarrativeResponder) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			callCtx, cancel := context.WithTimeout(ctx, svc.timeout)
			defer cancel()

			content, err := r.Respond(callCtx, nc)
			if err != nil || content == "" {
				if err != nil {
					svc.logger.Warn().Err(err).Str("role", r.Role()).Msg("narrative responder failed, using fallback")
				}
				content = r.Fallback()
			}
			results[i] = Message{Role: r.Role(), Content: content}
		}(i, r)
	}
	wg.Wait()
	return results
}

func (svc *Service) narrativeContext(s *session.Session, actionKind, input string) NarrativeContext {
	var recent []string
	if n := len(s.Events); n > 0 {
		for _, evt := range s.Events[max(0, n-3):] {
			recent = append(recent, evt.Title)
		}
	}
	return NarrativeContext{
		ActionKind:     actionKind,
		UserInput:      input,
		ElapsedMinutes: s.ElapsedMinutes,
		Vitals:         s.Vitals,
		Trajectory:     s.Trajectory,
		StateSummary:   svc.stateSummary(s),
		RecentEvents:   recent,
	}
}

// stateSummary renders the session state as prose for responder prompts.
func (svc *Service) stateSummary(s *session.Session) string {
	v := s.Vitals
	parts := []string{
		fmt.Sprintf("SIMULATION TIME: %d minutes elapsed.", s.ElapsedMinutes),
		fmt.Sprintf("CURRENT VITALS: BP %s, HR %d, RR %d, Temp %.1fC, SpO2 %d%%.", v.BP(), v.HeartRate, v.RespRate, v.Temperature, v.SpO2),
		fmt.Sprintf("PATIENT TRAJECTORY: %s.", s.Trajectory),
	}

	var pending, ready []string
	for _, st := range svc.tracker.Statuses(s) {
		if st.Status == string(session.StatusReady) || st.Status == string(session.StatusDelivered) {
			ready = append(ready, st.Label)
		} else {
			pending = append(pending, st.Label)
		}
	}
	if len(pending) > 0 {
		parts = append(parts, "PENDING INVESTIGATIONS: "+strings.Join(pending, ", ")+".")
	}
	if len(ready) > 0 {
		parts = append(parts, "RESULTS AVAILABLE: "+strings.Join(ready, ", ")+".")
	}

	if len(s.Treatments) > 0 {
		n := len(s.Treatments)
		var recent []string
		for _, tx := range s.Treatments[max(0, n-3):] {
			recent = append(recent, tx.Description)
		}
		parts = append(parts, "RECENT TREATMENTS: "+strings.Join(recent, "; ")+".")
	} else {
		parts = append(parts, "NO TREATMENTS ORDERED YET.")
	}
	return strings.Join(parts, "\n")
}

func (svc *Service) publish(s *session.Session, events []*session.SimulationEvent) {
	if svc.publisher == nil {
		return
	}
	topic := "session." + s.ID.String()
	for _, evt := range events {
		svc.publisher.Publish(topic, evt)
	}
}

// SessionDetail is the read view of a live session.
type SessionDetail struct {
	SessionID          uuid.UUID  `json:"session_id"`
	Specialty          string     `json:"specialty"`
	Difficulty         string     `json:"difficulty"`
	ActionCount        int        `json:"action_count"`
	Vitals             VitalsView `json:"vitals"`
	TreatmentCount     int        `json:"treatment_count"`
	InvestigationCount int        `json:"investigation_count"`
	FiredComplications []string   `json:"fired_complications"`
}

// Get returns the read view of a session.
func (svc *Service) Get(id uuid.UUID) (SessionDetail, error) {
	s, err := svc.store.Get(id)
	if err != nil {
		return SessionDetail{}, err
	}
	s.Mu.Lock()
	defer s.Mu.Unlock()

	return SessionDetail{
		SessionID:          s.ID,
		Specialty:          s.Case.Specialty,
		Difficulty:         s.Case.Difficulty,
		ActionCount:        s.ActionCount,
		Vitals:             vitalsView(s),
		TreatmentCount:     len(s.Treatments),
		InvestigationCount: len(s.Investigations),
		FiredComplications: s.FiredComplications(),
	}, nil
}

// Investigations lists the session's investigation statuses.
func (svc *Service) Investigations(id uuid.UUID) ([]investigation.Status, error) {
	s, err := svc.store.Get(id)
	if err != nil {
		return nil, err
	}
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return svc.tracker.Statuses(s), nil
}

// Candidates returns the sanitized complication inspection view.
func (svc *Service) Candidates(id uuid.UUID) ([]complication.CandidateView, error) {
	s, err := svc.store.Get(id)
	if err != nil {
		return nil, err
	}
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return svc.complications.Candidates(s), nil
}

// ForceComplication fires a named complication for teaching purposes.
func (svc *Service) ForceComplication(id uuid.UUID, name string) (*session.SimulationEvent, error) {
	s, err := svc.store.Get(id)
	if err != nil {
		return nil, err
	}
	s.Mu.Lock()
	defer s.Mu.Unlock()

	evt, err := svc.complications.Force(s, name)
	if err != nil {
		return nil, err
	}
	evt.Delivered = true
	svc.publish(s, []*session.SimulationEvent{evt})
	return evt, nil
}

// End discards a session.
func (svc *Service) End(id uuid.UUID) error {
	return svc.store.Delete(id)
}

// TimelineEntry is one row of the session timeline.
type TimelineEntry struct {
	Minute      int    `json:"minute"`
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Timeline assembles the full ordered history of a session: arrival,
// investigation orders and readies, treatments, and simulation events.
func (svc *Service) Timeline(id uuid.UUID) ([]TimelineEntry, error) {
	s, err := svc.store.Get(id)
	if err != nil {
		return nil, err
	}
	s.Mu.Lock()
	defer s.Mu.Unlock()

	entries := []TimelineEntry{{
		Minute:      0,
		Kind:        "patient_arrival",
		Title:       "Patient arrives",
		Description: s.Case.ChiefComplaint,
	}}

	for _, st := range svc.tracker.Statuses(s) {
		urgency := "Routine"
		if st.Urgent {
			urgency = "Urgent"
		}
		entries = append(entries, TimelineEntry{
			Minute:      st.OrderedAt,
			Kind:        "investigation_ordered",
			Title:       st.Label + " ordered",
			Description: fmt.Sprintf("%s, ETA %d min", urgency, st.EstimatedReady-st.OrderedAt),
		})
		if st.Status == string(session.StatusReady) || st.Status == string(session.StatusDelivered) {
			entries = append(entries, TimelineEntry{
				Minute:      st.EstimatedReady,
				Kind:        "investigation_ready",
				Title:       st.Label + " ready",
				Description: "Results available",
			})
		}
	}

	for _, tx := range s.Treatments {
		desc := tx.SafetyNote
		if desc == "" {
			desc = "Treatment administered"
		}
		title := tx.Description
		if len(title) > 50 {
			title = title[:50]
		}
		entries = append(entries, TimelineEntry{
			Minute:      tx.OrderedAt,
			Kind:        "treatment",
			Title:       "Treatment: " + title,
			Description: desc,
		})
	}

	for _, evt := range s.Events {
		entries = append(entries, TimelineEntry{
			Minute:      evt.Minute,
			Kind:        evt.Category,
			Title:       evt.Title,
			Description: evt.Description,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Minute < entries[j].Minute })
	return entries, nil
}

func vitalsView(s *session.Session) VitalsView {
	return VitalsView{
		BP:             s.Vitals.BP(),
		HR:             s.Vitals.HeartRate,
		RR:             s.Vitals.RespRate,
		Temp:           s.Vitals.Temperature,
		SpO2:           s.Vitals.SpO2,
		Trends:         s.Trends(),
		Trajectory:     s.Trajectory,
		ElapsedMinutes: s.ElapsedMinutes,
	}
}
