package investigation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinsim/clinsim/internal/domain/session"
)

// Tracker orders investigations and walks them through the turnaround
// lifecycle as the simulated clock advances.
type Tracker struct {
	logger zerolog.Logger
}

func NewTracker(logger zerolog.Logger) *Tracker {
	return &Tracker{logger: logger}
}

// Order registers a new investigation on the session. The result text is
// derived up front from the case lab data; it is only surfaced once the
// order reaches the ready state.
func (t *Tracker) Order(s *session.Session, name string, urgent bool) *session.OrderedInvestigation {
	key := NormalizeKey(name)
	entry, _ := Lookup(key)

	turnaround := entry.Turnaround
	if urgent {
		turnaround = entry.Urgent
	}

	inv := &session.OrderedInvestigation{
		ID:         uuid.New(),
		TypeKey:    key,
		Label:      entry.Label,
		OrderedAt:  s.ElapsedMinutes,
		Turnaround: turnaround,
		Urgent:     urgent,
		Status:     session.StatusOrdered,
		ResultText: resultText(key, s.Case.LabText),
	}
	s.Investigations[inv.ID] = inv

	t.logger.Info().
		Str("session_id", s.ID.String()).
		Str("investigation", inv.Label).
		Int("turnaround_min", turnaround).
		Bool("urgent", urgent).
		Msg("investigation ordered")

	return inv
}

// Check advances every pending order against the clock. An order moves to
// processing halfway through its turnaround and becomes ready at full
// turnaround, emitting exactly one ready event. Statuses never move backward.
func (t *Tracker) Check(s *session.Session) []*session.SimulationEvent {
	var events []*session.SimulationEvent
	for _, inv := range ordered(s) {
		switch inv.Status {
		case session.StatusReady, session.StatusDelivered:
			continue
		}
		waited := s.ElapsedMinutes - inv.OrderedAt
		if waited >= inv.Turnaround {
			inv.Status = session.StatusReady
			desc := inv.ResultText
			if desc == "" {
				desc = fmt.Sprintf("%s results are now available.", inv.Label)
			}
			evt := s.AppendEvent(session.EventInvestigationReady,
				fmt.Sprintf("%s Results Ready", inv.Label), desc, "nurse")
			events = append(events, evt)
		} else if waited*2 >= inv.Turnaround && inv.Status == session.StatusOrdered {
			inv.Status = session.StatusProcessing
		}
	}
	return events
}

// Status is the externally visible view of one order.
type Status struct {
	ID               uuid.UUID `json:"id"`
	Type             string    `json:"type"`
	Label            string    `json:"label"`
	Status           string    `json:"status"`
	OrderedAt        int       `json:"ordered_at"`
	EstimatedReady   int       `json:"estimated_ready"`
	RemainingMinutes int       `json:"remaining_minutes"`
	Urgent           bool      `json:"is_urgent"`
	Result           string    `json:"result,omitempty"`
}

// Statuses lists all orders with their remaining time, ordered results first
// by order time. Result text is withheld until ready.
func (t *Tracker) Statuses(s *session.Session) []Status {
	var out []Status
	for _, inv := range ordered(s) {
		remaining := inv.Turnaround - (s.ElapsedMinutes - inv.OrderedAt)
		if remaining < 0 {
			remaining = 0
		}
		st := Status{
			ID:               inv.ID,
			Type:             inv.TypeKey,
			Label:            inv.Label,
			Status:           string(inv.Status),
			OrderedAt:        inv.OrderedAt,
			EstimatedReady:   inv.OrderedAt + inv.Turnaround,
			RemainingMinutes: remaining,
			Urgent:           inv.Urgent,
		}
		if inv.Status == session.StatusReady || inv.Status == session.StatusDelivered {
			st.Result = inv.ResultText
		}
		out = append(out, st)
	}
	return out
}

// MarkDelivered transitions a ready order once its result has been surfaced.
func (t *Tracker) MarkDelivered(inv *session.OrderedInvestigation) {
	if inv.Status == session.StatusReady {
		inv.Status = session.StatusDelivered
	}
}

func ordered(s *session.Session) []*session.OrderedInvestigation {
	out := make([]*session.OrderedInvestigation, 0, len(s.Investigations))
	for _, inv := range s.Investigations {
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderedAt != out[j].OrderedAt {
			return out[i].OrderedAt < out[j].OrderedAt
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// resultText pulls the lines of the case lab data relevant to this
// investigation type. Unknown types match on their own key. No match yields
// normal-limits wording.
func resultText(key, labText string) string {
	if strings.TrimSpace(labText) == "" {
		return fmt.Sprintf("%s results: Within normal limits.", strings.ToUpper(key))
	}

	keywords, ok := resultKeywords[key]
	if !ok {
		keywords = []string{key}
	}

	var relevant []string
	for _, line := range strings.Split(labText, "\n") {
		lower := strings.ToLower(line)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				relevant = append(relevant, strings.TrimSpace(line))
				break
			}
		}
	}
	if len(relevant) > 0 {
		return strings.Join(relevant, "\n")
	}
	return fmt.Sprintf("%s: Results within normal limits (no specific abnormality noted).", titleCase(key))
}

func titleCase(key string) string {
	words := strings.Split(strings.ReplaceAll(key, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
