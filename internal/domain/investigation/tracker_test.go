package investigation

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/clinsim/clinsim/internal/domain/session"
)

func newTestSession() *session.Session {
	return session.NewWithSeed(session.CaseDescription{
		BP: "120/80", HeartRate: 80, RespRate: 16, Temperature: 37.0, SpO2: 98,
		LabText: "Hb 9.2 g/dL, WBC 14,000\nTroponin I elevated at 2.1 ng/mL\nCreatinine 1.1 mg/dL",
	}, 7)
}

func newTestTracker() *Tracker {
	return NewTracker(zerolog.Nop())
}

func TestNormalizeKey(t *testing.T) {
	cases := map[string]string{
		"Chest X-Ray": "xray_chest",
		"chest xray":  "xray_chest",
		"CXR":         "xray_chest",
		"  CBC ":      "cbc",
		"ct scan":     "ct_scan",
		"EKG":         "ecg",
	}
	for in, want := range cases {
		if got := NormalizeKey(in); got != want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOrderKnownType(t *testing.T) {
	s := newTestSession()
	tr := newTestTracker()

	inv := tr.Order(s, "ECG", false)
	if inv.Label != "12-lead ECG" {
		t.Errorf("label = %q", inv.Label)
	}
	if inv.Turnaround != 15 {
		t.Errorf("routine ecg turnaround = %d, want 15", inv.Turnaround)
	}
	if inv.Status != session.StatusOrdered {
		t.Errorf("status = %s, want ordered", inv.Status)
	}

	urgent := tr.Order(s, "ecg", true)
	if urgent.Turnaround != 5 {
		t.Errorf("urgent ecg turnaround = %d, want 5", urgent.Turnaround)
	}
}

func TestOrderUnknownTypeUsesDefault(t *testing.T) {
	s := newTestSession()
	tr := newTestTracker()

	inv := tr.Order(s, "bone densitometry", false)
	if inv.Turnaround != 180 {
		t.Errorf("default turnaround = %d, want 180", inv.Turnaround)
	}
	if inv.Label != "Investigation" {
		t.Errorf("default label = %q", inv.Label)
	}
}

func TestLifecycleProgression(t *testing.T) {
	s := newTestSession()
	tr := newTestTracker()
	inv := tr.Order(s, "cbc", false) // turnaround 120

	s.ElapsedMinutes = 30
	if evts := tr.Check(s); len(evts) != 0 {
		t.Fatalf("events before halfway: %d", len(evts))
	}
	if inv.Status != session.StatusOrdered {
		t.Errorf("status at 25%% = %s, want ordered", inv.Status)
	}

	s.ElapsedMinutes = 60
	tr.Check(s)
	if inv.Status != session.StatusProcessing {
		t.Errorf("status at 50%% = %s, want processing", inv.Status)
	}

	s.ElapsedMinutes = 120
	evts := tr.Check(s)
	if inv.Status != session.StatusReady {
		t.Errorf("status at 100%% = %s, want ready", inv.Status)
	}
	if len(evts) != 1 || evts[0].Category != session.EventInvestigationReady {
		t.Fatalf("expected one ready event, got %v", evts)
	}

	// A later check must not emit again.
	s.ElapsedMinutes = 150
	if evts := tr.Check(s); len(evts) != 0 {
		t.Fatalf("ready event emitted twice")
	}
}

func TestResultTextMatchesLabLines(t *testing.T) {
	s := newTestSession()
	tr := newTestTracker()

	trop := tr.Order(s, "troponin", true)
	if !strings.Contains(trop.ResultText, "Troponin I elevated") {
		t.Errorf("troponin result = %q, want matched lab line", trop.ResultText)
	}

	lipase := tr.Order(s, "lipase", false)
	if !strings.Contains(lipase.ResultText, "within normal limits") {
		t.Errorf("unmatched type result = %q, want normal-limits fallback", lipase.ResultText)
	}
}

func TestResultTextNoLabData(t *testing.T) {
	s := session.NewWithSeed(session.CaseDescription{BP: "120/80", HeartRate: 80, SpO2: 98}, 7)
	tr := newTestTracker()

	inv := tr.Order(s, "cbc", false)
	if !strings.Contains(inv.ResultText, "Within normal limits") {
		t.Errorf("result without lab data = %q", inv.ResultText)
	}
}

func TestStatusesWithholdResultUntilReady(t *testing.T) {
	s := newTestSession()
	tr := newTestTracker()
	tr.Order(s, "troponin", true) // urgent turnaround 30

	statuses := tr.Statuses(s)
	if len(statuses) != 1 {
		t.Fatalf("got %d statuses", len(statuses))
	}
	if statuses[0].Result != "" {
		t.Errorf("pending order leaked result text")
	}
	if statuses[0].RemainingMinutes != 30 {
		t.Errorf("remaining = %d, want 30", statuses[0].RemainingMinutes)
	}

	s.ElapsedMinutes = 45
	tr.Check(s)
	statuses = tr.Statuses(s)
	if statuses[0].Result == "" {
		t.Errorf("ready order missing result text")
	}
	if statuses[0].RemainingMinutes != 0 {
		t.Errorf("remaining after ready = %d, want 0", statuses[0].RemainingMinutes)
	}
}

func TestMarkDelivered(t *testing.T) {
	s := newTestSession()
	tr := newTestTracker()
	inv := tr.Order(s, "ecg", true)

	tr.MarkDelivered(inv)
	if inv.Status != session.StatusOrdered {
		t.Errorf("delivery before ready changed status to %s", inv.Status)
	}

	s.ElapsedMinutes = 5
	tr.Check(s)
	tr.MarkDelivered(inv)
	if inv.Status != session.StatusDelivered {
		t.Errorf("status = %s, want delivered", inv.Status)
	}
}
