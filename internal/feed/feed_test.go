package feed

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/clock"
)

// seqSource replays a fixed sequence of draws, cycling when exhausted.
type seqSource struct {
	vals []float64
	i    int
}

func (s *seqSource) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

// labelDraw returns the draw that selects Labels[idx].
func labelDraw(idx int) float64 {
	return (float64(idx) + 0.5) / float64(len(Labels))
}

func TestLabels(t *testing.T) {
	if len(Labels) != 32 {
		t.Fatalf("len(Labels) = %d, want 32", len(Labels))
	}

	seen := make(map[string]bool)
	for _, l := range Labels {
		if seen[l] {
			t.Errorf("duplicate label %q", l)
		}
		seen[l] = true
	}

	for _, l := range []string{"A", "Z", "Hello", "Thank you", "Please", "Sorry", "Yes", "No"} {
		if !IsLabel(l) {
			t.Errorf("IsLabel(%q) = false, want true", l)
		}
	}
	if IsLabel("Goodbye") {
		t.Error("IsLabel(\"Goodbye\") = true, want false")
	}
}

func TestDraw(t *testing.T) {
	tests := []struct {
		name        string
		draws       []float64
		wantLabel   string
		wantPercent int
	}{
		{
			name:        "lowest draws",
			draws:       []float64{0, 0},
			wantLabel:   "A",
			wantPercent: 70,
		},
		{
			name:        "midpoint confidence",
			draws:       []float64{labelDraw(26), 0.5},
			wantLabel:   "Hello",
			wantPercent: 85,
		},
		{
			name:        "last label",
			draws:       []float64{labelDraw(31), 0.2},
			wantLabel:   "No",
			wantPercent: 76,
		},
		{
			name:        "upper boundary rounds to 100",
			draws:       []float64{labelDraw(25), 0.99},
			wantLabel:   "Z",
			wantPercent: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Draw(&seqSource{vals: tt.draws}, Labels)

			if p.Label != tt.wantLabel {
				t.Errorf("Label = %q, want %q", p.Label, tt.wantLabel)
			}
			if got := p.Percent(); got != tt.wantPercent {
				t.Errorf("Percent() = %d, want %d", got, tt.wantPercent)
			}
		})
	}
}

func TestDraw_ConfidenceBelowOne(t *testing.T) {
	p := Draw(&seqSource{vals: []float64{0, math.Nextafter(1, 0)}}, Labels)

	if p.Confidence >= MaxConfidence {
		t.Errorf("Confidence = %v, want < %v", p.Confidence, MaxConfidence)
	}
}

func TestDraw_Properties(t *testing.T) {
	src := rand.New(rand.NewPCG(7, 11))

	for i := 0; i < 10000; i++ {
		p := Draw(src, Labels)

		if p.Confidence < MinConfidence || p.Confidence >= MaxConfidence {
			t.Fatalf("draw %d: Confidence = %v, want in [0.70, 1.00)", i, p.Confidence)
		}
		if !IsLabel(p.Label) {
			t.Fatalf("draw %d: Label %q not in label set", i, p.Label)
		}
	}
}

func TestHistory_Push(t *testing.T) {
	h := NewHistory(5)

	inserted := []string{"A", "B", "C", "D", "E", "F", "G"}
	for i, l := range inserted {
		h.Push(l)

		got := h.Labels()
		if got[0] != l {
			t.Errorf("after %q: first = %q, want %q", l, got[0], l)
		}
		if h.Len() > 5 {
			t.Errorf("after %q: Len() = %d, want <= 5", l, h.Len())
		}
		if want := min(i+1, 5); h.Len() != want {
			t.Errorf("after %q: Len() = %d, want %d", l, h.Len(), want)
		}
	}

	want := []string{"G", "F", "E", "D", "C"}
	got := h.Labels()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Labels()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestHistory_LabelsIsCopy(t *testing.T) {
	h := NewHistory(5)
	h.Push("A")

	got := h.Labels()
	got[0] = "mutated"

	if h.Labels()[0] != "A" {
		t.Error("Labels() should return a copy")
	}
}

func TestNewHistory_DefaultSize(t *testing.T) {
	h := NewHistory(0)
	for i := 0; i < 10; i++ {
		h.Push("A")
	}
	if h.Len() != DefaultHistorySize {
		t.Errorf("Len() = %d, want %d", h.Len(), DefaultHistorySize)
	}
}

func newTestSimulator(draws []float64) (*Simulator, *clock.Manual) {
	m := clock.NewManual()
	s := New(Config{
		Scheduler: m,
		Rand:      &seqSource{vals: draws},
	})
	return s, m
}

func TestSimulator_Scenario(t *testing.T) {
	draws := []float64{
		labelDraw(0), 0.1, // A
		labelDraw(1), 0.2, // B
		labelDraw(26), 0.3, // Hello
	}
	s, m := newTestSimulator(draws)

	s.Activate()

	m.Advance(2000 * time.Millisecond)
	assertRecent(t, s.Recent(), []string{"A"})

	m.Advance(4000 * time.Millisecond)
	assertRecent(t, s.Recent(), []string{"Hello", "B", "A"})

	current, ok := s.Current()
	if !ok || current.Label != "Hello" {
		t.Errorf("Current() = %+v, %v; want Hello", current, ok)
	}

	s.Deactivate()
	m.Advance(10000 * time.Millisecond)

	assertRecent(t, s.Recent(), []string{"Hello", "B", "A"})
	if m.Pending() != 0 {
		t.Errorf("Pending() = %d after Deactivate, want 0", m.Pending())
	}
}

func TestSimulator_InactiveNeverEmits(t *testing.T) {
	s, m := newTestSimulator([]float64{0.5})

	m.Advance(10 * time.Second)

	if _, ok := s.Current(); ok {
		t.Error("Current() should be empty before activation")
	}
	if _, ok := s.Tick(); ok {
		t.Error("Tick() should not emit while inactive")
	}
	if len(s.Recent()) != 0 {
		t.Errorf("Recent() = %v, want empty", s.Recent())
	}
}

func TestSimulator_TickWhileActive(t *testing.T) {
	s, m := newTestSimulator([]float64{labelDraw(2), 0.2, labelDraw(3), 0.2})

	if s.Active() {
		t.Fatal("new simulator should be inactive")
	}

	s.Activate()
	if !s.Active() {
		t.Fatal("Active() = false after Activate")
	}

	p, ok := s.Tick()
	if !ok || p.Label != "C" || p.Percent() != 76 {
		t.Errorf("Tick() = %+v, %v; want C at 76%%", p, ok)
	}

	// The timer keeps its own schedule alongside manual ticks
	m.Advance(2 * time.Second)
	assertRecent(t, s.Recent(), []string{"D", "C"})

	s.Deactivate()
	if s.Active() {
		t.Error("Active() = true after Deactivate")
	}
}

func TestSimulator_HistoryBounded(t *testing.T) {
	s, m := newTestSimulator([]float64{0.5, 0.5})
	s.Activate()
	defer s.Deactivate()

	m.Advance(20 * time.Second)

	if got := len(s.Recent()); got != 5 {
		t.Errorf("len(Recent()) = %d, want 5", got)
	}
}

func TestSimulator_ReactivateKeepsHistory(t *testing.T) {
	s, m := newTestSimulator([]float64{labelDraw(0), 0.5, labelDraw(1), 0.5})

	s.Activate()
	m.Advance(2 * time.Second)
	s.Deactivate()

	s.Activate()
	s.Activate() // no-op: must not double the emission rate
	m.Advance(2 * time.Second)

	assertRecent(t, s.Recent(), []string{"B", "A"})
	if m.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", m.Pending())
	}
}

func TestSimulator_OnEmit(t *testing.T) {
	s, m := newTestSimulator([]float64{labelDraw(27), 0})

	var got []Emission
	s.OnEmit(func(e Emission) { got = append(got, e) })

	s.Activate()
	m.Advance(4 * time.Second)
	s.Deactivate()
	m.Advance(4 * time.Second)

	if len(got) != 2 {
		t.Fatalf("observed %d emissions, want 2", len(got))
	}
	if got[1].Prediction.Label != "Thank you" {
		t.Errorf("Label = %q, want %q", got[1].Prediction.Label, "Thank you")
	}
	assertRecent(t, got[1].Recent, []string{"Thank you", "Thank you"})
}

func TestSimulator_StaleTickDropped(t *testing.T) {
	// Capture the callback so it can be fired after cancellation, the way a
	// real ticker might deliver a tick that raced with Deactivate.
	sched := &captureScheduler{}
	s := New(Config{Scheduler: sched, Rand: &seqSource{vals: []float64{0.5}}})

	s.Activate()
	s.Deactivate()
	sched.fn()

	if _, ok := s.Current(); ok {
		t.Error("tick after Deactivate should not emit")
	}

	// A callback from the first activation must not fire for the second.
	first := sched.fn
	s.Activate()
	first()
	if _, ok := s.Current(); ok {
		t.Error("stale tick from an earlier activation should not emit")
	}
}

type captureScheduler struct {
	fn func()
}

func (c *captureScheduler) Every(_ time.Duration, fn func()) clock.Cancel {
	c.fn = fn
	return func() {}
}

func assertRecent(t *testing.T, got, want []string) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("recent = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("recent[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
