package clock

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestManual_Advance(t *testing.T) {
	tests := []struct {
		name    string
		period  time.Duration
		advance []time.Duration
		want    int
	}{
		{
			name:    "before first period",
			period:  2 * time.Second,
			advance: []time.Duration{1999 * time.Millisecond},
			want:    0,
		},
		{
			name:    "exactly one period",
			period:  2 * time.Second,
			advance: []time.Duration{2 * time.Second},
			want:    1,
		},
		{
			name:    "several periods in one step",
			period:  2 * time.Second,
			advance: []time.Duration{10 * time.Second},
			want:    5,
		},
		{
			name:    "periods split across steps",
			period:  2 * time.Second,
			advance: []time.Duration{time.Second, time.Second, 1500 * time.Millisecond, 500 * time.Millisecond},
			want:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManual()
			count := 0
			m.Every(tt.period, func() { count++ })

			for _, d := range tt.advance {
				m.Advance(d)
			}

			if count != tt.want {
				t.Errorf("fired %d times, want %d", count, tt.want)
			}
		})
	}
}

func TestManual_Cancel(t *testing.T) {
	m := NewManual()
	count := 0
	cancel := m.Every(time.Second, func() { count++ })

	m.Advance(3 * time.Second)
	cancel()
	cancel() // second call is a no-op

	m.Advance(10 * time.Second)

	if count != 3 {
		t.Errorf("fired %d times, want 3", count)
	}
	if m.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", m.Pending())
	}
}

func TestManual_CancelFromCallback(t *testing.T) {
	m := NewManual()
	count := 0
	var cancel Cancel
	cancel = m.Every(time.Second, func() {
		count++
		if count == 2 {
			cancel()
		}
	})

	m.Advance(5 * time.Second)

	if count != 2 {
		t.Errorf("fired %d times, want 2", count)
	}
}

func TestManual_Order(t *testing.T) {
	m := NewManual()
	var order []string
	m.Every(3*time.Second, func() { order = append(order, "slow") })
	m.Every(2*time.Second, func() { order = append(order, "fast") })

	m.Advance(6 * time.Second)

	// At 6s both are due; the earlier registration fires first.
	want := []string{"fast", "slow", "fast", "slow", "fast"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, order[i], want[i])
		}
	}

	if m.Now() != 6*time.Second {
		t.Errorf("Now() = %v, want 6s", m.Now())
	}
}

func TestSystem_EveryAndCancel(t *testing.T) {
	var count atomic.Int32
	cancel := System().Every(5*time.Millisecond, func() { count.Add(1) })

	deadline := time.Now().Add(2 * time.Second)
	for count.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()

	if count.Load() < 2 {
		t.Fatalf("fired %d times before deadline, want at least 2", count.Load())
	}

	// Allow an in-flight callback to finish, then verify nothing else fires.
	time.Sleep(20 * time.Millisecond)
	after := count.Load()
	time.Sleep(50 * time.Millisecond)
	if got := count.Load(); got != after {
		t.Errorf("fired %d more times after cancel", got-after)
	}
}
