package feed

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/clock"
)

// DefaultPeriod is the interval between simulated predictions.
const DefaultPeriod = 2000 * time.Millisecond

// Config holds configuration options for the Simulator.
type Config struct {
	// Period between emissions (default: DefaultPeriod).
	Period time.Duration

	// Scheduler drives the emission timer (default: clock.System()).
	Scheduler clock.Scheduler

	// Rand supplies uniform draws (default: math/rand/v2 global source).
	Rand Source

	// HistorySize bounds the recent label list (default: DefaultHistorySize).
	HistorySize int

	// Now stamps emissions (default: time.Now).
	Now func() time.Time
}

// Emission is delivered to observers after every prediction.
type Emission struct {
	Prediction Prediction
	Recent     []string
}

// Simulator emits a random Prediction every period while active.
type Simulator struct {
	period    time.Duration
	scheduler clock.Scheduler
	rand      Source
	now       func() time.Time

	mu        sync.Mutex
	active    bool
	gen       uint64
	cancel    clock.Cancel
	current   *Prediction
	history   *History
	observers []func(Emission)
}

// globalRand adapts the math/rand/v2 top-level functions to Source.
type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// New creates a Simulator. It starts inactive.
func New(cfg Config) *Simulator {
	if cfg.Period <= 0 {
		cfg.Period = DefaultPeriod
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = clock.System()
	}
	if cfg.Rand == nil {
		cfg.Rand = globalRand{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Simulator{
		period:    cfg.Period,
		scheduler: cfg.Scheduler,
		rand:      cfg.Rand,
		now:       cfg.Now,
		history:   NewHistory(cfg.HistorySize),
	}
}

// OnEmit registers fn to receive every emission.
// Observers run while the simulator is locked and must not call back into it.
func (s *Simulator) OnEmit(fn func(Emission)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Activate schedules periodic emissions. Activating an active simulator
// is a no-op.
func (s *Simulator) Activate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return
	}

	s.active = true
	s.gen++
	gen := s.gen
	s.cancel = s.scheduler.Every(s.period, func() {
		s.tick(gen)
	})
}

// Deactivate cancels the pending emission. Once it returns no further
// emissions happen until the next Activate.
func (s *Simulator) Deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return
	}

	s.active = false
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Active reports whether the simulator is emitting.
func (s *Simulator) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Tick emits one prediction immediately if the simulator is active.
// It returns false when inactive.
func (s *Simulator) Tick() (Prediction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return Prediction{}, false
	}
	return s.emitLocked(), true
}

// tick is the timer callback. Callbacks from a cancelled registration
// carry a stale generation and are dropped.
func (s *Simulator) tick(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active || gen != s.gen {
		return
	}
	s.emitLocked()
}

func (s *Simulator) emitLocked() Prediction {
	p := Draw(s.rand, Labels)
	p.At = s.now()

	s.current = &p
	s.history.Push(p.Label)

	e := Emission{Prediction: p, Recent: s.history.Labels()}
	for _, fn := range s.observers {
		fn(e)
	}

	return p
}

// Current returns the latest prediction, if any has been emitted.
func (s *Simulator) Current() (Prediction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return Prediction{}, false
	}
	return *s.current, true
}

// Recent returns the recent labels, most recent first.
func (s *Simulator) Recent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Labels()
}
