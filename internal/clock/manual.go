package clock

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Scheduler driven by simulated time.
// Tasks fire only when Advance is called, on the caller's goroutine.
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	nextID int
	tasks  map[int]*manualTask
}

type manualTask struct {
	id     int
	period time.Duration
	due    time.Duration
	fn     func()
}

// NewManual creates a Manual scheduler at simulated time zero.
func NewManual() *Manual {
	return &Manual{
		tasks: make(map[int]*manualTask),
	}
}

// Every registers fn to run every period of simulated time.
// Non-positive periods are treated as one nanosecond.
func (m *Manual) Every(period time.Duration, fn func()) Cancel {
	if period <= 0 {
		period = time.Nanosecond
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := m.nextID
	m.tasks[id] = &manualTask{
		id:     id,
		period: period,
		due:    m.now + period,
		fn:     fn,
	}

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.tasks, id)
	}
}

// Advance moves simulated time forward by d, firing every task that
// becomes due in chronological order. Tasks cancelled by an earlier
// callback within the same Advance do not fire.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		task := m.nextDue(target)
		if task == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = task.due
		task.due += task.period
		fn := task.fn
		m.mu.Unlock()

		fn()
	}
}

// nextDue returns the earliest task due at or before target.
// Ties are broken by registration order. Caller must hold m.mu.
func (m *Manual) nextDue(target time.Duration) *manualTask {
	due := make([]*manualTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		if t.due <= target {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}

	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].id < due[j].id
	})
	return due[0]
}

// Now returns the elapsed simulated time.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of registered, uncancelled tasks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}
