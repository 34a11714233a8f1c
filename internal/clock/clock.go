// Package clock provides cancellable repeating tasks for the Mudra demo.
package clock

import (
	"sync"
	"time"
)

// Cancel stops a scheduled task. It is safe to call more than once.
type Cancel func()

// Scheduler runs a function repeatedly at a fixed period until cancelled.
type Scheduler interface {
	// Every calls fn once per period, starting one period from now.
	// Calls for a single task never overlap.
	Every(period time.Duration, fn func()) Cancel
}

// systemScheduler schedules tasks on real time using time.Ticker.
type systemScheduler struct{}

// System returns a Scheduler backed by the wall clock.
func System() Scheduler {
	return systemScheduler{}
}

// Every starts a goroutine that calls fn on every tick until cancelled.
func (systemScheduler) Every(period time.Duration, fn func()) Cancel {
	stopCh := make(chan struct{})
	ticker := time.NewTicker(period)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				// A tick and a stop can be ready together; stop wins.
				select {
				case <-stopCh:
					return
				default:
				}
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(stopCh) })
	}
}
