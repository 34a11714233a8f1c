// Package app composes the camera session and the prediction feed into the
// state the Mudra page renders.
package app

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/clock"
	"github.com/ayusman/mudra/internal/feed"
	"github.com/ayusman/mudra/internal/session"
)

// Config holds configuration options for the application.
type Config struct {
	// Camera is the capture device. Defaults to a gocv camera built from CameraConfig.
	Camera capture.Camera

	// CameraConfig is used when Camera is nil.
	CameraConfig capture.Config

	// Interval between simulated predictions (default: feed.DefaultPeriod).
	Interval time.Duration

	// Scheduler drives the prediction timer (default: clock.System()).
	Scheduler clock.Scheduler

	// Rand supplies random draws for predictions (default: math/rand/v2).
	Rand feed.Source
}

// Snapshot is everything the page needs to render.
type Snapshot struct {
	Session           session.State    `json:"session"`
	Prediction        *feed.Prediction `json:"prediction,omitempty"`
	ConfidencePercent int              `json:"confidence_percent"`
	Recent            []string         `json:"recent"`
}

// App owns the controller and simulator and fans out state changes.
type App struct {
	camera     capture.Camera
	simulator  *feed.Simulator
	controller *session.Controller

	mu      sync.RWMutex
	session session.State
	subs    map[int]func(Snapshot)
	nextSub int
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	camera := config.Camera
	if camera == nil {
		camera = capture.NewCamera(config.CameraConfig)
	}

	a := &App{
		camera: camera,
		subs:   make(map[int]func(Snapshot)),
	}

	a.simulator = feed.New(feed.Config{
		Period:    config.Interval,
		Scheduler: config.Scheduler,
		Rand:      config.Rand,
	})
	a.simulator.OnEmit(a.handleEmission)

	a.controller = session.New(session.Config{
		Device:   camera,
		Feed:     a.simulator,
		OnChange: a.handleSessionChange,
	})

	return a
}

// Start opens the camera and begins emitting predictions.
func (a *App) Start(ctx context.Context) Snapshot {
	a.controller.Start(ctx)
	return a.Snapshot()
}

// Stop releases the camera and halts predictions.
func (a *App) Stop() Snapshot {
	a.controller.Stop()
	return a.Snapshot()
}

// Toggle stops an active session or starts an inactive one.
func (a *App) Toggle(ctx context.Context) Snapshot {
	a.controller.Toggle(ctx)
	return a.Snapshot()
}

// Snapshot returns the current render state.
func (a *App) Snapshot() Snapshot {
	st := a.controller.State()
	current, ok := a.simulator.Current()
	return buildSnapshot(st, current, ok, a.simulator.Recent())
}

// Subscribe registers fn to receive a Snapshot after every state change or
// emission, in order. fn runs synchronously and must not call Start, Stop,
// Toggle or Snapshot. The returned function unsubscribes.
func (a *App) Subscribe(fn func(Snapshot)) func() {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn

	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.subs, id)
	}
}

// Close stops any active session.
func (a *App) Close() {
	a.controller.Stop()
	log.Println("Application closed")
}

// Camera returns the capture device used as the frame source.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Simulator returns the prediction feed.
func (a *App) Simulator() *feed.Simulator {
	return a.simulator
}

// Controller returns the camera session controller.
func (a *App) Controller() *session.Controller {
	return a.controller
}

// handleSessionChange runs with the controller locked.
func (a *App) handleSessionChange(st session.State) {
	a.mu.Lock()
	a.session = st
	a.mu.Unlock()

	current, ok := a.simulator.Current()
	a.publish(buildSnapshot(st, current, ok, a.simulator.Recent()))
}

// handleEmission runs with the simulator locked, so it must use the cached
// session rather than asking the controller.
func (a *App) handleEmission(e feed.Emission) {
	a.mu.RLock()
	st := a.session
	a.mu.RUnlock()

	a.publish(buildSnapshot(st, e.Prediction, true, e.Recent))
}

func (a *App) publish(snap Snapshot) {
	a.mu.RLock()
	subs := make([]func(Snapshot), 0, len(a.subs))
	for _, fn := range a.subs {
		subs = append(subs, fn)
	}
	a.mu.RUnlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func buildSnapshot(st session.State, current feed.Prediction, ok bool, recent []string) Snapshot {
	snap := Snapshot{
		Session: st,
		Recent:  recent,
	}
	if snap.Recent == nil {
		snap.Recent = []string{}
	}
	if ok {
		p := current
		snap.Prediction = &p
		snap.ConfidencePercent = p.Percent()
	}
	return snap
}
