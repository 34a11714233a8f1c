// Package session owns the lifecycle of the single camera capture stream.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AccessDeniedMessage is the user-facing message shown when the camera
// cannot be acquired.
const AccessDeniedMessage = "Unable to access camera. Please ensure you've granted camera permissions."

// Device is the platform capture capability. capture.Camera satisfies it.
type Device interface {
	// Open acquires exclusive access to the device. It blocks until the
	// platform grants or denies access.
	Open() error

	// Close releases every track of the open stream.
	Close() error
}

// Feed consumes the frame source while the session is active.
type Feed interface {
	Activate()
	Deactivate()
}

// State is the observable camera session.
type State struct {
	ID        string     `json:"id,omitempty"`
	Active    bool       `json:"active"`
	Error     string     `json:"error,omitempty"`
	StartedAt *time.Time `json:"started_at,omitempty"`
}

// Config holds the collaborators of a Controller.
type Config struct {
	Device Device

	// Feed is activated on start and deactivated on stop. Optional.
	Feed Feed

	// OnChange receives the new state after every transition. It runs while
	// the controller is locked and must not call back into it. Optional.
	OnChange func(State)

	// NewID generates session ids (default: uuid.NewString).
	NewID func() string

	// Now stamps session starts (default: time.Now).
	Now func() time.Time
}

// Controller is the single writer of the camera session state.
type Controller struct {
	device   Device
	feed     Feed
	onChange func(State)
	newID    func() string
	now      func() time.Time

	mu    sync.Mutex
	state State
}

// New creates a Controller in the Inactive state.
func New(cfg Config) *Controller {
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Controller{
		device:   cfg.Device,
		feed:     cfg.Feed,
		onChange: cfg.OnChange,
		newID:    cfg.NewID,
		now:      cfg.Now,
	}
}

// Start requests the camera. On success the session becomes active, any
// previous error is cleared and the feed is activated. On failure the
// session stays inactive with AccessDeniedMessage; there is no retry.
// A context cancelled before or during the request aborts the start
// without recording an error. Starting an active session is a no-op.
//
// Start holds the controller lock while Open blocks, so State and every
// other caller wait until the platform answers. Cancelling ctx does not
// interrupt Open itself.
func (c *Controller) Start(ctx context.Context) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Active {
		return c.state
	}

	if err := ctx.Err(); err != nil {
		log.Printf("Camera start aborted: %v", err)
		return c.state
	}

	if err := c.device.Open(); err != nil {
		log.Printf("Error accessing webcam: %v", err)
		c.state.Active = false
		c.state.Error = AccessDeniedMessage
		c.notify()
		return c.state
	}

	if err := ctx.Err(); err != nil {
		// The caller gave up while the platform was answering.
		if cerr := c.device.Close(); cerr != nil {
			log.Printf("Error closing camera: %v", cerr)
		}
		log.Printf("Camera start aborted: %v", err)
		return c.state
	}

	started := c.now()
	c.state = State{
		ID:        c.newID(),
		Active:    true,
		StartedAt: &started,
	}

	log.Printf("Camera session %s started", c.state.ID)
	c.notify()

	// Observers see the active state before the first emission can fire.
	if c.feed != nil {
		c.feed.Activate()
	}
	return c.state
}

// Stop releases the camera and deactivates the feed. Stopping an inactive
// session is a no-op. A previous error message is left in place.
func (c *Controller) Stop() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Active {
		return c.state
	}

	if c.feed != nil {
		c.feed.Deactivate()
	}

	if err := c.device.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	c.state.Active = false
	log.Printf("Camera session %s stopped", c.state.ID)
	c.notify()
	return c.state
}

// Toggle stops an active session or starts an inactive one.
func (c *Controller) Toggle(ctx context.Context) State {
	if c.State().Active {
		return c.Stop()
	}
	return c.Start(ctx)
}

// State returns a copy of the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// notify must be called with c.mu held.
func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange(c.state)
	}
}
