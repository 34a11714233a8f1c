// Package tray provides a system tray interface for the Mudra sign classifier demo.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/app"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle func()
	onOpen   func()
	onQuit   func()
	snapshot app.Snapshot
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuLast   *systray.MenuItem
}

// New creates a new Tray instance showing an inactive session.
func New() *Tray {
	return &Tray{}
}

// OnToggle sets the callback function to be called when the camera item is clicked.
func (t *Tray) OnToggle(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpen sets the callback function to be called when the browser menu item is clicked.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray and unblocks Run.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra Sign Classifier")

	t.mu.Lock()
	snap := t.snapshot
	t.menuToggle = systray.AddMenuItem(ToggleTitle(snap.Session.Active), "Start or stop the camera")
	systray.AddSeparator()

	t.menuLast = systray.AddMenuItem(LastTitle(snap), "Last predicted sign")
	t.menuLast.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open in Browser...", "Open the camera page")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.call(func() func() { return t.onToggle })
			case <-menuOpen.ClickedCh:
				t.call(func() func() { return t.onOpen })
			case <-menuQuit.ClickedCh:
				t.call(func() func() { return t.onQuit })
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// call runs the callback returned by get outside the lock.
func (t *Tray) call(get func() func()) {
	t.mu.RLock()
	callback := get()
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// Update reflects an application snapshot in the menu. It is safe to call
// before Run, and from app.Subscribe.
func (t *Tray) Update(snap app.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snapshot = snap
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(ToggleTitle(snap.Session.Active))
	}
	if t.menuLast != nil {
		t.menuLast.SetTitle(LastTitle(snap))
	}
}

// Active reports whether the last snapshot showed an active session.
func (t *Tray) Active() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshot.Session.Active
}

// ToggleTitle is the camera item label for the given session state.
func ToggleTitle(active bool) string {
	if active {
		return "Stop Camera"
	}
	return "Start Camera"
}

// LastTitle is the "Last:" line for a snapshot.
func LastTitle(snap app.Snapshot) string {
	if snap.Prediction == nil {
		return "Last: none"
	}
	return fmt.Sprintf("Last: %s (%d%%)", snap.Prediction.Label, snap.ConfidencePercent)
}
