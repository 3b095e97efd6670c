// Package tray provides a desktop system tray menu for the game server.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/game"
	"github.com/ayusman/mudra/internal/server/api"
)

// Tray shows the latest gesture and score and exposes server controls.
type Tray struct {
	onToggle func(enabled bool)
	onReset  func()
	onOpen   func()
	onQuit   func()

	mu          sync.RWMutex
	ready       bool
	quitPending bool
	steering    bool
	lastGesture string
	scores      game.ScoreBoard

	// Menu items stored for later updates
	menuToggle      *systray.MenuItem
	menuLastGesture *systray.MenuItem
	menuScore       *systray.MenuItem
}

// New creates a new Tray instance with steering enabled.
func New() *Tray {
	return &Tray{
		steering: true,
	}
}

// OnToggle sets the callback invoked when steering output is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnReset sets the callback invoked by the reset scores item.
func (t *Tray) OnReset(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onReset = fn
}

// OnOpen sets the callback invoked by the open game item.
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
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit closes the tray and unblocks Run. Calls made before the tray is
// ready take effect once it is.
func (t *Tray) Quit() {
	t.mu.Lock()
	if !t.ready {
		t.quitPending = true
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra hand-gesture games")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(steeringLabel(t.steering), "Toggle steering key output")
	systray.AddSeparator()

	t.menuLastGesture = systray.AddMenuItem(gestureLabel(t.lastGesture), "Last detected gesture")
	t.menuLastGesture.Disable()
	t.menuScore = systray.AddMenuItem(scoreLabel(t.scores), "Rock-paper-scissors score")
	t.menuScore.Disable()
	t.mu.Unlock()

	menuReset := systray.AddMenuItem("Reset Scores", "Start a new rock-paper-scissors session")
	menuOpen := systray.AddMenuItem("Open Games...", "Open the games in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	t.mu.Lock()
	t.ready = true
	pending := t.quitPending
	t.mu.Unlock()
	if pending {
		systray.Quit()
		return
	}

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuReset.ClickedCh:
				t.handle(func() func() { return t.onReset })
			case <-menuOpen.ClickedCh:
				t.handle(func() func() { return t.onOpen })
			case <-menuQuit.ClickedCh:
				t.handle(func() func() { return t.onQuit })
				systray.Quit()
				return
			}
		}
	}()
}

// handleToggle flips steering output and notifies the toggle callback.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.steering = !t.steering
	enabled := t.steering
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(steeringLabel(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// handle runs the callback returned by pick, read under the lock.
func (t *Tray) handle(pick func() func()) {
	t.mu.RLock()
	callback := pick()
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// Publish implements api.Publisher so the tray follows live game events.
func (t *Tray) Publish(e api.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e.Gesture != "" {
		t.lastGesture = e.Gesture
		if t.menuLastGesture != nil {
			t.menuLastGesture.SetTitle(gestureLabel(e.Gesture))
		}
	}
	if e.Scores != nil {
		t.scores = *e.Scores
		if t.menuScore != nil {
			t.menuScore.SetTitle(scoreLabel(t.scores))
		}
	}
}

// SteeringEnabled returns the current steering state.
func (t *Tray) SteeringEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.steering
}

// LastGesture returns the most recent gesture seen in an event.
func (t *Tray) LastGesture() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastGesture
}

// Scores returns the most recent scoreboard seen in an event.
func (t *Tray) Scores() game.ScoreBoard {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.scores
}

func steeringLabel(enabled bool) string {
	if enabled {
		return "● Steering On"
	}
	return "○ Steering Off"
}

func gestureLabel(name string) string {
	if name == "" {
		return "Last: none"
	}
	return "Last: " + name
}

func scoreLabel(s game.ScoreBoard) string {
	return fmt.Sprintf("You %d : %d AI (%d ties)", s.Player, s.AI, s.Ties)
}
