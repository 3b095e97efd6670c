package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// Key is a virtual arrow key.
type Key string

const (
	KeyLeft  Key = "left"
	KeyRight Key = "right"
)

// Keyboard sends virtual key events.
type Keyboard interface {
	Press(k Key) error
	Release(k Key) error
}

// DefaultCooldown is the minimum time between steering state changes.
const DefaultCooldown = 300 * time.Millisecond

// Steering maps Gas/Brake/None gestures onto held arrow keys.
// Gas holds Right, Brake holds Left and None releases both.
type Steering struct {
	mu       sync.Mutex
	kb       Keyboard
	clock    Clock
	cooldown time.Duration

	active     gesture.Gesture
	changedAt  time.Time
	hasChanged bool
	held       map[Key]bool
}

// NewSteering creates a Steering controller. A nil clock uses the wall clock.
func NewSteering(kb Keyboard, clock Clock, cooldown time.Duration) *Steering {
	if clock == nil {
		clock = SystemClock{}
	}
	if cooldown < 0 {
		cooldown = 0
	}
	return &Steering{
		kb:       kb,
		clock:    clock,
		cooldown: cooldown,
		held:     make(map[Key]bool),
	}
}

// Apply acts on g and reports whether key state changed. Repeating the
// active gesture is a no-op, and changes inside the cooldown window are dropped.
func (s *Steering) Apply(g gesture.Gesture) (bool, error) {
	switch g {
	case gesture.Gas, gesture.Brake, gesture.None:
	default:
		return false, fmt.Errorf("not a steering gesture: %q", g)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasChanged && g == s.active {
		return false, nil
	}
	now := s.clock.Now()
	if s.hasChanged && now.Sub(s.changedAt) < s.cooldown {
		return false, nil
	}

	var err error
	switch g {
	case gesture.Gas:
		err = s.hold(KeyRight, KeyLeft)
	case gesture.Brake:
		err = s.hold(KeyLeft, KeyRight)
	default:
		err = s.releaseAll()
	}
	if err != nil {
		return false, err
	}

	s.active = g
	s.changedAt = now
	s.hasChanged = true
	return true, nil
}

// Active returns the last applied gesture, or None before the first change.
func (s *Steering) Active() gesture.Gesture {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasChanged {
		return gesture.None
	}
	return s.active
}

// Release lets go of any held keys.
func (s *Steering) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.releaseAll()
}

func (s *Steering) hold(press, release Key) error {
	if !s.held[press] {
		if err := s.kb.Press(press); err != nil {
			return fmt.Errorf("press %s: %w", press, err)
		}
		s.held[press] = true
	}
	if s.held[release] {
		if err := s.kb.Release(release); err != nil {
			return fmt.Errorf("release %s: %w", release, err)
		}
		s.held[release] = false
	}
	return nil
}

func (s *Steering) releaseAll() error {
	for _, k := range []Key{KeyRight, KeyLeft} {
		if !s.held[k] {
			continue
		}
		if err := s.kb.Release(k); err != nil {
			return fmt.Errorf("release %s: %w", k, err)
		}
		s.held[k] = false
	}
	return nil
}

// KeyEvent is one recorded key transition.
type KeyEvent struct {
	Key     Key
	Pressed bool
}

// RecordingKeyboard is a Keyboard that records events. Useful for tests and
// for running without a keyboard plugin.
type RecordingKeyboard struct {
	mu     sync.Mutex
	events []KeyEvent
}

// Press implements Keyboard.
func (k *RecordingKeyboard) Press(key Key) error {
	k.mu.Lock()
	k.events = append(k.events, KeyEvent{Key: key, Pressed: true})
	k.mu.Unlock()
	return nil
}

// Release implements Keyboard.
func (k *RecordingKeyboard) Release(key Key) error {
	k.mu.Lock()
	k.events = append(k.events, KeyEvent{Key: key})
	k.mu.Unlock()
	return nil
}

// Events returns a copy of the recorded events.
func (k *RecordingKeyboard) Events() []KeyEvent {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]KeyEvent(nil), k.events...)
}
