package game

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// Clock supplies the current time to the state machines.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock is a Clock advanced explicitly. Safe for concurrent use.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock creates a ManualClock starting at t.
func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{now: t}
}

// Now implements Clock.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// MoveSource picks the opponent's move.
type MoveSource interface {
	Move() gesture.Gesture
}

// RandomMoves draws uniformly from rock, paper and scissors.
type RandomMoves struct{}

// Move implements MoveSource.
func (RandomMoves) Move() gesture.Gesture {
	return gesture.Moves[rand.IntN(len(gesture.Moves))]
}

// ScriptedMoves replays a fixed sequence of moves, cycling when exhausted.
type ScriptedMoves struct {
	mu    sync.Mutex
	moves []gesture.Gesture
	next  int
}

// NewScriptedMoves creates a ScriptedMoves. An empty script always plays Rock.
func NewScriptedMoves(moves ...gesture.Gesture) *ScriptedMoves {
	return &ScriptedMoves{moves: moves}
}

// Move implements MoveSource.
func (s *ScriptedMoves) Move() gesture.Gesture {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.moves) == 0 {
		return gesture.Rock
	}
	m := s.moves[s.next%len(s.moves)]
	s.next++
	return m
}
