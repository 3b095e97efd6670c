package game

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ayusman/mudra/internal/gesture"
)

// Mode selects how a Session turns gestures into rounds.
type Mode string

const (
	// ModeCountdown gates rounds by confidence and a countdown.
	ModeCountdown Mode = "countdown"
	// ModeInstant resolves a round on every recognized move.
	ModeInstant Mode = "instant"
)

// ParseMode parses a round mode name. The empty string selects ModeCountdown.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeCountdown, "":
		return ModeCountdown, nil
	case ModeInstant:
		return ModeInstant, nil
	default:
		return "", fmt.Errorf("unknown round mode %q", s)
	}
}

// Session owns one Round and serializes access to it, so updates from
// concurrent requests are applied atomically in arrival order.
type Session struct {
	mu    sync.Mutex
	round *Round
	mode  Mode
}

// NewSession wraps round.
func NewSession(round *Round, mode Mode) *Session {
	if mode == "" {
		mode = ModeCountdown
	}
	return &Session{round: round, mode: mode}
}

// Observe feeds a gesture according to the session mode.
func (s *Session) Observe(g gesture.Gesture) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == ModeInstant {
		return s.round.Play(g)
	}
	return s.round.Observe(g)
}

// Reset clears the round and scores.
func (s *Session) Reset() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round.Reset()
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round.Snapshot()
}

// Mode returns the session mode.
func (s *Session) Mode() Mode { return s.mode }
