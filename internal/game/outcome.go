// Package game holds the I/O-free game logic driven by classified gestures:
// the rock-paper-scissors round state machine and the steering controller.
package game

import (
	"fmt"

	"github.com/ayusman/mudra/internal/gesture"
)

// Outcome is the result of one resolved round.
type Outcome int

const (
	Tie Outcome = iota
	PlayerWins
	AIWins
)

func (o Outcome) String() string {
	switch o {
	case Tie:
		return "tie"
	case PlayerWins:
		return "player"
	case AIWins:
		return "ai"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Message is the line shown to the player.
func (o Outcome) Message() string {
	switch o {
	case PlayerWins:
		return "You win!"
	case AIWins:
		return "AI wins!"
	default:
		return "It's a tie!"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

var beats = map[gesture.Gesture]gesture.Gesture{
	gesture.Rock:     gesture.Scissors,
	gesture.Scissors: gesture.Paper,
	gesture.Paper:    gesture.Rock,
}

// Decide applies rock-paper-scissors precedence. Both arguments must be moves.
func Decide(player, ai gesture.Gesture) Outcome {
	switch {
	case player == ai:
		return Tie
	case beats[player] == ai:
		return PlayerWins
	default:
		return AIWins
	}
}

// ScoreBoard counts resolved rounds for one session.
type ScoreBoard struct {
	Player int `json:"player"`
	AI     int `json:"ai"`
	Ties   int `json:"ties"`
}

// Record increments exactly one counter for o.
func (s *ScoreBoard) Record(o Outcome) {
	switch o {
	case PlayerWins:
		s.Player++
	case AIWins:
		s.AI++
	default:
		s.Ties++
	}
}

// Total returns the number of rounds recorded.
func (s ScoreBoard) Total() int {
	return s.Player + s.AI + s.Ties
}
