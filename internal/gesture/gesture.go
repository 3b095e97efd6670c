// Package gesture maps feature vectors to discrete gesture labels.
package gesture

import (
	"fmt"
	"strings"
)

// Gesture is a discrete label assigned to a hand pose.
type Gesture string

// Rock-paper-scissors labels.
const (
	Rock     Gesture = "Rock"
	Paper    Gesture = "Paper"
	Scissors Gesture = "Scissors"
	Unknown  Gesture = "Unknown"
)

// Steering labels.
const (
	Gas   Gesture = "GAS"
	Brake Gesture = "BRAKE"
	None  Gesture = "NONE"
)

// Moves lists the playable rock-paper-scissors gestures.
var Moves = []Gesture{Rock, Paper, Scissors}

// IsMove reports whether g is Rock, Paper or Scissors.
func (g Gesture) IsMove() bool {
	return g == Rock || g == Paper || g == Scissors
}

func (g Gesture) String() string { return string(g) }

// ParseMove parses a rock-paper-scissors label case-insensitively.
func ParseMove(s string) (Gesture, error) {
	for _, m := range Moves {
		if strings.EqualFold(strings.TrimSpace(s), string(m)) {
			return m, nil
		}
	}
	return Unknown, fmt.Errorf("unknown move %q", s)
}
