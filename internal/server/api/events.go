package api

import (
	"time"

	"github.com/ayusman/mudra/internal/game"
)

// Game names used in events and metrics.
const (
	GameRPS = "rps"
	GameHCR = "hcr"
)

// Event describes one processed frame or session change. It is pushed to
// live feed subscribers.
type Event struct {
	Game    string           `json:"game"`
	Gesture string           `json:"gesture,omitempty"`
	State   string           `json:"state,omitempty"`
	Result  string           `json:"result,omitempty"`
	AIMove  string           `json:"ai_move,omitempty"`
	Scores  *game.ScoreBoard `json:"scores,omitempty"`
	Fired   bool             `json:"fired,omitempty"`
	At      time.Time        `json:"at"`
}

// Publisher receives events from the handlers.
type Publisher interface {
	Publish(e Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}

func publisherOrNop(p Publisher) Publisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

// Publishers fans an event out to several publishers.
type Publishers []Publisher

// Publish implements Publisher.
func (ps Publishers) Publish(e Event) {
	for _, p := range ps {
		p.Publish(e)
	}
}
