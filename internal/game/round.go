package game

import (
	"fmt"
	"math"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// State is the phase of a rock-paper-scissors round.
type State int

const (
	Waiting State = iota
	Countdown
	Resolved
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Countdown:
		return "countdown"
	case Resolved:
		return "resolved"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Config controls round timing.
type Config struct {
	// Threshold is the number of frames that must repeat the previous move
	// before a countdown starts.
	Threshold int
	// Countdown is how long the committed move is held before resolution.
	Countdown time.Duration
}

// DefaultConfig returns the default round configuration.
func DefaultConfig() Config {
	return Config{
		Threshold: 5,
		Countdown: 3 * time.Second,
	}
}

// Resolution describes a finished round.
type Resolution struct {
	Player  gesture.Gesture `json:"player_move"`
	AI      gesture.Gesture `json:"ai_move"`
	Outcome Outcome         `json:"outcome"`
	At      time.Time       `json:"at"`
}

// Snapshot is the view of a round after one observation.
type Snapshot struct {
	Gesture    gesture.Gesture
	State      State
	Confidence int
	// Remaining is the countdown display value in whole seconds.
	Remaining  int
	PlayerMove gesture.Gesture
	Resolution *Resolution
	Scores     ScoreBoard
}

// Round is the confidence-gated round state machine. It is not safe for
// concurrent use; wrap it in a Session for that.
type Round struct {
	cfg   Config
	clock Clock
	moves MoveSource

	state      State
	last       gesture.Gesture
	confidence int
	move       gesture.Gesture
	started    time.Time
	scores     ScoreBoard
}

// NewRound creates a Round in the Waiting state. Nil collaborators fall
// back to the wall clock and uniformly random moves.
func NewRound(cfg Config, clock Clock, moves MoveSource) *Round {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultConfig().Threshold
	}
	if cfg.Countdown < 0 {
		cfg.Countdown = 0
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if moves == nil {
		moves = RandomMoves{}
	}
	return &Round{
		cfg:   cfg,
		clock: clock,
		moves: moves,
		last:  gesture.Unknown,
		move:  gesture.Unknown,
	}
}

// Observe feeds one frame's gesture into the machine. Anything that is not
// a move counts as Unknown.
func (r *Round) Observe(g gesture.Gesture) Snapshot {
	if !g.IsMove() {
		g = gesture.Unknown
	}
	now := r.clock.Now()

	if r.state == Waiting {
		if g != gesture.Unknown && g == r.last {
			r.confidence++
		} else {
			r.confidence = 0
		}
		r.last = g

		if r.confidence >= r.cfg.Threshold {
			r.state = Countdown
			r.move = g
			r.started = now
		}
	}

	if r.state == Countdown && now.Sub(r.started) >= r.cfg.Countdown {
		res := r.resolve(r.move, now)
		snap := r.snapshot(g, now)
		snap.State = Resolved
		snap.PlayerMove = res.Player
		snap.Resolution = res
		return snap
	}

	return r.snapshot(g, now)
}

// Play resolves a round immediately against g, skipping confidence gating and
// the countdown. Non-move gestures leave the scores untouched.
func (r *Round) Play(g gesture.Gesture) Snapshot {
	now := r.clock.Now()
	if !g.IsMove() {
		return r.snapshot(gesture.Unknown, now)
	}
	res := r.resolve(g, now)
	snap := r.snapshot(g, now)
	snap.State = Resolved
	snap.PlayerMove = res.Player
	snap.Resolution = res
	return snap
}

// Reset returns to Waiting with cleared scores and confidence.
func (r *Round) Reset() Snapshot {
	r.state = Waiting
	r.scores = ScoreBoard{}
	r.clearRound()
	return r.snapshot(gesture.Unknown, r.clock.Now())
}

// Snapshot reports the current state without observing a frame.
func (r *Round) Snapshot() Snapshot {
	return r.snapshot(r.last, r.clock.Now())
}

// State returns the current phase.
func (r *Round) State() State { return r.state }

// Scores returns a copy of the scoreboard.
func (r *Round) Scores() ScoreBoard { return r.scores }

func (r *Round) resolve(player gesture.Gesture, now time.Time) *Resolution {
	ai := r.moves.Move()
	outcome := Decide(player, ai)
	r.scores.Record(outcome)

	r.state = Waiting
	r.clearRound()

	return &Resolution{Player: player, AI: ai, Outcome: outcome, At: now}
}

func (r *Round) clearRound() {
	r.confidence = 0
	r.last = gesture.Unknown
	r.move = gesture.Unknown
	r.started = time.Time{}
}

func (r *Round) snapshot(g gesture.Gesture, now time.Time) Snapshot {
	snap := Snapshot{
		Gesture:    g,
		State:      r.state,
		Confidence: r.confidence,
		Scores:     r.scores,
	}
	if r.state == Countdown {
		snap.PlayerMove = r.move
		left := r.cfg.Countdown - now.Sub(r.started)
		snap.Remaining = int(math.Ceil(left.Seconds()))
	}
	return snap
}
