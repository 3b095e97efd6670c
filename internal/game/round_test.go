package game

import (
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/ayusman/mudra/internal/gesture"
)

func newTestRound(moves ...gesture.Gesture) (*Round, *ManualClock) {
	clock := NewManualClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	return NewRound(DefaultConfig(), clock, NewScriptedMoves(moves...)), clock
}

func feed(r *Round, g gesture.Gesture, n int) Snapshot {
	var snap Snapshot
	for i := 0; i < n; i++ {
		snap = r.Observe(g)
	}
	return snap
}

func TestRound(t *testing.T) {
	convey.Convey("Given a round in the waiting state", t, func() {
		r, clock := newTestRound(gesture.Scissors)
		convey.So(r.State(), convey.ShouldEqual, Waiting)

		convey.Convey("A stable move reaches the countdown after the threshold", func() {
			snap := r.Observe(gesture.Rock)
			convey.So(snap.Confidence, convey.ShouldEqual, 0)

			snap = feed(r, gesture.Rock, 4)
			convey.So(snap.State, convey.ShouldEqual, Waiting)
			convey.So(snap.Confidence, convey.ShouldEqual, 4)

			snap = r.Observe(gesture.Rock)
			convey.So(snap.State, convey.ShouldEqual, Countdown)
			convey.So(snap.PlayerMove, convey.ShouldEqual, gesture.Rock)
			convey.So(snap.Remaining, convey.ShouldEqual, 3)
		})

		convey.Convey("Alternating moves never reach the countdown", func() {
			for i := 0; i < 50; i++ {
				g := gesture.Rock
				if i%2 == 1 {
					g = gesture.Paper
				}
				snap := r.Observe(g)
				convey.So(snap.State, convey.ShouldEqual, Waiting)
				convey.So(snap.Confidence, convey.ShouldEqual, 0)
			}
		})

		convey.Convey("Unknown resets confidence", func() {
			feed(r, gesture.Paper, 4)
			snap := r.Observe(gesture.Unknown)
			convey.So(snap.Confidence, convey.ShouldEqual, 0)
			snap = feed(r, gesture.Paper, 4)
			convey.So(snap.State, convey.ShouldEqual, Waiting)
		})

		convey.Convey("A changed gesture reports zero confidence", func() {
			snap := feed(r, gesture.Rock, 3)
			convey.So(snap.Confidence, convey.ShouldEqual, 2)

			snap = r.Observe(gesture.Paper)
			convey.So(snap.State, convey.ShouldEqual, Waiting)
			convey.So(snap.Confidence, convey.ShouldEqual, 0)

			snap = r.Observe(gesture.Paper)
			convey.So(snap.Confidence, convey.ShouldEqual, 1)
		})

		convey.Convey("Non-move gestures count as unknown", func() {
			snap := feed(r, gesture.Gas, 10)
			convey.So(snap.State, convey.ShouldEqual, Waiting)
			convey.So(snap.Confidence, convey.ShouldEqual, 0)
			convey.So(snap.Gesture, convey.ShouldEqual, gesture.Unknown)
		})

		convey.Convey("During the countdown", func() {
			feed(r, gesture.Rock, 6)

			convey.Convey("The latched move survives a change of gesture", func() {
				clock.Advance(1200 * time.Millisecond)
				snap := r.Observe(gesture.Paper)
				convey.So(snap.State, convey.ShouldEqual, Countdown)
				convey.So(snap.PlayerMove, convey.ShouldEqual, gesture.Rock)
				convey.So(snap.Remaining, convey.ShouldEqual, 2)

				clock.Advance(2 * time.Second)
				snap = r.Observe(gesture.Unknown)
				convey.So(snap.State, convey.ShouldEqual, Resolved)
				convey.So(snap.Resolution, convey.ShouldNotBeNil)
				convey.So(snap.Resolution.Player, convey.ShouldEqual, gesture.Rock)
				convey.So(snap.Resolution.AI, convey.ShouldEqual, gesture.Scissors)
				convey.So(snap.Resolution.Outcome, convey.ShouldEqual, PlayerWins)
				convey.So(snap.Scores, convey.ShouldResemble, ScoreBoard{Player: 1})
			})

			convey.Convey("The round resolves once and returns to waiting", func() {
				clock.Advance(3 * time.Second)
				snap := r.Observe(gesture.Rock)
				convey.So(snap.State, convey.ShouldEqual, Resolved)
				convey.So(r.State(), convey.ShouldEqual, Waiting)

				snap = r.Observe(gesture.Rock)
				convey.So(snap.State, convey.ShouldEqual, Waiting)
				convey.So(snap.Resolution, convey.ShouldBeNil)
				convey.So(snap.Confidence, convey.ShouldEqual, 0)
				convey.So(snap.Scores.Total(), convey.ShouldEqual, 1)
			})

			convey.Convey("A delayed frame resolves on its next call", func() {
				clock.Advance(time.Minute)
				snap := r.Observe(gesture.Unknown)
				convey.So(snap.State, convey.ShouldEqual, Resolved)
				convey.So(snap.Scores.Total(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("Reset from any state clears everything", func() {
			feed(r, gesture.Rock, 6)
			clock.Advance(3 * time.Second)
			r.Observe(gesture.Rock)
			feed(r, gesture.Paper, 6)
			convey.So(r.State(), convey.ShouldEqual, Countdown)

			snap := r.Reset()
			convey.So(snap.State, convey.ShouldEqual, Waiting)
			convey.So(snap.Scores, convey.ShouldResemble, ScoreBoard{})
			convey.So(snap.Confidence, convey.ShouldEqual, 0)
			convey.So(r.State(), convey.ShouldEqual, Waiting)
		})
	})
}

func TestRound_Play(t *testing.T) {
	convey.Convey("Given a round played instantly", t, func() {
		r, _ := newTestRound(gesture.Paper, gesture.Rock, gesture.Scissors)

		convey.Convey("Each move resolves a round", func() {
			snap := r.Play(gesture.Rock)
			convey.So(snap.Resolution.Outcome, convey.ShouldEqual, AIWins)
			snap = r.Play(gesture.Rock)
			convey.So(snap.Resolution.Outcome, convey.ShouldEqual, Tie)
			snap = r.Play(gesture.Rock)
			convey.So(snap.Resolution.Outcome, convey.ShouldEqual, PlayerWins)
			convey.So(snap.Scores, convey.ShouldResemble, ScoreBoard{Player: 1, AI: 1, Ties: 1})
		})

		convey.Convey("Unknown leaves scores untouched", func() {
			snap := r.Play(gesture.Unknown)
			convey.So(snap.Resolution, convey.ShouldBeNil)
			convey.So(snap.Scores.Total(), convey.ShouldEqual, 0)
		})
	})
}

func TestRound_ConfigurableTiming(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	r := NewRound(Config{Threshold: 2, Countdown: 0}, clock, NewScriptedMoves(gesture.Paper))

	feed(r, gesture.Scissors, 2)
	snap := r.Observe(gesture.Scissors)
	if snap.State != Resolved {
		t.Fatalf("expected immediate resolution, got %s", snap.State)
	}
	if snap.Resolution.Outcome != PlayerWins {
		t.Errorf("outcome = %s, want player", snap.Resolution.Outcome)
	}
}

func TestSession_ConcurrentObserve(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	s := NewSession(NewRound(DefaultConfig(), clock, NewScriptedMoves(gesture.Rock)), ModeInstant)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				s.Observe(gesture.Paper)
			}
		}()
	}
	wg.Wait()

	if got := s.Snapshot().Scores; got.Player != 200 || got.Total() != 200 {
		t.Errorf("scores = %+v, want 200 player wins", got)
	}

	if got := s.Reset().Scores; got != (ScoreBoard{}) {
		t.Errorf("scores after reset = %+v", got)
	}
}

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{"": ModeCountdown, "countdown": ModeCountdown, "Instant": ModeInstant}
	for in, want := range tests {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseMode("turbo"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
