package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/game"
	"github.com/ayusman/mudra/pkg/logger"
	"gocv.io/x/gocv"
)

// Run opens the camera and plays until ESC is pressed, ctx is cancelled or
// the camera stops delivering frames.
//
// Each frame is mirrored so the window behaves like a mirror. Every
// ProcessEvery-th frame is recognized and fed to the session, except while
// a finished round is held on screen.
func (a *App) Run(ctx context.Context) error {
	if err := a.config.Camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer func() {
		if err := a.config.Camera.Close(); err != nil {
			a.log.Warn(ctx, "failed to close camera", logger.Error(err))
		}
	}()

	a.log.Info(ctx, "game started",
		logger.String("mode", string(a.config.Session.Mode())),
		logger.Int("process_every", a.config.ProcessEvery))

	for {
		select {
		case <-ctx.Done():
			a.log.Info(ctx, "game stopped", logger.String("reason", "context done"))
			return nil
		default:
		}

		frame, err := a.config.Camera.ReadFrame()
		if errors.Is(err, capture.ErrNoFrame) {
			a.log.Warn(ctx, "camera stopped delivering frames")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read frame: %w", err)
		}

		quit := a.step(ctx, frame)
		frame.Close()
		if quit {
			a.log.Info(ctx, "game stopped", logger.String("reason", "escape"))
			return nil
		}
	}
}

// step handles one camera frame and reports whether the player quit.
func (a *App) step(ctx context.Context, frame *gocv.Mat) bool {
	capture.Mirror(frame)
	a.frames++

	now := a.config.Clock.Now()
	if !now.Before(a.holdUntil) && a.frames%a.config.ProcessEvery == 0 {
		a.process(ctx, frame, now)
	}

	Draw(frame, a.view)

	switch a.config.Display.Show(frame) & 0xFF {
	case KeyEsc:
		return true
	case KeyReset, 'R':
		a.view = View{Snapshot: a.config.Session.Reset()}
		a.holdUntil = time.Time{}
		a.log.Info(ctx, "scores reset")
	}
	return false
}

func (a *App) process(ctx context.Context, frame *gocv.Mat, now time.Time) {
	start := time.Now()
	rec, err := a.config.Recognizer.Recognize(frame)
	if err != nil {
		a.log.Warn(ctx, "recognition failed", logger.Error(err))
	}
	a.config.Metrics.ObserveFrame("rps", rec.Gesture.String(), time.Since(start))

	snap := a.config.Session.Observe(rec.Gesture)
	a.view = View{Snapshot: snap, Hand: rec.Hand}

	if snap.Resolution != nil {
		a.finish(ctx, snap.Resolution, now)
	}
}

func (a *App) finish(ctx context.Context, res *game.Resolution, now time.Time) {
	a.config.Metrics.RecordRound(res.Outcome.String())
	a.log.Info(ctx, "round resolved",
		logger.String("player", res.Player.String()),
		logger.String("ai", res.AI.String()),
		logger.String("outcome", res.Outcome.String()))

	if a.config.Sound != nil {
		if err := a.config.Sound.Play(ctx, res.Outcome); err != nil {
			a.log.Warn(ctx, "failed to play result sound", logger.Error(err))
		}
	}
	a.holdUntil = now.Add(a.config.ResultHold)
}
