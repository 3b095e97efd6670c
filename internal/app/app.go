// Package app runs the desktop rock-paper-scissors game against a webcam.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/game"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/pkg/logger"
	"github.com/ayusman/mudra/pkg/metrics"
)

// Defaults for the desktop loop.
const (
	// DefaultProcessEvery classifies every other frame to keep the window responsive.
	DefaultProcessEvery = 2
	// DefaultResultHold is how long a round result stays on screen.
	DefaultResultHold = 2 * time.Second
	// WindowTitle names the game window.
	WindowTitle = "Rock Paper Scissors"
)

// Keys handled by the loop.
const (
	KeyEsc   = 27
	KeyReset = 'r'
)

// ResultPlayer announces a finished round, usually with a sound.
type ResultPlayer interface {
	Play(ctx context.Context, o game.Outcome) error
}

// Config holds the collaborators of the desktop game.
type Config struct {
	Camera     capture.Camera
	Recognizer *gesture.Recognizer
	Session    *game.Session
	Display    Display

	// Sound and Metrics are optional.
	Sound   ResultPlayer
	Metrics *metrics.Manager
	Clock   game.Clock

	// ProcessEvery runs recognition on every Nth frame.
	ProcessEvery int
	// ResultHold pauses recognition while a result is shown.
	ResultHold time.Duration
}

// App is the webcam game loop.
type App struct {
	config Config
	log    logger.Logger

	frames    int
	view      View
	holdUntil time.Time
}

// New validates config and fills in defaults.
func New(config Config) (*App, error) {
	switch {
	case config.Camera == nil:
		return nil, errors.New("app: camera is required")
	case config.Recognizer == nil:
		return nil, errors.New("app: recognizer is required")
	case config.Session == nil:
		return nil, errors.New("app: session is required")
	case config.Display == nil:
		return nil, errors.New("app: display is required")
	}

	if config.ProcessEvery <= 0 {
		config.ProcessEvery = DefaultProcessEvery
	}
	if config.ResultHold < 0 {
		config.ResultHold = 0
	}
	if config.Clock == nil {
		config.Clock = game.SystemClock{}
	}

	return &App{
		config: config,
		log:    logger.Named("app"),
		view:   View{Snapshot: config.Session.Snapshot()},
	}, nil
}

// Session returns the game session driven by the loop.
func (a *App) Session() *game.Session {
	return a.config.Session
}
