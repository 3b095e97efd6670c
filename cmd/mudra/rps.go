package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/features"
	"github.com/ayusman/mudra/internal/game"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/pkg/logger"
	"github.com/ayusman/mudra/pkg/metrics"
)

func newRPSCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rps",
		Short: "Play rock-paper-scissors against the webcam",
		Args:  cobra.NoArgs,
		RunE:  runRPSCmd,
	}
}

func runRPSCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	log := logger.Named("rps")

	det, err := openDetector(cfg)
	if err != nil {
		return err
	}
	defer closeDetector(ctx, det)

	classifier, err := gesture.NewClassifier(cfg.ClassifierKind(), cfg.ModelPath)
	if err != nil {
		return fmt.Errorf("failed to load classifier: %w", err)
	}

	clock := game.SystemClock{}
	window := app.NewWindow(app.WindowTitle)
	defer window.Close()

	appCfg := app.Config{
		Camera:       capture.NewWebcam(cfg.CameraConfig()),
		Recognizer:   gesture.NewRecognizer(det, classifier, features.ThumbOutwardLeft),
		Session:      game.NewSession(game.NewRound(cfg.RoundConfig(), clock, game.RandomMoves{}), cfg.Mode()),
		Display:      window,
		Metrics:      metrics.NewManager(),
		Clock:        clock,
		ProcessEvery: cfg.ProcessEvery,
		ResultHold:   cfg.ResultHold,
	}

	if m, executor, err := discoverPlugins(cfg); err != nil {
		log.Warn(ctx, "plugins unavailable; playing without sound", logger.Error(err))
	} else if sound, err := plugin.NewSound(m, executor); err != nil {
		log.Warn(ctx, "sound plugin unavailable; playing without sound", logger.Error(err))
	} else {
		appCfg.Sound = sound
	}

	a, err := app.New(appCfg)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}
