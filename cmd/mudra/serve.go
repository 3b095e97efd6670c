package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/features"
	"github.com/ayusman/mudra/internal/game"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/tray"
	"github.com/ayusman/mudra/pkg/logger"
	"github.com/ayusman/mudra/pkg/metrics"
)

var serveTray bool

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser games, sample API and live event feed",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().BoolVar(&serveTray, "tray", false, "show a system tray icon")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	log := logger.Named("serve")

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(ctx, st)

	var det detector.Detector
	det, err = openDetector(cfg)
	if err != nil {
		log.Warn(ctx, "hand detector unavailable; every frame will read as no hand", logger.Error(err))
		det = detector.NewMockDetector()
	}
	defer closeDetector(ctx, det)

	classifier, err := gesture.NewClassifier(cfg.ClassifierKind(), cfg.ModelPath)
	if err != nil {
		return fmt.Errorf("failed to load classifier: %w", err)
	}

	clock := game.SystemClock{}
	session := game.NewSession(game.NewRound(cfg.RoundConfig(), clock, game.RandomMoves{}), cfg.Mode())
	steering := game.NewSteering(newKeyboard(ctx, cfg, log), clock, cfg.SteeringCooldown)
	defer func() {
		if err := steering.Release(); err != nil {
			log.Warn(ctx, "failed to release steering keys", logger.Error(err))
		}
	}()

	hub := server.NewHub()
	scfg := server.Config{
		StaticDir: cfg.StaticDir,
		RPS:       gesture.NewRecognizer(det, classifier, features.ThumbOutwardLeft),
		Session:   session,
		Drive:     gesture.NewRecognizer(det, gesture.DriveClassifier{}, features.ThumbOutwardRight),
		Steering:  steering,
		Store:     st,
		Detector:  det,
		Metrics:   metrics.NewManager(),
		Hub:       hub,
	}

	if !serveTray && !cfg.Tray {
		return server.New(scfg).Run(ctx, cfg.Addr)
	}

	t := tray.New()
	scfg.Listeners = append(scfg.Listeners, t)
	srv := server.New(scfg)
	wireTray(ctx, t, srv, session, api.Publishers{hub, t}, cfg, stop)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(ctx, cfg.Addr)
		t.Quit()
	}()

	// systray owns the main goroutine until Quit.
	t.Run()
	stop()
	return <-errCh
}

// newKeyboard returns the keyboard plugin, or a recorder that only logs when
// the plugin is not installed.
func newKeyboard(ctx context.Context, cfg *config.Config, log logger.Logger) game.Keyboard {
	m, executor, err := discoverPlugins(cfg)
	if err == nil {
		var kb *plugin.Keyboard
		if kb, err = plugin.NewKeyboard(m, executor); err == nil {
			return kb
		}
	}
	log.Warn(ctx, "keyboard plugin unavailable; steering keys are recorded only",
		logger.String("plugin_dir", cfg.PluginDir), logger.Error(err))
	return &game.RecordingKeyboard{}
}

func wireTray(ctx context.Context, t *tray.Tray, srv *server.Server, session *game.Session, events api.Publisher, cfg *config.Config, quit func()) {
	log := logger.Named("tray")

	t.OnToggle(func(enabled bool) {
		if _, err := srv.SetSteering(enabled); err != nil {
			log.Warn(ctx, "failed to release steering keys", logger.Error(err))
		}
		log.Info(ctx, "steering toggled", logger.Any("enabled", enabled))
	})
	t.OnReset(func() {
		snap := session.Reset()
		events.Publish(api.Event{Game: api.GameRPS, State: snap.State.String(), Scores: &snap.Scores, At: time.Now()})
	})
	t.OnOpen(func() {
		if err := openBrowser(browserURL(cfg.Addr)); err != nil {
			log.Warn(ctx, "failed to open browser", logger.Error(err))
		}
	})
	t.OnQuit(quit)
}

func browserURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
	return cmd.Start()
}
