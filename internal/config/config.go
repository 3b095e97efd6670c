// Package config defines process configuration and its loading layers.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/game"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/pkg/logger"
)

// Config contains process configuration.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `koanf:"addr"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DataDir holds the sample database, trained models and plugins by default.
	DataDir   string `koanf:"data_dir"`
	DBPath    string `koanf:"db_path"`
	StaticDir string `koanf:"static_dir"`
	PluginDir string `koanf:"plugin_dir"`

	// Classifier selects the rock-paper-scissors strategy: rules or model.
	Classifier string `koanf:"classifier"`
	ModelPath  string `koanf:"model_path"`

	ConfidenceThreshold int           `koanf:"confidence_threshold"`
	Countdown           time.Duration `koanf:"countdown"`
	ResultHold          time.Duration `koanf:"result_hold"`
	SteeringCooldown    time.Duration `koanf:"steering_cooldown"`

	// RoundMode is countdown or instant.
	RoundMode string `koanf:"round_mode"`

	CameraID     int `koanf:"camera_id"`
	CameraWidth  int `koanf:"camera_width"`
	CameraHeight int `koanf:"camera_height"`
	CameraFPS    int `koanf:"camera_fps"`
	ProcessEvery int `koanf:"process_every"`

	DetectorMaxHands      int     `koanf:"detector_max_hands"`
	DetectorMinConfidence float64 `koanf:"detector_min_confidence"`
	DetectorMinTracking   float64 `koanf:"detector_min_tracking"`
	DetectorScript        string  `koanf:"detector_script"`

	// Tray shows a system tray icon while serving.
	Tray bool `koanf:"tray"`
}

// New returns a Config populated with defaults.
func New() *Config {
	dataDir := defaultDataDir()
	det := detector.DefaultConfig()
	round := game.DefaultConfig()
	cam := capture.DefaultCameraConfig()

	return &Config{
		Addr:                  ":8080",
		LogLevel:              "info",
		DataDir:               dataDir,
		DBPath:                filepath.Join(dataDir, "mudra.db"),
		StaticDir:             "web/dist",
		PluginDir:             filepath.Join(dataDir, "plugins"),
		Classifier:            string(gesture.KindRules),
		ModelPath:             filepath.Join(dataDir, "model.json"),
		ConfidenceThreshold:   round.Threshold,
		Countdown:             round.Countdown,
		ResultHold:            2 * time.Second,
		SteeringCooldown:      game.DefaultCooldown,
		RoundMode:             string(game.ModeCountdown),
		CameraID:              cam.Device,
		CameraWidth:           cam.Width,
		CameraHeight:          cam.Height,
		CameraFPS:             cam.FPS,
		ProcessEvery:          2,
		DetectorMaxHands:      det.MaxHands,
		DetectorMinConfidence: det.MinConfidence,
		DetectorMinTracking:   det.MinTrackingConf,
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mudra"
	}
	return filepath.Join(home, ".mudra")
}

// Validate checks field ranges and enumerations.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch c.ClassifierKind() {
	case gesture.KindRules:
	case gesture.KindModel:
		if c.ModelPath == "" {
			return fmt.Errorf("%w: model_path is required for the model classifier", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: classifier must be rules or model, got %q", ErrInvalidConfig, c.Classifier)
	}
	if _, err := game.ParseMode(c.RoundMode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.ConfidenceThreshold < 1 {
		return fmt.Errorf("%w: confidence_threshold must be at least 1", ErrInvalidConfig)
	}
	if c.Countdown < 0 || c.ResultHold < 0 || c.SteeringCooldown < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidConfig)
	}
	if c.ProcessEvery < 1 {
		return fmt.Errorf("%w: process_every must be at least 1", ErrInvalidConfig)
	}
	if c.CameraID < 0 {
		return fmt.Errorf("%w: camera_id must not be negative", ErrInvalidConfig)
	}
	if c.CameraWidth < 1 || c.CameraHeight < 1 || c.CameraFPS < 1 {
		return fmt.Errorf("%w: camera_width, camera_height and camera_fps must be positive", ErrInvalidConfig)
	}
	if c.DetectorMaxHands < 1 {
		return fmt.Errorf("%w: detector_max_hands must be at least 1", ErrInvalidConfig)
	}
	if !unit(c.DetectorMinConfidence) || !unit(c.DetectorMinTracking) {
		return fmt.Errorf("%w: detector confidences must be within [0,1]", ErrInvalidConfig)
	}
	return nil
}

func unit(f float64) bool { return f >= 0 && f <= 1 }

// RoundConfig returns the round timing settings.
func (c *Config) RoundConfig() game.Config {
	return game.Config{Threshold: c.ConfidenceThreshold, Countdown: c.Countdown}
}

// CameraConfig returns the webcam settings.
func (c *Config) CameraConfig() capture.CameraConfig {
	return capture.CameraConfig{Device: c.CameraID, Width: c.CameraWidth, Height: c.CameraHeight, FPS: c.CameraFPS}
}

// DetectorConfig returns the hand detector settings.
func (c *Config) DetectorConfig() detector.Config {
	cfg := detector.DefaultConfig()
	cfg.MaxHands = c.DetectorMaxHands
	cfg.MinConfidence = c.DetectorMinConfidence
	cfg.MinTrackingConf = c.DetectorMinTracking
	if c.DetectorScript != "" {
		cfg.Script = c.DetectorScript
	}
	return cfg
}

// Mode returns the parsed round mode. Call after Validate.
func (c *Config) Mode() game.Mode {
	m, _ := game.ParseMode(c.RoundMode)
	return m
}

// ClassifierKind returns the configured classifier strategy.
func (c *Config) ClassifierKind() gesture.Kind {
	return gesture.Kind(strings.ToLower(c.Classifier))
}
