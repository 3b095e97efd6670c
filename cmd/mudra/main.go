// Package main provides the mudra command line.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/pkg/logger"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "mudra",
		Short:        "Hand-gesture rock-paper-scissors and steering",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (yaml or toml, default $MUDRA_CONFIG)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newRPSCmd())
	rootCmd.AddCommand(newCollectCmd())
	rootCmd.AddCommand(newTrainCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newWatchCmd())

	return rootCmd
}

// loadConfig reads configuration and applies its log level.
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	st, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return st, nil
}

func closeStore(ctx context.Context, st *store.Store) {
	if err := st.Close(); err != nil {
		logger.Get().Warn(ctx, "failed to close store", logger.Error(err))
	}
}

func openDetector(cfg *config.Config) (detector.Detector, error) {
	d, err := detector.NewMediaPipeDetector(cfg.DetectorConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to start hand detector: %w", err)
	}
	return d, nil
}

func closeDetector(ctx context.Context, d detector.Detector) {
	if err := d.Close(); err != nil {
		logger.Get().Warn(ctx, "failed to stop hand detector", logger.Error(err))
	}
}

// discoverPlugins scans the configured plugin directory.
func discoverPlugins(cfg *config.Config) (*plugin.Manager, *plugin.Executor, error) {
	m := plugin.NewManager(cfg.PluginDir)
	if err := m.Discover(); err != nil {
		return nil, nil, fmt.Errorf("failed to discover plugins: %w", err)
	}
	return m, plugin.NewExecutor(plugin.DefaultTimeout), nil
}
