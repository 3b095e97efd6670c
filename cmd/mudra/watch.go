package main

import (
	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/watch"
)

var watchAddr string

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow a running server's games in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runWatchCmd,
	}
	cmd.Flags().StringVar(&watchAddr, "addr", "", "server address (default addr from config)")
	return cmd
}

func runWatchCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	addr := watchAddr
	if addr == "" {
		cfg, err := loadConfig(ctx)
		if err != nil {
			return err
		}
		addr = cfg.Addr
	}
	return watch.Run(ctx, addr)
}
