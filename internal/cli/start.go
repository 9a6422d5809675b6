package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/integritywatch/internal/supervisor"
)

var (
	startConfigPath string
	startDaemon     bool
)

func init() {
	startCmd.Flags().StringVar(&startConfigPath, "config", "config.yaml", "path to config.yaml")
	startCmd.Flags().BoolVar(&startDaemon, "daemon", false, "run the reconciliation loop indefinitely, hot-reloading on config change")
	rootCmd.AddCommand(startCmd)
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the watcher engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := supervisor.New(startConfigPath, nil)
		if err := s.Start(); err != nil {
			return fmt.Errorf("start: %w", err)
		}

		if !startDaemon {
			return nil
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		s.Run(ctx)
		return nil
	},
}
