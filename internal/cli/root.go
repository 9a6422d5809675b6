// Package cli is the command-line entry point for the watcher engine.
// It is deliberately thin: the engine's behavior lives in
// internal/supervisor, internal/watchjob, and internal/config.
package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/integritywatch/internal/integrity"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "integritywatch",
	Short: "Filesystem integrity monitor",
	Long:  "Continuously verifies a configured set of files against a known-good cryptographic baseline and alerts on divergence.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := integrity.Verify(); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			os.Exit(78) // EX_CONFIG
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
