package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const starterConfig = `# integritywatch config.yaml
# Each entry under "jobs" names one independently monitored job: its
# watch paths, watcher mode, and enabled alert sinks.
jobs:
  example:
    watch_paths:
      - /etc/hosts
    watcher:
      mode: poll       # "inotify" or "poll"
      poll_interval: 5 # seconds, poll mode only
      debounce_ms: 500 # milliseconds
    alerts:
      use_syslog: true
      # webhook_url: https://example.com/hooks/integrity
      # script_path: /usr/local/bin/on-integrity-change
      # plugin_path: /usr/local/lib/integritywatch/alert-sink
      # payload_template: '{"path":"{{.path}}","old":"{{.old}}","new":"{{.new}}"}'
    baseline:
      write_through: false

# self_integrity_path: /etc/integritywatch/binary.sha256
`

var initConfigPath string

func init() {
	initCmd.Flags().StringVar(&initConfigPath, "config", "config.yaml", "path to write the starter config")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(initConfigPath); err == nil {
			return fmt.Errorf("init: %s already exists, not overwriting", initConfigPath)
		}
		if err := os.WriteFile(initConfigPath, []byte(starterConfig), 0o644); err != nil {
			return fmt.Errorf("init: write %s: %w", initConfigPath, err)
		}
		fmt.Printf("wrote %s\n", initConfigPath)
		return nil
	},
}
