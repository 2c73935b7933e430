package commands

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Personal stock portfolio tracker",
	Long: `Portfolio tracker service.

Records trades, cash movements and memos per user and keeps holding
metrics and allocation weights up to date.

Examples:
  tracker serve
  tracker migrate
  tracker refresh --user user-1`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
