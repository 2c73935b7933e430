package commands

import (
	"context"

	"github.com/spf13/cobra"
)

var refreshUser string

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh quotes and weights once",
	Long: `Fetches current prices and the USD/KRW rate, then recomputes every
holding and allocation weight. Without --user all users are refreshed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Refresh.Timeout)
		defer cancel()

		a, err := newApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		if refreshUser != "" {
			if err := a.svc.RefreshQuotes(ctx, refreshUser); err != nil {
				return err
			}
			log.Info().Str("user_id", refreshUser).Msg("Portfolio refreshed")
			return nil
		}
		return a.svc.RefreshAll(ctx)
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
	refreshCmd.Flags().StringVar(&refreshUser, "user", "", "refresh a single user")
}
