package commands

import (
	"github.com/spf13/cobra"
	"github.com/trogers1052/portfolio-tracker/internal/database"
)

var migratePath string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		if migratePath != "" {
			cfg.Migrations = migratePath
		}

		db, err := database.New(cfg.Database.ConnectionString())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Migrate(cfg.Migrations); err != nil {
			return err
		}
		log.Info().Str("path", cfg.Migrations).Msg("Migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().StringVar(&migratePath, "path", "", "migrations directory (overrides MIGRATIONS_PATH)")
}
