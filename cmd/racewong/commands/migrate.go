package commands

import (
	"github.com/spf13/cobra"

	"github.com/redgreat/racewong/internal/config"
	"github.com/redgreat/racewong/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		return db.Migrate(loadConfig().DatabaseURL, dir)
	},
}

func init() {
	migrateCmd.Flags().String("dir", config.LoadBase(8080).MigrationsDir, "migrations directory")
	rootCmd.AddCommand(migrateCmd)
}
