package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/JWebSmart/Nft-marketplace/config"
	"github.com/JWebSmart/Nft-marketplace/log"
	"github.com/JWebSmart/Nft-marketplace/orm"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}
	cmd.AddCommand(migrateDiffCmd())
	cmd.AddCommand(migrateApplyCmd())
	return cmd
}

func migrateDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff [name]",
		Short: "Generate a new database migration file",
		Long: `
Generate a new database migration file.

This command diffs the gorm models against the migration directory using Atlas.

You can configure database options via environment variables.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			name := "migration"
			if len(args) == 1 {
				name = args[0]
			}
			dsn := cfg.GetDBConfig().DSN
			migrationDir := fmt.Sprintf("file://%s", cfg.GetDBConfig().MigrationDir)

			// #nosec G204
			rawCmd := exec.CommandContext(cmd.Context(), "atlas", "migrate", "diff",
				name,
				"--env", "gorm",
				"--dev-url", dsn,
				"--dir", migrationDir,
			)
			rawCmd.Stdout = os.Stdout
			rawCmd.Stderr = os.Stderr

			return rawCmd.Run()
		},
	}
}

func migrateApplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			logger := log.NewLogger(cfg)

			dbCfg := *cfg.GetDBConfig()
			dbCfg.AutoMigrate = true
			if dbCfg.MigrationDir == "" {
				return fmt.Errorf("DB_MIGRATION_DIR is required")
			}

			db, err := orm.OpenDB(&dbCfg, logger)
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck

			if err := db.Migrate(cmd.Context()); err != nil {
				return err
			}
			logger.Info("migrations applied", "dir", dbCfg.MigrationDir)
			return nil
		},
	}
}
