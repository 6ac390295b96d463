package main

import (
	"fmt"

	"cinenacional-backend/internal/config"
	"cinenacional-backend/internal/infrastructure/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Apply the SQL migrations embedded in the binary, in version order.

Each migration runs in its own transaction and is recorded in
schema_migrations, so running migrate twice is a no-op.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}
	db := database.NewPostgresDB(dbConfig)
	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	applied, err := database.Migrate(ctx, db.Pool)
	if asJSON {
		if jerr := printJSON(cmd, map[string]any{"applied": applied}); jerr != nil {
			return jerr
		}
		return err
	}

	out := cmd.OutOrStdout()
	for _, v := range applied {
		fmt.Fprintf(out, "applied %s\n", v)
	}
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Fprintln(out, "schema is up to date")
	}
	return nil
}
