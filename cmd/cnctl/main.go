// cnctl is the maintenance CLI: migrations, editor accounts, slug audits
// and bulk people edits.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cinenacional-backend/pkg/container"
	"cinenacional-backend/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	envFile string
	timeout time.Duration
	asJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "cnctl",
	Short: "Cine Nacional maintenance CLI",
	Long: `cnctl runs maintenance tasks against the catalogue database.

Connection settings come from the same environment variables as the API
(DB_*, REDIS_*). A .env file in the working directory is loaded when present.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil {
			if cmd.Flags().Changed("env-file") || !errors.Is(err, fs.ErrNotExist) {
				return err
			}
		}
		logger.Init(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "Operation timeout")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Print results as JSON")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(slugsCmd)
	rootCmd.AddCommand(peopleCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("cnctl failed")
		os.Exit(1)
	}
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}

// withContainer runs fn against a freshly built container and tears it down.
func withContainer(cmd *cobra.Command, fn func(ctx context.Context, c *container.Container) error) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	c, err := container.NewContainer(ctx)
	if err != nil {
		return err
	}
	defer c.Cleanup()
	return fn(ctx, c)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
