package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-api",
		Short: "Physiotherapy practice management API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), false)
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(backupCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		stop()
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrate, _ := cmd.Flags().GetBool("migrate")
			return runServer(cmd.Context(), migrate)
		},
	}
	cmd.Flags().Bool("migrate", false, "Apply pending schema migrations before serving")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer app.db.Close()

			count, err := app.migrate(cmd.Context())
			if err != nil {
				return err
			}
			log.Info().Int("applied", count).Msg("migrations complete")
			return nil
		},
	}
}

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create a database backup and prune expired ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			filename, _ := cmd.Flags().GetString("filename")

			app, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer app.db.Close()

			file, err := app.backups.CreateBackup(cmd.Context(), filename)
			if err != nil {
				return err
			}
			log.Info().Str("file", file.Filename).Int64("size", file.Size).Msg("backup created")

			removed, err := app.backups.Cleanup(cmd.Context())
			if err != nil {
				return err
			}
			log.Info().Int("removed", removed).Msg("expired backups removed")
			return nil
		},
	}
	cmd.Flags().String("filename", "", "Backup file name (defaults to a timestamped name)")
	return cmd
}
