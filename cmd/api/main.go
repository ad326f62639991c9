package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/medconnect-api/internal/bootstrap"
	"github.com/jwalitptl/medconnect-api/internal/config"
	"github.com/jwalitptl/medconnect-api/internal/worker"
	"github.com/jwalitptl/medconnect-api/pkg/logger"
	"github.com/jwalitptl/medconnect-api/pkg/metrics"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "medconnect",
		Short:         "Healthcare appointment API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ./config.yaml)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(cleanupCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(configPath)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create indexes (mongo) or apply the schema (postgres)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load(configPath)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			repos, err := bootstrap.OpenRepositories(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer repos.Close(context.Background())

			if err := repos.Migrate(ctx); err != nil {
				return err
			}
			log.Info("Migration complete", "driver", cfg.Database.Driver)
			return nil
		},
	}
}

func cleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Run the cleanup jobs once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load(configPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			repos, err := bootstrap.OpenRepositories(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer repos.Close(context.Background())

			jobs, err := bootstrap.CleanupJobs(cfg.Jobs, repos, log, metrics.NewNop())
			if err != nil {
				return err
			}
			return worker.RunOnce(ctx, bootstrap.Jobs(jobs)...)
		},
	}
}

func load(path string) (*config.Config, *logger.Logger, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.Setup(cfg.Log.Level, cfg.Log.Format), nil
}
