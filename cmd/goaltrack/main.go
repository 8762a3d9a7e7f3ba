package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/goaltrack/goaltrack/cmd/goaltrack/cmd"
	"github.com/goaltrack/goaltrack/internal/config"
	"github.com/goaltrack/goaltrack/internal/logger"
)

func main() {
	cfg := config.LoadTools()
	logger.Init(logger.Options{Development: true})

	rootCmd := &cobra.Command{
		Use:           "goaltrack",
		Short:         "Maintenance tools for GoalTrack",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfg.DBDriver, "driver", cfg.DBDriver, "database driver (sqlite or pgx)")
	rootCmd.PersistentFlags().StringVar(&cfg.DBConnection, "db", cfg.DBConnection, "database connection string")

	rootCmd.AddCommand(cmd.MigrateCmd(cfg))
	rootCmd.AddCommand(cmd.BlogCmd(cfg))
	rootCmd.AddCommand(cmd.HabitsCmd(cfg))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
