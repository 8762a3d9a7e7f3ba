package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goaltrack/goaltrack/internal/calendar"
	"github.com/goaltrack/goaltrack/internal/config"
	"github.com/goaltrack/goaltrack/internal/db"
	"github.com/goaltrack/goaltrack/internal/repository"
	"github.com/goaltrack/goaltrack/internal/service"
)

func HabitsCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "habits",
		Short: "Habit maintenance commands",
	}

	cmd.AddCommand(recomputeStreaksCmd(cfg))
	return cmd
}

func recomputeStreaksCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recompute-streaks",
		Short: "Refresh current and best streaks of every active habit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := calendar.New(cfg.Timezone)
			if err != nil {
				return err
			}

			database, err := db.Open(cmd.Context(), cfg.DBDriver, cfg.DBConnection)
			if err != nil {
				return err
			}
			defer database.Close()

			habits := service.NewHabitService(repository.NewStore(database), cal)
			changed, err := habits.RecomputeStreaks(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("==> %d streaks changed (today is %s in %s)\n", changed, cal.Today(), cal.Location())
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.Timezone, "timezone", cfg.Timezone, "IANA zone that defines today")
	return cmd
}
