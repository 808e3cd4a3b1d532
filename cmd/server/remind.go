package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newRemindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Scan open requests and upcoming meetings once and create reminders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := wireApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.notifications.CheckDeadlinesAndCreateReminders(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("deadline reminders: %d, meeting reminders: %d\n", summary.DeadlineReminders, summary.MeetingReminders)
			return nil
		},
	}
}

func runReminders(ctx context.Context, a *app) {
	summary, err := a.notifications.CheckDeadlinesAndCreateReminders(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Reminder run failed")
		return
	}
	log.Info().
		Int("deadline_reminders", summary.DeadlineReminders).
		Int("meeting_reminders", summary.MeetingReminders).
		Msg("Reminder run finished")
}
