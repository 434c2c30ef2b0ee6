package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/lingua/internal/database"
	"github.com/example/lingua/internal/scheduler"
	"github.com/example/lingua/internal/spaced_repetition"
)

func newRemindCommand(load appLoader) *cobra.Command {
	var userID int64

	command := &cobra.Command{
		Use:   "remind",
		Short: "Send review reminders now instead of waiting for the scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			notifier, err := newNotifier(a)
			if err != nil {
				return err
			}
			states := database.NewReviewStateRepository(a.db, spaced_repetition.NewLadder())
			sched := scheduler.New(a.cfg.Reminder, database.NewUserRepository(a.db), states, notifier, a.logger)

			out := cmd.OutOrStdout()
			if userID != 0 {
				sent, err := sched.RunManualCheck(cmd.Context(), userID)
				if err != nil {
					return err
				}
				if !sent {
					fmt.Fprintf(out, "User %d has nothing due\n", userID)
					return nil
				}
				fmt.Fprintf(out, "Reminder sent to user %d\n", userID)
				return nil
			}

			sent, err := sched.CheckAndSendReminders(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Sent %d reminder(s)\n", sent)
			return nil
		},
	}
	command.Flags().Int64Var(&userID, "user", 0, "remind only this user, ignoring notification hours")
	return command
}
