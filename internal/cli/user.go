package cli

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/lingua/internal/database"
	"github.com/example/lingua/pkg/models"
)

func newUserCommand(load appLoader) *cobra.Command {
	command := &cobra.Command{
		Use:   "user",
		Short: "Manage users and their reminder settings",
	}

	var (
		chatID int64
		hour   int
		limit  int
		notify bool
	)
	add := &cobra.Command{
		Use:   "add USERNAME",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			user := models.User{
				Username:            args[0],
				TelegramChatID:      sql.NullInt64{Int64: chatID, Valid: chatID != 0},
				NotificationEnabled: notify,
				NotificationHour:    hour,
				DailyLimit:          limit,
			}
			if err := database.NewUserRepository(a.db).Create(cmd.Context(), &user); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %d\n", user.ID)
			return nil
		},
	}
	add.Flags().Int64Var(&chatID, "chat-id", 0, "Telegram chat ID for reminders")
	add.Flags().IntVar(&hour, "hour", 9, "UTC hour to send reminders at")
	add.Flags().IntVar(&limit, "limit", 20, "maximum number of reviews announced per reminder")
	add.Flags().BoolVar(&notify, "notify", false, "enable reminders")

	var enabled bool
	var notifyHour int
	notifications := &cobra.Command{
		Use:   "notify USER_ID",
		Short: "Change a user's reminder settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var userID int64
			if _, err := fmt.Sscanf(args[0], "%d", &userID); err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}

			a, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := database.NewUserRepository(a.db).UpdateNotification(cmd.Context(), userID, enabled, notifyHour); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated reminders for user %d\n", userID)
			return nil
		},
	}
	notifications.Flags().BoolVar(&enabled, "enabled", true, "send reminders")
	notifications.Flags().IntVar(&notifyHour, "hour", 9, "UTC hour to send reminders at")

	command.AddCommand(add, notifications)
	return command
}
