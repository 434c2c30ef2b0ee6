// Package notify delivers review reminders to users.
package notify

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/example/lingua/pkg/models"
)

// ErrNoChat is returned for users that never linked a Telegram chat
var ErrNoChat = errors.New("user has no telegram chat")

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier sends reminders through a Telegram bot
type TelegramNotifier struct {
	api    sender
	logger *logrus.Logger
}

// NewTelegramNotifier connects to the Bot API with the given token
func NewTelegramNotifier(token string, logger *logrus.Logger) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}
	logger.WithField("bot", api.Self.UserName).Info("Authorized on Telegram")
	return &TelegramNotifier{api: api, logger: logger}, nil
}

// SendReminder implements scheduler.Notifier
func (n *TelegramNotifier) SendReminder(_ context.Context, user models.User, count int) error {
	if !user.TelegramChatID.Valid {
		return ErrNoChat
	}

	msg := tgbotapi.NewMessage(user.TelegramChatID.Int64, ReminderText(count))
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send reminder to user %d: %w", user.ID, err)
	}
	return nil
}

// ReminderText formats the reminder for count due items
func ReminderText(count int) string {
	noun := "items"
	if count == 1 {
		noun = "item"
	}
	return fmt.Sprintf("You have %d %s to review! Open Lingua to start your session.", count, noun)
}

// LogNotifier writes reminders to the log. It is used when no bot token is configured.
type LogNotifier struct {
	Logger *logrus.Logger
}

func (n LogNotifier) SendReminder(_ context.Context, user models.User, count int) error {
	n.Logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"count":   count,
	}).Info(ReminderText(count))
	return nil
}
