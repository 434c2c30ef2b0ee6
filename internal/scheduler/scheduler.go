// Package scheduler sends review reminders on an hourly schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/example/lingua/internal/config"
	"github.com/example/lingua/pkg/models"
)

// Notifier delivers a reminder that count items are waiting for review
type Notifier interface {
	SendReminder(ctx context.Context, user models.User, count int) error
}

// UserSource finds the users to remind
type UserSource interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetUsersForNotification(ctx context.Context, hour int) ([]models.User, error)
}

// DueCounter counts a user's due reviews
type DueCounter interface {
	CountDue(ctx context.Context, userID int64, now time.Time) (int, error)
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	cfg       config.ReminderConfig
	users     UserSource
	due       DueCounter
	notifier  Notifier
	logger    *logrus.Logger
	clock     func() time.Time
}

// New creates a new scheduler instance
func New(cfg config.ReminderConfig, users UserSource, due DueCounter, notifier Notifier, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		cfg:       cfg,
		users:     users,
		due:       due,
		notifier:  notifier,
		logger:    logger,
		clock:     time.Now,
	}
}

// Run schedules the hourly reminder check and blocks until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context) error {
	// Check at the top of every hour so it matches the users' notification hour
	_, err := s.scheduler.Cron("0 * * * *").Do(func() {
		if _, err := s.CheckAndSendReminders(ctx); err != nil {
			s.logger.WithError(err).Error("Reminder check failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminders: %w", err)
	}

	s.scheduler.StartAsync()
	s.logger.Info("Reminder scheduler started")

	<-ctx.Done()
	s.scheduler.Stop()
	s.logger.Info("Reminder scheduler stopped")
	return nil
}

// CheckAndSendReminders reminds every user whose notification hour is the
// current UTC hour and who has due reviews. It returns the number of reminders sent.
func (s *Scheduler) CheckAndSendReminders(ctx context.Context) (int, error) {
	now := s.clock().UTC()
	hour := now.Hour()

	if hour < s.cfg.StartHour || hour > s.cfg.EndHour {
		s.logger.WithFields(logrus.Fields{
			"hour":       hour,
			"start_hour": s.cfg.StartHour,
			"end_hour":   s.cfg.EndHour,
		}).Debug("Outside notification hours, skipping reminders")
		return 0, nil
	}

	users, err := s.users.GetUsersForNotification(ctx, hour)
	if err != nil {
		return 0, fmt.Errorf("failed to get users for notification: %w", err)
	}

	sent := 0
	for _, user := range users {
		ok, err := s.remind(ctx, user, now)
		if err != nil {
			s.logger.WithError(err).WithField("user_id", user.ID).Error("Failed to send reminder")
			continue
		}
		if ok {
			sent++
		}
	}
	return sent, nil
}

// RunManualCheck sends a reminder to one user right away, ignoring notification hours
func (s *Scheduler) RunManualCheck(ctx context.Context, userID int64) (bool, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, fmt.Errorf("user %d not found", userID)
	}
	return s.remind(ctx, *user, s.clock().UTC())
}

func (s *Scheduler) remind(ctx context.Context, user models.User, now time.Time) (bool, error) {
	count, err := s.due.CountDue(ctx, user.ID, now)
	if err != nil {
		return false, err
	}
	if count == 0 {
		return false, nil
	}

	// Don't announce more than the user's daily preference
	if user.DailyLimit > 0 && count > user.DailyLimit {
		count = user.DailyLimit
	}
	if err := s.notifier.SendReminder(ctx, user, count); err != nil {
		return false, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"count":   count,
	}).Info("Reminder sent")
	return true, nil
}
