// Package review combines the scheduling rules with the stores behind them.
package review

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/example/lingua/internal/config"
	"github.com/example/lingua/internal/database"
	"github.com/example/lingua/internal/spaced_repetition"
	"github.com/example/lingua/pkg/models"
)

// ErrItemNotFound is returned when an operation names an item that does not exist
var ErrItemNotFound = errors.New("item not found")

const (
	maxForecastDays = 30
	maxActivityDays = 365
)

// StateStore persists review states
type StateStore interface {
	BatchUpdate(ctx context.Context, userID int64, upIDs, downIDs []int64, now time.Time) (database.BatchResult, error)
	ForceSet(ctx context.Context, userID, itemID int64, level int, interval time.Duration, now time.Time) (*models.ReviewState, error)
	QueryDue(ctx context.Context, userID int64, now time.Time) ([]models.ReviewState, error)
	QueryByIDs(ctx context.Context, userID int64, itemIDs []int64) ([]models.ReviewState, error)
	QueryScheduledBetween(ctx context.Context, userID int64, from, to time.Time) ([]models.ReviewState, error)
	Reset(ctx context.Context, userID int64, kind models.ItemKind) (int64, error)
}

// ItemStore reads learnable items
type ItemStore interface {
	ListNew(ctx context.Context, userID int64, kind models.ItemKind) ([]models.LearnableItem, error)
	ListWithState(ctx context.Context, userID int64, kind models.ItemKind) ([]models.ItemWithState, error)
}

// EventStore reads the review log
type EventStore interface {
	ListSince(ctx context.Context, userID int64, since time.Time) ([]models.ReviewEvent, error)
}

// SubmitResult describes the outcome of one review session
type SubmitResult struct {
	Up     int64                `json:"up"`
	Down   int64                `json:"down"`
	States []models.ReviewState `json:"states"`
}

// Forecast holds upcoming review counts. Hourly is only filled on request.
type Forecast struct {
	Daily  []spaced_repetition.DailyBucket
	Hourly []spaced_repetition.HourlyBucket
}

// Activity holds per-day review counts, oldest day first
type Activity struct {
	Days   []spaced_repetition.DayActivity
	Streak int
}

// Summary holds the dashboard counters. Learned counts items above the lowest
// level, so an item seeded by a failed first review is not learned yet.
type Summary struct {
	Total    int `json:"total"`
	Learned  int `json:"learned"`
	Due      int `json:"due"`
	Unlocked int `json:"unlocked"`
	Streak   int `json:"streak"`
}

// Service implements review sessions and progress reporting. A user ID of 0
// means no user: reads return empty results and writes do nothing.
type Service struct {
	states StateStore
	items  ItemStore
	events EventStore
	ladder *spaced_repetition.Ladder
	cfg    config.SRSConfig
	logger *logrus.Logger
	clock  func() time.Time
}

// NewService creates a new review service
func NewService(states StateStore, items ItemStore, events EventStore, ladder *spaced_repetition.Ladder, cfg config.SRSConfig, logger *logrus.Logger) *Service {
	return &Service{
		states: states,
		items:  items,
		events: events,
		ladder: ladder,
		cfg:    cfg,
		logger: logger,
		clock:  time.Now,
	}
}

func (s *Service) now() time.Time {
	return s.clock().UTC()
}

// Submit records a finished review session. Duplicate ids are collapsed and an
// id listed in both sets counts as a failed review.
func (s *Service) Submit(ctx context.Context, userID int64, upIDs, downIDs []int64) (SubmitResult, error) {
	result := SubmitResult{States: []models.ReviewState{}}
	down := validIDs(downIDs)
	up := lo.Without(validIDs(upIDs), down...)
	if userID == 0 || len(up)+len(down) == 0 {
		return result, nil
	}

	moved, err := s.states.BatchUpdate(ctx, userID, up, down, s.now())
	if err != nil {
		return result, err
	}
	result.Up, result.Down = moved.Up, moved.Down

	states, err := s.states.QueryByIDs(ctx, userID, append(append([]int64{}, up...), down...))
	if err != nil {
		return result, err
	}
	result.States = states

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"up":      result.Up,
		"down":    result.Down,
	}).Debug("Review session recorded")
	return result, nil
}

func validIDs(ids []int64) []int64 {
	return lo.Uniq(lo.Filter(ids, func(id int64, _ int) bool { return id > 0 }))
}

// MarkLearned puts an item on the ladder at the configured level regardless of
// its current state.
func (s *Service) MarkLearned(ctx context.Context, userID, itemID int64) (*models.ReviewState, error) {
	if userID == 0 {
		return nil, nil
	}
	state, err := s.states.ForceSet(ctx, userID, itemID, s.cfg.ForceSetLevel, s.cfg.ForceSetInterval, s.now())
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, ErrItemNotFound
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"item_id": itemID,
		"level":   state.MasteryLevel,
	}).Debug("Item marked as learned")
	return state, nil
}

// Due returns the states due for review, most overdue first
func (s *Service) Due(ctx context.Context, userID int64) ([]models.ReviewState, error) {
	if userID == 0 {
		return []models.ReviewState{}, nil
	}
	now := s.now()
	states, err := s.states.QueryDue(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	return spaced_repetition.DueStates(states, now), nil
}

// NewItems returns the items the user has not started learning
func (s *Service) NewItems(ctx context.Context, userID int64, kind models.ItemKind) ([]models.LearnableItem, error) {
	if kind != "" && !kind.Valid() {
		return nil, models.ErrInvalidKind
	}
	if userID == 0 {
		return []models.LearnableItem{}, nil
	}
	return s.items.ListNew(ctx, userID, kind)
}

// Forecast counts reviews scheduled per day over the next days days, starting
// today. A non-positive days uses the configured default.
func (s *Service) Forecast(ctx context.Context, userID int64, days int, hourly bool) (Forecast, error) {
	days = clampDays(days, s.cfg.ForecastDays, maxForecastDays)
	now := s.now()

	var states []models.ReviewState
	if userID != 0 {
		from, to := spaced_repetition.ForecastWindow(now, days)
		if hourly {
			if _, hourEnd := spaced_repetition.HourlyWindow(now); hourEnd.After(to) {
				to = hourEnd
			}
		}
		var err error
		states, err = s.states.QueryScheduledBetween(ctx, userID, from, to)
		if err != nil {
			return Forecast{}, err
		}
	}

	forecast := Forecast{Daily: spaced_repetition.DailyForecast(states, now, days)}
	if hourly {
		forecast.Hourly = spaced_repetition.HourlyForecast(states, now)
	}
	return forecast, nil
}

// Activity reports reviews per day over the last days days, today included
func (s *Service) Activity(ctx context.Context, userID int64, days int) (Activity, error) {
	days = clampDays(days, s.cfg.ActivityDays, maxActivityDays)
	year, err := s.yearOfActivity(ctx, userID)
	if err != nil {
		return Activity{}, err
	}
	return Activity{
		Days:   year[len(year)-days:],
		Streak: spaced_repetition.CurrentStreak(year),
	}, nil
}

// yearOfActivity loads the longest horizon so the streak is not cut short by
// the requested one.
func (s *Service) yearOfActivity(ctx context.Context, userID int64) ([]spaced_repetition.DayActivity, error) {
	now := s.now()
	var events []models.ReviewEvent
	if userID != 0 {
		var err error
		events, err = s.events.ListSince(ctx, userID, spaced_repetition.ActivityStart(now, maxActivityDays))
		if err != nil {
			return nil, err
		}
	}
	return spaced_repetition.ActivityByDay(events, now, maxActivityDays), nil
}

// Unlocked returns the items whose level reached the unlock threshold
func (s *Service) Unlocked(ctx context.Context, userID int64) ([]models.LearnableItem, error) {
	if userID == 0 {
		return []models.LearnableItem{}, nil
	}
	items, err := s.items.ListWithState(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	return spaced_repetition.UnlockedItems(items, s.cfg.UnlockThreshold), nil
}

// Reset forgets the user's progress, optionally for one kind of item only
func (s *Service) Reset(ctx context.Context, userID int64, kind models.ItemKind) (int64, error) {
	if kind != "" && !kind.Valid() {
		return 0, models.ErrInvalidKind
	}
	if userID == 0 {
		return 0, nil
	}
	deleted, err := s.states.Reset(ctx, userID, kind)
	if err != nil {
		return 0, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"kind":    kind,
		"deleted": deleted,
	}).Info("Progress reset")
	return deleted, nil
}

// Summary returns the dashboard counters
func (s *Service) Summary(ctx context.Context, userID int64) (Summary, error) {
	if userID == 0 {
		return Summary{}, nil
	}
	now := s.now()
	items, err := s.items.ListWithState(ctx, userID, "")
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Total:    len(items),
		Unlocked: len(spaced_repetition.UnlockedItems(items, s.cfg.UnlockThreshold)),
	}
	for _, entry := range items {
		if entry.State == nil {
			continue
		}
		if entry.State.MasteryLevel > s.ladder.MinLevel {
			summary.Learned++
		}
		if spaced_repetition.IsDue(*entry.State, now) {
			summary.Due++
		}
	}

	year, err := s.yearOfActivity(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	summary.Streak = spaced_repetition.CurrentStreak(year)
	return summary, nil
}

func clampDays(days, fallback, max int) int {
	if days <= 0 {
		days = fallback
	}
	if days < 1 {
		days = 1
	}
	if days > max {
		days = max
	}
	return days
}
