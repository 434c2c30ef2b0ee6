package spaced_repetition

import (
	"sort"
	"time"

	"github.com/example/lingua/pkg/models"
)

// DefaultForecastDays is the daily forecast horizon used when none is given
const DefaultForecastDays = 7

const day = 24 * time.Hour

// DailyBucket counts reviews falling on one UTC calendar day
type DailyBucket struct {
	Date    time.Time
	Reviews int
}

// HourlyBucket counts reviews falling in one UTC hour of day
type HourlyBucket struct {
	Hour    int
	Reviews int
}

// StartOfDay truncates t to midnight UTC
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsDue reports whether a scheduled state is due at now. Unscheduled states are never due.
func IsDue(state models.ReviewState, now time.Time) bool {
	return state.NextReviewAt != nil && !state.NextReviewAt.After(now)
}

// DueStates returns the states due at now, most overdue first
func DueStates(states []models.ReviewState, now time.Time) []models.ReviewState {
	due := make([]models.ReviewState, 0, len(states))
	for _, s := range states {
		if IsDue(s, now) {
			due = append(due, s)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		if due[i].NextReviewAt.Equal(*due[j].NextReviewAt) {
			return due[i].ItemID < due[j].ItemID
		}
		return due[i].NextReviewAt.Before(*due[j].NextReviewAt)
	})
	return due
}

// ForecastWindow returns the half-open range [from, to) covered by DailyForecast
func ForecastWindow(now time.Time, days int) (time.Time, time.Time) {
	from := StartOfDay(now)
	return from, from.Add(time.Duration(days) * day)
}

// DailyForecast buckets scheduled states into days UTC calendar days starting
// with the day of now. Every day is present, including empty ones.
func DailyForecast(states []models.ReviewState, now time.Time, days int) []DailyBucket {
	if days < 1 {
		return []DailyBucket{}
	}
	from, to := ForecastWindow(now, days)
	buckets := make([]DailyBucket, days)
	for i := range buckets {
		buckets[i].Date = from.Add(time.Duration(i) * day)
	}
	for _, s := range states {
		if !inWindow(s.NextReviewAt, from, to) {
			continue
		}
		buckets[int(s.NextReviewAt.Sub(from)/day)].Reviews++
	}
	return buckets
}

// HourlyWindow returns the 24 hour range [from, to) covered by HourlyForecast
func HourlyWindow(now time.Time) (time.Time, time.Time) {
	from := now.UTC().Truncate(time.Hour)
	return from, from.Add(day)
}

// HourlyForecast buckets the states scheduled in the next 24 hours by UTC
// hour of day. All 24 hours are returned in order.
func HourlyForecast(states []models.ReviewState, now time.Time) []HourlyBucket {
	from, to := HourlyWindow(now)
	buckets := make([]HourlyBucket, 24)
	for i := range buckets {
		buckets[i].Hour = i
	}
	for _, s := range states {
		if !inWindow(s.NextReviewAt, from, to) {
			continue
		}
		buckets[s.NextReviewAt.UTC().Hour()].Reviews++
	}
	return buckets
}

func inWindow(t *time.Time, from, to time.Time) bool {
	return t != nil && !t.Before(from) && t.Before(to)
}
