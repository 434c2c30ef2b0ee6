package spaced_repetition

import (
	"time"

	"github.com/example/lingua/pkg/models"
)

// ApplyOutcome moves state one level in the given direction and reschedules it.
// A zero-valued state stands for an item the user never reviewed.
func (l *Ladder) ApplyOutcome(state models.ReviewState, direction models.Direction, now time.Time) models.ReviewState {
	now = now.UTC()
	next := state
	next.MasteryLevel = l.ClampLevel(state.MasteryLevel + direction.Step())
	l.touch(&next, l.IntervalFor(next.MasteryLevel), now)
	return next
}

// ForceSet pins state to level and schedules it interval from now, ignoring the
// ladder. It backs the "mark as learned" shortcut and is idempotent per level.
func (l *Ladder) ForceSet(state models.ReviewState, level int, interval time.Duration, now time.Time) models.ReviewState {
	now = now.UTC()
	next := state
	next.MasteryLevel = l.ClampLevel(level)
	l.touch(&next, interval, now)
	return next
}

func (l *Ladder) touch(state *models.ReviewState, interval time.Duration, now time.Time) {
	if state.FirstLearnedAt == nil {
		first := now
		state.FirstLearnedAt = &first
	}
	reviewed := now
	state.LastReviewedAt = &reviewed
	due := now.Add(interval)
	state.NextReviewAt = &due
}
