package spaced_repetition

import "time"

// Mastery level bounds
const (
	MinLevel = 0
	MaxLevel = 11
)

// defaultIntervals is indexed by mastery level. Levels past the end reuse the last entry.
var defaultIntervals = []time.Duration{
	0,                   // due immediately
	4 * time.Hour,       // level 1
	8 * time.Hour,       // level 2
	24 * time.Hour,      // level 3
	48 * time.Hour,      // level 4
	7 * 24 * time.Hour,  // level 5
	14 * 24 * time.Hour, // level 6
	30 * 24 * time.Hour, // level 7
	120 * 24 * time.Hour,
}

// Ladder maps mastery levels to the time until the next review
type Ladder struct {
	// Intervals are ordered by level and must be non-decreasing
	Intervals []time.Duration
	MinLevel  int
	MaxLevel  int
}

// NewLadder returns the default interval ladder
func NewLadder() *Ladder {
	intervals := make([]time.Duration, len(defaultIntervals))
	copy(intervals, defaultIntervals)
	return &Ladder{
		Intervals: intervals,
		MinLevel:  MinLevel,
		MaxLevel:  MaxLevel,
	}
}

// ClampLevel forces level into [MinLevel, MaxLevel]
func (l *Ladder) ClampLevel(level int) int {
	if level < l.MinLevel {
		return l.MinLevel
	}
	if level > l.MaxLevel {
		return l.MaxLevel
	}
	return level
}

// IntervalFor returns the review interval for a level. Out-of-range levels are
// clamped into the table, so corrupted rows still get a sensible schedule.
func (l *Ladder) IntervalFor(level int) time.Duration {
	if len(l.Intervals) == 0 {
		return 0
	}
	if level < 0 {
		level = 0
	}
	if level >= len(l.Intervals) {
		level = len(l.Intervals) - 1
	}
	return l.Intervals[level]
}

// Levels returns every storable level in ascending order
func (l *Ladder) Levels() []int {
	levels := make([]int, 0, l.MaxLevel-l.MinLevel+1)
	for level := l.MinLevel; level <= l.MaxLevel; level++ {
		levels = append(levels, level)
	}
	return levels
}
