package spaced_repetition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLadder_IntervalFor(t *testing.T) {
	l := NewLadder()

	tests := []struct {
		name  string
		level int
		want  time.Duration
	}{
		{name: "level 0 is due immediately", level: 0, want: 0},
		{name: "level 1", level: 1, want: 4 * time.Hour},
		{name: "level 3", level: 3, want: 24 * time.Hour},
		{name: "level 5", level: 5, want: 7 * 24 * time.Hour},
		{name: "last table entry", level: 8, want: 120 * 24 * time.Hour},
		{name: "past the table clamps to last entry", level: 11, want: 120 * 24 * time.Hour},
		{name: "corrupted high level", level: 500, want: 120 * 24 * time.Hour},
		{name: "negative level clamps to first entry", level: -3, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.IntervalFor(tt.level))
		})
	}
}

func TestLadder_IntervalFor_Monotonic(t *testing.T) {
	l := NewLadder()
	for a := MinLevel; a <= MaxLevel; a++ {
		for b := a + 1; b <= MaxLevel; b++ {
			assert.LessOrEqual(t, l.IntervalFor(a), l.IntervalFor(b), "levels %d < %d", a, b)
		}
	}
}

func TestLadder_IntervalFor_EmptyTable(t *testing.T) {
	l := &Ladder{MaxLevel: 3}
	assert.Equal(t, time.Duration(0), l.IntervalFor(2))
}

func TestLadder_ClampLevel(t *testing.T) {
	l := NewLadder()
	assert.Equal(t, 0, l.ClampLevel(-1))
	assert.Equal(t, 4, l.ClampLevel(4))
	assert.Equal(t, 11, l.ClampLevel(12))
}

func TestLadder_Levels(t *testing.T) {
	levels := NewLadder().Levels()
	assert.Len(t, levels, 12)
	assert.Equal(t, 0, levels[0])
	assert.Equal(t, 11, levels[11])
}

func TestNewLadder_ReturnsIndependentCopy(t *testing.T) {
	a := NewLadder()
	a.Intervals[1] = time.Minute
	assert.Equal(t, 4*time.Hour, NewLadder().IntervalFor(1))
}
