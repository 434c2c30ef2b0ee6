package spaced_repetition

import (
	"time"

	"github.com/example/lingua/pkg/models"
)

// DayActivity holds the review counts of one UTC day
type DayActivity struct {
	Date    time.Time
	Vocab   int
	Grammar int
}

// Total returns the number of reviews of any kind
func (d DayActivity) Total() int {
	return d.Vocab + d.Grammar
}

// ActivityStart returns the first day of a horizon ending on the day of today
func ActivityStart(today time.Time, horizonDays int) time.Time {
	return StartOfDay(today).Add(-time.Duration(horizonDays-1) * day)
}

// ActivityByDay rolls events up into exactly horizonDays entries, oldest first,
// ending with the UTC day of today. Days without events are zero.
func ActivityByDay(events []models.ReviewEvent, today time.Time, horizonDays int) []DayActivity {
	if horizonDays < 1 {
		return []DayActivity{}
	}
	from := ActivityStart(today, horizonDays)
	to := StartOfDay(today).Add(day)

	days := make([]DayActivity, horizonDays)
	for i := range days {
		days[i].Date = from.Add(time.Duration(i) * day)
	}
	for _, ev := range events {
		at := ev.OccurredAt.UTC()
		if at.Before(from) || !at.Before(to) {
			continue
		}
		d := &days[int(at.Sub(from)/day)]
		switch ev.Kind {
		case models.KindVocab:
			d.Vocab++
		case models.KindGrammar:
			d.Grammar++
		}
	}
	return days
}

// CurrentStreak counts consecutive active days ending with the last entry.
// An empty last day (today) does not break the streak.
func CurrentStreak(days []DayActivity) int {
	i := len(days) - 1
	if i >= 0 && days[i].Total() == 0 {
		i--
	}
	streak := 0
	for ; i >= 0 && days[i].Total() > 0; i-- {
		streak++
	}
	return streak
}
