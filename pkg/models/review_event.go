package models

import "time"

// Direction is the outcome of a single review
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Step returns the level delta applied by the direction. Unknown directions do
// not move the level.
func (d Direction) Step() int {
	switch d {
	case DirectionUp:
		return 1
	case DirectionDown:
		return -1
	default:
		return 0
	}
}

// ReviewEvent is one logged review, the raw material for activity statistics
type ReviewEvent struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	ItemID     int64     `json:"item_id" db:"item_id"`
	Kind       ItemKind  `json:"kind" db:"kind"`
	Outcome    Direction `json:"outcome" db:"outcome"`
	OccurredAt time.Time `json:"occurred_at" db:"occurred_at"`
}
