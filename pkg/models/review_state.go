package models

import "time"

// ReviewState tracks a user's mastery of a single item
type ReviewState struct {
	UserID         int64      `json:"user_id" db:"user_id"`
	ItemID         int64      `json:"item_id" db:"item_id"`
	MasteryLevel   int        `json:"mastery_level" db:"mastery_level"`
	FirstLearnedAt *time.Time `json:"first_learned_at" db:"first_learned_at"` // set once, never overwritten
	LastReviewedAt *time.Time `json:"last_reviewed_at" db:"last_reviewed_at"`
	NextReviewAt   *time.Time `json:"next_review_at" db:"next_review_at"`
}

// ItemWithState joins an item with the user's state for it. State is nil when
// the user never reviewed the item.
type ItemWithState struct {
	Item  LearnableItem `json:"item"`
	State *ReviewState  `json:"state,omitempty"`
}
