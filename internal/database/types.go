package database

import (
	"time"

	"github.com/example/lingua/pkg/models"
)

// BatchResult reports how many states each direction of a batch moved
type BatchResult struct {
	Up   int64
	Down int64
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// normalizeState converts timestamps read back from the driver to UTC
func normalizeState(s *models.ReviewState) {
	s.FirstLearnedAt = utcPtr(s.FirstLearnedAt)
	s.LastReviewedAt = utcPtr(s.LastReviewedAt)
	s.NextReviewAt = utcPtr(s.NextReviewAt)
}
