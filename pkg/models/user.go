package models

import (
	"database/sql"
	"time"
)

// User is a learner. Authentication lives outside this service; the row only
// carries reminder preferences.
type User struct {
	ID                  int64         `json:"id" db:"id"`
	Username            string        `json:"username" db:"username"`
	TelegramChatID      sql.NullInt64 `json:"-" db:"telegram_chat_id"`
	NotificationEnabled bool          `json:"notification_enabled" db:"notification_enabled"`
	NotificationHour    int           `json:"notification_hour" db:"notification_hour"` // UTC hour of day (0-23)
	DailyLimit          int           `json:"daily_limit" db:"daily_limit"`
	CreatedAt           time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at" db:"updated_at"`
}
