package model

import "time"

// LoadingWindow is a blackout period during which an article's entire
// stock is unavailable (pre-event setup, charging, and similar work).
type LoadingWindow struct {
	ID        int64     `json:"id"`
	ArticleID int64     `json:"article_id"`
	StartAt   time.Time `json:"start_at"`
	EndAt     time.Time `json:"end_at"`
	Notes     string    `json:"notes,omitempty"`
	CreatedBy *int64    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// Joined fields (not always populated).
	ArticleName string `json:"article_name,omitempty"`
}
