package model

import "time"

// Article represents an inventory item type (quantity-based, not
// individually tracked) belonging to a category.
type Article struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	CategoryID int64      `json:"category_id"`
	Quantity   int        `json:"quantity"`
	ImageMime  string     `json:"image_mime,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`

	// Joined fields (not always populated).
	CategoryName string `json:"category_name,omitempty"`

	// UnderReview is the number of units currently held out of stock by
	// open repair records. Derived, never stored on the article row.
	UnderReview int `json:"under_review"`
}
