package model

import "time"

// Notification pool kinds. Pools are lists of staff email addresses
// that receive copies of request notifications and reminders.
const (
	PoolGeneral        = "general"
	PoolInfrastructure = "infrastructure"
	PoolAreas          = "areas"
	PoolFurniture      = "furniture"
)

// ValidPool reports whether kind names a known notification pool.
func ValidPool(kind string) bool {
	switch kind {
	case PoolGeneral, PoolInfrastructure, PoolAreas, PoolFurniture:
		return true
	}
	return false
}

// PoolEntry is one recipient address in a notification pool.
type PoolEntry struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// ReminderMark records that a reminder was sent for a request+pool
// combination, with the recipient list actually used. The primary key
// on (request_id, milestone, pool) makes re-sends impossible even
// across job restarts.
type ReminderMark struct {
	RequestID  int64     `json:"request_id"`
	Milestone  string    `json:"milestone"`
	Pool       string    `json:"pool"`
	SentAt     time.Time `json:"sent_at"`
	Recipients string    `json:"recipients"`
}

// Reminder milestones.
const (
	MilestoneUpcoming = "upcoming"
)
