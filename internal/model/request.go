package model

import (
	"fmt"
	"time"
)

// Request represents a furniture/equipment reservation request for an
// event, holding quantities of articles for a date/time window.
type Request struct {
	ID              int64      `json:"id"`
	Reference       string     `json:"reference"`
	EventName       string     `json:"event_name"`
	RequesterID     int64      `json:"requester_id"`
	StartDate       string     `json:"start_date"`
	StartTime       string     `json:"start_time,omitempty"`
	EndDate         string     `json:"end_date"`
	EndTime         string     `json:"end_time,omitempty"`
	DeliveryContact string     `json:"delivery_contact,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	Status          string     `json:"status"`
	DecidedBy       *int64     `json:"decided_by,omitempty"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
	DecisionComment string     `json:"decision_comment,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`

	// Joined fields (not always populated).
	RequesterName  string     `json:"requester_name,omitempty"`
	RequesterEmail string     `json:"requester_email,omitempty"`
	Items          []LineItem `json:"items,omitempty"`
}

// LineItem is one article+quantity entry within a request. Released
// items no longer count toward overlap-based availability holds.
type LineItem struct {
	ID           int64  `json:"id"`
	RequestID    int64  `json:"request_id"`
	ArticleID    int64  `json:"article_id"`
	Quantity     int    `json:"quantity"`
	Observations string `json:"observations,omitempty"`
	Released     bool   `json:"released"`

	// Joined fields (not always populated).
	ArticleName string `json:"article_name,omitempty"`
	CategoryID  int64  `json:"category_id,omitempty"`
}

// Request statuses. An absent/empty status means pending.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// nonBlocking lists normalized statuses whose requests never hold
// inventory against other requests.
var nonBlocking = map[string]bool{
	"rejected":  true,
	"rechazada": true,
	"cancelled": true,
	"canceled":  true,
	"cancelada": true,
	"deleted":   true,
	"eliminada": true,
	"completed": true,
	"terminada": true,
}

// Blocks reports whether a request with the given status holds
// inventory. Pending (including empty) and approved requests block.
func Blocks(status string) bool {
	return !nonBlocking[NormalizeName(status)]
}

// Window layout constants for request date and time fields.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// WindowBounds resolves a date/time window to concrete instants in the
// local calendar. A missing start time defaults to the start of day, a
// missing end time to 23:59 (end of day for overlap purposes).
func WindowBounds(startDate, startTime, endDate, endTime string) (time.Time, time.Time, error) {
	if startTime == "" {
		startTime = "00:00"
	}
	if endTime == "" {
		endTime = "23:59"
	}
	start, err := time.ParseInLocation(DateLayout+" "+TimeLayout, startDate+" "+startTime, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing window start: %w", err)
	}
	end, err := time.ParseInLocation(DateLayout+" "+TimeLayout, endDate+" "+endTime, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing window end: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("window ends before it starts")
	}
	return start, end, nil
}

// Window returns the request's reservation window bounds.
func (r *Request) Window() (time.Time, time.Time, error) {
	return WindowBounds(r.StartDate, r.StartTime, r.EndDate, r.EndTime)
}

// Overlaps reports whether two closed windows intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}
