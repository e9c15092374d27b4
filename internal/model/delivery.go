package model

import "time"

// Delivery phases. Each (request, article) pair carries at most one
// record per phase: the handoff when equipment leaves the warehouse
// and the receipt when it is inspected on return.
const (
	PhaseHandoff = "handoff"
	PhaseReceipt = "receipt"
)

// Checklist conditions.
const (
	ConditionGood      = "good"
	ConditionDeficient = "deficient"
)

// ChecklistItems is the fixed condition checklist filled in for both
// delivery phases. Order matters only for display.
var ChecklistItems = []string{
	"tires",
	"lights",
	"basket",
	"hydraulic_oil",
	"battery",
	"horn_alarm",
	"controls",
	"transmission_steering",
	"emergency_stops",
	"leaks",
	"structure",
}

// ChecklistAnswer is the recorded state of one checklist item. A
// deficient answer must carry a comment describing the defect.
type ChecklistAnswer struct {
	Condition string `json:"condition"`
	Comment   string `json:"comment,omitempty"`
}

// Checklist maps item keys to their answers.
type Checklist map[string]ChecklistAnswer

// DeliveryRecord is the stored sub-record of one delivery phase for
// one article on a request.
type DeliveryRecord struct {
	ID            int64     `json:"id"`
	RequestID     int64     `json:"request_id"`
	ArticleID     int64     `json:"article_id"`
	Phase         string    `json:"phase"`
	RecipientName string    `json:"recipient_name"`
	OperatorName  string    `json:"operator_name,omitempty"`
	OperatorPhone string    `json:"operator_phone,omitempty"`
	Checklist     Checklist `json:"checklist"`
	EarlyRelease  bool      `json:"early_release,omitempty"`
	CreatedBy     *int64    `json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`

	// Joined fields (not always populated).
	ArticleName string `json:"article_name,omitempty"`
}
