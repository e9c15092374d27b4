package model

import "time"

// Repair represents a batch of article units pulled out of inventory
// for repair or inspection. Open repairs reduce effective availability
// by their revision count.
type Repair struct {
	ID             int64      `json:"id"`
	ArticleID      int64      `json:"article_id"`
	AssetTag       string     `json:"asset_tag,omitempty"`
	WorkOrder      string     `json:"work_order,omitempty"`
	Status         string     `json:"status"`
	Revision       int        `json:"revision"`
	RepairedCount  int        `json:"repaired_count"`
	DiscardedCount int        `json:"discarded_count"`
	CreatedBy      *int64     `json:"created_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	FinalizedAt    *time.Time `json:"finalized_at,omitempty"`

	// Joined fields (not always populated).
	ArticleName string `json:"article_name,omitempty"`
}

// Repair statuses.
const (
	RepairStatusEvaluation = "evaluation"
	RepairStatusFinalized  = "finalized"
)

// Handover dispositions for individual units leaving a repair batch.
const (
	DispositionRepaired  = "repaired"
	DispositionDiscarded = "discarded"
	DispositionLeftover  = "leftover"
)

// Handover tracks one physical unit sent back from a repair batch with
// its final disposition and inspection outcome.
type Handover struct {
	ID          int64     `json:"id"`
	RepairID    int64     `json:"repair_id"`
	ArticleID   int64     `json:"article_id"`
	AssetTag    string    `json:"asset_tag,omitempty"`
	Disposition string    `json:"disposition"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	// Joined fields (not always populated).
	ArticleName string `json:"article_name,omitempty"`
}
