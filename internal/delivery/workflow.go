// Package delivery implements the two-phase delivery checklist: the
// handoff when equipment leaves the warehouse and the receipt when it
// comes back. All validation happens before any write; a failed
// validation commits nothing.
package delivery

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aguilarm/mobiliario/internal/lifecycle"
	"github.com/aguilarm/mobiliario/internal/mailer"
	"github.com/aguilarm/mobiliario/internal/model"
	"github.com/aguilarm/mobiliario/internal/store"
)

// Submission carries everything needed to record one phase for one
// article on a request. Signature images arrive already processed.
type Submission struct {
	RequestID             int64
	ArticleID             int64
	Phase                 string
	RecipientName         string
	OperatorName          string
	OperatorPhone         string
	Checklist             model.Checklist
	Signature             []byte
	SignatureMime         string
	OperatorSignature     []byte
	OperatorSignatureMime string
	EarlyRelease          bool
}

// ValidateChecklist enforces the checklist rules: every fixed item
// answered, conditions limited to good/deficient, and a free-text
// comment present for every deficient item.
func ValidateChecklist(cl model.Checklist) error {
	for _, item := range model.ChecklistItems {
		answer, ok := cl[item]
		if !ok || answer.Condition == "" {
			return fmt.Errorf("checklist item %q not answered", item)
		}
		switch answer.Condition {
		case model.ConditionGood:
		case model.ConditionDeficient:
			if answer.Comment == "" {
				return fmt.Errorf("checklist item %q is deficient and needs a comment", item)
			}
		default:
			return fmt.Errorf("checklist item %q has unknown condition %q", item, answer.Condition)
		}
	}

	for item := range cl {
		known := false
		for _, k := range model.ChecklistItems {
			if k == item {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown checklist item %q", item)
		}
	}
	return nil
}

// validate runs all pre-write checks for a submission.
func validate(sub *Submission) error {
	switch sub.Phase {
	case model.PhaseHandoff, model.PhaseReceipt:
	default:
		return fmt.Errorf("unknown phase %q", sub.Phase)
	}

	if sub.RecipientName == "" {
		return fmt.Errorf("recipient name required")
	}
	if len(sub.Signature) == 0 {
		return fmt.Errorf("signature required")
	}
	if sub.Phase == model.PhaseHandoff {
		if sub.OperatorName == "" {
			return fmt.Errorf("operator name required for handoff")
		}
		if sub.OperatorPhone == "" {
			return fmt.Errorf("operator phone required for handoff")
		}
		if len(sub.OperatorSignature) == 0 {
			return fmt.Errorf("operator signature required for handoff")
		}
	}

	return ValidateChecklist(sub.Checklist)
}

// Save validates and stores one phase sub-record, applies the optional
// early release and notifies the infrastructure pool. Existing phase
// records may only be overwritten by administrators. now is the wall
// clock, passed in so the early-release cutoff is testable.
func Save(ctx context.Context, db *sql.DB, m mailer.Mailer, sub *Submission, actor *model.User, now time.Time) (*model.DeliveryRecord, error) {
	if err := validate(sub); err != nil {
		return nil, err
	}

	req, err := store.GetRequest(ctx, db, sub.RequestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("request not found")
	}

	var item *model.LineItem
	for i := range req.Items {
		if req.Items[i].ArticleID == sub.ArticleID {
			item = &req.Items[i]
			break
		}
	}
	if item == nil {
		return nil, fmt.Errorf("article %d is not on this request", sub.ArticleID)
	}

	rec := &model.DeliveryRecord{
		RequestID:     sub.RequestID,
		ArticleID:     sub.ArticleID,
		Phase:         sub.Phase,
		RecipientName: sub.RecipientName,
		OperatorName:  sub.OperatorName,
		OperatorPhone: sub.OperatorPhone,
		Checklist:     sub.Checklist,
	}
	if actor != nil {
		rec.CreatedBy = &actor.ID
	}

	// Early release only applies to a handoff that happens strictly
	// before the reservation's scheduled end.
	earlyRelease := false
	if sub.EarlyRelease && sub.Phase == model.PhaseHandoff {
		_, end, err := req.Window()
		if err != nil {
			return nil, err
		}
		if now.Before(end) {
			earlyRelease = true
		}
	}
	rec.EarlyRelease = earlyRelease

	overwrite := actor != nil && actor.Role == model.RoleAdmin
	saved, err := store.SaveDeliveryRecord(ctx, db, rec,
		sub.Signature, sub.SignatureMime,
		sub.OperatorSignature, sub.OperatorSignatureMime, overwrite)
	if err != nil {
		return nil, err
	}

	if earlyRelease {
		if err := store.ReleaseLineItem(ctx, db, sub.RequestID, sub.ArticleID); err != nil {
			return nil, err
		}
	}

	lifecycle.NotifyDelivery(ctx, db, m, req, item.ArticleName, sub.Phase)
	return saved, nil
}
