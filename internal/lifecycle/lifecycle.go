// Package lifecycle implements the reservation request state machine:
// pending to approved or rejected, deletion, and the notifications
// each transition dispatches.
package lifecycle

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aguilarm/mobiliario/internal/mailer"
	"github.com/aguilarm/mobiliario/internal/model"
	"github.com/aguilarm/mobiliario/internal/store"
)

// ErrNotAllowed is returned when the policy denies a transition for
// the acting user.
var ErrNotAllowed = fmt.Errorf("not allowed")

// ErrNotFound is returned when the request does not exist.
var ErrNotFound = fmt.Errorf("request not found")

// Approve transitions a pending request to approved, recording the
// decider and optional comment, then dispatches a notification. The
// notification is best-effort; the transition is committed regardless.
func Approve(ctx context.Context, db *sql.DB, m mailer.Mailer, requestID int64, actor *model.User, comment string) (*model.Request, error) {
	req, err := store.GetRequest(ctx, db, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrNotFound
	}
	if !CanApprove(actor, req) {
		return nil, ErrNotAllowed
	}

	if err := store.ApproveRequest(ctx, db, requestID, actor.ID, comment); err != nil {
		return nil, err
	}

	req, err = store.GetRequest(ctx, db, requestID)
	if err != nil {
		return nil, err
	}

	notify(ctx, db, m, req, "Request approved: "+req.EventName, "Your reservation request was approved.")
	return req, nil
}

// Reject transitions a request to rejected, releases every line item
// and dispatches a notification. Rejecting an approved request is the
// deliberate staff override path.
func Reject(ctx context.Context, db *sql.DB, m mailer.Mailer, requestID int64, actor *model.User, reason string) (*model.Request, error) {
	req, err := store.GetRequest(ctx, db, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrNotFound
	}
	if !CanReject(actor, req) {
		return nil, ErrNotAllowed
	}

	if err := store.RejectRequest(ctx, db, requestID, actor.ID, reason); err != nil {
		return nil, err
	}

	req, err = store.GetRequest(ctx, db, requestID)
	if err != nil {
		return nil, err
	}

	notify(ctx, db, m, req, "Request rejected: "+req.EventName, "Your reservation request was rejected.")
	return req, nil
}

// Delete removes a request entirely. No notification is sent.
func Delete(ctx context.Context, db *sql.DB, requestID int64, actor *model.User) error {
	req, err := store.GetRequest(ctx, db, requestID)
	if err != nil {
		return err
	}
	if req == nil {
		return ErrNotFound
	}
	if !CanDelete(actor, req) {
		return ErrNotAllowed
	}

	return store.DeleteRequest(ctx, db, requestID)
}

// NotifyCreated dispatches the submission notification for a freshly
// created request. Best-effort, like every other notification.
func NotifyCreated(ctx context.Context, db *sql.DB, m mailer.Mailer, req *model.Request) {
	notify(ctx, db, m, req, "Request submitted: "+req.EventName, "A new reservation request was submitted.")
}
