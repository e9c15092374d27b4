package lifecycle

import "github.com/aguilarm/mobiliario/internal/model"

// Policy checks replace the original's inline role-name comparisons.
// They take the acting user and the request so future rules (own
// requests, per-category restrictions) have what they need.

// CanApprove reports whether actor may approve the request. Only
// pending requests can be approved, by operational staff.
func CanApprove(actor *model.User, req *model.Request) bool {
	if actor == nil || req == nil {
		return false
	}
	return model.IsStaff(actor.Role) && req.Status == model.StatusPending
}

// CanReject reports whether actor may reject the request. Staff can
// reject pending requests; rejecting an already-approved request is a
// deliberate override path open to the same roles.
func CanReject(actor *model.User, req *model.Request) bool {
	if actor == nil || req == nil {
		return false
	}
	if !model.IsStaff(actor.Role) {
		return false
	}
	return req.Status == model.StatusPending || req.Status == model.StatusApproved
}

// CanDelete reports whether actor may remove the request entirely.
// Hard deletion is an administrative action.
func CanDelete(actor *model.User, req *model.Request) bool {
	if actor == nil || req == nil {
		return false
	}
	return actor.Role == model.RoleAdmin
}

// CanEdit reports whether actor may modify a request's contents.
// Requesters can edit their own pending requests; staff can edit any
// pending request.
func CanEdit(actor *model.User, req *model.Request) bool {
	if actor == nil || req == nil {
		return false
	}
	if req.Status != model.StatusPending {
		return false
	}
	return model.IsStaff(actor.Role) || actor.ID == req.RequesterID
}
