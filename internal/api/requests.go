package api

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/aguilarm/mobiliario/internal/lifecycle"
	"github.com/aguilarm/mobiliario/internal/mailer"
	"github.com/aguilarm/mobiliario/internal/model"
	"github.com/aguilarm/mobiliario/internal/store"
)

// RequestsHandler handles reservation request endpoints.
type RequestsHandler struct {
	DB     *sql.DB
	Mailer mailer.Mailer
}

type lineItemPayload struct {
	ArticleID    int64  `json:"article_id"`
	Quantity     int    `json:"quantity"`
	Observations string `json:"observations,omitempty"`
}

type requestPayload struct {
	EventName       string            `json:"event_name"`
	StartDate       string            `json:"start_date"`
	StartTime       string            `json:"start_time,omitempty"`
	EndDate         string            `json:"end_date"`
	EndTime         string            `json:"end_time,omitempty"`
	DeliveryContact string            `json:"delivery_contact,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	Items           []lineItemPayload `json:"items"`
}

type decisionPayload struct {
	Comment string `json:"comment,omitempty"`
}

// toModel converts the payload into a request owned by requesterID.
func (p *requestPayload) toModel(requesterID int64) *model.Request {
	req := &model.Request{
		EventName:       p.EventName,
		RequesterID:     requesterID,
		StartDate:       p.StartDate,
		StartTime:       p.StartTime,
		EndDate:         p.EndDate,
		EndTime:         p.EndTime,
		DeliveryContact: p.DeliveryContact,
		Notes:           p.Notes,
	}
	for _, it := range p.Items {
		req.Items = append(req.Items, model.LineItem{
			ArticleID:    it.ArticleID,
			Quantity:     it.Quantity,
			Observations: it.Observations,
		})
	}
	return req
}

// validate checks the payload's required fields and window.
func (p *requestPayload) validate() string {
	if p.EventName == "" {
		return "event name required"
	}
	if p.StartDate == "" || p.EndDate == "" {
		return "start and end date required"
	}
	if _, _, err := model.WindowBounds(p.StartDate, p.StartTime, p.EndDate, p.EndTime); err != nil {
		return err.Error()
	}
	return ""
}

// List handles GET /api/requests. Staff see every request, regular
// users only their own. An optional status query parameter filters.
func (h *RequestsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var requesterID int64
	if !model.IsStaff(claims.Role) {
		requesterID = claims.UserID
	}

	requests, err := store.ListRequests(r.Context(), h.DB, r.URL.Query().Get("status"), requesterID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list requests")
		return
	}
	if requests == nil {
		requests = []model.Request{}
	}
	jsonResponse(w, http.StatusOK, requests)
}

// Check handles POST /api/requests/check: the availability preflight
// run before a request is submitted. A shortfall is a normal negative
// result, not an error.
func (h *RequestsHandler) Check(w http.ResponseWriter, r *http.Request) {
	var payload requestPayload
	if err := decodeJSON(r, &payload); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := payload.validate(); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	claims := GetClaims(r.Context())
	result, err := store.CheckAvailability(r.Context(), h.DB, payload.toModel(claims.UserID))
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, result)
}

// Create handles POST /api/requests. The availability check runs
// again server-side; an unavailable window is rejected with the
// structured shortfall.
func (h *RequestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload requestPayload
	if err := decodeJSON(r, &payload); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := payload.validate(); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	claims := GetClaims(r.Context())
	candidate := payload.toModel(claims.UserID)

	result, err := store.CheckAvailability(r.Context(), h.DB, candidate)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !result.Available {
		jsonResponse(w, http.StatusConflict, result)
		return
	}

	req, err := store.CreateRequest(r.Context(), h.DB, candidate)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create request")
		return
	}

	lifecycle.NotifyCreated(r.Context(), h.DB, h.Mailer, req)
	jsonResponse(w, http.StatusCreated, req)
}

// Get handles GET /api/requests/{id}.
func (h *RequestsHandler) Get(w http.ResponseWriter, r *http.Request) {
	req, ok := h.load(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, req)
}

// Update handles PUT /api/requests/{id}. Only pending requests may be
// edited, by their requester or staff, and the edit re-runs the
// availability check excluding the request itself.
func (h *RequestsHandler) Update(w http.ResponseWriter, r *http.Request) {
	req, ok := h.load(w, r)
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	actor := &model.User{ID: claims.UserID, Role: claims.Role}
	if !lifecycle.CanEdit(actor, req) {
		jsonError(w, http.StatusForbidden, "request cannot be edited")
		return
	}

	var payload requestPayload
	if err := decodeJSON(r, &payload); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := payload.validate(); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	candidate := payload.toModel(req.RequesterID)
	candidate.ID = req.ID // excluded from its own conflict set

	result, err := store.CheckAvailability(r.Context(), h.DB, candidate)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !result.Available {
		jsonResponse(w, http.StatusConflict, result)
		return
	}

	updated, err := store.UpdateRequest(r.Context(), h.DB, candidate)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update request")
		return
	}
	jsonResponse(w, http.StatusOK, updated)
}

// Approve handles POST /api/requests/{id}/approve.
func (h *RequestsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, lifecycle.Approve)
}

// Reject handles POST /api/requests/{id}/reject.
func (h *RequestsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, lifecycle.Reject)
}

// Delete handles DELETE /api/requests/{id}.
func (h *RequestsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	claims := GetClaims(r.Context())
	actor := &model.User{ID: claims.UserID, Role: claims.Role}

	switch err := lifecycle.Delete(r.Context(), h.DB, id, actor); {
	case errors.Is(err, lifecycle.ErrNotFound):
		jsonError(w, http.StatusNotFound, "request not found")
	case errors.Is(err, lifecycle.ErrNotAllowed):
		jsonError(w, http.StatusForbidden, "insufficient permissions")
	case err != nil:
		jsonError(w, http.StatusInternalServerError, "failed to delete request")
	default:
		jsonResponse(w, http.StatusOK, map[string]string{"message": "request deleted"})
	}
}

// Reminders handles GET /api/requests/{id}/reminders: the sent
// markers recorded by the reminder job.
func (h *RequestsHandler) Reminders(w http.ResponseWriter, r *http.Request) {
	req, ok := h.load(w, r)
	if !ok {
		return
	}

	marks, err := store.ListReminderMarks(r.Context(), h.DB, req.ID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list reminders")
		return
	}
	if marks == nil {
		marks = []model.ReminderMark{}
	}
	jsonResponse(w, http.StatusOK, marks)
}

// load fetches the request from the path id and enforces that regular
// users only see their own requests. On failure it has already
// written the error response.
func (h *RequestsHandler) load(w http.ResponseWriter, r *http.Request) (*model.Request, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request id")
		return nil, false
	}

	req, err := store.GetRequest(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get request")
		return nil, false
	}
	if req == nil {
		jsonError(w, http.StatusNotFound, "request not found")
		return nil, false
	}

	claims := GetClaims(r.Context())
	if !model.IsStaff(claims.Role) && req.RequesterID != claims.UserID {
		jsonError(w, http.StatusForbidden, "insufficient permissions")
		return nil, false
	}
	return req, true
}

type decisionFunc func(ctx context.Context, db *sql.DB, m mailer.Mailer, requestID int64, actor *model.User, comment string) (*model.Request, error)

// decide runs an approve/reject transition from a handler.
func (h *RequestsHandler) decide(w http.ResponseWriter, r *http.Request, fn decisionFunc) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	var payload decisionPayload
	if err := decodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	actor := &model.User{ID: claims.UserID, Role: claims.Role}

	req, err := fn(r.Context(), h.DB, h.Mailer, id, actor, payload.Comment)
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		jsonError(w, http.StatusNotFound, "request not found")
	case errors.Is(err, lifecycle.ErrNotAllowed):
		jsonError(w, http.StatusForbidden, "transition not allowed")
	case err != nil:
		jsonError(w, http.StatusInternalServerError, "failed to update request")
	default:
		jsonResponse(w, http.StatusOK, req)
	}
}
