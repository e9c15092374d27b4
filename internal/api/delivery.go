package api

import (
	"bytes"
	"database/sql"
	"encoding/base64"
	"net/http"
	"strconv"
	"time"

	"github.com/aguilarm/mobiliario/internal/delivery"
	"github.com/aguilarm/mobiliario/internal/imaging"
	"github.com/aguilarm/mobiliario/internal/mailer"
	"github.com/aguilarm/mobiliario/internal/model"
	"github.com/aguilarm/mobiliario/internal/store"
)

// DeliveryHandler handles the two-phase delivery checklist endpoints.
type DeliveryHandler struct {
	DB     *sql.DB
	Mailer mailer.Mailer
}

// Signatures arrive base64-encoded from the signature pad widget.
type deliveryPayload struct {
	Phase             string          `json:"phase"`
	RecipientName     string          `json:"recipient_name"`
	OperatorName      string          `json:"operator_name,omitempty"`
	OperatorPhone     string          `json:"operator_phone,omitempty"`
	Checklist         model.Checklist `json:"checklist"`
	Signature         string          `json:"signature"`
	OperatorSignature string          `json:"operator_signature,omitempty"`
	EarlyRelease      bool            `json:"early_release,omitempty"`
}

// Save handles POST /api/requests/{id}/delivery/{article}.
func (h *DeliveryHandler) Save(w http.ResponseWriter, r *http.Request) {
	requestID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request id")
		return
	}
	articleID, err := strconv.ParseInt(r.PathValue("article"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid article id")
		return
	}

	var payload deliveryPayload
	if err := decodeJSON(r, &payload); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sub := &delivery.Submission{
		RequestID:     requestID,
		ArticleID:     articleID,
		Phase:         payload.Phase,
		RecipientName: payload.RecipientName,
		OperatorName:  payload.OperatorName,
		OperatorPhone: payload.OperatorPhone,
		Checklist:     payload.Checklist,
		EarlyRelease:  payload.EarlyRelease,
	}

	if payload.Signature != "" {
		data, mime, err := decodeSignature(payload.Signature)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "signature: "+err.Error())
			return
		}
		sub.Signature, sub.SignatureMime = data, mime
	}
	if payload.OperatorSignature != "" {
		data, mime, err := decodeSignature(payload.OperatorSignature)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "operator signature: "+err.Error())
			return
		}
		sub.OperatorSignature, sub.OperatorSignatureMime = data, mime
	}

	claims := GetClaims(r.Context())
	actor := &model.User{ID: claims.UserID, Username: claims.Username, Role: claims.Role}

	rec, err := delivery.Save(r.Context(), h.DB, h.Mailer, sub, actor, time.Now())
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusCreated, rec)
}

// List handles GET /api/requests/{id}/delivery.
func (h *DeliveryHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	records, err := store.ListDeliveryRecords(r.Context(), h.DB, requestID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list delivery records")
		return
	}
	if records == nil {
		records = []model.DeliveryRecord{}
	}
	jsonResponse(w, http.StatusOK, records)
}

// GetSignature handles GET /api/requests/{id}/delivery/{article}/{phase}/signature.
// The operator query parameter selects the operator's signature.
func (h *DeliveryHandler) GetSignature(w http.ResponseWriter, r *http.Request) {
	requestID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request id")
		return
	}
	articleID, err := strconv.ParseInt(r.PathValue("article"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid article id")
		return
	}
	phase := r.PathValue("phase")
	if phase != model.PhaseHandoff && phase != model.PhaseReceipt {
		jsonError(w, http.StatusBadRequest, "invalid phase")
		return
	}

	operator := r.URL.Query().Get("operator") == "1"
	data, mime, err := store.GetDeliverySignature(r.Context(), h.DB, requestID, articleID, phase, operator)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get signature")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no signature")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Write(data)
}

// decodeSignature decodes a base64 signature image and normalizes it.
func decodeSignature(encoded string) ([]byte, string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", err
	}
	processed, err := imaging.ProcessSignature(bytes.NewReader(raw))
	if err != nil {
		return nil, "", err
	}
	return processed.Data, processed.MIME, nil
}
