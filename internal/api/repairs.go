package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/aguilarm/mobiliario/internal/model"
	"github.com/aguilarm/mobiliario/internal/store"
)

// RepairsHandler handles repair batch and handover endpoints.
type RepairsHandler struct {
	DB *sql.DB
}

type createRepairRequest struct {
	ArticleID int64  `json:"article_id"`
	AssetTag  string `json:"asset_tag,omitempty"`
	WorkOrder string `json:"work_order,omitempty"`
	Revision  int    `json:"revision"`
}

type finalizeRepairRequest struct {
	Repaired  int `json:"repaired"`
	Discarded int `json:"discarded"`
}

type handoverNotesRequest struct {
	Notes string `json:"notes"`
}

// List handles GET /api/repairs with optional article and status filters.
func (h *RepairsHandler) List(w http.ResponseWriter, r *http.Request) {
	var articleID int64
	if raw := r.URL.Query().Get("article"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid article filter")
			return
		}
		articleID = id
	}

	repairs, err := store.ListRepairs(r.Context(), h.DB, articleID, r.URL.Query().Get("status"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list repairs")
		return
	}
	if repairs == nil {
		repairs = []model.Repair{}
	}
	jsonResponse(w, http.StatusOK, repairs)
}

// Create handles POST /api/repairs. Opening a repair pulls revision
// units out of the article's effective availability.
func (h *RepairsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRepairRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	repair, err := store.CreateRepair(r.Context(), h.DB, req.ArticleID, req.AssetTag, req.WorkOrder, req.Revision, &claims.UserID)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusCreated, repair)
}

// Get handles GET /api/repairs/{id}.
func (h *RepairsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid repair id")
		return
	}

	repair, err := store.GetRepair(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get repair")
		return
	}
	if repair == nil {
		jsonError(w, http.StatusNotFound, "repair not found")
		return
	}
	jsonResponse(w, http.StatusOK, repair)
}

// Finalize handles POST /api/repairs/{id}/finalize.
func (h *RepairsHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid repair id")
		return
	}

	var req finalizeRepairRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.FinalizeRepair(r.Context(), h.DB, id, req.Repaired, req.Discarded); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	repair, _ := store.GetRepair(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, repair)
}

// Approve handles POST /api/repairs/{id}/approve. Approval spawns the
// per-unit handover records and shrinks or removes the repair.
func (h *RepairsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid repair id")
		return
	}

	handovers, err := store.ApproveRepair(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if handovers == nil {
		handovers = []model.Handover{}
	}
	jsonResponse(w, http.StatusOK, handovers)
}

// Handovers handles GET /api/repairs/{id}/handovers.
func (h *RepairsHandler) Handovers(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid repair id")
		return
	}

	handovers, err := store.ListHandovers(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list handovers")
		return
	}
	if handovers == nil {
		handovers = []model.Handover{}
	}
	jsonResponse(w, http.StatusOK, handovers)
}

// SetHandoverNotes handles PUT /api/handovers/{id}/notes.
func (h *RepairsHandler) SetHandoverNotes(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid handover id")
		return
	}

	var req handoverNotesRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.SetHandoverNotes(r.Context(), h.DB, id, req.Notes); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update handover")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "handover updated"})
}
