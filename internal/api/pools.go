package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/aguilarm/mobiliario/internal/model"
	"github.com/aguilarm/mobiliario/internal/store"
)

// PoolsHandler handles notification pool endpoints.
type PoolsHandler struct {
	DB *sql.DB
}

type poolEntryRequest struct {
	Kind  string `json:"kind"`
	Email string `json:"email"`
}

// List handles GET /api/pools.
func (h *PoolsHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := store.ListPoolEntries(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list pool entries")
		return
	}
	if entries == nil {
		entries = []model.PoolEntry{}
	}
	jsonResponse(w, http.StatusOK, entries)
}

// Create handles POST /api/pools.
func (h *PoolsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req poolEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := store.AddPoolEntry(r.Context(), h.DB, req.Kind, req.Email)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusCreated, entry)
}

// Delete handles DELETE /api/pools/{id}.
func (h *PoolsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid pool entry id")
		return
	}

	if err := store.DeletePoolEntry(r.Context(), h.DB, id); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete pool entry")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "pool entry deleted"})
}
