package api

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/aguilarm/mobiliario/internal/model"
	"github.com/aguilarm/mobiliario/internal/store"
)

// LoadingHandler handles loading-time blackout window endpoints.
type LoadingHandler struct {
	DB *sql.DB
}

type loadingWindowRequest struct {
	ArticleID int64  `json:"article_id"`
	StartAt   string `json:"start_at"` // RFC 3339
	EndAt     string `json:"end_at"`
	Notes     string `json:"notes,omitempty"`
}

// List handles GET /api/loading-windows. An optional article query
// parameter filters by article.
func (h *LoadingHandler) List(w http.ResponseWriter, r *http.Request) {
	var articleID int64
	if raw := r.URL.Query().Get("article"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid article filter")
			return
		}
		articleID = id
	}

	windows, err := store.ListLoadingWindows(r.Context(), h.DB, articleID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list loading windows")
		return
	}
	if windows == nil {
		windows = []model.LoadingWindow{}
	}
	jsonResponse(w, http.StatusOK, windows)
}

// Create handles POST /api/loading-windows.
func (h *LoadingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req loadingWindowRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	startAt, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid start_at")
		return
	}
	endAt, err := time.Parse(time.RFC3339, req.EndAt)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid end_at")
		return
	}

	claims := GetClaims(r.Context())
	window, err := store.CreateLoadingWindow(r.Context(), h.DB, req.ArticleID, startAt, endAt, req.Notes, &claims.UserID)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusCreated, window)
}

// Delete handles DELETE /api/loading-windows/{id}.
func (h *LoadingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid loading window id")
		return
	}

	if err := store.DeleteLoadingWindow(r.Context(), h.DB, id); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete loading window")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "loading window deleted"})
}
