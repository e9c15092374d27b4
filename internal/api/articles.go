package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/aguilarm/mobiliario/internal/imaging"
	"github.com/aguilarm/mobiliario/internal/model"
	"github.com/aguilarm/mobiliario/internal/store"
)

// ArticlesHandler handles inventory article endpoints.
type ArticlesHandler struct {
	DB *sql.DB
}

type articleRequest struct {
	Name       string `json:"name"`
	CategoryID int64  `json:"category_id"`
	Quantity   int    `json:"quantity"`
}

// List handles GET /api/articles. An optional category query parameter
// filters by category.
func (h *ArticlesHandler) List(w http.ResponseWriter, r *http.Request) {
	var categoryID int64
	if raw := r.URL.Query().Get("category"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid category filter")
			return
		}
		categoryID = id
	}

	articles, err := store.ListArticles(r.Context(), h.DB, categoryID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list articles")
		return
	}
	if articles == nil {
		articles = []model.Article{}
	}
	jsonResponse(w, http.StatusOK, articles)
}

// Create handles POST /api/articles.
func (h *ArticlesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}
	if req.Quantity < 0 {
		jsonError(w, http.StatusBadRequest, "quantity cannot be negative")
		return
	}

	article, err := store.CreateArticle(r.Context(), h.DB, req.Name, req.CategoryID, req.Quantity)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create article")
		return
	}
	jsonResponse(w, http.StatusCreated, article)
}

// Get handles GET /api/articles/{id}.
func (h *ArticlesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid article id")
		return
	}

	article, err := store.GetArticle(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get article")
		return
	}
	if article == nil {
		jsonError(w, http.StatusNotFound, "article not found")
		return
	}
	jsonResponse(w, http.StatusOK, article)
}

// Update handles PUT /api/articles/{id}.
func (h *ArticlesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid article id")
		return
	}

	var req articleRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}
	if req.Quantity < 0 {
		jsonError(w, http.StatusBadRequest, "quantity cannot be negative")
		return
	}

	if err := store.UpdateArticle(r.Context(), h.DB, id, req.Name, req.CategoryID, req.Quantity); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update article")
		return
	}

	article, _ := store.GetArticle(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, article)
}

// Delete handles DELETE /api/articles/{id}.
func (h *ArticlesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid article id")
		return
	}

	if err := store.DeleteArticle(r.Context(), h.DB, id); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete article")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "article deleted"})
}

// UploadImage handles PUT /api/articles/{id}/image.
func (h *ArticlesHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid article id")
		return
	}

	// Limit to 5 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	processed, err := imaging.ProcessPhoto(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetArticleImage(r.Context(), h.DB, id, processed.Data, processed.MIME); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save image")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /api/articles/{id}/image.
func (h *ArticlesHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid article id")
		return
	}

	data, mime, err := store.GetArticleImage(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
