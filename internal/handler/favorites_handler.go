package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/newsdeck/internal/favorites"
	"github.com/hitoshi/newsdeck/internal/middleware"
	"github.com/hitoshi/newsdeck/internal/model"
)

// FavoritesHandler はセッション単位のお気に入り管理のHTTPハンドラー。
type FavoritesHandler struct {
	store favorites.Store
}

// NewFavoritesHandler はFavoritesHandlerを生成する。
func NewFavoritesHandler(store favorites.Store) *FavoritesHandler {
	return &FavoritesHandler{store: store}
}

// favoriteRequest はお気に入り追加リクエストのボディ。
type favoriteRequest struct {
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Source      string     `json:"source"`
	Category    string     `json:"category"`
	Points      int        `json:"points"`
	Comments    int        `json:"comments"`
	Author      string     `json:"author"`
	PublishedAt *time.Time `json:"published_at"`
	Score       float64    `json:"score"`
}

// favoritesResponse はお気に入り一覧のレスポンス。
type favoritesResponse struct {
	Items []articleResponse `json:"items"`
	Total int               `json:"total"`
}

// List はセッションのお気に入り一覧を追加順で返す。
// GET /api/favorites
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	sessionID, err := middleware.SessionIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewSessionRequiredError())
		return
	}

	items := h.store.List(sessionID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(favoritesResponse{
		Items: toArticleResponses(items),
		Total: len(items),
	})
}

// Save は記事をお気に入りに追加する。URLをキーとした冪等な操作。
// PUT /api/favorites
func (h *FavoritesHandler) Save(w http.ResponseWriter, r *http.Request) {
	sessionID, err := middleware.SessionIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewSessionRequiredError())
		return
	}

	var req favoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("JSONボディを解析できません"))
		return
	}
	if req.URL == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("urlは必須です"))
		return
	}

	h.store.Add(sessionID, model.Article{
		Title:       req.Title,
		URL:         req.URL,
		Source:      req.Source,
		Category:    req.Category,
		Points:      req.Points,
		Comments:    req.Comments,
		Author:      req.Author,
		PublishedAt: req.PublishedAt,
		Score:       req.Score,
	})

	w.WriteHeader(http.StatusNoContent)
}

// Remove はURLで指定した記事をお気に入りから外す。
// DELETE /api/favorites?url=...
func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	sessionID, err := middleware.SessionIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewSessionRequiredError())
		return
	}

	url := r.URL.Query().Get("url")
	if url == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("urlパラメータは必須です"))
		return
	}

	if !h.store.Remove(sessionID, url) {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewFavoriteNotFoundError(url))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Export はお気に入り一覧をCSVまたはJSONでダウンロードさせる。
// GET /api/favorites/export?format=csv|json
func (h *FavoritesHandler) Export(w http.ResponseWriter, r *http.Request) {
	sessionID, err := middleware.SessionIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewSessionRequiredError())
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidFormatError(format))
		return
	}

	items := h.store.List(sessionID)
	writeExport(w, "favorites", format, items, h.store, sessionID)
}
