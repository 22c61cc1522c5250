package handler

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/newsdeck/internal/model"
)

// categoryResponse はカテゴリ1件分のレスポンス。
type categoryResponse struct {
	Name       string   `json:"name"`
	Subreddits []string `json:"subreddits"`
}

// categoriesResponse はカテゴリ一覧のレスポンス。
type categoriesResponse struct {
	Categories []categoryResponse `json:"categories"`
}

// ListCategories はカテゴリとデフォルトsubredditの対応表を固定順で返す。
// GET /api/categories
func ListCategories(w http.ResponseWriter, r *http.Request) {
	names := model.CategoryNames()
	out := make([]categoryResponse, len(names))
	for i, name := range names {
		out[i] = categoryResponse{
			Name:       name,
			Subreddits: model.DefaultCategories[name],
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(categoriesResponse{Categories: out})
}

// Health はヘルスチェックエンドポイント。常に200を返す。
// GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
