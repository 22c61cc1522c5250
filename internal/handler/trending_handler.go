// Package handler はAPIエンドポイントのHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hitoshi/newsdeck/internal/aggregate"
	"github.com/hitoshi/newsdeck/internal/export"
	"github.com/hitoshi/newsdeck/internal/middleware"
	"github.com/hitoshi/newsdeck/internal/model"
	"github.com/hitoshi/newsdeck/internal/source"
)

// TrendingServiceInterface はトレンドハンドラーが必要とするパイプラインのインターフェース。
type TrendingServiceInterface interface {
	// Trending は集約 → フィルタ → ソート → ページネーションを実行する。
	Trending(ctx context.Context, q aggregate.TrendingQuery) *aggregate.TrendingResult
}

// TrendingHandler はトレンド記事一覧とエクスポートのHTTPハンドラー。
type TrendingHandler struct {
	service   TrendingServiceInterface
	favorites export.FavoriteChecker // エクスポートのfavorite列用。nil可
}

// NewTrendingHandler はTrendingHandlerを生成する。
func NewTrendingHandler(service TrendingServiceInterface, favorites export.FavoriteChecker) *TrendingHandler {
	return &TrendingHandler{
		service:   service,
		favorites: favorites,
	}
}

// --- レスポンス型 ---

// articleResponse は記事1件分のレスポンス。
type articleResponse struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Source      string  `json:"source"`
	Category    string  `json:"category"`
	Points      int     `json:"points"`
	Comments    int     `json:"comments"`
	Author      string  `json:"author,omitempty"`
	PublishedAt *string `json:"published_at"` // ISO-8601またはnull
	Score       float64 `json:"score"`
}

// sourceErrorResponse は失敗したソースのエラーマーカーのレスポンス。
type sourceErrorResponse struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

// trendingResponse はトレンド一覧のレスポンス。
type trendingResponse struct {
	Items    []articleResponse     `json:"items"`
	Total    int                   `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
	Errors   []sourceErrorResponse `json:"errors"`
}

// GetTrending はトレンド記事の1ページ分を返す。
// GET /api/trending?category=&hn=&reddit=&subreddits=&q=&include=&exclude=&sort=&page=&page_size=
//
// ソース障害はHTTPエラーにはせず、errorsフィールドとして結果に同梱する。
func (h *TrendingHandler) GetTrending(w http.ResponseWriter, r *http.Request) {
	q, apiErr := parseTrendingQuery(r)
	if apiErr != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	result := h.service.Trending(r.Context(), q)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(trendingResponse{
		Items:    toArticleResponses(result.Items),
		Total:    result.Total,
		Page:     q.Page,
		PageSize: q.PageSize,
		Errors:   toSourceErrorResponses(result.Errors),
	})
}

// Export はフィルタ済みの1ページ分をCSVまたはJSONでダウンロードさせる。
// GET /api/trending/export?format=csv|json&（GetTrendingと同じパラメータ）
func (h *TrendingHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidFormatError(format))
		return
	}

	q, apiErr := parseTrendingQuery(r)
	if apiErr != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	result := h.service.Trending(r.Context(), q)

	sessionID, _ := middleware.SessionIDFromContext(r.Context())

	writeExport(w, "news_page", format, result.Items, h.favorites, sessionID)
}

// parseTrendingQuery はクエリパラメータからTrendingQueryを構築する。
// ページ番号等の不正値は既定値へ縮退し、エラーにしない。
// subreddit名の形式不正のみ400を返す（フェッチ先URLに組み込まれるため）。
func parseTrendingQuery(r *http.Request) (aggregate.TrendingQuery, *model.APIError) {
	params := r.URL.Query()

	subreddits := splitParam(params.Get("subreddits"))
	for _, sub := range subreddits {
		if !source.ValidSubredditName(sub) {
			return aggregate.TrendingQuery{}, model.NewInvalidSubredditError(sub)
		}
	}

	return aggregate.TrendingQuery{
		Category:        params.Get("category"),
		EnableHN:        parseBoolParam(params.Get("hn"), true),
		EnableReddit:    parseBoolParam(params.Get("reddit"), true),
		Subreddits:      subreddits,
		Search:          params.Get("q"),
		IncludeKeywords: params.Get("include"),
		ExcludeKeywords: params.Get("exclude"),
		Sort:            model.ParseSortMode(params.Get("sort")),
		PageSize:        parseIntParam(params.Get("page_size"), 0),
		Page:            parseIntParam(params.Get("page"), 1),
	}, nil
}

// parseBoolParam はクエリパラメータをboolに変換する。空や不正値はdefaultValに縮退する。
func parseBoolParam(s string, defaultVal bool) bool {
	if s == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return defaultVal
	}
	return b
}

// parseIntParam はクエリパラメータをintに変換する。空や不正値はdefaultValに縮退する。
func parseIntParam(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return i
}

// splitParam はカンマ区切りパラメータを空白除去済みのリストに分解する。
func splitParam(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// toArticleResponses はmodel.Articleのリストをレスポンス型に変換する。
func toArticleResponses(articles []model.Article) []articleResponse {
	out := make([]articleResponse, len(articles))
	for i, a := range articles {
		var published *string
		if a.PublishedAt != nil {
			s := a.PublishedAt.UTC().Format(time.RFC3339)
			published = &s
		}
		out[i] = articleResponse{
			Title:       a.Title,
			URL:         a.URL,
			Source:      a.Source,
			Category:    a.Category,
			Points:      a.Points,
			Comments:    a.Comments,
			Author:      a.Author,
			PublishedAt: published,
			Score:       math.Round(a.Score*100) / 100,
		}
	}
	return out
}

// toSourceErrorResponses はエラーマーカーのリストをレスポンス型に変換する。
// nilではなく空スライスを返し、JSONでは常に配列として出力する。
func toSourceErrorResponses(errs []model.SourceError) []sourceErrorResponse {
	out := make([]sourceErrorResponse, len(errs))
	for i, e := range errs {
		out[i] = sourceErrorResponse{Source: e.Source, Message: e.Message}
	}
	return out
}

// writeExport はエクスポート用のヘッダーを設定してCSVまたはJSONを書き込む。
func writeExport(w http.ResponseWriter, baseName, format string, articles []model.Article, checker export.FavoriteChecker, sessionID string) {
	switch format {
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="`+baseName+`.json"`)
		if err := export.WriteJSON(w, articles, checker, sessionID); err != nil {
			middleware.WriteInternalServerError(w)
		}
	default:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+baseName+`.csv"`)
		if err := export.WriteCSV(w, articles, checker, sessionID); err != nil {
			middleware.WriteInternalServerError(w)
		}
	}
}
