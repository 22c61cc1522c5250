package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/newsdeck/internal/favorites"
	"github.com/hitoshi/newsdeck/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	SessionConfig     middleware.SessionConfig
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	Metrics           middleware.StatusRecorder // nil可
	MetricsHandler    http.Handler              // /metrics用ハンドラー。nil可

	// パイプライン
	TrendingService TrendingServiceInterface

	// お気に入り
	Favorites favorites.Store
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Logging → Recovery → Session → RateLimit
//
// /healthはセッションとレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Metrics))
	r.Use(middleware.NewRecoveryMiddleware())

	trendingHandler := NewTrendingHandler(deps.TrendingService, deps.Favorites)
	favoritesHandler := NewFavoritesHandler(deps.Favorites)

	// --- セッション・レート制限の外のルート ---

	r.Get("/health", Health)

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// --- APIルート ---
	// ミドルウェアスタック: Session → RateLimit
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionConfig))
		r.Use(deps.RateLimiter.Middleware())

		// トレンド一覧とエクスポート
		r.Route("/api/trending", func(r chi.Router) {
			r.Get("/", trendingHandler.GetTrending)
			r.Get("/export", trendingHandler.Export)
		})

		// カテゴリ対応表
		r.Get("/api/categories", ListCategories)

		// お気に入り管理
		r.Route("/api/favorites", func(r chi.Router) {
			r.Get("/", favoritesHandler.List)
			r.Put("/", favoritesHandler.Save)
			r.Delete("/", favoritesHandler.Remove)
			r.Get("/export", favoritesHandler.Export)
		})
	})

	return r
}
