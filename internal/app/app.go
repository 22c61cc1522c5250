// Package app はアプリケーションの初期化・配線・起動を提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/hitoshi/newsdeck/internal/aggregate"
	"github.com/hitoshi/newsdeck/internal/cache"
	"github.com/hitoshi/newsdeck/internal/config"
	"github.com/hitoshi/newsdeck/internal/export"
	"github.com/hitoshi/newsdeck/internal/favorites"
	"github.com/hitoshi/newsdeck/internal/handler"
	"github.com/hitoshi/newsdeck/internal/logger"
	"github.com/hitoshi/newsdeck/internal/metrics"
	"github.com/hitoshi/newsdeck/internal/middleware"
	"github.com/hitoshi/newsdeck/internal/security"
	"github.com/hitoshi/newsdeck/internal/source"
	"github.com/hitoshi/newsdeck/internal/worker/refresh"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWorker:
		return runWorker(cfg)
	case CommandFetch:
		return runFetch(cfg, w, args[1:])
	default:
		return runServe(cfg)
	}
}

// pipeline は配線済みの集約パイプライン一式。
type pipeline struct {
	service    *aggregate.Service
	aggregator *aggregate.Aggregator
	collector  *metrics.Collector
	registry   *prometheus.Registry
}

// buildPipeline は集約パイプラインの全依存関係を配線する。
//
// 外向きHTTPクライアントはSSRFガード付きで生成し、ソースごとの
// レートリミッターで接続先APIへの呼び出し頻度を自主規制する。
// キャッシュはREDIS_ADDRが設定されていればRedis、なければプロセス内を使用する。
func buildPipeline(cfg *config.Config) *pipeline {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 1. 外向きHTTPクライアント（SSRFガード付き）とサニタイザー
	ssrfGuard := security.NewSSRFGuard()
	client := ssrfGuard.NewSafeClient(cfg.FetchTimeout)
	sanitizer := security.NewTitleSanitizer()

	// 2. ソースアダプター（ソースごとに独立したレートリミッター）
	outboundRate := rate.Limit(float64(cfg.OutboundRatePerMin) / 60.0)

	hnAdapter := source.NewHackerNewsAdapter(source.Config{
		Client:      client,
		UserAgent:   cfg.UserAgent,
		MaxBodySize: cfg.FetchMaxSize,
		Limiter:     rate.NewLimiter(outboundRate, cfg.OutboundRatePerMin),
		Sanitizer:   sanitizer,
		Logger:      slog.Default(),
	})
	redditAdapter := source.NewRedditAdapter(source.Config{
		Client:      client,
		UserAgent:   cfg.UserAgent,
		MaxBodySize: cfg.FetchMaxSize,
		Limiter:     rate.NewLimiter(outboundRate, cfg.OutboundRatePerMin),
		Sanitizer:   sanitizer,
		Logger:      slog.Default(),
	}, cfg.RedditLimit)

	// 3. キャッシュストア
	var store cache.Store = cache.NewMemoryStore(collector)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Warn("Redisへの接続に失敗したためプロセス内キャッシュを使用します",
				slog.String("redis_addr", cfg.RedisAddr),
				slog.String("error", err.Error()),
			)
		} else {
			store = cache.NewRedisStore(rdb, slog.Default())
			slog.Info("Redisキャッシュを使用します", slog.String("redis_addr", cfg.RedisAddr))
		}
	}

	// 4. 集約パイプライン
	aggregator := aggregate.NewAggregator(
		hnAdapter, redditAdapter, store,
		cfg.CacheTTL, cfg.FetchMaxConcurrent,
		slog.Default(), collector,
	)

	return &pipeline{
		service:    aggregate.NewService(aggregator),
		aggregator: aggregator,
		collector:  collector,
		registry:   registry,
	}
}

// runServe はAPIサーバーモードで起動する。
// 全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	p := buildPipeline(cfg)

	// お気に入りストア（セッション単位、アイドル期限はセッション有効期間と揃える）
	favStore := favorites.NewMemoryStore(time.Duration(cfg.SessionMaxAge) * time.Second)
	defer favStore.Stop()

	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral),
	)
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		SessionConfig: middleware.SessionConfig{
			MaxAge: cfg.SessionMaxAge,
		},
		RateLimiter:    rateLimiter,
		Logger:         slog.Default(),
		Metrics:        p.collector,
		MetricsHandler: metrics.Handler(p.registry),

		TrendingService: p.service,
		Favorites:       favStore,
	}

	router := handler.NewRouter(deps)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// 設定されたカテゴリのキャッシュを一定間隔で温め続ける。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	p := buildPipeline(cfg)

	warmer := refresh.NewWarmer(p.aggregator, cfg.RefreshCategories, slog.Default())

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Duration("refresh_interval", cfg.RefreshInterval),
		slog.Any("categories", cfg.RefreshCategories),
	)

	// キャッシュ更新ジョブをメインgoroutineで実行（ブロッキング）
	warmer.Start(ctx, cfg.RefreshInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runFetch は1回分の集約を実行し、結果をJSON配列で標準出力へ書き出す。
// 第1引数でカテゴリを指定できる（省略時はgeneral）。
// ソース障害は標準エラー側のログにのみ出力し、終了コードには影響しない。
func runFetch(cfg *config.Config, w io.Writer, args []string) error {
	p := buildPipeline(cfg)

	category := "general"
	if len(args) > 0 {
		category = args[0]
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout*2)
	defer cancel()

	result := p.service.Trending(ctx, aggregate.TrendingQuery{
		Category:     category,
		EnableHN:     true,
		EnableReddit: true,
		PageSize:     50,
		Page:         1,
	})

	for _, srcErr := range result.Errors {
		slog.Warn("ソースのフェッチに失敗しました",
			slog.String("source", srcErr.Source),
			slog.String("message", srcErr.Message),
		)
	}

	if err := export.WriteJSON(w, result.Items, nil, ""); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
