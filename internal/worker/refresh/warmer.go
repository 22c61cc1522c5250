// Package refresh はトレンドキャッシュのバックグラウンド更新を提供する。
//
// 設定されたカテゴリを一定間隔で再集約し、キャッシュを温めておくことで、
// APIリクエスト時の外部フェッチ待ちを減らす。結果自体は破棄する
// （キャッシュへの副作用だけが目的）。
package refresh

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/newsdeck/internal/aggregate"
	"github.com/hitoshi/newsdeck/internal/model"
)

// AggregatorService は集約実行のインターフェース。
type AggregatorService interface {
	// Aggregate は有効化されたソースから記事を集約する。
	Aggregate(ctx context.Context, params aggregate.Params) ([]model.Article, []model.SourceError)
}

// Warmer はカテゴリ単位のキャッシュ更新ジョブ。
type Warmer struct {
	agg        AggregatorService
	categories []string
	logger     *slog.Logger
}

// NewWarmer はWarmerの新しいインスタンスを生成する。
func NewWarmer(agg AggregatorService, categories []string, logger *slog.Logger) *Warmer {
	return &Warmer{
		agg:        agg,
		categories: categories,
		logger:     logger,
	}
}

// Start は指定間隔のティッカーで更新ジョブを起動する。
// コンテキストがキャンセルされるまで実行を継続する。
func (w *Warmer) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.Info("キャッシュ更新ジョブを開始しました",
		slog.Duration("interval", interval),
		slog.Any("categories", w.categories),
	)

	// 起動直後に1回実行
	w.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("キャッシュ更新ジョブを停止しました")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce は設定された全カテゴリを1回ずつ再集約する。
// ソース障害は集約側でエラーマーカーに縮退するため、ここに失敗経路はない。
func (w *Warmer) RunOnce(ctx context.Context) {
	start := time.Now()

	for _, category := range w.categories {
		select {
		case <-ctx.Done():
			return
		default:
		}

		articles, errs := w.agg.Aggregate(ctx, aggregate.Params{
			Category:     category,
			EnableHN:     true,
			EnableReddit: true,
			Subreddits:   model.DefaultCategories[category],
		})

		w.logger.Info("カテゴリのキャッシュを更新しました",
			slog.String("category", category),
			slog.Int("article_count", len(articles)),
			slog.Int("error_count", len(errs)),
		)
	}

	w.logger.Info("キャッシュ更新サイクルが完了しました",
		slog.Int("category_count", len(w.categories)),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
}
