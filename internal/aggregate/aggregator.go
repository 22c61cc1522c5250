// Package aggregate は複数ソースの取得・採点・重複排除を統括する集約パイプラインを提供する。
//
// Aggregatorは有効化されたソースアダプターをキャッシュ経由で呼び出し、
// ソース単位の失敗をエラーマーカーとして収集しながら、有効な記事に
// スコアとカテゴリを付与して重複排除済みのリストを生成する。
// 致命的エラーの経路は存在せず、全ソースが失敗しても空リストと
// エラーリストに縮退する。
package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/newsdeck/internal/cache"
	"github.com/hitoshi/newsdeck/internal/model"
	"github.com/hitoshi/newsdeck/internal/score"
	"github.com/hitoshi/newsdeck/internal/source"
)

// HackerNewsFetcher はHacker Newsアダプターのインターフェース。
type HackerNewsFetcher interface {
	Fetch(ctx context.Context) ([]model.Article, error)
}

// RedditFetcher はRedditアダプターのインターフェース。
type RedditFetcher interface {
	FetchSubreddit(ctx context.Context, subreddit string) ([]model.Article, error)
}

// MetricsRecorder は集約処理のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordFetchSuccess(src string)
	RecordFetchFailure(src string)
	RecordFetchLatency(duration time.Duration)
	RecordArticlesAggregated(count int)
}

// Params は1回の集約呼び出しの入力。
type Params struct {
	// Category は結果の全記事に付与するカテゴリラベル。
	Category string
	// EnableHN はHacker Newsソースの有効化フラグ。
	EnableHN bool
	// EnableReddit はRedditソースの有効化フラグ。
	EnableReddit bool
	// Subreddits はフェッチ対象のsubreddit名（設定順）。
	Subreddits []string
}

// Aggregator は集約パイプラインの本体。
type Aggregator struct {
	hn             HackerNewsFetcher
	reddit         RedditFetcher
	store          cache.Store
	ttl            time.Duration
	maxConcurrency int
	logger         *slog.Logger
	metrics        MetricsRecorder // nil可
	now            func() time.Time
}

// NewAggregator はAggregatorの新しいインスタンスを生成する。
// maxConcurrencyが0以下の場合はデフォルト値4を使用する。
func NewAggregator(
	hn HackerNewsFetcher,
	reddit RedditFetcher,
	store cache.Store,
	ttl time.Duration,
	maxConcurrency int,
	logger *slog.Logger,
	metrics MetricsRecorder,
) *Aggregator {
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}
	return &Aggregator{
		hn:             hn,
		reddit:         reddit,
		store:          store,
		ttl:            ttl,
		maxConcurrency: maxConcurrency,
		logger:         logger,
		metrics:        metrics,
		now:            time.Now,
	}
}

// fetchTask はソース1つ分のフェッチ単位。
type fetchTask struct {
	key   string // キャッシュキー
	label string // エラーマーカー用ソースラベル
	fetch cache.FetchFunc
}

// Aggregate は有効化されたソースから記事を集約する。
//
// 各subredditは独立にフェッチされ、1つの失敗が他をブロックしない。
// フェッチはsemaphoreパターンで並列化するが、結果のマージはタスクの
// 定義順（subredditの設定順 → HN）で行うため、first-seen重複排除の
// 結果は完了順に依存しない。戻り値の記事順は未規定であり、
// 最終的な整列はQuery Engineの責務。
func (a *Aggregator) Aggregate(ctx context.Context, params Params) ([]model.Article, []model.SourceError) {
	start := a.now()
	tasks := a.buildTasks(params)

	// semaphoreパターンで並列数を制御しながら全タスクをフェッチ
	entries := make([]cache.Entry, len(tasks))
	sem := make(chan struct{}, a.maxConcurrency)
	var wg sync.WaitGroup

	for i, task := range tasks {
		wg.Add(1)
		sem <- struct{}{}

		go func(idx int, t fetchTask) {
			defer wg.Done()
			defer func() { <-sem }()

			entries[idx] = a.store.GetOrFetch(ctx, t.key, a.ttl, t.fetch)
		}(i, task)
	}
	wg.Wait()

	// タスク定義順にマージ: エラーマーカーを分離し、有効な記事に
	// スコアとカテゴリを付与した上で(url, title[:80])キーで重複排除する。
	now := a.now()
	seen := make(map[model.DedupKey]struct{})
	articles := make([]model.Article, 0)
	var errs []model.SourceError

	for _, entry := range entries {
		if entry.Err != nil {
			errs = append(errs, *entry.Err)
			continue
		}
		for _, article := range entry.Articles {
			article.Score = score.Composite(article.PublishedAt, article.Points, now)
			article.Category = params.Category

			key := article.DedupKey()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			articles = append(articles, article)
		}
	}

	if a.metrics != nil {
		a.metrics.RecordArticlesAggregated(len(articles))
	}

	a.logger.Info("集約が完了しました",
		slog.String("category", params.Category),
		slog.Int("source_count", len(tasks)),
		slog.Int("article_count", len(articles)),
		slog.Int("error_count", len(errs)),
		slog.Float64("duration_ms", float64(a.now().Sub(start).Milliseconds())),
	)

	return articles, errs
}

// buildTasks は有効化されたソースからフェッチタスクを定義順に構築する。
// subredditの設定順が先、HNが後（HNはカテゴリ横断のため最後に付け足す）。
func (a *Aggregator) buildTasks(params Params) []fetchTask {
	var tasks []fetchTask

	if params.EnableReddit {
		for _, sub := range params.Subreddits {
			tasks = append(tasks, fetchTask{
				key:   cache.Key(source.RedditID, sub),
				label: source.RedditLabel(sub),
				fetch: a.redditFetchFunc(sub),
			})
		}
	}

	if params.EnableHN {
		tasks = append(tasks, fetchTask{
			key:   cache.Key(source.HackerNewsID),
			label: source.SourceHackerNews,
			fetch: a.hnFetchFunc(),
		})
	}

	return tasks
}

// hnFetchFunc はHNアダプター呼び出しをキャッシュ用FetchFuncに包む。
func (a *Aggregator) hnFetchFunc() cache.FetchFunc {
	return func(ctx context.Context) cache.Entry {
		return a.instrument(source.SourceHackerNews, func() ([]model.Article, error) {
			return a.hn.Fetch(ctx)
		})
	}
}

// redditFetchFunc はRedditアダプター呼び出しをキャッシュ用FetchFuncに包む。
func (a *Aggregator) redditFetchFunc(subreddit string) cache.FetchFunc {
	label := source.RedditLabel(subreddit)
	return func(ctx context.Context) cache.Entry {
		return a.instrument(label, func() ([]model.Article, error) {
			return a.reddit.FetchSubreddit(ctx, subreddit)
		})
	}
}

// instrument はアダプター呼び出しをメトリクスと構造化ログで計測し、
// 失敗をエラーマーカー付きEntryへ変換する。
func (a *Aggregator) instrument(label string, fetch func() ([]model.Article, error)) cache.Entry {
	start := a.now()
	articles, err := fetch()
	duration := a.now().Sub(start)

	if a.metrics != nil {
		a.metrics.RecordFetchLatency(duration)
	}

	if err != nil {
		if a.metrics != nil {
			a.metrics.RecordFetchFailure(label)
		}
		a.logger.Warn("ソースのフェッチに失敗しました",
			slog.String("source", label),
			slog.String("error", err.Error()),
			slog.Float64("duration_ms", float64(duration.Milliseconds())),
		)
		return cache.Entry{Err: &model.SourceError{
			Source:  label,
			Message: fmt.Sprintf("%s fetch failed: %v", label, err),
		}}
	}

	if a.metrics != nil {
		a.metrics.RecordFetchSuccess(label)
	}
	return cache.Entry{Articles: articles}
}
