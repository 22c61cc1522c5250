package aggregate

import (
	"context"

	"github.com/hitoshi/newsdeck/internal/model"
	"github.com/hitoshi/newsdeck/internal/query"
)

const (
	// defaultCategory はカテゴリ未指定時のカテゴリ名。
	defaultCategory = "general"
	// defaultPageSize は1ページの既定件数。
	defaultPageSize = 10
	// maxPageSize は1ページの上限件数。
	maxPageSize = 50
)

// TrendingQuery はパイプラインのエントリーポイントへの入力。
// プレゼンテーション層（API・CLI）はこの1つの構造体だけを組み立てればよい。
type TrendingQuery struct {
	Category     string
	EnableHN     bool
	EnableReddit bool
	// Subreddits が空の場合はカテゴリのデフォルトsubredditリストを使用する。
	Subreddits []string

	Search          string
	IncludeKeywords string
	ExcludeKeywords string
	Sort            model.SortMode
	PageSize        int
	Page            int
}

// TrendingResult はパイプラインの出力。
type TrendingResult struct {
	// Items は要求されたページの記事。
	Items []model.Article
	// Total はフィルタ適用後の総件数（ページネーション前）。
	Total int
	// Errors は失敗したソースのエラーマーカー。結果リストとは独立に返す。
	Errors []model.SourceError
}

// Service は集約パイプラインとQuery Engineを合成したエントリーポイント。
// 入力の純粋関数であり、お気に入り等のセッション状態には一切関与しない。
type Service struct {
	agg *Aggregator
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(agg *Aggregator) *Service {
	return &Service{agg: agg}
}

// Trending は集約 → フィルタ → ソート → ページネーションを実行する。
// 障害は常にデータ（Errors）へ縮退するため、致命的エラーの経路を持たない。
func (s *Service) Trending(ctx context.Context, q TrendingQuery) *TrendingResult {
	q = normalizeQuery(q)

	if !q.EnableHN && !q.EnableReddit {
		return &TrendingResult{Items: []model.Article{}}
	}

	articles, errs := s.agg.Aggregate(ctx, Params{
		Category:     q.Category,
		EnableHN:     q.EnableHN,
		EnableReddit: q.EnableReddit,
		Subreddits:   q.Subreddits,
	})

	result := query.Apply(articles, query.Options{
		Search:          q.Search,
		IncludeKeywords: q.IncludeKeywords,
		ExcludeKeywords: q.ExcludeKeywords,
		Sort:            q.Sort,
		PageSize:        q.PageSize,
		Page:            q.Page,
	})

	return &TrendingResult{
		Items:  result.Items,
		Total:  result.Total,
		Errors: errs,
	}
}

// normalizeQuery は入力の既定値を解決する。
// パラメータ不正は決してエラーにせず、文書化された既定値へ縮退する。
func normalizeQuery(q TrendingQuery) TrendingQuery {
	if q.Category == "" {
		q.Category = defaultCategory
	}
	if len(q.Subreddits) == 0 {
		q.Subreddits = model.DefaultCategories[q.Category]
	}
	if q.PageSize <= 0 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Sort == "" {
		q.Sort = model.SortByScore
	}
	return q
}
