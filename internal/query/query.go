// Package query は集約済み記事リストに対するフィルタ・ソート・ページネーションを提供する。
//
// すべての変換はステートレスな純粋関数で、以下の固定順で適用される。
// 各段が候補集合を狭めてから次の段に渡る。
//
//	タイトル検索 → includeキーワード → excludeキーワード → ソート → ページネーション
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/hitoshi/newsdeck/internal/model"
)

// Options はQuery Engineへの入力パラメータ。
type Options struct {
	// Search はタイトルに対する大文字小文字を区別しない部分一致検索。空は素通し。
	Search string
	// IncludeKeywords はカンマ区切りキーワード。いずれか1つをタイトルに含む記事のみ通す。
	// 空または空白のみのリストは素通し（全件拒否にはしない）。
	IncludeKeywords string
	// ExcludeKeywords はカンマ区切りキーワード。いずれかをタイトルに含む記事を除外する。
	ExcludeKeywords string
	// Sort はソート種別。ゼロ値はSortByScoreとして扱う。
	Sort model.SortMode
	// PageSize は1ページの件数。1未満は1として扱う。
	PageSize int
	// Page は1始まりのページ番号。範囲外は空ページになる（エラーにはしない）。
	Page int
}

// Result はApplyの戻り値。
type Result struct {
	// Items は要求されたページの記事。
	Items []model.Article
	// Total はフィルタ適用後・ページネーション前の総件数。
	Total int
}

// Apply はフィルタ・ソート・ページネーションを固定順で適用する。
// 入力スライスは変更しない。
func Apply(articles []model.Article, opts Options) Result {
	filtered := Filter(articles, opts.Search, opts.IncludeKeywords, opts.ExcludeKeywords)
	sorted := Sort(filtered, opts.Sort)
	page := Paginate(sorted, opts.PageSize, opts.Page)
	return Result{Items: page, Total: len(sorted)}
}

// Filter はタイトル検索とinclude/excludeキーワードを適用する。
func Filter(articles []model.Article, search, includeCSV, excludeCSV string) []model.Article {
	searchLower := strings.ToLower(strings.TrimSpace(search))
	include := parseKeywords(includeCSV)
	exclude := parseKeywords(excludeCSV)

	out := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		title := strings.ToLower(a.Title)

		if searchLower != "" && !strings.Contains(title, searchLower) {
			continue
		}
		if len(include) > 0 && !containsAny(title, include) {
			continue
		}
		if len(exclude) > 0 && containsAny(title, exclude) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Sort は指定のソート種別で記事を並べ替えた新しいスライスを返す。
// 同値キーの相対順序は入力順を維持する（安定ソート）。
func Sort(articles []model.Article, mode model.SortMode) []model.Article {
	out := make([]model.Article, len(articles))
	copy(out, articles)

	switch mode {
	case model.SortByPoints:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Points > out[j].Points
		})
	case model.SortByNewest:
		sort.SliceStable(out, func(i, j int) bool {
			return publishedOrZero(out[i]).After(publishedOrZero(out[j]))
		})
	default: // model.SortByScore
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Score > out[j].Score
		})
	}
	return out
}

// Paginate は1始まりのページ番号でスライスを切り出す。
// 範囲外のページは空スライスを返し、エラーにはしない。
func Paginate(articles []model.Article, pageSize, page int) []model.Article {
	if pageSize < 1 {
		pageSize = 1
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * pageSize
	if start >= len(articles) {
		return []model.Article{}
	}
	end := start + pageSize
	if end > len(articles) {
		end = len(articles)
	}
	return articles[start:end]
}

// parseKeywords はカンマ区切り文字列を小文字のキーワードリストに分解する。
// 空要素と空白のみの要素は除外する。
func parseKeywords(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// containsAny はtextがキーワードのいずれかを含むかを返す。
func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// publishedOrZero は公開日時を返す。未設定の記事は最古の時刻として扱う。
func publishedOrZero(a model.Article) time.Time {
	if a.PublishedAt == nil {
		return time.Time{}
	}
	return *a.PublishedAt
}
