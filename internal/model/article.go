// Package model はドメインモデルを定義する。
package model

import "time"

// Article は集約パイプラインが扱う唯一のエンティティ。
// 各ソースアダプターが正規化した記事を表し、ScoreとCategoryは
// 集約時に付与される（ソース由来の値ではない）。
type Article struct {
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Source      string     `json:"source"` // "Hacker News" または "r/{subreddit}"
	Points      int        `json:"points"`
	Comments    int        `json:"comments"`
	Author      string     `json:"author,omitempty"`
	PublishedAt *time.Time `json:"published_at"` // ソースが持たない場合はnil
	Category    string     `json:"category"`
	Score       float64    `json:"score"`
}

// dedupTitleLen は重複判定に使用するタイトルの先頭文字数。
const dedupTitleLen = 80

// DedupKey は記事の重複排除キーを返す。
// URLとタイトル先頭80文字の組で同一性を判定する。
func (a Article) DedupKey() DedupKey {
	title := a.Title
	if runes := []rune(title); len(runes) > dedupTitleLen {
		title = string(runes[:dedupTitleLen])
	}
	return DedupKey{URL: a.URL, TitlePrefix: title}
}

// DedupKey は(URL, タイトル先頭80文字)の重複排除キー。
// mapのキーとして使用できるよう比較可能な構造体にしている。
type DedupKey struct {
	URL         string
	TitlePrefix string
}

// SourceError はソース単位のフェッチ失敗を表すエラーマーカー。
// フェッチ失敗は例外ではなくデータとして収集し、他ソースの集約を妨げない。
type SourceError struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

// Error はerrorインターフェースを実装する。
func (e *SourceError) Error() string {
	return e.Message
}

// SortMode は記事一覧のソート種別を表す。
type SortMode string

const (
	// SortByScore は合成スコア降順（デフォルト）のソート。
	SortByScore SortMode = "score"
	// SortByPoints はポイント降順のソート。
	SortByPoints SortMode = "points"
	// SortByNewest は公開日時降順のソート。公開日時不明の記事は最古として扱う。
	SortByNewest SortMode = "newest"
)

// ParseSortMode は文字列をSortModeに変換する。
// 未知の値はエラーにせずデフォルト（SortByScore）に解決する。
func ParseSortMode(s string) SortMode {
	switch SortMode(s) {
	case SortByPoints:
		return SortByPoints
	case SortByNewest:
		return SortByNewest
	default:
		return SortByScore
	}
}

// DefaultCategories はカテゴリ名とデフォルトのsubredditリストの対応表。
var DefaultCategories = map[string][]string{
	"general":       {"news", "worldnews"},
	"technology":    {"technology", "programming", "gadgets"},
	"sports":        {"sports", "soccer", "nba"},
	"entertainment": {"entertainment", "movies", "television"},
	"business":      {"business", "economy", "stocks"},
	"science":       {"science"},
}

// CategoryNames はDefaultCategoriesのキーを固定順で返す。
func CategoryNames() []string {
	return []string{"general", "technology", "sports", "entertainment", "business", "science"}
}
