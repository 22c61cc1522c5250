package source

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/newsdeck/internal/model"
)

const (
	// hnDefaultEndpoint はHacker Newsフロントページ取得APIのエンドポイント（Algolia検索API）。
	hnDefaultEndpoint = "https://hn.algolia.com/api/v1/search?tags=front_page"
	// SourceHackerNews はHacker News記事のソースラベル。
	SourceHackerNews = "Hacker News"
	// HackerNewsID はキャッシュキー等で使用するソース識別子。
	HackerNewsID = "hackernews"
)

// HackerNewsAdapter はHacker Newsフロントページのソースアダプター。
// アダプター固有のパラメータは持たない。
type HackerNewsAdapter struct {
	cfg      Config
	endpoint string // テスト用にエンドポイントを差し替え可能
}

// NewHackerNewsAdapter はHackerNewsAdapterの新しいインスタンスを生成する。
func NewHackerNewsAdapter(cfg Config) *HackerNewsAdapter {
	return &HackerNewsAdapter{
		cfg:      cfg,
		endpoint: hnDefaultEndpoint,
	}
}

// hnResponse はAlgolia検索APIのレスポンス。
type hnResponse struct {
	Hits []hnHit `json:"hits"`
}

// hnHit は検索結果1件分。数値フィールドはnullになり得るためポインタで受ける。
type hnHit struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Points      *int   `json:"points"`
	NumComments *int   `json:"num_comments"`
	Author      string `json:"author"`
	ObjectID    string `json:"objectID"`
	CreatedAt   string `json:"created_at"`
}

// Fetch はフロントページ記事を取得してArticle形式に正規化する。
// ネットワーク障害・非2xx・不正JSONはすべてerrorとして返し、
// フィールド欠損は既定値に縮退させて正常記事として返す。
func (a *HackerNewsAdapter) Fetch(ctx context.Context) ([]model.Article, error) {
	var resp hnResponse
	if err := getJSON(ctx, a.cfg, a.endpoint, &resp); err != nil {
		return nil, fmt.Errorf("hackernews: %w", err)
	}

	articles := make([]model.Article, 0, len(resp.Hits))
	for _, h := range resp.Hits {
		url := h.URL
		if url == "" {
			// 外部リンクのない投稿（Ask HN等）はHN上の議論ページへフォールバック
			url = fmt.Sprintf("https://news.ycombinator.com/item?id=%s", h.ObjectID)
		}

		articles = append(articles, model.Article{
			Title:       sanitizeTitle(a.cfg, h.Title),
			URL:         url,
			Source:      SourceHackerNews,
			Points:      intOrZero(h.Points),
			Comments:    intOrZero(h.NumComments),
			Author:      h.Author,
			PublishedAt: parseISOTime(h.CreatedAt),
		})
	}

	logFetched(a.cfg.Logger, SourceHackerNews, len(articles))
	return articles, nil
}

// parseISOTime はISO-8601文字列をパースする。
// "Z"サフィックス付きとオフセット付きの両方を受け付け、
// タイムゾーン情報のない時刻はUTCとして扱う。
// パースできない場合はnilを返す（エラーにはしない）。
func parseISOTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05", // タイムゾーンなし → UTC扱い
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
