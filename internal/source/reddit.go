package source

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/hitoshi/newsdeck/internal/model"
)

const (
	// redditDefaultEndpoint は指定subredditのhot一覧を返すエンドポイントのテンプレート。
	redditDefaultEndpoint = "https://www.reddit.com/r/%s/hot.json?limit=%d"
	// redditDefaultLimit は1回のフェッチで要求する投稿数。
	redditDefaultLimit = 25
	// RedditID はキャッシュキー等で使用するソース識別子。
	RedditID = "reddit"
)

// subredditNamePattern は許容するsubreddit名の形式。
// フェッチ先URLに外部入力を組み込むため、英数字とアンダースコアのみ許可する。
var subredditNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,50}$`)

// ValidSubredditName はsubreddit名がフェッチに使用できる形式かを返す。
func ValidSubredditName(name string) bool {
	return subredditNamePattern.MatchString(name)
}

// RedditLabel はsubredditのソースラベル（"r/{subreddit}"）を返す。
func RedditLabel(subreddit string) string {
	return "r/" + subreddit
}

// RedditAdapter はsubreddit単位のhot一覧を取得するソースアダプター。
type RedditAdapter struct {
	cfg      Config
	endpoint string // テスト用にエンドポイントテンプレートを差し替え可能
	limit    int
}

// NewRedditAdapter はRedditAdapterの新しいインスタンスを生成する。
// limitが0以下の場合は既定値25を使用する。
func NewRedditAdapter(cfg Config, limit int) *RedditAdapter {
	if limit <= 0 {
		limit = redditDefaultLimit
	}
	return &RedditAdapter{
		cfg:      cfg,
		endpoint: redditDefaultEndpoint,
		limit:    limit,
	}
}

// redditResponse はhot.jsonのレスポンス。
type redditResponse struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// redditPost は投稿1件分。欠損し得るフィールドはポインタで受ける。
type redditPost struct {
	Title             string   `json:"title"`
	URLOverriddenDest string   `json:"url_overridden_by_dest"`
	URL               string   `json:"url"`
	Permalink         string   `json:"permalink"`
	Ups               *int     `json:"ups"`
	Score             *int     `json:"score"`
	NumComments       *int     `json:"num_comments"`
	Author            string   `json:"author"`
	CreatedUTC        *float64 `json:"created_utc"`
}

// FetchSubreddit は指定subredditのhot投稿を取得してArticle形式に正規化する。
// subreddit名が不正な場合はフェッチせずエラーを返す。
func (a *RedditAdapter) FetchSubreddit(ctx context.Context, subreddit string) ([]model.Article, error) {
	if !ValidSubredditName(subreddit) {
		return nil, fmt.Errorf("reddit: invalid subreddit name: %q", subreddit)
	}

	url := fmt.Sprintf(a.endpoint, subreddit, a.limit)

	var resp redditResponse
	if err := getJSON(ctx, a.cfg, url, &resp); err != nil {
		return nil, fmt.Errorf("reddit r/%s: %w", subreddit, err)
	}

	label := RedditLabel(subreddit)
	articles := make([]model.Article, 0, len(resp.Data.Children))
	for _, child := range resp.Data.Children {
		d := child.Data

		articles = append(articles, model.Article{
			Title:       sanitizeTitle(a.cfg, d.Title),
			URL:         postURL(d),
			Source:      label,
			Points:      postPoints(d),
			Comments:    intOrZero(d.NumComments),
			Author:      d.Author,
			PublishedAt: parseEpochSeconds(d.CreatedUTC),
		})
	}

	logFetched(a.cfg.Logger, label, len(articles))
	return articles, nil
}

// postURL は投稿のリンク先URLを優先順に解決する。
// url_overridden_by_dest → url → permalinkから構成したフォールバックの順。
func postURL(d redditPost) string {
	if d.URLOverriddenDest != "" {
		return d.URLOverriddenDest
	}
	if d.URL != "" {
		return d.URL
	}
	return "https://reddit.com" + d.Permalink
}

// postPoints は投稿のポイント数をups → scoreの優先順で解決する。
func postPoints(d redditPost) int {
	if d.Ups != nil {
		return intOrZero(d.Ups)
	}
	return intOrZero(d.Score)
}

// parseEpochSeconds はUNIXエポック秒をUTC時刻へ変換する。
// 欠損または0以下の値はnilを返す（エラーにはしない）。
func parseEpochSeconds(v *float64) *time.Time {
	if v == nil || *v <= 0 {
		return nil
	}
	t := time.Unix(int64(*v), 0).UTC()
	return &t
}
