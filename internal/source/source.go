// Package source は外部コンテンツAPIごとのソースアダプターを提供する。
//
// 各アダプターは1つの外部APIのJSONレスポンスを共通のArticle形式へ正規化する。
// フェッチは固定エンドポイントへの1回のHTTP GETで、タイムアウトと
// User-Agentヘッダーを必ず付与する。失敗はアダプターの境界を越えて
// 伝播させず、呼び出し元がエラーマーカーへ変換できるerrorとして返す。
// フィールド抽出は常に既定値へ縮退し、フィールド欠損をエラーにしない。
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/hitoshi/newsdeck/internal/security"
)

// placeholderTitle はタイトル欠損時に使用する既定値。
const placeholderTitle = "(no title)"

// defaultMaxBodySize はレスポンスボディの既定上限（1MiB）。
const defaultMaxBodySize = 1 << 20

// Config は全アダプター共通の依存と設定。
type Config struct {
	// Client は外向きHTTPクライアント。本番ではSSRFガード付きクライアントを渡す。
	Client *http.Client
	// UserAgent は全リクエストに付与する識別ヘッダー。
	// 未設定だと接続元APIにスロットリングされる恐れがある。
	UserAgent string
	// MaxBodySize はレスポンスボディの読み取り上限。0以下なら既定値を使用する。
	MaxBodySize int64
	// Limiter は外向きリクエストのレートリミッター。nil可。
	Limiter *rate.Limiter
	// Sanitizer は取得したタイトルのサニタイザー。nil可。
	Sanitizer security.TitleSanitizerService
	// Logger は構造化ロガー。
	Logger *slog.Logger
}

// maxBody はMaxBodySizeを既定値込みで返す。
func (c Config) maxBody() int64 {
	if c.MaxBodySize > 0 {
		return c.MaxBodySize
	}
	return defaultMaxBodySize
}

// getJSON は1回のHTTP GETを実行し、レスポンスボディをoutへデコードする。
// レートリミッター待機、User-Agent付与、ステータス検証、ボディ上限を共通化する。
func getJSON(ctx context.Context, cfg Config, url string, out any) error {
	if cfg.Limiter != nil {
		if err := cfg.Limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := cfg.Client.Do(req)
	if err != nil {
		return fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, cfg.maxBody()))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// sanitizeTitle はタイトルをサニタイズし、空になった場合は既定値へ縮退する。
func sanitizeTitle(cfg Config, raw string) string {
	title := raw
	if cfg.Sanitizer != nil {
		title = cfg.Sanitizer.SanitizeTitle(raw)
	}
	if title == "" {
		return placeholderTitle
	}
	return title
}

// intOrZero はnil許容の数値フィールドを非負整数へ縮退する。
func intOrZero(v *int) int {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}

// logFetched はフェッチ完了の構造化ログを出力する。
func logFetched(logger *slog.Logger, source string, count int) {
	if logger == nil {
		return
	}
	logger.Info("ソースのフェッチが完了しました",
		slog.String("source", source),
		slog.Int("article_count", count),
	)
}
