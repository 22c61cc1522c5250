// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, feed, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeInvalidSubreddit = "INVALID_SUBREDDIT"
	ErrCodeInvalidFormat    = "INVALID_FORMAT"
	ErrCodeFavoriteNotFound = "FAVORITE_NOT_FOUND"
	ErrCodeSessionRequired  = "SESSION_REQUIRED"
)

// NewInvalidRequestError はリクエスト解析失敗エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストの解析に失敗しました: %s", reason),
		Category: "validation",
		Action:   "リクエストの形式を確認してください。",
	}
}

// NewInvalidSubredditError は無効なsubreddit名エラーを生成する。
func NewInvalidSubredditError(name string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSubreddit,
		Message:  fmt.Sprintf("無効なsubreddit名です: %s", name),
		Category: "validation",
		Action:   "subreddit名には英数字とアンダースコアのみ使用できます。",
	}
}

// NewInvalidFormatError は無効なエクスポート形式エラーを生成する。
func NewInvalidFormatError(format string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidFormat,
		Message:  fmt.Sprintf("無効なエクスポート形式です: %s", format),
		Category: "validation",
		Action:   "形式には csv または json を指定してください。",
	}
}

// NewFavoriteNotFoundError はお気に入り未検出エラーを生成する。
func NewFavoriteNotFoundError(url string) *APIError {
	return &APIError{
		Code:     ErrCodeFavoriteNotFound,
		Message:  fmt.Sprintf("指定されたお気に入りが見つかりません: %s", url),
		Category: "feed",
		Action:   "お気に入り一覧を確認してください。",
	}
}

// NewSessionRequiredError はセッション未確立エラーを生成する。
func NewSessionRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeSessionRequired,
		Message:  "セッションが確立されていません。",
		Category: "validation",
		Action:   "Cookieを有効にして再度お試しください。",
	}
}
