// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
)

// sessionCookieName はセッションID Cookieの名前。
const sessionCookieName = "newsdeck_session"

// sessionIDKey はコンテキストに格納するセッションIDのキー型。
type sessionIDKey struct{}

// ErrNoSessionID はコンテキストにセッションIDが存在しない場合のエラー。
var ErrNoSessionID = errors.New("no session id in context")

// SessionConfig はセッションCookieの設定。
type SessionConfig struct {
	MaxAge int  // Cookieの有効期間（秒）
	Secure bool // HTTPS配下ではtrue
}

// NewSessionMiddleware は匿名セッションIDを付与するミドルウェアを返す。
//
// 認証は行わない。お気に入りなどのセッション状態をブラウザ単位で
// 区別するためだけに、初回アクセス時にUUIDを発行してCookieに保存する。
// 以降のリクエストではCookieの値をそのまま使用する。
func NewSessionMiddleware(cfg SessionConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
				sessionID = c.Value
			}

			if sessionID == "" {
				sessionID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookieName,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   cfg.MaxAge,
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionIDKey{}, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionIDFromContext はコンテキストからセッションIDを取り出す。
func SessionIDFromContext(ctx context.Context) (string, error) {
	sessionID, ok := ctx.Value(sessionIDKey{}).(string)
	if !ok || sessionID == "" {
		return "", ErrNoSessionID
	}
	return sessionID, nil
}

// ContextWithSessionID はコンテキストにセッションIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, sessionID)
}
