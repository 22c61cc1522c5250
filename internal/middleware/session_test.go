package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestSessionMiddleware_IssuesCookieOnFirstRequest は初回アクセスで
// セッションCookieが発行されることをテストする。
func TestSessionMiddleware_IssuesCookieOnFirstRequest(t *testing.T) {
	var gotSessionID string
	handler := NewSessionMiddleware(SessionConfig{MaxAge: 86400})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotSessionID, _ = SessionIDFromContext(r.Context())
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/trending", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if gotSessionID == "" {
		t.Fatal("session ID should be injected into the request context")
	}

	cookies := w.Result().Cookies()
	var found *http.Cookie
	for _, c := range cookies {
		if c.Name == sessionCookieName {
			found = c
		}
	}
	if found == nil {
		t.Fatal("session cookie should be set on first request")
	}
	if found.Value != gotSessionID {
		t.Errorf("cookie value = %q, want context session ID %q", found.Value, gotSessionID)
	}
	if !found.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}
	if found.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want Lax", found.SameSite)
	}
	if found.MaxAge != 86400 {
		t.Errorf("MaxAge = %d, want 86400", found.MaxAge)
	}
}

// TestSessionMiddleware_ReusesExistingCookie は既存Cookieのセッション IDが
// 引き継がれ、Cookieが再発行されないことをテストする。
func TestSessionMiddleware_ReusesExistingCookie(t *testing.T) {
	var gotSessionID string
	handler := NewSessionMiddleware(SessionConfig{MaxAge: 86400})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotSessionID, _ = SessionIDFromContext(r.Context())
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/trending", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "existing-session-id"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if gotSessionID != "existing-session-id" {
		t.Errorf("session ID = %q, want existing-session-id", gotSessionID)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("cookie should not be re-issued when one already exists")
	}
}

// TestSessionMiddleware_SecureFlag はSecure設定がCookieに反映されることをテストする。
func TestSessionMiddleware_SecureFlag(t *testing.T) {
	handler := NewSessionMiddleware(SessionConfig{MaxAge: 3600, Secure: true})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("len(cookies) = %d, want 1", len(cookies))
	}
	if !cookies[0].Secure {
		t.Error("cookie should be Secure when configured")
	}
}

// TestSessionIDFromContext_Missing はセッションIDのないコンテキストで
// ErrNoSessionIDが返ることをテストする。
func TestSessionIDFromContext_Missing(t *testing.T) {
	_, err := SessionIDFromContext(context.Background())
	if err != ErrNoSessionID {
		t.Errorf("err = %v, want ErrNoSessionID", err)
	}
}

// TestContextWithSessionID はコンテキストへの注入と取り出しの往復をテストする。
func TestContextWithSessionID(t *testing.T) {
	ctx := ContextWithSessionID(context.Background(), "sess-42")

	got, err := SessionIDFromContext(ctx)
	if err != nil {
		t.Fatalf("SessionIDFromContext() error = %v", err)
	}
	if got != "sess-42" {
		t.Errorf("session ID = %q, want sess-42", got)
	}
}
