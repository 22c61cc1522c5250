package favorites

import (
	"testing"
	"time"

	"github.com/hitoshi/newsdeck/internal/model"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore(time.Hour)
	t.Cleanup(s.Stop)
	return s
}

// TestMemoryStore_AddAndList は追加した記事が追加順で一覧されることを確認する。
func TestMemoryStore_AddAndList(t *testing.T) {
	s := newTestStore(t)

	s.Add("sess-1", model.Article{Title: "first", URL: "https://example.com/1"})
	s.Add("sess-1", model.Article{Title: "second", URL: "https://example.com/2"})

	items := s.List("sess-1")
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].Title != "first" || items[1].Title != "second" {
		t.Errorf("items = [%s, %s], want insertion order [first, second]", items[0].Title, items[1].Title)
	}
}

// TestMemoryStore_AddIdempotent は同一URLの再追加が上書きになり、順序を保つことを確認する。
func TestMemoryStore_AddIdempotent(t *testing.T) {
	s := newTestStore(t)

	s.Add("sess-1", model.Article{Title: "old title", URL: "https://example.com/1"})
	s.Add("sess-1", model.Article{Title: "other", URL: "https://example.com/2"})
	s.Add("sess-1", model.Article{Title: "new title", URL: "https://example.com/1"})

	items := s.List("sess-1")
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2 (re-add must not duplicate)", len(items))
	}
	if items[0].Title != "new title" {
		t.Errorf("items[0].Title = %q, want new title (overwritten, original position kept)", items[0].Title)
	}
}

// TestMemoryStore_Remove は削除の成否とContainsの整合を確認する。
func TestMemoryStore_Remove(t *testing.T) {
	s := newTestStore(t)

	s.Add("sess-1", model.Article{URL: "https://example.com/1"})

	if !s.Remove("sess-1", "https://example.com/1") {
		t.Error("Remove(existing) = false, want true")
	}
	if s.Contains("sess-1", "https://example.com/1") {
		t.Error("Contains after remove = true, want false")
	}
	if s.Remove("sess-1", "https://example.com/1") {
		t.Error("Remove(already removed) = true, want false")
	}
	if s.Remove("unknown-session", "https://example.com/1") {
		t.Error("Remove(unknown session) = true, want false")
	}
}

// TestMemoryStore_SessionIsolation はセッション間でお気に入りが共有されないことを確認する。
func TestMemoryStore_SessionIsolation(t *testing.T) {
	s := newTestStore(t)

	s.Add("sess-a", model.Article{URL: "https://example.com/1"})

	if s.Contains("sess-b", "https://example.com/1") {
		t.Error("favorites must not leak across sessions")
	}
	if len(s.List("sess-b")) != 0 {
		t.Error("List for another session should be empty")
	}
}

// TestMemoryStore_ListUnknownSession は未知セッションの一覧が空スライスを返すことを確認する。
func TestMemoryStore_ListUnknownSession(t *testing.T) {
	s := newTestStore(t)

	items := s.List("never-seen")
	if items == nil || len(items) != 0 {
		t.Errorf("List(unknown) = %v, want empty non-nil slice", items)
	}
}

// TestMemoryStore_CleanupIdleSessions はアイドル期限を超えたセッションが回収されることを確認する。
func TestMemoryStore_CleanupIdleSessions(t *testing.T) {
	s := newTestStore(t)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }

	s.Add("idle-session", model.Article{URL: "https://example.com/1"})
	s.Add("active-session", model.Article{URL: "https://example.com/2"})

	// idle-sessionだけmaxIdleを超過させる
	current = current.Add(30 * time.Minute)
	s.List("active-session")
	current = current.Add(45 * time.Minute)

	s.cleanup()

	if s.Contains("idle-session", "https://example.com/1") {
		t.Error("idle session should have been cleaned up")
	}
	if !s.Contains("active-session", "https://example.com/2") {
		t.Error("recently accessed session must survive cleanup")
	}
}
