package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/newsdeck/internal/model"
)

// mockChecker はFavoriteCheckerのモック実装。
type mockChecker struct {
	favorites map[string]bool
}

func (m *mockChecker) Contains(sessionID string, url string) bool {
	return m.favorites[url]
}

func sampleArticles() []model.Article {
	published := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	return []model.Article{
		{
			Title:       "Go 1.25 Released",
			URL:         "https://go.dev/blog/go1.25",
			Source:      "Hacker News",
			Category:    "technology",
			Points:      512,
			Comments:    231,
			Author:      "gopher",
			PublishedAt: &published,
			Score:       371.2345,
		},
		{
			Title:    "Title, with \"quotes\" and commas",
			URL:      "https://example.com/tricky",
			Source:   "r/golang",
			Category: "technology",
			Score:    100.0,
		},
	}
}

// TestWriteCSV はヘッダー行・列順・値のフォーマットを確認する。
func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	checker := &mockChecker{favorites: map[string]bool{"https://go.dev/blog/go1.25": true}}

	if err := WriteCSV(&buf, sampleArticles(), checker, "sess-1"); err != nil {
		t.Fatalf("WriteCSV() error = %v, want nil", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3 (header + 2 rows)", len(records))
	}

	wantHeader := []string{"title", "url", "source", "category", "points", "comments", "author", "published_at", "score", "favorite"}
	for i, col := range wantHeader {
		if records[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, records[0][i], col)
		}
	}

	first := records[1]
	if first[0] != "Go 1.25 Released" || first[4] != "512" {
		t.Errorf("row 1 = %v, want title and points preserved", first)
	}
	if first[7] != "2025-06-01T10:30:00Z" {
		t.Errorf("published_at = %q, want RFC3339", first[7])
	}
	if first[8] != "371.23" {
		t.Errorf("score = %q, want 371.23 (2 decimals)", first[8])
	}
	if first[9] != "true" {
		t.Errorf("favorite = %q, want true", first[9])
	}

	second := records[2]
	if second[0] != `Title, with "quotes" and commas` {
		t.Errorf("row 2 title = %q, special characters must round-trip", second[0])
	}
	if second[7] != "" {
		t.Errorf("published_at = %q, want empty for unknown time", second[7])
	}
	if second[9] != "false" {
		t.Errorf("favorite = %q, want false", second[9])
	}
}

// TestWriteCSV_NilCheckerDefaultsFalse はcheckerなしでfavorite列が常にfalseになることを確認する。
func TestWriteCSV_NilCheckerDefaultsFalse(t *testing.T) {
	var buf bytes.Buffer

	if err := WriteCSV(&buf, sampleArticles(), nil, ""); err != nil {
		t.Fatalf("WriteCSV() error = %v, want nil", err)
	}
	if strings.Contains(buf.String(), "true") {
		t.Error("favorite column must be false when no checker is provided")
	}
}

// TestWriteCSV_EmptyList は空リストでもヘッダー行だけは出力されることを確認する。
func TestWriteCSV_EmptyList(t *testing.T) {
	var buf bytes.Buffer

	if err := WriteCSV(&buf, nil, nil, ""); err != nil {
		t.Fatalf("WriteCSV() error = %v, want nil", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "title,url") {
		t.Errorf("output = %q, want header row only", buf.String())
	}
}

// TestWriteJSON はJSON配列の形状とnull published_atを確認する。
func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	checker := &mockChecker{favorites: map[string]bool{"https://example.com/tricky": true}}

	if err := WriteJSON(&buf, sampleArticles(), checker, "sess-1"); err != nil {
		t.Fatalf("WriteJSON() error = %v, want nil", err)
	}

	var rows []struct {
		Title       string  `json:"title"`
		PublishedAt *string `json:"published_at"`
		Score       float64 `json:"score"`
		Favorite    bool    `json:"favorite"`
	}
	if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}

	if rows[0].PublishedAt == nil || *rows[0].PublishedAt != "2025-06-01T10:30:00Z" {
		t.Errorf("rows[0].PublishedAt = %v, want 2025-06-01T10:30:00Z", rows[0].PublishedAt)
	}
	if rows[0].Score != 371.23 {
		t.Errorf("rows[0].Score = %v, want 371.23", rows[0].Score)
	}
	if rows[0].Favorite {
		t.Error("rows[0].Favorite = true, want false")
	}
	if rows[1].PublishedAt != nil {
		t.Errorf("rows[1].PublishedAt = %v, want null", rows[1].PublishedAt)
	}
	if !rows[1].Favorite {
		t.Error("rows[1].Favorite = false, want true")
	}
}

// TestWriteJSON_EmptyList は空リストが空のJSON配列になることを確認する。
func TestWriteJSON_EmptyList(t *testing.T) {
	var buf bytes.Buffer

	if err := WriteJSON(&buf, nil, nil, ""); err != nil {
		t.Fatalf("WriteJSON() error = %v, want nil", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("output = %q, want []", got)
	}
}
