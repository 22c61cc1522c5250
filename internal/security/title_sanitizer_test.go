package security

import "testing"

// TestSanitizeTitle_RemovesTags はすべてのHTMLタグが除去されることを検証する。
func TestSanitizeTitle_RemovesTags(t *testing.T) {
	sanitizer := NewTitleSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "プレーンテキストはそのまま",
			input: "Go 1.25 Released",
			want:  "Go 1.25 Released",
		},
		{
			name:  "太字タグを除去",
			input: "<b>Breaking</b> News",
			want:  "Breaking News",
		},
		{
			name:  "scriptタグと中身を除去",
			input: `Before<script>alert("xss")</script>After`,
			want:  "BeforeAfter",
		},
		{
			name:  "リンクタグを除去しテキストを残す",
			input: `<a href="https://evil.example.com">Click here</a>`,
			want:  "Click here",
		},
		{
			name:  "imgタグを除去",
			input: `Title <img src="x" onerror="alert(1)">`,
			want:  "Title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.SanitizeTitle(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestSanitizeTitle_UnescapesEntities はHTMLエンティティが平文へ戻されることを検証する。
func TestSanitizeTitle_UnescapesEntities(t *testing.T) {
	sanitizer := NewTitleSanitizer()

	tests := []struct {
		input string
		want  string
	}{
		{input: "Ben &amp; Jerry", want: "Ben & Jerry"},
		{input: "1 &lt; 2", want: "1 < 2"},
		{input: "&quot;quoted&quot;", want: `"quoted"`},
	}

	for _, tt := range tests {
		got := sanitizer.SanitizeTitle(tt.input)
		if got != tt.want {
			t.Errorf("SanitizeTitle(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// TestSanitizeTitle_EmptyInput は空文字列入力が空文字列を返すことを検証する。
func TestSanitizeTitle_EmptyInput(t *testing.T) {
	sanitizer := NewTitleSanitizer()

	if got := sanitizer.SanitizeTitle(""); got != "" {
		t.Errorf("SanitizeTitle(\"\") = %q, want empty", got)
	}
}

// TestSanitizeTitle_TrimsWhitespace は前後の空白が除去されることを検証する。
func TestSanitizeTitle_TrimsWhitespace(t *testing.T) {
	sanitizer := NewTitleSanitizer()

	if got := sanitizer.SanitizeTitle("  padded title  "); got != "padded title" {
		t.Errorf("SanitizeTitle(padded) = %q, want %q", got, "padded title")
	}
}

// TestSanitizeTitle_Idempotent は同一入力への再適用が結果を変えないことを検証する。
func TestSanitizeTitle_Idempotent(t *testing.T) {
	sanitizer := NewTitleSanitizer()

	input := "<b>Ben &amp; Jerry</b>"
	once := sanitizer.SanitizeTitle(input)
	twice := sanitizer.SanitizeTitle(once)

	if once != twice {
		t.Errorf("SanitizeTitle is not idempotent: %q -> %q", once, twice)
	}
}
