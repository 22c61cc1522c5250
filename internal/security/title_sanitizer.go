// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TitleSanitizerService は外部APIから取得した記事タイトルをサニタイズし、
// パイプラインに入る前にHTMLタグとマークアップ起因のリスクを除去する。
// bluemondayのStrictPolicyを使用し、タグを一切許可しない。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TitleSanitizerService はタイトルのサニタイズ機能のインターフェースを定義する。
type TitleSanitizerService interface {
	// SanitizeTitle はタイトルからすべてのHTMLタグを除去し、
	// HTMLエンティティをデコードした平文を返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeTitle(raw string) string
}

// titleSanitizer はTitleSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type titleSanitizer struct {
	policy *bluemonday.Policy
}

// NewTitleSanitizer はTitleSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyはすべてのタグと属性を除去する。タイトルは平文としてのみ
// 扱うため、許可リストは空でよい。
func NewTitleSanitizer() *titleSanitizer {
	return &titleSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeTitle はタイトルからHTMLタグを除去した平文を返す。
// bluemondayはタグ除去後にエンティティをエスケープするため、
// 表示用の平文に戻すためUnescapeStringを適用する。
func (s *titleSanitizer) SanitizeTitle(raw string) string {
	if raw == "" {
		return ""
	}
	cleaned := s.policy.Sanitize(raw)
	cleaned = html.UnescapeString(cleaned)
	return strings.TrimSpace(cleaned)
}
