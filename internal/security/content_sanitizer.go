// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService は利用者が投稿するテキストをサニタイズし、
// XSS攻撃などのセキュリティリスクからユーザーを保護する。
// bluemondayライブラリを使用した許可リストベースのポリシーで処理する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はユーザー投稿コンテンツのサニタイズ機能の
// インターフェースを定義する。保存前に適用される。
type ContentSanitizerService interface {
	// SanitizeComment はレビューコメントをプレーンテキストとして浄化する。
	// 全てのHTMLタグを除去し、前後の空白を取り除いたテキストを返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeComment(raw string) string

	// SanitizeDescription は蔵書の説明文をサニタイズして安全なHTMLを返す。
	// 許可タグ（p, br, ul, ol, li, blockquote, strong, em）のみを通過させ、
	// scriptタグやon*イベント属性を除去する。
	SanitizeDescription(rawHTML string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	strict      *bluemonday.Policy
	description *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// レビューコメント用の全タグ除去ポリシーと、蔵書説明文用の
// 許可リストポリシーの2つを構築する。
func NewContentSanitizer() *contentSanitizer {
	desc := bluemonday.NewPolicy()
	desc.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "strong", "em",
	)

	return &contentSanitizer{
		strict:      bluemonday.StrictPolicy(),
		description: desc,
	}
}

// SanitizeComment はレビューコメントをプレーンテキストとして浄化する。
func (s *contentSanitizer) SanitizeComment(raw string) string {
	return strings.TrimSpace(s.strict.Sanitize(raw))
}

// SanitizeDescription は蔵書の説明文をサニタイズして安全なHTMLを返す。
func (s *contentSanitizer) SanitizeDescription(rawHTML string) string {
	return s.description.Sanitize(rawHTML)
}
