// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizerService は生成AIの応答やクライアント入力に含まれる
// 自由記述テキスト（food_name, notes）をサニタイズし、
// 保存やAPI応答を通じたXSS攻撃からユーザーを保護する。
// bluemondayライブラリのStrictPolicyを使用し、全てのHTMLマークアップを除去する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService は自由記述テキストのサニタイズ機能のインターフェースを定義する。
// 栄養記録の保存前および生成AI応答の転送時に使用される。
type TextSanitizerService interface {
	// Sanitize はテキストから全てのHTMLタグを除去し、プレーンテキストを返す。
	// 残ったHTMLエンティティはデコードされ、前後の空白は取り除かれる。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyはタグを一切許可しないため、script等の危険なマークアップも
// 通常のタグもすべて除去される。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はテキストから全てのHTMLタグを除去し、プレーンテキストを返す。
func (s *textSanitizer) Sanitize(raw string) string {
	stripped := s.policy.Sanitize(raw)
	// StrictPolicyは残存テキストをエスケープするため、
	// プレーンテキストとして保存できるようエンティティを戻す。
	return strings.TrimSpace(html.UnescapeString(stripped))
}
