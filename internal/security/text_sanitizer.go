// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizerService は利用者が入力する自由記述フィールドをサニタイズし、
// XSS攻撃などのセキュリティリスクから保護する。
// bluemondayライブラリの全タグ除去ポリシーを使用する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService は自由記述テキストのサニタイズ機能のインターフェースを定義する。
// プロフィール更新および出品作成のバックエンド送信前に使用される。
type TextSanitizerService interface {
	// Sanitize はテキストから全てのHTMLタグを除去してプレーンテキストを返す。
	// script等のタグ内容ごと危険な要素を除去し、HTMLエンティティは復元する。
	// 前後の空白は除去される。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは許可タグを持たないため、全てのHTMLタグが除去される。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はテキストから全てのHTMLタグを除去してプレーンテキストを返す。
// bluemondayはエンティティをエスケープして返すため、
// プレーンテキストとして扱えるよう復元してから返す。
func (s *textSanitizer) Sanitize(raw string) string {
	cleaned := s.policy.Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}
