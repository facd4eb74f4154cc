// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// クライアントに返す短いエラーラベルと説明メッセージを含む。
type APIError struct {
	Code    string // エラーコード（ハンドラー層でHTTPステータスにマッピングされる）
	Label   string // レスポンスの "error" フィールドに入る短いラベル
	Message string // レスポンスの "message" フィールドに入る説明
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed       = "VALIDATION_FAILED"
	ErrCodeUnauthenticated        = "UNAUTHENTICATED"
	ErrCodeNotFound               = "NOT_FOUND"
	ErrCodeInvalidExternalSession = "INVALID_EXTERNAL_SESSION"
	ErrCodeUpstreamLookupFailed   = "UPSTREAM_LOOKUP_FAILED"
	ErrCodeInternal               = "INTERNAL_ERROR"
)

// NewValidationError は入力バリデーションエラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeValidationFailed,
		Label:   "Bad request",
		Message: message,
	}
}

// NewUnauthenticatedError は認証エラーを生成する。
// labelは "Token expired" のように失敗理由を区別するラベルを指定する。
func NewUnauthenticatedError(label, message string) *APIError {
	return &APIError{
		Code:    ErrCodeUnauthenticated,
		Label:   label,
		Message: message,
	}
}

// NewNotFoundError はリソース未検出エラーを生成する。
func NewNotFoundError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Label:   "Not found",
		Message: message,
	}
}

// NewInvalidExternalSessionError はIdP側でセッションが拒否された場合のエラーを生成する。
// IdP側の具体的な失敗理由はログのみに記録し、クライアントへは伝播しない。
func NewInvalidExternalSessionError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidExternalSession,
		Label:   "Authentication failed",
		Message: "Invalid or expired Appwrite session",
	}
}

// NewUpstreamLookupError は生成AIエンドポイントの呼び出し失敗エラーを生成する。
func NewUpstreamLookupError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeUpstreamLookupFailed,
		Label:   "Lookup failed",
		Message: message,
	}
}

// NewInternalError は内部サーバーエラーを生成する。
func NewInternalError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeInternal,
		Label:   "Server error",
		Message: message,
	}
}
