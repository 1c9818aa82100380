// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// Messageはレスポンスの error キーにそのまま出力される。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, system
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Is はエラーコードが一致する場合にtrueを返す。errors.Isでの比較に使用する。
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// 定義済みエラーコード
const (
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeDuplicateEmail     = "DUPLICATE_EMAIL"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// 入力値不正エラーのメッセージ。既存クライアントが表示する文言と一致させる。
// サービス層の入力検証とハンドラーのリクエストボディ解析の両方で使う。
const (
	MsgRegisterFieldsRequired = "All fields required"
	MsgLoginFieldsRequired    = "Email and password needed"
	MsgBookingFieldsRequired  = "Valid source, destination and distance required"
)

// errors.Is で比較するための番兵値。
var (
	ErrInvalidInput       = &APIError{Code: ErrCodeInvalidInput}
	ErrDuplicateEmail     = &APIError{Code: ErrCodeDuplicateEmail}
	ErrInvalidCredentials = &APIError{Code: ErrCodeInvalidCredentials}
	ErrUnauthorized       = &APIError{Code: ErrCodeUnauthorized}
)

// NewInvalidInputError は入力値不正エラーを生成する。
// メッセージは操作ごとに異なるため呼び出し側で指定する。
func NewInvalidInputError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidInput,
		Message:  message,
		Category: "validation",
	}
}

// NewDuplicateEmailError はメールアドレス重複エラーを生成する。
func NewDuplicateEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  "Email already registered",
		Category: "validation",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Invalid credentials",
		Category: "auth",
	}
}

// NewUnauthorizedError はトークン未指定・無効エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Unauthorized",
		Category: "auth",
	}
}

// NewRateLimitedError はレート制限超過エラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "Too many requests",
		Category: "system",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログのみに記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "Internal server error",
		Category: "system",
	}
}
