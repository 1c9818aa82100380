// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/ridebook/internal/model"
)

const bearerPrefix = "Bearer "

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// accountEmailContextKey はリクエストコンテキストにアカウントのメールアドレスを格納するためのキー。
var accountEmailContextKey = contextKey("account_email")

// TokenResolver はセッショントークンからアカウントを解決するインターフェース。
// auth.Serviceが実装する。
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// TokenFromRequest はAuthorizationヘッダーからセッショントークンを取り出す。
// "Bearer "接頭辞が付いている場合は取り除く。
func TokenFromRequest(r *http.Request) string {
	token := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.EqualFold(token, strings.TrimSpace(bearerPrefix)) {
		return ""
	}
	if len(token) >= len(bearerPrefix) && strings.EqualFold(token[:len(bearerPrefix)], bearerPrefix) {
		token = strings.TrimSpace(token[len(bearerPrefix):])
	}
	return token
}

// NewSessionMiddleware はAuthorizationヘッダーのトークンを検証するミドルウェアを返す。
// 認証済みアカウントのメールアドレスをリクエストコンテキストに注入する。
// 未認証リクエストには401 Unauthorizedを返す。
func NewSessionMiddleware(resolver TokenResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			email, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				if !errors.Is(err, model.ErrUnauthorized) {
					slog.Error("failed to resolve session",
						slog.String("error", err.Error()),
					)
					WriteInternalServerError(w)
					return
				}
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			recordAccountForLog(r.Context(), email)
			ctx := ContextWithAccountEmail(r.Context(), email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccountEmailFromContext はリクエストコンテキストからアカウントのメールアドレスを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func AccountEmailFromContext(ctx context.Context) (string, error) {
	email, ok := ctx.Value(accountEmailContextKey).(string)
	if !ok || email == "" {
		return "", fmt.Errorf("account email not found in context")
	}
	return email, nil
}

// ContextWithAccountEmail はコンテキストにアカウントのメールアドレスを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithAccountEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, accountEmailContextKey, email)
}
