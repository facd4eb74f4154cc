// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/nutrilog/internal/model"
	"github.com/hitoshi/nutrilog/internal/token"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userContextKey はリクエストコンテキストに認証済みユーザーを格納するためのキー。
var userContextKey = contextKey("auth_user")

// TokenVerifier はJWTの検証に必要なインターフェース。
// token.Serviceの部分集合として定義する。
type TokenVerifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// UserFinder は認証済みユーザーの存在確認に必要なインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// AuthMiddleware はJWTベースの認証ミドルウェアを提供する。
// トークン検証と、ユーザー行がまだ存在することの確認を行う。
type AuthMiddleware struct {
	verifier TokenVerifier
	users    UserFinder
	logger   *slog.Logger
}

// NewAuthMiddleware はAuthMiddlewareの新しいインスタンスを生成する。
func NewAuthMiddleware(verifier TokenVerifier, users UserFinder, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		users:    users,
		logger:   logger,
	}
}

// RequireAuth はAuthorizationヘッダーのJWTを検証し、
// 認証済みユーザーをリクエストコンテキストに注入するミドルウェアを返す。
// トークンの欠落・期限切れ・不正、およびユーザー行の消失はいずれも401。
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := token.ExtractFromHeader(r.Header.Get("Authorization"))
		if tokenString == "" {
			WriteErrorResponse(w, http.StatusUnauthorized,
				"Authentication required", "No token provided")
			return
		}

		claims, err := m.verifier.Verify(tokenString)
		if err != nil {
			if errors.Is(err, token.ErrTokenExpired) {
				WriteErrorResponse(w, http.StatusUnauthorized,
					"Token expired", "Your session has expired. Please login again.")
				return
			}
			WriteErrorResponse(w, http.StatusUnauthorized,
				"Invalid token", "Authentication token is invalid.")
			return
		}

		// トークンが有効でもユーザー行が消えている可能性がある
		user, err := m.users.FindByID(r.Context(), claims.UserID)
		if err != nil {
			m.logger.Error("failed to look up authenticated user",
				slog.Int64("user_id", claims.UserID),
				slog.String("error", err.Error()),
			)
			WriteErrorResponse(w, http.StatusInternalServerError,
				"Authentication error", "Failed to authenticate request")
			return
		}
		if user == nil {
			WriteErrorResponse(w, http.StatusUnauthorized,
				"Authentication failed", "User not found")
			return
		}

		ctx := ContextWithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth はRequireAuthと同じ解決を行うが、失敗しても処理を継続する。
// 有効なトークンを持つリクエストにのみユーザーをコンテキストに注入する。
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := token.ExtractFromHeader(r.Header.Get("Authorization"))
		if tokenString == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.verifier.Verify(tokenString)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.users.FindByID(r.Context(), claims.UserID)
		if err != nil || user == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := ContextWithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext はリクエストコンテキストから認証済みユーザーを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func UserFromContext(ctx context.Context) (*model.User, error) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("authenticated user not found in context")
	}
	return user, nil
}

// ContextWithUser はコンテキストに認証済みユーザーを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
