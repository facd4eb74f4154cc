package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/nutrilog/internal/auth"
	"github.com/hitoshi/nutrilog/internal/metrics"
	"github.com/hitoshi/nutrilog/internal/middleware"
	"github.com/hitoshi/nutrilog/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// HandleVerify は外部IdPの資格情報をローカルセッショントークンに交換する。
	HandleVerify(ctx context.Context, appwriteJWT string) (*auth.VerifyResult, error)
	// GetCurrentUser は認証済みユーザーの行を再取得する。見つからない場合はnil。
	GetCurrentUser(ctx context.Context, userID int64) (*model.User, error)
	// Refresh は新しいローカルセッショントークンを発行する。
	Refresh(user *model.User) (string, error)
}

// AuthHandler はセッションハンドシェイク関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	metrics metrics.MetricsCollector
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, collector metrics.MetricsCollector) *AuthHandler {
	return &AuthHandler{
		service: service,
		metrics: collector,
	}
}

// --- リクエスト/レスポンス型 ---

// verifyRequest はハンドシェイクリクエストのボディ。
type verifyRequest struct {
	AppwriteJWT string `json:"appwriteJwt"`
}

// userResponse はハンドシェイク応答のユーザー表現。
type userResponse struct {
	ID         int64     `json:"id"`
	AppwriteID string    `json:"appwriteId"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
}

// currentUserResponse は/auth/me応答のユーザー表現。更新日時を含む。
type currentUserResponse struct {
	userResponse
	UpdatedAt time.Time `json:"updatedAt"`
}

// verifyResponse はハンドシェイク成功時のレスポンス。
type verifyResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    userResponse `json:"user"`
}

// Verify は外部IdPのJWTを検証し、ローカルセッショントークンを発行する。
// POST /auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AppwriteJWT == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			"Bad request", "appwriteJwt is required")
		return
	}

	result, err := h.service.HandleVerify(r.Context(), req.AppwriteJWT)
	if err != nil {
		h.metrics.RecordHandshake("fail")
		handleServiceError(w, err)
		return
	}
	h.metrics.RecordHandshake("success")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(verifyResponse{
		Success: true,
		Message: "Authentication successful",
		Token:   result.Token,
		User:    toUserResponse(result.User),
	})
}

// Me は現在の認証済みユーザー情報を返す。
// GET /auth/me（RequireAuthの後段）
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	authedUser, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized,
			"Authentication required", "No token provided")
		return
	}

	// ミドルウェア通過後に行が消えた場合に備えて再取得する
	user, err := h.service.GetCurrentUser(r.Context(), authedUser.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if user == nil {
		middleware.WriteErrorResponse(w, http.StatusNotFound,
			"User not found", "User does not exist")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"user": currentUserResponse{
			userResponse: toUserResponse(user),
			UpdatedAt:    user.UpdatedAt,
		},
	})
}

// Refresh は認証済みユーザーに新しいトークンを発行する。
// POST /auth/refresh（RequireAuthの後段）
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized,
			"Authentication required", "No token provided")
		return
	}

	tok, err := h.service.Refresh(user)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"message": "Token refreshed successfully",
		"token":   tok,
	})
}

// Logout はログアウトを受け付ける。
// トークンはステートレスなためサーバー側で破棄する状態はない。
// DELETE /auth/logout（RequireAuthの後段）
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"message": "Logged out successfully",
	})
}

// toUserResponse はmodel.UserからAPIレスポンスに変換する。
func toUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:         user.ID,
		AppwriteID: user.AppwriteID,
		Email:      user.Email,
		Name:       user.Name,
		CreatedAt:  user.CreatedAt,
	}
}
