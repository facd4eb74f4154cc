// Package appwrite は外部IdP（Appwrite）のREST APIクライアントを提供する。
// フロントエンドが発行したAppwrite JWTの検証と、管理APIによるユーザー参照を含む。
package appwrite

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/hitoshi/nutrilog/internal/model"
)

// Config はAppwriteクライアントの設定。
type Config struct {
	// Endpoint はAppwrite APIのベースURL（テスト用に差し替え可能）。
	Endpoint  string
	ProjectID string
	// APIKey はサーバー専用の管理キー。管理API（GetUserByID）でのみ使用し、
	// セッション検証パスでは決して使用しない。フロントエンドには絶対に渡さない。
	APIKey string
}

// Client はAppwrite APIのクライアント。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	config     Config
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, logger *slog.Logger, config Config) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		config:     config,
	}
}

// accountResponse はAppwriteのアカウント系エンドポイントのレスポンス。
type accountResponse struct {
	ID                string `json:"$id"`
	Email             string `json:"email"`
	Name              string `json:"name"`
	EmailVerification bool   `json:"emailVerification"`
	CreatedAt         string `json:"$createdAt"`
}

// VerifySession はフロントエンドから渡されたAppwrite JWTでセッションを検証する。
// リクエストごとにそのJWTをスコープとしたヘッダーで /account を呼び出す
// （管理キーはこのパスでは使用しない）。
// IdP側で拒否された場合（期限切れ・不正・失効）は一律で
// InvalidExternalSessionを返し、具体的な失敗理由はログのみに記録する。
func (c *Client) VerifySession(ctx context.Context, jwt string) (*model.AppwriteUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.Endpoint+"/account", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create account request: %w", err)
	}
	req.Header.Set("X-Appwrite-Project", c.config.ProjectID)
	req.Header.Set("X-Appwrite-JWT", jwt)

	account, err := c.doAccountRequest(req)
	if err != nil {
		c.logger.Warn("appwrite session verification failed",
			slog.String("error", err.Error()),
		)
		return nil, model.NewInvalidExternalSessionError()
	}

	return account, nil
}

// GetUserByID は管理APIで指定Appwrite IDのユーザーを取得する。
// サーバー起点の検証用で、管理キーで認証する。
func (c *Client) GetUserByID(ctx context.Context, appwriteID string) (*model.AppwriteUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.Endpoint+"/users/"+appwriteID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create user request: %w", err)
	}
	req.Header.Set("X-Appwrite-Project", c.config.ProjectID)
	req.Header.Set("X-Appwrite-Key", c.config.APIKey)

	account, err := c.doAccountRequest(req)
	if err != nil {
		c.logger.Warn("appwrite user lookup failed",
			slog.String("appwrite_id", appwriteID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("user not found in appwrite: %w", err)
	}

	return account, nil
}

// doAccountRequest はアカウント系リクエストを実行し、レスポンスをパースする。
func (c *Client) doAccountRequest(req *http.Request) (*model.AppwriteUser, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("appwrite request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read appwrite response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("appwrite returned status %d: %s", resp.StatusCode, string(body))
	}

	var account accountResponse
	if err := json.Unmarshal(body, &account); err != nil {
		return nil, fmt.Errorf("failed to parse appwrite response: %w", err)
	}

	if account.ID == "" {
		return nil, fmt.Errorf("empty user ID in appwrite response")
	}

	return &model.AppwriteUser{
		AppwriteID:    account.ID,
		Email:         account.Email,
		Name:          account.Name,
		EmailVerified: account.EmailVerification,
		CreatedAt:     account.CreatedAt,
	}, nil
}
