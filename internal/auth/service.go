// Package auth はセッションハンドシェイク（外部IdP資格情報とローカル
// セッショントークンの交換）のビジネスロジックを提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/nutrilog/internal/model"
	"github.com/hitoshi/nutrilog/internal/repository"
)

// IdentityVerifier は外部IdPのセッション検証インターフェース。
// appwrite.Clientの部分集合として定義する。
type IdentityVerifier interface {
	// VerifySession は外部IdPの資格情報を検証し、外部ユーザー情報を返す。
	VerifySession(ctx context.Context, jwt string) (*model.AppwriteUser, error)
}

// TokenIssuer はローカルセッショントークンの発行インターフェース。
// token.Serviceの部分集合として定義する。
type TokenIssuer interface {
	Issue(userID int64, appwriteID, email string) (string, error)
}

// VerifyResult はハンドシェイク成功時の結果。
type VerifyResult struct {
	Token string
	User  *model.User
}

// Service はセッションハンドシェイクに関するビジネスロジックを提供する。
type Service struct {
	verifier IdentityVerifier
	userRepo repository.UserRepository
	tokens   TokenIssuer
}

// NewService はServiceを生成する。
func NewService(verifier IdentityVerifier, userRepo repository.UserRepository, tokens TokenIssuer) *Service {
	return &Service{
		verifier: verifier,
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// HandleVerify はハンドシェイクを1往復で処理する。
//
//  1. 外部IdPで資格情報を検証する。失敗は終端状態で、
//     InvalidExternalSessionがそのまま伝播する。
//  2. appwrite_idをキーにローカルユーザーを単一のUPSERT文で解決する。
//     初回は作成、2回目以降はemail/nameをIdPの最新値で更新する
//     （last-verified-wins、created_atは維持）。
//  3. 解決したuserIdに紐づくローカルセッショントークンを発行する。
//
// 同じ外部資格情報で繰り返し呼んでも安全で、ユーザー行は終端的な
// フィールド値に収束する。
func (s *Service) HandleVerify(ctx context.Context, appwriteJWT string) (*VerifyResult, error) {
	appwriteUser, err := s.verifier.VerifySession(ctx, appwriteJWT)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.Upsert(ctx, appwriteUser.AppwriteID, appwriteUser.Email, appwriteUser.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	tok, err := s.tokens.Issue(user.ID, user.AppwriteID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("handshake completed",
		slog.Int64("user_id", user.ID),
		slog.String("appwrite_id", user.AppwriteID),
	)

	return &VerifyResult{
		Token: tok,
		User:  user,
	}, nil
}

// GetCurrentUser は認証済みユーザーの行を再取得する。
// 見つからない場合はnilを返す（ハンドシェイク後に帯域外で削除されたケース）。
func (s *Service) GetCurrentUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// Refresh は認証済みユーザーに対して新しいローカルセッショントークンを発行する。
func (s *Service) Refresh(user *model.User) (string, error) {
	tok, err := s.tokens.Issue(user.ID, user.AppwriteID, user.Email)
	if err != nil {
		return "", fmt.Errorf("failed to reissue token: %w", err)
	}
	return tok, nil
}
