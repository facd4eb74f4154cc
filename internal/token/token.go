// Package token はローカルセッショントークン（JWT）の発行と検証を提供する。
// トークンはステートレスで、有効性は署名と有効期限のみで決まる。
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// issuer / audience はトークンの発行者・利用者タグ。
	// 検証時に一致しないトークンは拒否される。
	issuer   = "calorie-backend"
	audience = "calorie-app"
)

// 検証失敗の種別。有効期限切れとそれ以外を呼び出し側で区別できるようにする。
var (
	// ErrTokenExpired は有効期限切れのトークンを表す。
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenMalformed は署名・構造・issuer・audienceが一致しないトークンを表す。
	ErrTokenMalformed = errors.New("invalid token")
)

// Claims はローカルセッショントークンに埋め込むクレーム。
type Claims struct {
	UserID     int64  `json:"userId"`
	AppwriteID string `json:"appwriteId"`
	Email      string `json:"email"`
	jwt.RegisteredClaims
}

// Service はJWTの発行と検証を行う。
// secretはプロセス全体で単一の静的キー（ローテーションは行わない）。
type Service struct {
	secret    []byte
	expiresIn time.Duration
}

// NewService はServiceを生成する。
// secretが空の場合は起動時設定エラーとして扱うためエラーを返す。
func NewService(secret string, expiresIn time.Duration) (*Service, error) {
	if secret == "" {
		return nil, errors.New("JWT secret must not be empty")
	}
	return &Service{
		secret:    []byte(secret),
		expiresIn: expiresIn,
	}, nil
}

// Issue はユーザー情報を埋め込んだ署名付きトークンを発行する。
// 発行時刻と有効期限を含み、HS256で署名する。
// 署名バックエンドの失敗は設定異常であり、ユーザー起因のエラーではない。
func (s *Service) Issue(userID int64, appwriteID, email string) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID:     userID,
		AppwriteID: appwriteID,
		Email:      email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiresIn)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify はトークンを検証し、クレームを返す。
// 有効期限切れはErrTokenExpired、それ以外の検証失敗はErrTokenMalformedを返す。
func (s *Service) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// ExtractFromHeader はAuthorizationヘッダーからトークン文字列を取り出す。
// "Bearer <token>" 形式とトークン単体の両方を受け付ける。
// ヘッダーが空の場合は空文字列を返す。
func ExtractFromHeader(header string) string {
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}

	return header
}
