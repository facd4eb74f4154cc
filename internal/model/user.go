// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// AppwriteIDは外部IdP（Appwrite）が発行した識別子で、一度設定されたら不変。
// EmailとNameはハンドシェイク成功のたびにIdP側の最新値で上書きされる。
type User struct {
	ID         int64
	AppwriteID string
	Email      string
	Name       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AppwriteUser はAppwriteのセッション検証で得られるユーザー情報を表す。
type AppwriteUser struct {
	AppwriteID    string
	Email         string
	Name          string
	EmailVerified bool
	CreatedAt     string
}
