package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/nutrilog/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, appwrite_id, email, name, created_at, updated_at FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.AppwriteID, &user.Email, &user.Name, &user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// Upsert はappwrite_idをキーにユーザーをアトミックに作成または更新する。
// 存在チェックと作成/更新を単一文にまとめることで、同一外部IDの
// 同時ハンドシェイクが競合しても行が重複しないことをDBが保証する。
// 既存行の場合はemail/nameを最新値で上書きし（last-verified-wins）、
// created_atは初回作成時の値を維持する。
func (r *PostgresUserRepo) Upsert(ctx context.Context, appwriteID, email, name string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (appwrite_id, email, name)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (appwrite_id)
		 DO UPDATE SET email = EXCLUDED.email, name = EXCLUDED.name, updated_at = now()
		 RETURNING id, appwrite_id, email, name, created_at, updated_at`,
		appwriteID, email, name,
	).Scan(&user.ID, &user.AppwriteID, &user.Email, &user.Name, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return user, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
