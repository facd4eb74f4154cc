// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/nutrilog/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// Upsert はappwrite_idをキーにユーザーを1文でアトミックに作成または更新する。
	// 既存行の場合はemail/nameをIdP側の最新値で上書きし、created_atは維持する。
	// 結果の行を返す。
	Upsert(ctx context.Context, appwriteID, email, name string) (*model.User, error)
}

// NutritionLogRepository は栄養記録の永続化インターフェース。
// すべての操作は1論理操作あたり単一のパラメータ化SQL文で行う。
type NutritionLogRepository interface {
	// Create は栄養記録を作成し、保存された行を返す。
	Create(ctx context.Context, log *model.NutritionLog) (*model.NutritionLog, error)

	// ListAll は全記録をcreated_at降順で返す。
	ListAll(ctx context.Context) ([]*model.NutritionLog, error)

	// ListByDate はcreated_atのカレンダー日付がdateに一致する記録を返す。
	// dateはYYYY-MM-DD形式（バリデーション済み）を前提とする。
	ListByDate(ctx context.Context, date string) ([]*model.NutritionLog, error)

	// ListByRange はcreated_atのカレンダー日付がstartとendの間（両端含む）の記録を返す。
	// start > end の場合は空の結果を返す（エラーにしない）。
	ListByRange(ctx context.Context, start, end string) ([]*model.NutritionLog, error)

	// FindByID は指定IDの記録を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.NutritionLog, error)

	// DeleteByID は指定IDの記録を削除し、削除された行を返す。
	// 見つからない場合はnilを返す。
	DeleteByID(ctx context.Context, id int64) (*model.NutritionLog, error)
}
