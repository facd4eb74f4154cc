package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/nutrilog/internal/model"
)

// logColumns はnutrition_logsテーブルのSELECT対象カラム。
// スキャン順はscanLogと一致させること。
const logColumns = `id, food_name, serving_size, calories,
	protein_g, carbohydrates_g, fats_g, fiber_g, sugars_g,
	sodium_mg, potassium_mg, calcium_mg, iron_mg,
	vitamin_c_mg, vitamin_d_mcg, vitamin_b12_mcg,
	healthy_score, notes, created_at`

// PostgresNutritionLogRepo はPostgreSQLを使用した栄養記録リポジトリ。
type PostgresNutritionLogRepo struct {
	db *sql.DB
}

// NewPostgresNutritionLogRepo はPostgresNutritionLogRepoを生成する。
func NewPostgresNutritionLogRepo(db *sql.DB) *PostgresNutritionLogRepo {
	return &PostgresNutritionLogRepo{db: db}
}

// scanner はsql.Rowとsql.Rowsの共通部分。
type scanner interface {
	Scan(dest ...any) error
}

// scanLog は1行をmodel.NutritionLogにスキャンする。
func scanLog(s scanner) (*model.NutritionLog, error) {
	log := &model.NutritionLog{}
	err := s.Scan(
		&log.ID, &log.FoodName, &log.ServingSize, &log.Calories,
		&log.ProteinG, &log.CarbohydratesG, &log.FatsG, &log.FiberG, &log.SugarsG,
		&log.SodiumMg, &log.PotassiumMg, &log.CalciumMg, &log.IronMg,
		&log.VitaminCMg, &log.VitaminDMcg, &log.VitaminB12Mcg,
		&log.HealthyScore, &log.Notes, &log.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return log, nil
}

// collectLogs は複数行をスキャンしてスライスにまとめる。
func collectLogs(rows *sql.Rows) ([]*model.NutritionLog, error) {
	defer rows.Close()

	logs := []*model.NutritionLog{}
	for rows.Next() {
		log, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan nutrition log: %w", err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate nutrition logs: %w", err)
	}

	return logs, nil
}

// Create は栄養記録を作成し、保存された行を返す。
func (r *PostgresNutritionLogRepo) Create(ctx context.Context, log *model.NutritionLog) (*model.NutritionLog, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO nutrition_logs (
			food_name, serving_size, calories,
			protein_g, carbohydrates_g, fats_g, fiber_g, sugars_g,
			sodium_mg, potassium_mg, calcium_mg, iron_mg,
			vitamin_c_mg, vitamin_d_mcg, vitamin_b12_mcg,
			healthy_score, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING `+logColumns,
		log.FoodName, log.ServingSize, log.Calories,
		log.ProteinG, log.CarbohydratesG, log.FatsG, log.FiberG, log.SugarsG,
		log.SodiumMg, log.PotassiumMg, log.CalciumMg, log.IronMg,
		log.VitaminCMg, log.VitaminDMcg, log.VitaminB12Mcg,
		log.HealthyScore, log.Notes,
	)

	saved, err := scanLog(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert nutrition log: %w", err)
	}

	return saved, nil
}

// ListAll は全記録をcreated_at降順で返す。
func (r *PostgresNutritionLogRepo) ListAll(ctx context.Context) ([]*model.NutritionLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+logColumns+` FROM nutrition_logs ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list nutrition logs: %w", err)
	}

	return collectLogs(rows)
}

// ListByDate はcreated_atのカレンダー日付がdateに一致する記録を返す。
func (r *PostgresNutritionLogRepo) ListByDate(ctx context.Context, date string) ([]*model.NutritionLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+logColumns+` FROM nutrition_logs
		 WHERE created_at::date = $1::date
		 ORDER BY created_at DESC`,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list nutrition logs by date: %w", err)
	}

	return collectLogs(rows)
}

// ListByRange はカレンダー日付がstartとendの間（両端含む）の記録を返す。
// start > end の場合、BETWEENは空集合になる（エラーではない）。
func (r *PostgresNutritionLogRepo) ListByRange(ctx context.Context, start, end string) ([]*model.NutritionLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+logColumns+` FROM nutrition_logs
		 WHERE created_at::date BETWEEN $1::date AND $2::date
		 ORDER BY created_at DESC`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list nutrition logs by range: %w", err)
	}

	return collectLogs(rows)
}

// FindByID は指定IDの記録を取得する。見つからない場合はnilを返す。
func (r *PostgresNutritionLogRepo) FindByID(ctx context.Context, id int64) (*model.NutritionLog, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+logColumns+` FROM nutrition_logs WHERE id = $1`,
		id,
	)

	log, err := scanLog(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find nutrition log by ID: %w", err)
	}

	return log, nil
}

// DeleteByID は指定IDの記録を削除し、削除された行を返す。
// 見つからない場合はnilを返す。
func (r *PostgresNutritionLogRepo) DeleteByID(ctx context.Context, id int64) (*model.NutritionLog, error) {
	row := r.db.QueryRowContext(ctx,
		`DELETE FROM nutrition_logs WHERE id = $1 RETURNING `+logColumns,
		id,
	)

	log, err := scanLog(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete nutrition log: %w", err)
	}

	return log, nil
}

// compile-time interface check
var _ NutritionLogRepository = (*PostgresNutritionLogRepo)(nil)
