package nutrition

import (
	"context"
	"time"

	"github.com/hitoshi/nutrilog/internal/metrics"
	"github.com/hitoshi/nutrilog/internal/model"
	"github.com/hitoshi/nutrilog/internal/repository"
	"github.com/hitoshi/nutrilog/internal/security"
)

// dateLayout は日付パラメータの形式（YYYY-MM-DD）。
const dateLayout = "2006-01-02"

// defaultHealthyScore はhealthy_score未指定時のデフォルト値。
const defaultHealthyScore = 5

// SaveLogInput は栄養記録の保存リクエスト。
// 必須フィールドの有無を区別するためポインタを使用する。
type SaveLogInput struct {
	FoodName       *string               `json:"food_name"`
	ServingSize    *float64              `json:"serving_size"`
	Calories       *float64              `json:"calories"`
	Macronutrients *model.Macronutrients `json:"macronutrients"`
	Micronutrients *model.Micronutrients `json:"micronutrients"`
	HealthyScore   *int                  `json:"healthy_score"`
	Notes          *string               `json:"notes"`
}

// LogService は栄養記録の保存・取得・削除のサービス。
type LogService struct {
	logRepo   repository.NutritionLogRepository
	sanitizer security.TextSanitizerService
	metrics   metrics.MetricsCollector
}

// NewLogService はLogServiceの新しいインスタンスを生成する。
func NewLogService(
	logRepo repository.NutritionLogRepository,
	sanitizer security.TextSanitizerService,
	collector metrics.MetricsCollector,
) *LogService {
	return &LogService{
		logRepo:   logRepo,
		sanitizer: sanitizer,
		metrics:   collector,
	}
}

// Save は栄養記録を保存して保存結果の行を返す。
// food_name, serving_size, caloriesは必須。欠けている場合は行を書き込まず
// バリデーションエラーを返す。healthy_scoreのデフォルトは5、notesのデフォルトは空文字列。
func (s *LogService) Save(ctx context.Context, input SaveLogInput) (*model.NutritionLog, error) {
	if input.FoodName == nil || input.ServingSize == nil || input.Calories == nil {
		return nil, model.NewValidationError(
			"Missing required fields: food_name, serving_size, and calories are required",
		)
	}

	foodName := s.sanitizer.Sanitize(*input.FoodName)
	if foodName == "" {
		return nil, model.NewValidationError(
			"Missing required fields: food_name, serving_size, and calories are required",
		)
	}

	entry := &model.NutritionLog{
		FoodName:     foodName,
		ServingSize:  *input.ServingSize,
		Calories:     *input.Calories,
		HealthyScore: defaultHealthyScore,
	}
	if input.Macronutrients != nil {
		entry.ProteinG = input.Macronutrients.ProteinG
		entry.CarbohydratesG = input.Macronutrients.CarbohydratesG
		entry.FatsG = input.Macronutrients.FatsG
		entry.FiberG = input.Macronutrients.FiberG
		entry.SugarsG = input.Macronutrients.SugarsG
	}
	if input.Micronutrients != nil {
		entry.SodiumMg = input.Micronutrients.SodiumMg
		entry.PotassiumMg = input.Micronutrients.PotassiumMg
		entry.CalciumMg = input.Micronutrients.CalciumMg
		entry.IronMg = input.Micronutrients.IronMg
		entry.VitaminCMg = input.Micronutrients.VitaminCMg
		entry.VitaminDMcg = input.Micronutrients.VitaminDMcg
		entry.VitaminB12Mcg = input.Micronutrients.VitaminB12Mcg
	}
	if input.HealthyScore != nil {
		entry.HealthyScore = *input.HealthyScore
	}
	if input.Notes != nil {
		entry.Notes = s.sanitizer.Sanitize(*input.Notes)
	}

	saved, err := s.logRepo.Create(ctx, entry)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordLogSaved()

	return saved, nil
}

// List は全ての栄養記録を作成日時の降順で返す。
func (s *LogService) List(ctx context.Context) ([]*model.NutritionLog, error) {
	return s.logRepo.ListAll(ctx)
}

// ListByDate は指定された日付（暦日）に作成された栄養記録を返す。
// dateはYYYY-MM-DD形式でなければならない。
func (s *LogService) ListByDate(ctx context.Context, date string) ([]*model.NutritionLog, error) {
	if !isValidDate(date) {
		return nil, model.NewValidationError("Invalid date format. Use YYYY-MM-DD")
	}
	return s.logRepo.ListByDate(ctx, date)
}

// ListByRange は作成日が指定範囲（両端含む）にある栄養記録を返す。
// 開始日が終了日より後の場合はエラーではなく空の結果となる。
func (s *LogService) ListByRange(ctx context.Context, start, end string) ([]*model.NutritionLog, error) {
	if !isValidDate(start) || !isValidDate(end) {
		return nil, model.NewValidationError("Invalid date format. Use YYYY-MM-DD")
	}
	return s.logRepo.ListByRange(ctx, start, end)
}

// GetByID はIDで栄養記録を取得する。存在しない場合はNotFoundエラーを返す。
func (s *LogService) GetByID(ctx context.Context, id int64) (*model.NutritionLog, error) {
	entry, err := s.logRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, model.NewNotFoundError("Nutrition log not found")
	}
	return entry, nil
}

// DeleteByID はIDで栄養記録を削除し、削除された行を返す。
// 存在しない場合はNotFoundエラーを返す。
func (s *LogService) DeleteByID(ctx context.Context, id int64) (*model.NutritionLog, error) {
	deleted, err := s.logRepo.DeleteByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if deleted == nil {
		return nil, model.NewNotFoundError("Nutrition log not found")
	}
	return deleted, nil
}

// isValidDate はYYYY-MM-DD形式の有効な日付かを検証する。
func isValidDate(date string) bool {
	_, err := time.Parse(dateLayout, date)
	return err == nil
}
