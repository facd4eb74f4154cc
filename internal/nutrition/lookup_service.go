// Package nutrition は栄養データの生成と記録の管理機能を提供する。
package nutrition

import (
	"context"
	"time"

	"github.com/hitoshi/nutrilog/internal/metrics"
	"github.com/hitoshi/nutrilog/internal/model"
	"github.com/hitoshi/nutrilog/internal/security"
)

// NutritionGenerator は食品名から構造化栄養データを生成するインターフェース。
type NutritionGenerator interface {
	GenerateNutrition(ctx context.Context, food string) (*model.NutritionData, error)
}

// LookupService は生成AIによる栄養データ取得のサービス。
// 生成結果の自由記述フィールドをサニタイズし、メトリクスを記録する。
type LookupService struct {
	generator NutritionGenerator
	sanitizer security.TextSanitizerService
	metrics   metrics.MetricsCollector
}

// NewLookupService はLookupServiceの新しいインスタンスを生成する。
func NewLookupService(
	generator NutritionGenerator,
	sanitizer security.TextSanitizerService,
	collector metrics.MetricsCollector,
) *LookupService {
	return &LookupService{
		generator: generator,
		sanitizer: sanitizer,
		metrics:   collector,
	}
}

// Lookup は食品の自由記述から構造化栄養データを取得する。
// foodが空の場合はバリデーションエラーを返す。
// 生成AIの応答に含まれるfood_nameとnotesはサニタイズされる。
func (s *LookupService) Lookup(ctx context.Context, food string) (*model.NutritionData, error) {
	food = s.sanitizer.Sanitize(food)
	if food == "" {
		return nil, model.NewValidationError(`Missing "food" field in request body.`)
	}

	start := time.Now()
	data, err := s.generator.GenerateNutrition(ctx, food)
	s.metrics.RecordLookupLatency(time.Since(start))
	if err != nil {
		s.metrics.RecordLookupFailure()
		return nil, err
	}
	s.metrics.RecordLookupSuccess()

	data.FoodName = s.sanitizer.Sanitize(data.FoodName)
	data.Notes = s.sanitizer.Sanitize(data.Notes)

	return data, nil
}
