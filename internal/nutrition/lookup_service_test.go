package nutrition

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/nutrilog/internal/model"
	"github.com/hitoshi/nutrilog/internal/security"
)

// mockGenerator はNutritionGeneratorのモック。
type mockGenerator struct {
	generateFn func(ctx context.Context, food string) (*model.NutritionData, error)
}

func (m *mockGenerator) GenerateNutrition(ctx context.Context, food string) (*model.NutritionData, error) {
	return m.generateFn(ctx, food)
}

// stubMetrics はMetricsCollectorの呼び出しを記録するスタブ。
type stubMetrics struct {
	lookupSuccess int
	lookupFail    int
	latencyCalls  int
	handshakes    []string
	logsSaved     int
	httpStatuses  []int
}

func (s *stubMetrics) RecordLookupSuccess()                  { s.lookupSuccess++ }
func (s *stubMetrics) RecordLookupFailure()                  { s.lookupFail++ }
func (s *stubMetrics) RecordLookupLatency(d time.Duration)   { s.latencyCalls++ }
func (s *stubMetrics) RecordHandshake(result string)         { s.handshakes = append(s.handshakes, result) }
func (s *stubMetrics) RecordLogSaved()                       { s.logsSaved++ }
func (s *stubMetrics) RecordHTTPStatus(code int)             { s.httpStatuses = append(s.httpStatuses, code) }

func TestLookup(t *testing.T) {
	gen := &mockGenerator{
		generateFn: func(ctx context.Context, food string) (*model.NutritionData, error) {
			if food != "banana 100g" {
				t.Errorf("food = %q, want %q", food, "banana 100g")
			}
			return &model.NutritionData{
				FoodName:     "Banana",
				ServingSize:  100,
				Calories:     89,
				HealthyScore: 8,
				Notes:        "Good source of potassium.",
			}, nil
		},
	}
	collector := &stubMetrics{}
	svc := NewLookupService(gen, security.NewTextSanitizer(), collector)

	got, err := svc.Lookup(context.Background(), "banana 100g")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if got.FoodName != "Banana" {
		t.Errorf("FoodName = %s, want Banana", got.FoodName)
	}
	if collector.lookupSuccess != 1 {
		t.Errorf("lookupSuccess = %d, want 1", collector.lookupSuccess)
	}
	if collector.latencyCalls != 1 {
		t.Errorf("latencyCalls = %d, want 1", collector.latencyCalls)
	}
}

func TestLookup_EmptyFood(t *testing.T) {
	gen := &mockGenerator{
		generateFn: func(ctx context.Context, food string) (*model.NutritionData, error) {
			t.Error("generator should not be called for empty food")
			return nil, nil
		},
	}
	svc := NewLookupService(gen, security.NewTextSanitizer(), &stubMetrics{})

	_, err := svc.Lookup(context.Background(), "  ")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidationFailed {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLookup_SanitizesResponseText(t *testing.T) {
	gen := &mockGenerator{
		generateFn: func(ctx context.Context, food string) (*model.NutritionData, error) {
			return &model.NutritionData{
				FoodName: `Apple<script>alert("xss")</script>`,
				Notes:    "<b>Rich</b> in fiber",
			}, nil
		},
	}
	svc := NewLookupService(gen, security.NewTextSanitizer(), &stubMetrics{})

	got, err := svc.Lookup(context.Background(), "apple")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if got.FoodName != "Apple" {
		t.Errorf("FoodName = %q, want %q", got.FoodName, "Apple")
	}
	if got.Notes != "Rich in fiber" {
		t.Errorf("Notes = %q, want %q", got.Notes, "Rich in fiber")
	}
}

func TestLookup_UpstreamFailureRecordsMetric(t *testing.T) {
	gen := &mockGenerator{
		generateFn: func(ctx context.Context, food string) (*model.NutritionData, error) {
			return nil, model.NewUpstreamLookupError("Failed to fetch nutrition data from Gemini API.")
		},
	}
	collector := &stubMetrics{}
	svc := NewLookupService(gen, security.NewTextSanitizer(), collector)

	_, err := svc.Lookup(context.Background(), "banana")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUpstreamLookupFailed {
		t.Fatalf("expected upstream lookup failure, got %v", err)
	}
	if collector.lookupFail != 1 {
		t.Errorf("lookupFail = %d, want 1", collector.lookupFail)
	}
	if collector.lookupSuccess != 0 {
		t.Errorf("lookupSuccess = %d, want 0", collector.lookupSuccess)
	}
}
