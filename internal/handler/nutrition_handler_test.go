package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/nutrilog/internal/middleware"
	"github.com/hitoshi/nutrilog/internal/model"
)

// mockLookupService はLookupServiceInterfaceのモック。
type mockLookupService struct {
	lookupFn func(ctx context.Context, food string) (*model.NutritionData, error)
}

func (m *mockLookupService) Lookup(ctx context.Context, food string) (*model.NutritionData, error) {
	return m.lookupFn(ctx, food)
}

func TestLookupHandler(t *testing.T) {
	service := &mockLookupService{
		lookupFn: func(ctx context.Context, food string) (*model.NutritionData, error) {
			if food != "banana 100g" {
				t.Errorf("food = %q, want banana 100g", food)
			}
			return &model.NutritionData{
				FoodName:     "Banana",
				ServingSize:  100,
				Calories:     89,
				HealthyScore: 8,
			}, nil
		},
	}
	h := NewNutritionHandler(service)

	req := httptest.NewRequest(http.MethodPost, "/nutrition",
		strings.NewReader(`{"food": "banana 100g"}`))
	w := httptest.NewRecorder()

	h.Lookup(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	// レスポンスは生成データそのもの（successラッパーなし）
	var data model.NutritionData
	if err := json.NewDecoder(w.Body).Decode(&data); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if data.FoodName != "Banana" {
		t.Errorf("food_name = %q, want Banana", data.FoodName)
	}
	if data.Calories != 89 {
		t.Errorf("calories = %v, want 89", data.Calories)
	}
}

func TestLookupHandler_MissingFood(t *testing.T) {
	service := &mockLookupService{
		lookupFn: func(ctx context.Context, food string) (*model.NutritionData, error) {
			return nil, model.NewValidationError(`Missing "food" field in request body.`)
		},
	}
	h := NewNutritionHandler(service)

	req := httptest.NewRequest(http.MethodPost, "/nutrition", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	h.Lookup(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Message != `Missing "food" field in request body.` {
		t.Errorf("message = %q", body.Message)
	}
}

func TestLookupHandler_UpstreamFailure(t *testing.T) {
	service := &mockLookupService{
		lookupFn: func(ctx context.Context, food string) (*model.NutritionData, error) {
			return nil, model.NewUpstreamLookupError("Failed to fetch nutrition data from Gemini API.")
		},
	}
	h := NewNutritionHandler(service)

	req := httptest.NewRequest(http.MethodPost, "/nutrition",
		strings.NewReader(`{"food": "banana"}`))
	w := httptest.NewRecorder()

	h.Lookup(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}

	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Message != "Failed to fetch nutrition data from Gemini API." {
		t.Errorf("message = %q", body.Message)
	}
}

func TestLookupHandler_InvalidJSON(t *testing.T) {
	service := &mockLookupService{
		lookupFn: func(ctx context.Context, food string) (*model.NutritionData, error) {
			t.Error("Lookup should not be called for invalid JSON")
			return nil, nil
		},
	}
	h := NewNutritionHandler(service)

	req := httptest.NewRequest(http.MethodPost, "/nutrition", strings.NewReader(`not json`))
	w := httptest.NewRecorder()

	h.Lookup(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
