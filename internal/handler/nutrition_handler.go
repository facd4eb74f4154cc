package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/nutrilog/internal/middleware"
	"github.com/hitoshi/nutrilog/internal/model"
)

// LookupServiceInterface は栄養データ生成ハンドラーが必要とするサービスインターフェース。
type LookupServiceInterface interface {
	// Lookup は食品の自由記述から構造化栄養データを取得する。
	Lookup(ctx context.Context, food string) (*model.NutritionData, error)
}

// NutritionHandler は生成AIによる栄養データ取得のHTTPハンドラー。
type NutritionHandler struct {
	service LookupServiceInterface
}

// NewNutritionHandler はNutritionHandlerを生成する。
func NewNutritionHandler(service LookupServiceInterface) *NutritionHandler {
	return &NutritionHandler{service: service}
}

// lookupRequest は栄養データ生成リクエストのボディ。
type lookupRequest struct {
	Food string `json:"food"`
}

// Lookup は食品名から構造化栄養データを生成して返す。
// レスポンスは生成された栄養データそのもの（ラッパーなし）。
// POST /nutrition
func (h *NutritionHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			"Bad request", `Missing "food" field in request body.`)
		return
	}

	data, err := h.service.Lookup(r.Context(), req.Food)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}
