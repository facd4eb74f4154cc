package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/nutrilog/internal/middleware"
	"github.com/hitoshi/nutrilog/internal/model"
	"github.com/hitoshi/nutrilog/internal/nutrition"
)

// LogServiceInterface は栄養記録ハンドラーが必要とするサービスインターフェース。
type LogServiceInterface interface {
	// Save は栄養記録を保存して保存結果の行を返す。
	Save(ctx context.Context, input nutrition.SaveLogInput) (*model.NutritionLog, error)
	// List は全記録を作成日時の降順で返す。
	List(ctx context.Context) ([]*model.NutritionLog, error)
	// ListByDate は指定日付（暦日）の記録を返す。
	ListByDate(ctx context.Context, date string) ([]*model.NutritionLog, error)
	// ListByRange は指定範囲（両端含む）の記録を返す。
	ListByRange(ctx context.Context, start, end string) ([]*model.NutritionLog, error)
	// GetByID はIDで記録を取得する。
	GetByID(ctx context.Context, id int64) (*model.NutritionLog, error)
	// DeleteByID はIDで記録を削除し、削除された行を返す。
	DeleteByID(ctx context.Context, id int64) (*model.NutritionLog, error)
}

// LogHandler は栄養記録のHTTPハンドラー。
type LogHandler struct {
	service LogServiceInterface
}

// NewLogHandler はLogHandlerを生成する。
func NewLogHandler(service LogServiceInterface) *LogHandler {
	return &LogHandler{service: service}
}

// listResponse は記録一覧のレスポンス。
type listResponse struct {
	Success bool                  `json:"success"`
	Count   int                   `json:"count"`
	Data    []*model.NutritionLog `json:"data"`
}

// Save は栄養記録を保存する。
// POST /save
func (h *LogHandler) Save(w http.ResponseWriter, r *http.Request) {
	var input nutrition.SaveLogInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			"Bad request", "Invalid JSON in request body")
		return
	}

	saved, err := h.service.Save(r.Context(), input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"message": "Nutrition data saved successfully",
		"data":    saved,
	})
}

// List は全記録を返す。
// GET /save
func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	logs, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeListResponse(w, logs)
}

// ListByDate は指定日付の記録を返す。
// GET /save/date/{date}
func (h *LogHandler) ListByDate(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	logs, err := h.service.ListByDate(r.Context(), date)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeListResponse(w, logs)
}

// ListByRange は指定範囲の記録を返す。
// GET /save/range/query?startDate=YYYY-MM-DD&endDate=YYYY-MM-DD
func (h *LogHandler) ListByRange(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("startDate")
	end := r.URL.Query().Get("endDate")

	logs, err := h.service.ListByRange(r.Context(), start, end)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeListResponse(w, logs)
}

// Get はIDで記録を取得する。
// GET /save/{id}
func (h *LogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseLogID(w, r)
	if !ok {
		return
	}

	entry, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"data":    entry,
	})
}

// Delete はIDで記録を削除する。
// DELETE /save/{id}
func (h *LogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseLogID(w, r)
	if !ok {
		return
	}

	deleted, err := h.service.DeleteByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"message": "Nutrition log deleted successfully",
		"data":    deleted,
	})
}

// parseLogID はURLパラメータのIDを整数にパースする。不正な場合は400を書き込む。
func parseLogID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			"Bad request", "Invalid nutrition log ID")
		return 0, false
	}
	return id, true
}

// writeListResponse は記録一覧を件数付きで書き込む。
func writeListResponse(w http.ResponseWriter, logs []*model.NutritionLog) {
	if logs == nil {
		logs = []*model.NutritionLog{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listResponse{
		Success: true,
		Count:   len(logs),
		Data:    logs,
	})
}
