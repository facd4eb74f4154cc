package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/nutrilog/internal/metrics"
	"github.com/hitoshi/nutrilog/internal/middleware"
)

// Pinger はヘルスチェックに必要なデータストア疎通確認のインターフェース。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger *slog.Logger

	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	UserFinder        middleware.UserFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// サービス
	AuthService   AuthServiceInterface
	LookupService LookupServiceInterface
	LogService    LogServiceInterface

	// 観測
	Metrics  metrics.MetricsCollector
	Gatherer prometheus.Gatherer

	// ヘルスチェック
	DB Pinger
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Logging → Recovery → CORS → RateLimit(General)
//
// /auth/me, /auth/refresh, /auth/logout はさらにRequireAuthの後段、
// /nutrition は生成専用のより厳しいレート制限の後段に置く。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Metrics))
	r.Use(middleware.NewRecoveryMiddleware(deps.Logger))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(deps.RateLimiter.GeneralMiddleware())

	authMiddleware := middleware.NewAuthMiddleware(deps.TokenVerifier, deps.UserFinder, deps.Logger)

	authHandler := NewAuthHandler(deps.AuthService, deps.Metrics)
	nutritionHandler := NewNutritionHandler(deps.LookupService)
	logHandler := NewLogHandler(deps.LogService)

	// ヘルスチェックと監視
	r.Get("/health", newHealthHandler(deps.DB, deps.Logger))
	r.Handle("/metrics", metrics.Handler(deps.Gatherer))

	// セッションハンドシェイク
	r.Route("/auth", func(r chi.Router) {
		r.Post("/verify", authHandler.Verify)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)
			r.Get("/me", authHandler.Me)
			r.Post("/refresh", authHandler.Refresh)
			r.Delete("/logout", authHandler.Logout)
		})
	})

	// 栄養データ生成（生成専用レート制限を追加）
	r.With(deps.RateLimiter.LookupMiddleware()).Post("/nutrition", nutritionHandler.Lookup)

	// 栄養記録
	r.Route("/save", func(r chi.Router) {
		r.Post("/", logHandler.Save)
		r.Get("/", logHandler.List)
		r.Get("/date/{date}", logHandler.ListByDate)
		r.Get("/range/query", logHandler.ListByRange)
		r.Get("/{id}", logHandler.Get)
		r.Delete("/{id}", logHandler.Delete)
	})

	// 未定義ルートにも構造化エラーを返す
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteErrorResponse(w, http.StatusNotFound,
			"Not found", "The requested resource does not exist")
	})

	return r
}

// newHealthHandler はデータストアの疎通を確認するヘルスチェックハンドラーを返す。
// GET /health
func newHealthHandler(db Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			logger.Error("health check failed",
				slog.String("error", err.Error()),
			)
			middleware.WriteErrorResponse(w, http.StatusServiceUnavailable,
				"Service unavailable", "Database connection failed")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "OK",
			"message": "Server is running",
		})
	}
}
