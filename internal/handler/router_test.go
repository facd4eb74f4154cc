package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/nutrilog/internal/auth"
	"github.com/hitoshi/nutrilog/internal/metrics"
	"github.com/hitoshi/nutrilog/internal/middleware"
	"github.com/hitoshi/nutrilog/internal/model"
	"github.com/hitoshi/nutrilog/internal/token"
)

// mockPinger はPingerのモック。
type mockPinger struct {
	err error
}

func (m *mockPinger) PingContext(ctx context.Context) error {
	return m.err
}

// mockTokenVerifier はmiddleware.TokenVerifierのモック。
type mockTokenVerifier struct {
	verifyFn func(tokenString string) (*token.Claims, error)
}

func (m *mockTokenVerifier) Verify(tokenString string) (*token.Claims, error) {
	return m.verifyFn(tokenString)
}

// mockUserFinder はmiddleware.UserFinderのモック。
type mockUserFinder struct {
	findByIDFn func(ctx context.Context, id int64) (*model.User, error)
}

func (m *mockUserFinder) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return m.findByIDFn(ctx, id)
}

// newTestRouter はテスト用の依存でルーターを構築する。
func newTestRouter(t *testing.T, overrides func(deps *RouterDeps)) http.Handler {
	t.Helper()

	reg := prometheus.NewRegistry()
	rl := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(1000, 1000))
	t.Cleanup(rl.Stop)

	deps := &RouterDeps{
		Logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
		TokenVerifier: &mockTokenVerifier{
			verifyFn: func(string) (*token.Claims, error) {
				return nil, token.ErrTokenMalformed
			},
		},
		UserFinder: &mockUserFinder{
			findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
				return nil, nil
			},
		},
		CORSAllowedOrigin: "*",
		RateLimiter:       rl,
		AuthService: &mockAuthService{
			handleVerifyFn: func(ctx context.Context, appwriteJWT string) (*auth.VerifyResult, error) {
				return &auth.VerifyResult{Token: "backend-token", User: testUser()}, nil
			},
			getCurrentUserFn: func(ctx context.Context, userID int64) (*model.User, error) {
				return testUser(), nil
			},
			refreshFn: func(user *model.User) (string, error) {
				return "new-token", nil
			},
		},
		LookupService: &mockLookupService{
			lookupFn: func(ctx context.Context, food string) (*model.NutritionData, error) {
				return &model.NutritionData{FoodName: "Banana"}, nil
			},
		},
		LogService: &mockLogService{
			listFn: func(ctx context.Context) ([]*model.NutritionLog, error) {
				return []*model.NutritionLog{}, nil
			},
		},
		Metrics:  metrics.NewCollector(reg),
		Gatherer: reg,
		DB:       &mockPinger{},
	}

	if overrides != nil {
		overrides(deps)
	}

	return NewRouter(deps)
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "OK" {
		t.Errorf("status = %q, want OK", resp["status"])
	}
	if resp["message"] != "Server is running" {
		t.Errorf("message = %q", resp["message"])
	}
}

func TestRouter_HealthDegraded(t *testing.T) {
	router := newTestRouter(t, func(deps *RouterDeps) {
		deps.DB = &mockPinger{err: errors.New("connection refused")}
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/does-not-exist", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}

	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("404 body is not structured JSON: %v", err)
	}
	if body.Success {
		t.Error("success = true, want false")
	}
	if body.Error != "Not found" {
		t.Errorf("error = %q, want Not found", body.Error)
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "nutrilog_") {
		t.Error("metrics output does not contain nutrilog_ metrics")
	}
}

func TestRouter_VerifyIsPublic(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/verify",
		strings.NewReader(`{"appwriteJwt": "appwrite-jwt"}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_MeRequiresAuth(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Message != "No token provided" {
		t.Errorf("message = %q, want No token provided", body.Message)
	}
}

func TestRouter_MeWithValidToken(t *testing.T) {
	router := newTestRouter(t, func(deps *RouterDeps) {
		deps.TokenVerifier = &mockTokenVerifier{
			verifyFn: func(tokenString string) (*token.Claims, error) {
				return &token.Claims{UserID: 42}, nil
			},
		}
		deps.UserFinder = &mockUserFinder{
			findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
				return testUser(), nil
			},
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_NutritionLookup(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/nutrition",
		strings.NewReader(`{"food": "banana"}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var data model.NutritionData
	if err := json.NewDecoder(w.Body).Decode(&data); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if data.FoodName != "Banana" {
		t.Errorf("food_name = %q, want Banana", data.FoodName)
	}
}

// 生成エンドポイントには専用の厳しいレート制限がかかる。
func TestRouter_LookupRateLimit(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate:     1000,
		GeneralBurst:    1000,
		LookupRate:      0.001,
		LookupBurst:     1,
		CleanupInterval: time.Hour,
	})
	t.Cleanup(rl.Stop)

	router := newTestRouter(t, func(deps *RouterDeps) {
		deps.RateLimiter = rl
	})

	req := httptest.NewRequest(http.MethodPost, "/nutrition",
		strings.NewReader(`{"food": "banana"}`))
	req.RemoteAddr = "203.0.113.10:12345"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("first request: status = %d, want 200", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/nutrition",
		strings.NewReader(`{"food": "banana"}`))
	req.RemoteAddr = "203.0.113.10:12345"
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("second request: status = %d, want 429", w.Code)
	}
}

func TestRouter_SaveRoutes(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/save", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp listResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Error("success = false, want true")
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/save", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
}

func TestRouter_RequestIDHeader(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
}
