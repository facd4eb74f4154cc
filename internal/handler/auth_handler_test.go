package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/nutrilog/internal/auth"
	"github.com/hitoshi/nutrilog/internal/middleware"
	"github.com/hitoshi/nutrilog/internal/model"
)

// mockAuthService はAuthServiceInterfaceのモック。
type mockAuthService struct {
	handleVerifyFn   func(ctx context.Context, appwriteJWT string) (*auth.VerifyResult, error)
	getCurrentUserFn func(ctx context.Context, userID int64) (*model.User, error)
	refreshFn        func(user *model.User) (string, error)
}

func (m *mockAuthService) HandleVerify(ctx context.Context, appwriteJWT string) (*auth.VerifyResult, error) {
	return m.handleVerifyFn(ctx, appwriteJWT)
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, userID int64) (*model.User, error) {
	return m.getCurrentUserFn(ctx, userID)
}

func (m *mockAuthService) Refresh(user *model.User) (string, error) {
	return m.refreshFn(user)
}

// stubMetrics はMetricsCollectorの呼び出しを記録するスタブ。
type stubMetrics struct {
	handshakes   []string
	logsSaved    int
	httpStatuses []int
}

func (s *stubMetrics) RecordLookupSuccess()                {}
func (s *stubMetrics) RecordLookupFailure()                {}
func (s *stubMetrics) RecordLookupLatency(d time.Duration) {}
func (s *stubMetrics) RecordHandshake(result string) {
	s.handshakes = append(s.handshakes, result)
}
func (s *stubMetrics) RecordLogSaved() { s.logsSaved++ }
func (s *stubMetrics) RecordHTTPStatus(code int) {
	s.httpStatuses = append(s.httpStatuses, code)
}

func testUser() *model.User {
	return &model.User{
		ID:         42,
		AppwriteID: "aw-123",
		Email:      "user@example.com",
		Name:       "Test User",
		CreatedAt:  time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2025, 11, 2, 10, 0, 0, 0, time.UTC),
	}
}

func TestVerify(t *testing.T) {
	service := &mockAuthService{
		handleVerifyFn: func(ctx context.Context, appwriteJWT string) (*auth.VerifyResult, error) {
			if appwriteJWT != "appwrite-jwt" {
				t.Errorf("appwriteJWT = %q, want appwrite-jwt", appwriteJWT)
			}
			return &auth.VerifyResult{Token: "backend-token", User: testUser()}, nil
		},
	}
	collector := &stubMetrics{}
	h := NewAuthHandler(service, collector)

	req := httptest.NewRequest(http.MethodPost, "/auth/verify",
		strings.NewReader(`{"appwriteJwt": "appwrite-jwt"}`))
	w := httptest.NewRecorder()

	h.Verify(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp verifyResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Error("success = false, want true")
	}
	if resp.Message != "Authentication successful" {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.Token != "backend-token" {
		t.Errorf("token = %q, want backend-token", resp.Token)
	}
	if resp.User.ID != 42 || resp.User.AppwriteID != "aw-123" {
		t.Errorf("user = %+v", resp.User)
	}

	if len(collector.handshakes) != 1 || collector.handshakes[0] != "success" {
		t.Errorf("handshakes = %v, want [success]", collector.handshakes)
	}
}

func TestVerify_MissingJWT(t *testing.T) {
	service := &mockAuthService{
		handleVerifyFn: func(ctx context.Context, appwriteJWT string) (*auth.VerifyResult, error) {
			t.Error("HandleVerify should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(service, &stubMetrics{})

	req := httptest.NewRequest(http.MethodPost, "/auth/verify", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	h.Verify(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Message != "appwriteJwt is required" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestVerify_InvalidAppwriteSession(t *testing.T) {
	service := &mockAuthService{
		handleVerifyFn: func(ctx context.Context, appwriteJWT string) (*auth.VerifyResult, error) {
			return nil, model.NewInvalidExternalSessionError()
		},
	}
	collector := &stubMetrics{}
	h := NewAuthHandler(service, collector)

	req := httptest.NewRequest(http.MethodPost, "/auth/verify",
		strings.NewReader(`{"appwriteJwt": "bad-jwt"}`))
	w := httptest.NewRecorder()

	h.Verify(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Error != "Authentication failed" {
		t.Errorf("error = %q, want Authentication failed", body.Error)
	}
	if body.Message != "Invalid or expired Appwrite session" {
		t.Errorf("message = %q", body.Message)
	}

	if len(collector.handshakes) != 1 || collector.handshakes[0] != "fail" {
		t.Errorf("handshakes = %v, want [fail]", collector.handshakes)
	}
}

func TestMe(t *testing.T) {
	user := testUser()
	service := &mockAuthService{
		getCurrentUserFn: func(ctx context.Context, userID int64) (*model.User, error) {
			if userID != 42 {
				t.Errorf("userID = %d, want 42", userID)
			}
			return user, nil
		},
	}
	h := NewAuthHandler(service, &stubMetrics{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(middleware.ContextWithUser(req.Context(), user))
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Success bool `json:"success"`
		User    struct {
			ID        int64     `json:"id"`
			Email     string    `json:"email"`
			UpdatedAt time.Time `json:"updatedAt"`
		} `json:"user"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Error("success = false, want true")
	}
	if resp.User.ID != 42 {
		t.Errorf("user.id = %d, want 42", resp.User.ID)
	}
	if !resp.User.UpdatedAt.Equal(user.UpdatedAt) {
		t.Errorf("updatedAt = %v, want %v", resp.User.UpdatedAt, user.UpdatedAt)
	}
}

func TestMe_UserRowGone(t *testing.T) {
	service := &mockAuthService{
		getCurrentUserFn: func(ctx context.Context, userID int64) (*model.User, error) {
			return nil, nil
		},
	}
	h := NewAuthHandler(service, &stubMetrics{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(middleware.ContextWithUser(req.Context(), testUser()))
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestRefresh(t *testing.T) {
	service := &mockAuthService{
		refreshFn: func(user *model.User) (string, error) {
			if user.ID != 42 {
				t.Errorf("user.ID = %d, want 42", user.ID)
			}
			return "new-token", nil
		},
	}
	h := NewAuthHandler(service, &stubMetrics{})

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req = req.WithContext(middleware.ContextWithUser(req.Context(), testUser()))
	w := httptest.NewRecorder()

	h.Refresh(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Token   string `json:"token"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Message != "Token refreshed successfully" {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.Token != "new-token" {
		t.Errorf("token = %q, want new-token", resp.Token)
	}
}

func TestLogout(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &stubMetrics{})

	req := httptest.NewRequest(http.MethodDelete, "/auth/logout", nil)
	req = req.WithContext(middleware.ContextWithUser(req.Context(), testUser()))
	w := httptest.NewRecorder()

	h.Logout(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success || resp.Message != "Logged out successfully" {
		t.Errorf("response = %+v", resp)
	}
}
