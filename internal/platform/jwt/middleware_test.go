package jwtmw

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// TestMain はテスト実行前にGinをテストモードに設定します。
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func runGuard(t *testing.T, verifier Verifier, authHeader string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		c.Request.Header.Set("Authorization", authHeader)
	}

	handler := AuthRequired(verifier)
	handler(c)
	return w, c
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return body["message"]
}

// TestAuthRequired_MissingBearerToken はBearerトークンがない場合やプレフィックスが不正な場合に401が返されることを検証します。
func TestAuthRequired_MissingBearerToken(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	tests := []struct {
		name       string
		authHeader string
	}{
		{"no header", ""},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"bearer lowercase", "bearer token123"},
		{"no space after Bearer", "Bearertoken123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, c := runGuard(t, svc, tt.authHeader)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
			}
			if !c.IsAborted() {
				t.Error("expected request to be aborted")
			}
			if got := message(t, w); got != "No token provided. Please log in." {
				t.Errorf("unexpected message: %q", got)
			}
		})
	}
}

// TestAuthRequired_ExpiredToken は期限切れトークンが専用メッセージ付きの401で拒否されることを検証します。
func TestAuthRequired_ExpiredToken(t *testing.T) {
	issuer := NewTokenService("test-secret", -time.Minute)
	tokenStr, err := issuer.IssueToken(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	verifier := NewTokenService("test-secret", time.Hour)
	w, c := runGuard(t, verifier, "Bearer "+tokenStr)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
	if !c.IsAborted() {
		t.Error("expected request to be aborted")
	}
	if got := message(t, w); got != "Token has expired. Please log in again." {
		t.Errorf("unexpected message: %q", got)
	}
}

// TestAuthRequired_InvalidToken は不正なトークン（改ざん・別シークレット等）で401が返されることを検証します。
func TestAuthRequired_InvalidToken(t *testing.T) {
	other := NewTokenService("other-secret", time.Hour)
	foreign, err := other.IssueToken(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	verifier := NewTokenService("test-secret", time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage token", "garbage"},
		{"wrong secret", foreign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := runGuard(t, verifier, "Bearer "+tt.token)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
			}
			if got := message(t, w); got != "Invalid token. Please log in again." {
				t.Errorf("unexpected message: %q", got)
			}
		})
	}
}

// TestAuthRequired_ValidToken は有効なトークンでユーザーIDがコンテキストに格納されることを検証します。
func TestAuthRequired_ValidToken(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	tokenStr, err := svc.IssueToken(42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w, c := runGuard(t, svc, "Bearer "+tokenStr)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if c.IsAborted() {
		t.Error("expected request to proceed")
	}

	v, ok := c.Get(ContextUserID)
	if !ok {
		t.Fatal("expected user ID in context")
	}
	if id, ok := v.(uint); !ok || id != 42 {
		t.Errorf("expected user ID 42, got %v", v)
	}
}
