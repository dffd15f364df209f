package server

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobfit/internal/errors"
)

var testLogger = errors.NewLogger(slog.LevelError)

func TestAuthMiddleware(t *testing.T) {
	s := &Server{
		APIKeys: map[string]bool{"valid-key-12345": true},
		Logger:  testLogger,
	}

	handler := s.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		header     string
		value      string
		wantStatus int
	}{
		{"valid api key header", "X-API-Key", "valid-key-12345", http.StatusOK},
		{"valid bearer token", "Authorization", "Bearer valid-key-12345", http.StatusOK},
		{"invalid api key", "X-API-Key", "wrong-key", http.StatusUnauthorized},
		{"missing api key", "", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/analyze", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()

			handler(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestAuthMiddlewareDisabledWithoutKeys(t *testing.T) {
	s := &Server{APIKeys: map[string]bool{}, Logger: testLogger}

	handler := s.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/analyze", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected open access with no keys configured, got %d", rec.Code)
	}
}

func TestRateLimiterBurst(t *testing.T) {
	limiter := NewRateLimiter(60, time.Minute, 2, testLogger)
	defer limiter.Close()

	if !limiter.Allow("ip:10.0.0.1") {
		t.Error("Expected first request within burst to pass")
	}
	if !limiter.Allow("ip:10.0.0.1") {
		t.Error("Expected second request within burst to pass")
	}
	if limiter.Allow("ip:10.0.0.1") {
		t.Error("Expected request beyond burst capacity to be rejected")
	}

	// A different key has its own bucket
	if !limiter.Allow("ip:10.0.0.2") {
		t.Error("Expected unrelated key to have independent capacity")
	}
}

func TestGetRateLimitKey(t *testing.T) {
	tests := []struct {
		name     string
		byAPIKey bool
		byIP     bool
		setup    func(*http.Request)
		want     string
	}{
		{
			name:     "api key preferred",
			byAPIKey: true,
			byIP:     true,
			setup:    func(r *http.Request) { r.Header.Set("X-API-Key", "abc") },
			want:     "api:abc",
		},
		{
			name:     "bearer token",
			byAPIKey: true,
			setup:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer xyz") },
			want:     "api:xyz",
		},
		{
			name:  "ip fallback",
			byIP:  true,
			setup: func(r *http.Request) { r.RemoteAddr = "192.0.2.7:1234" },
			want:  "ip:192.0.2.7",
		},
		{
			name: "limiting disabled",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.setup != nil {
				tt.setup(req)
			}
			if got := getRateLimitKey(req, tt.byAPIKey, tt.byIP); got != tt.want {
				t.Errorf("Expected key %q, got %q", tt.want, got)
			}
		})
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*http.Request)
		want  string
	}{
		{
			name:  "x-forwarded-for first valid ip",
			setup: func(r *http.Request) { r.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1") },
			want:  "203.0.113.5",
		},
		{
			name:  "x-real-ip",
			setup: func(r *http.Request) { r.Header.Set("X-Real-IP", "198.51.100.9") },
			want:  "198.51.100.9",
		},
		{
			name:  "remote addr",
			setup: func(r *http.Request) { r.RemoteAddr = "192.0.2.1:5555" },
			want:  "192.0.2.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			if got := getClientIP(req); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"revision rejected", errors.NewRevisionError(errors.ErrCodeInvalidComment, "empty", nil), http.StatusBadRequest},
		{"validation", errors.NewValidationError(errors.ErrCodeInvalidTransition, "bad state", nil), http.StatusBadRequest},
		{"evidence", errors.NewEvidenceError(errors.ErrCodeSnippetNotFound, "no snippet", nil), http.StatusUnprocessableEntity},
		{"transient", errors.NewTransientError(errors.ErrCodeAIServiceFailed, "timeout", nil), http.StatusBadGateway},
		{"internal", errors.NewInternalError("STAGE_FAILED", "boom", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusForError(tt.err); got != tt.want {
				t.Errorf("Expected status %d, got %d", tt.want, got)
			}
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	if got := maskAPIKey("short"); got != "****" {
		t.Errorf("Expected short keys fully masked, got %q", got)
	}
	if got := maskAPIKey("abcdefgh12345678"); got != "abcdefgh****" {
		t.Errorf("Expected prefix plus mask, got %q", got)
	}
}
