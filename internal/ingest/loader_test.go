package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jobfit/internal/errors"
)

func TestLoadFile(t *testing.T) {
	tempDir := t.TempDir()

	content := "Senior Go engineer with 8 years of experience."
	path := filepath.Join(tempDir, "resume.txt")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	loader := NewLoader(0, nil)
	got, err := loader.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != content {
		t.Errorf("Expected %q, got %q", content, got)
	}
}

func TestLoadFileStripsHTML(t *testing.T) {
	tempDir := t.TempDir()

	path := filepath.Join(tempDir, "posting.html")
	doc := `<html><head><style>body { color: red; }</style></head>
<body><h1>Backend Engineer</h1><p>We need 5+ years of Go &amp; Kubernetes.</p>
<script>trackVisit();</script></body></html>`
	if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	loader := NewLoader(0, nil)
	got, err := loader.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if strings.Contains(got, "<") {
		t.Errorf("Expected tags stripped, got %q", got)
	}
	if strings.Contains(got, "trackVisit") || strings.Contains(got, "color: red") {
		t.Errorf("Expected script and style content dropped, got %q", got)
	}
	if !strings.Contains(got, "Backend Engineer") {
		t.Errorf("Expected heading text retained, got %q", got)
	}
	if !strings.Contains(got, "Go & Kubernetes") {
		t.Errorf("Expected entities decoded, got %q", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	loader := NewLoader(0, nil)
	_, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("Expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeSourceNotFound {
		t.Errorf("Expected code %s, got %s", errors.ErrCodeSourceNotFound, appErr.Code)
	}
	if errors.IsRetryable(err) {
		t.Error("Missing source should not be retryable")
	}
}

func TestLoadEmptySource(t *testing.T) {
	loader := NewLoader(0, nil)
	if _, err := loader.Load(context.Background(), ""); err == nil {
		t.Fatal("Expected error for empty source reference")
	}
}

func TestFetchURL(t *testing.T) {
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body><p>Platform Engineer role.</p></body></html>"))
	}))
	defer server.Close()

	loader := NewLoader(0, nil)
	got, err := loader.Load(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !strings.Contains(got, "Platform Engineer role.") {
		t.Errorf("Expected fetched text, got %q", got)
	}
	if strings.Contains(got, "<p>") {
		t.Errorf("Expected HTML stripped from fetched document, got %q", got)
	}
	if gotUserAgent == "" || !strings.Contains(gotUserAgent, "jobfit") {
		t.Errorf("Expected identifying User-Agent, got %q", gotUserAgent)
	}
}

func TestFetchURLNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	loader := NewLoader(0, nil)
	_, err := loader.Load(context.Background(), server.URL+"/gone")
	if err == nil {
		t.Fatal("Expected error for 404 response")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("Expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeSourceNotFound {
		t.Errorf("Expected code %s, got %s", errors.ErrCodeSourceNotFound, appErr.Code)
	}
}

func TestFetchURLServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	loader := NewLoader(0, nil)
	_, err := loader.Load(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error for 503 response")
	}
	if !errors.IsRetryable(err) {
		t.Error("Upstream 5xx should be retryable")
	}
}

func TestLoadFileRespectsMaxSize(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "big.txt")
	if err := os.WriteFile(path, []byte(strings.Repeat("a", 100)), 0600); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	loader := NewLoader(10, nil)
	got, err := loader.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 10 {
		t.Errorf("Expected content truncated to 10 bytes, got %d", len(got))
	}
}
