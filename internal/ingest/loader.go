package ingest

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"jobfit/internal/common"
	"jobfit/internal/errors"
	"jobfit/internal/utils"
)

const userAgent = "Mozilla/5.0 (compatible; jobfit/1.0; +https://github.com/jobfit)"

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<(script|style|noscript)[^>]*>.*?</(script|style|noscript)>`)
	htmlTagRe     = regexp.MustCompile(`(?s)<[^>]+>`)
	blankLinesRe  = regexp.MustCompile(`\n{3,}`)
	trailingWsRe  = regexp.MustCompile(`[ \t]+\n`)
)

// Loader materializes raw source text from a local file or an HTTP(S) URL.
// HTML sources are reduced to plain text before entering the pipeline.
type Loader struct {
	httpClient *http.Client
	files      *common.FileProcessor
	maxSize    int64
	logger     *errors.Logger
}

// NewLoader creates a loader. maxSize bounds how many bytes a single source
// may contribute; zero means no limit.
func NewLoader(maxSize int64, logger *errors.Logger) *Loader {
	return &Loader{
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		files:   common.NewFileProcessor(logger),
		maxSize: maxSize,
		logger:  logger,
	}
}

// Load resolves a source reference into text. Sources starting with http://
// or https:// are fetched; everything else is treated as a file path.
func (l *Loader) Load(ctx context.Context, source string) (string, error) {
	if source == "" {
		return "", errors.NewValidationError(errors.ErrCodeSourceNotFound,
			"Source reference cannot be empty", nil)
	}

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return l.fetchURL(ctx, source)
	}
	return l.loadFile(source)
}

// fetchURL retrieves a document over HTTP and flattens HTML responses
func (l *Loader) fetchURL(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.NewValidationError(errors.ErrCodeSourceNotFound,
			fmt.Sprintf("Invalid source URL: %s", url), err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,text/plain,*/*")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", errors.NewTransientError(errors.ErrCodeFetchFailed,
			fmt.Sprintf("Failed to fetch source: %s", url), err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil && l.logger != nil {
			l.logger.Warn("Failed to close response body", "url", url, "error", err)
		}
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return "", errors.NewIOError(errors.ErrCodeSourceNotFound,
			fmt.Sprintf("Source not found: %s", url), nil)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", errors.NewTransientError(errors.ErrCodeFetchFailed,
			fmt.Sprintf("Fetch returned status %d for %s", resp.StatusCode, url), nil)
	}

	reader := io.Reader(resp.Body)
	if l.maxSize > 0 {
		reader = io.LimitReader(resp.Body, l.maxSize)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return "", errors.NewTransientError(errors.ErrCodeFetchFailed,
			fmt.Sprintf("Failed to read response body from %s", url), err)
	}

	text := string(body)
	if isHTMLContent(resp.Header.Get("Content-Type"), text) {
		text = StripHTML(text)
	}

	if l.logger != nil {
		l.logger.Debug("Fetched source document",
			"url", url,
			"status", resp.StatusCode,
			"bytes", len(body),
			"size", utils.FormatFileSize(int64(len(body))))
	}

	return text, nil
}

// loadFile reads a local source document, flattening HTML files
func (l *Loader) loadFile(path string) (string, error) {
	if err := utils.ValidateInputFile(path); err != nil {
		return "", errors.NewIOError(errors.ErrCodeSourceNotFound,
			fmt.Sprintf("Source not found: %s", path), err)
	}

	content, err := l.files.ReadFile(path)
	if err != nil {
		return "", err
	}

	if l.maxSize > 0 && int64(len(content)) > l.maxSize {
		content = content[:l.maxSize]
	}

	ext := utils.GetFileExtension(path)
	if ext == ".html" || ext == ".htm" {
		content = StripHTML(content)
	}

	return content, nil
}

// isHTMLContent decides whether a fetched body needs tag stripping
func isHTMLContent(contentType, body string) bool {
	if strings.Contains(contentType, "text/html") {
		return true
	}
	trimmed := strings.TrimSpace(body)
	return strings.HasPrefix(trimmed, "<!DOCTYPE") || strings.HasPrefix(trimmed, "<html")
}

// StripHTML reduces an HTML document to readable plain text. Script and
// style blocks are dropped entirely, remaining tags removed, entities
// decoded, and runs of blank lines collapsed.
func StripHTML(input string) string {
	text := scriptBlockRe.ReplaceAllString(input, "")

	// Keep a line structure for block-level boundaries
	for _, tag := range []string{"</p>", "</div>", "</li>", "</h1>", "</h2>", "</h3>", "</h4>", "</tr>", "<br>", "<br/>", "<br />"} {
		text = strings.ReplaceAll(text, tag, tag+"\n")
	}

	text = htmlTagRe.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	text = trailingWsRe.ReplaceAllString(text, "\n")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
