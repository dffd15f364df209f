package redact

import (
	"strings"
	"testing"
)

func TestRedactEmail(t *testing.T) {
	r := NewRedactor()

	text := "Contact: jane.doe+jobs@example.co.uk for details."
	redacted, detail := r.Redact(text)

	if strings.Contains(redacted, "jane.doe") {
		t.Errorf("Expected email removed, got %q", redacted)
	}
	if !strings.Contains(redacted, EmailPlaceholder) {
		t.Errorf("Expected placeholder %s, got %q", EmailPlaceholder, redacted)
	}
	if detail.Email != "jane.doe+jobs@example.co.uk" {
		t.Errorf("Expected captured email, got %q", detail.Email)
	}
	if detail.ID == "" {
		t.Error("Expected a candidate ID to be assigned")
	}
}

func TestRedactPhone(t *testing.T) {
	r := NewRedactor()

	tests := []struct {
		name  string
		text  string
		phone string
	}{
		{"dashed", "Call 555-123-4567 anytime.", "555-123-4567"},
		{"international", "Mobile: +14155552671.", "+14155552671"},
		{"dotted", "Phone: 415.555.2671", "415.555.2671"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			redacted, detail := r.Redact(tt.text)
			if !strings.Contains(redacted, PhonePlaceholder) {
				t.Errorf("Expected placeholder in %q", redacted)
			}
			if !strings.Contains(detail.Phone, tt.phone) {
				t.Errorf("Expected captured phone %q, got %q", tt.phone, detail.Phone)
			}
		})
	}
}

func TestRedactURLs(t *testing.T) {
	r := NewRedactor()

	text := "Profiles: https://github.com/janedoe and linkedin.com/in/janedoe"
	redacted, detail := r.Redact(text)

	if strings.Contains(redacted, "janedoe") {
		t.Errorf("Expected URLs removed, got %q", redacted)
	}
	if len(detail.URLs) != 2 {
		t.Fatalf("Expected 2 captured URLs, got %d: %v", len(detail.URLs), detail.URLs)
	}
}

func TestRedactMultipleOccurrences(t *testing.T) {
	r := NewRedactor()

	text := "a@b.com text c@d.org more e@f.net"
	redacted, detail := r.Redact(text)

	if strings.Count(redacted, EmailPlaceholder) != 3 {
		t.Errorf("Expected 3 placeholders, got %q", redacted)
	}
	// First occurrence wins for the captured detail
	if detail.Email != "a@b.com" {
		t.Errorf("Expected first email captured, got %q", detail.Email)
	}
	// Surrounding text survives intact
	if !strings.Contains(redacted, " text ") || !strings.Contains(redacted, " more ") {
		t.Errorf("Expected surrounding text preserved, got %q", redacted)
	}
}

func TestRedactCleanText(t *testing.T) {
	r := NewRedactor()

	text := "Ten years of Go experience, led a team of 8."
	redacted, detail := r.Redact(text)

	if redacted != text {
		t.Errorf("Expected text unchanged, got %q", redacted)
	}
	if detail.Email != "" || detail.Phone != "" || len(detail.URLs) != 0 {
		t.Errorf("Expected no captured details, got %+v", detail)
	}
}

func TestRedactDoesNotDoubleRedact(t *testing.T) {
	r := NewRedactor()

	// The email's digits must not also be treated as a phone number
	text := "Reach me at dev12345678@example.com"
	redacted, detail := r.Redact(text)

	if strings.Contains(redacted, PhonePlaceholder) {
		t.Errorf("Email content should not be phone-redacted, got %q", redacted)
	}
	if detail.Email == "" {
		t.Error("Expected email captured")
	}
}
