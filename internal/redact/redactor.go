package redact

import (
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"jobfit/internal/types"
)

// Placeholder tokens substituted for captured contact details
const (
	EmailPlaceholder = "[EMAIL]"
	PhonePlaceholder = "[PHONE]"
	URLPlaceholder   = "[URL]"
)

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`(?:\+?\d{1,3}[\s.\-]?)?(?:\(\d{2,4}\)[\s.\-]?)?\d{3}[\s.\-]\d{3,4}[\s.\-]?\d{0,4}|\+\d{9,14}`)
	urlRe   = regexp.MustCompile(`https?://[^\s<>"]+|www\.[^\s<>"]+|linkedin\.com/in/[^\s<>"]+|github\.com/[^\s<>"]+`)
)

type span struct {
	start, end  int
	placeholder string
}

// Redactor strips contact details from resume text before it crosses into
// the scored artifacts. Captured details are returned separately so the
// recruiter surface can still show them.
type Redactor struct{}

// NewRedactor creates a redactor
func NewRedactor() *Redactor {
	return &Redactor{}
}

// Redact replaces contact details in text with placeholders and captures
// them in a CandidateDetail keyed by a fresh candidate ID. Replacement runs
// end-to-start so earlier offsets stay valid while rewriting.
func (r *Redactor) Redact(text string) (string, types.CandidateDetail) {
	detail := types.CandidateDetail{ID: uuid.New().String()}

	var spans []span

	for _, loc := range emailRe.FindAllStringIndex(text, -1) {
		if detail.Email == "" {
			detail.Email = text[loc[0]:loc[1]]
		}
		spans = append(spans, span{loc[0], loc[1], EmailPlaceholder})
	}

	for _, loc := range urlRe.FindAllStringIndex(text, -1) {
		if overlaps(spans, loc[0], loc[1]) {
			continue
		}
		detail.URLs = append(detail.URLs, text[loc[0]:loc[1]])
		spans = append(spans, span{loc[0], loc[1], URLPlaceholder})
	}

	for _, loc := range phoneRe.FindAllStringIndex(text, -1) {
		if overlaps(spans, loc[0], loc[1]) {
			continue
		}
		candidate := strings.TrimSpace(text[loc[0]:loc[1]])
		// Year ranges like "2019-2023" satisfy the pattern but carry too
		// few digits to be a dialable number
		if countDigits(candidate) < 9 {
			continue
		}
		if detail.Phone == "" {
			detail.Phone = candidate
		}
		spans = append(spans, span{loc[0], loc[1], PhonePlaceholder})
	}

	// Rewrite from the end so unprocessed spans keep their offsets
	sort.Slice(spans, func(i, j int) bool { return spans[i].start > spans[j].start })

	redacted := text
	for _, s := range spans {
		redacted = redacted[:s.start] + s.placeholder + redacted[s.end:]
	}

	return redacted, detail
}

// overlaps reports whether [start,end) intersects any recorded span
func overlaps(spans []span, start, end int) bool {
	for _, s := range spans {
		if start < s.end && end > s.start {
			return true
		}
	}
	return false
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
