package evidence

import (
	"fmt"
	"sort"
	"strings"

	"jobfit/internal/errors"
	"jobfit/internal/types"
)

// Extract validates that snippet is a verbatim occurrence within the named
// source document and returns it as an EvidenceSnippet anchored at the first
// occurrence. A paraphrased or fabricated snippet fails hard: evidence is
// what makes scoring claims auditable, so nothing that is not an exact
// substring is ever recorded.
func Extract(snippet, sourceName, sourceDocument, claim string) (types.EvidenceSnippet, error) {
	if strings.TrimSpace(snippet) == "" {
		return types.EvidenceSnippet{}, errors.NewEvidenceError(errors.ErrCodeSnippetNotFound,
			fmt.Sprintf("Empty evidence snippet for claim %q", claim), nil)
	}

	offset := strings.Index(sourceDocument, snippet)
	if offset < 0 {
		return types.EvidenceSnippet{}, errors.NewEvidenceError(errors.ErrCodeSnippetNotFound,
			fmt.Sprintf("Snippet not found verbatim in %s document", sourceName), nil).
			WithContext("claim", claim).
			WithContext("snippet_chars", len(snippet))
	}

	return types.EvidenceSnippet{
		Text:           snippet,
		SourceDocument: sourceName,
		Claim:          claim,
		Offset:         offset,
	}, nil
}

// Collect runs Extract over several snippets for the same source document and
// returns all snippets or the first failure. Claims are processed in sorted
// order so the resulting slice is reproducible.
func Collect(sourceName, sourceDocument string, claims map[string]string) ([]types.EvidenceSnippet, error) {
	keys := make([]string, 0, len(claims))
	for claim := range claims {
		keys = append(keys, claim)
	}
	sort.Strings(keys)

	snippets := make([]types.EvidenceSnippet, 0, len(claims))
	for _, claim := range keys {
		s, err := Extract(claims[claim], sourceName, sourceDocument, claim)
		if err != nil {
			return nil, err
		}
		snippets = append(snippets, s)
	}
	return snippets, nil
}
