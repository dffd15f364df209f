package match

import (
	"math"
	"regexp"
	"strings"
)

// SimilarityFunc scores how close two normalized skill strings are, in [0,1].
// Implementations must be pure: no randomness, no external calls. The
// function is injected so an embedding-backed implementation can replace the
// default without touching the matcher.
type SimilarityFunc func(a, b string) float64

var whitespaceRe = regexp.MustCompile(`\s+`)

// Normalize lower-cases and collapses whitespace so matching is insensitive
// to formatting differences between documents.
func Normalize(s string) string {
	return whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

// TrigramCosine is the default similarity function: cosine similarity over
// character trigram counts of the normalized inputs. Deterministic and
// cheap; a reasonable lexical stand-in for an embedding model.
func TrigramCosine(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	va := trigramCounts(na)
	vb := trigramCounts(nb)

	var dot, magA, magB float64
	for gram, ca := range va {
		magA += float64(ca * ca)
		if cb, ok := vb[gram]; ok {
			dot += float64(ca * cb)
		}
	}
	for _, cb := range vb {
		magB += float64(cb * cb)
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// trigramCounts pads short strings so single-token skills still produce grams
func trigramCounts(s string) map[string]int {
	padded := "  " + s + "  "
	counts := make(map[string]int)
	runes := []rune(padded)
	for i := 0; i+3 <= len(runes); i++ {
		counts[string(runes[i:i+3])]++
	}
	return counts
}
