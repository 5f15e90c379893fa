// Package similarity quantifies code-reuse risk between coding answers.
// Comparison is language-agnostic: normalized text is sliced into character
// k-grams and overlap is measured with the Jaccard index.
package similarity

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	// K is the character k-gram length used for tokenization.
	K = 5
	// FlagThreshold is the similarity at or above which two attempts are
	// mutually considered copies.
	FlagThreshold = 0.80
)

var (
	commentRe    = regexp.MustCompile(`(?sm)//.*?$|/\*.*?\*/`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Normalize strips // line comments and /*...*/ block comments, collapses
// whitespace runs to a single space, trims, and lowercases. It is
// deterministic and idempotent.
func Normalize(code string) string {
	code = commentRe.ReplaceAllString(code, "")
	code = whitespaceRe.ReplaceAllString(code, " ")
	return strings.ToLower(strings.TrimSpace(code))
}

// KGrams returns the set of all contiguous rune substrings of length K over s.
// If s is shorter than K the set contains s itself as its only element.
func KGrams(s string) map[string]struct{} {
	set := make(map[string]struct{})
	runes := []rune(s)
	if len(runes) < K {
		set[s] = struct{}{}
		return set
	}
	for i := 0; i+K <= len(runes); i++ {
		set[string(runes[i:i+K])] = struct{}{}
	}
	return set
}

// Jaccard computes |a ∩ b| / |a ∪ b|. Two empty sets are defined as fully
// similar (1.0); an empty union otherwise yields 0.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter := 0
	for g := range a {
		if _, ok := b[g]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// CodeSample is another attempt's answer text for the same question.
type CodeSample struct {
	AttemptID uuid.UUID
	Code      string
}

// Result is the outcome of comparing one answer against a set of samples.
// MaxScore is the highest similarity observed (0 when there were no samples);
// SimilarAttemptIDs holds every sample at or above FlagThreshold.
type Result struct {
	MaxScore          float64
	SimilarAttemptIDs []uuid.UUID
}

// Compare normalizes code and scores it against each sample. Samples are
// normalized independently, so callers pass raw answer text.
func Compare(code string, samples []CodeSample) Result {
	tokens := KGrams(Normalize(code))

	var res Result
	for _, s := range samples {
		score := Jaccard(tokens, KGrams(Normalize(s.Code)))
		if score >= FlagThreshold {
			res.SimilarAttemptIDs = append(res.SimilarAttemptIDs, s.AttemptID)
		}
		if score > res.MaxScore {
			res.MaxScore = score
		}
	}
	return res
}
