package similarity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "line comments stripped",
			in:   "let x = 1; // counter\nlet y = 2;",
			want: "let x = 1; let y = 2;",
		},
		{
			name: "block comments stripped",
			in:   "let x = 1; /* the\n counter */ let y = 2;",
			want: "let x = 1; let y = 2;",
		},
		{
			name: "whitespace collapsed and lowercased",
			in:   "  Function   ADD(a,\n\tb)  ",
			want: "function add(a, b)",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
		{
			name: "comment-only input",
			in:   "// nothing here\n/* at all */",
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, Normalize(got), "normalize must be idempotent")
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"function add(a, b) {\n  return a + b; // sum\n}",
		"/* header */\n\tx := 1\n\n\n y := 2 /* trailing",
		"NO comments   just   SPACING",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestKGrams(t *testing.T) {
	t.Run("shorter than k yields single element", func(t *testing.T) {
		set := KGrams("ab")
		require.Len(t, set, 1)
		_, ok := set["ab"]
		assert.True(t, ok)
	})

	t.Run("empty string yields single empty element", func(t *testing.T) {
		set := KGrams("")
		require.Len(t, set, 1)
		_, ok := set[""]
		assert.True(t, ok)
	})

	t.Run("exact length k", func(t *testing.T) {
		set := KGrams("abcde")
		require.Len(t, set, 1)
		_, ok := set["abcde"]
		assert.True(t, ok)
	})

	t.Run("sliding window", func(t *testing.T) {
		set := KGrams("abcdef")
		require.Len(t, set, 2)
		_, ok := set["abcde"]
		assert.True(t, ok)
		_, ok = set["bcdef"]
		assert.True(t, ok)
	})

	t.Run("repeated substrings dedupe", func(t *testing.T) {
		set := KGrams("aaaaaaaa")
		assert.Len(t, set, 1)
	})
}

func TestJaccard(t *testing.T) {
	gramSet := func(grams ...string) map[string]struct{} {
		set := make(map[string]struct{}, len(grams))
		for _, g := range grams {
			set[g] = struct{}{}
		}
		return set
	}

	tests := []struct {
		name string
		a    map[string]struct{}
		b    map[string]struct{}
		want float64
	}{
		{"identical nonempty", gramSet("abcde", "bcdef"), gramSet("abcde", "bcdef"), 1.0},
		{"disjoint nonempty", gramSet("abcde"), gramSet("fghij"), 0.0},
		{"both empty", gramSet(), gramSet(), 1.0},
		{"one empty", gramSet("abcde"), gramSet(), 0.0},
		{"half overlap", gramSet("aaaaa", "bbbbb"), gramSet("aaaaa", "ccccc"), 1.0 / 3.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, Jaccard(tc.a, tc.b), 1e-9)
			assert.InDelta(t, tc.want, Jaccard(tc.b, tc.a), 1e-9, "jaccard is symmetric")
		})
	}
}

func TestCompare(t *testing.T) {
	otherID := uuid.New()

	t.Run("identical normalized text flags at 1.0", func(t *testing.T) {
		// Same code modulo comments, casing and spacing.
		mine := "function Add(a, b) {\n  return a + b; // sum\n}"
		theirs := "function add(a,   b) { return a + b; }"

		res := Compare(mine, []CodeSample{{AttemptID: otherID, Code: theirs}})
		assert.InDelta(t, 1.0, res.MaxScore, 1e-9)
		assert.Equal(t, []uuid.UUID{otherID}, res.SimilarAttemptIDs)
	})

	t.Run("no shared grams is not flagged", func(t *testing.T) {
		res := Compare("aaaaaaaaaaaaaaa", []CodeSample{{AttemptID: otherID, Code: "zzzzzzzzzzzzzzz"}})
		assert.Zero(t, res.MaxScore)
		assert.Empty(t, res.SimilarAttemptIDs)
	})

	t.Run("no samples yields zero", func(t *testing.T) {
		res := Compare("function add(a, b) { return a + b; }", nil)
		assert.Zero(t, res.MaxScore)
		assert.Empty(t, res.SimilarAttemptIDs)
	})

	t.Run("max over samples, threshold per sample", func(t *testing.T) {
		copyID := uuid.New()
		res := Compare("function add(a, b) { return a + b; }", []CodeSample{
			{AttemptID: otherID, Code: "qqqqqqqqqqqqqqqqqq"},
			{AttemptID: copyID, Code: "function add(a, b) { return a + b; }"},
		})
		assert.InDelta(t, 1.0, res.MaxScore, 1e-9)
		assert.Equal(t, []uuid.UUID{copyID}, res.SimilarAttemptIDs)
	})
}
