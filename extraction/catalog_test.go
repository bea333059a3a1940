package extraction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCatalog(t *testing.T, defs []FieldDefinition, opts ...CatalogOption) *Catalog {
	t.Helper()
	cat, err := NewCatalog(defs, opts...)
	require.NoError(t, err)
	return cat
}

func TestCatalogExactMatch(t *testing.T) {
	cat := mustCatalog(t, []FieldDefinition{
		{Name: "amount", Patterns: []HeadingPattern{{Text: "Amount Due", Strategy: MatchExact}}, Type: TypeAmount},
	})

	matches := cat.MatchLine(0, "Amount Due: $1,234.56")
	require.Len(t, matches, 1)
	assert.Equal(t, "amount", matches[0].Field)
	assert.Equal(t, 1.0, matches[0].Confidence)
	assert.Equal(t, "Amount Due", matches[0].Matched)
	assert.False(t, matches[0].Fuzzy)

	assert.Empty(t, cat.MatchLine(1, "Total: $12.00"))
}

func TestCatalogCaseInsensitiveMatch(t *testing.T) {
	cat := mustCatalog(t, []FieldDefinition{
		{Name: "amount", Patterns: []HeadingPattern{{Text: "Amount Due", Strategy: MatchCaseInsensitive}}},
	})

	matches := cat.MatchLine(0, "AMOUNT DUE: $50")
	require.Len(t, matches, 1)
	assert.Equal(t, 0.95, matches[0].Confidence)

	// the exact casing earns full confidence even on the folding strategy
	matches = cat.MatchLine(0, "Amount Due: $50")
	require.Len(t, matches, 1)
	assert.Equal(t, 1.0, matches[0].Confidence)
}

func TestCatalogCaseFoldHandlesMultibyteRunes(t *testing.T) {
	// U+023A lowercases to a rune that is one byte longer, so offsets taken
	// from a lowered copy would run past the end of the original line
	cat := mustCatalog(t, []FieldDefinition{
		{Name: "date", Patterns: []HeadingPattern{{Text: "Date", Strategy: MatchCaseInsensitive}}},
	})

	line := strings.Repeat("Ⱥ", 5) + "date"
	matches := cat.MatchLine(0, line)
	require.Len(t, matches, 1)
	assert.Equal(t, "date", matches[0].Matched)
	assert.Equal(t, "date", line[matches[0].Start:matches[0].End])
	assert.Equal(t, 0.95, matches[0].Confidence)
}

func TestCatalogFuzzyCheapPathHandlesMultibyteRunes(t *testing.T) {
	cat := mustCatalog(t, []FieldDefinition{
		{Name: "date", Patterns: []HeadingPattern{{Text: "Date", Strategy: MatchFuzzy}}},
	})

	line := strings.Repeat("Ⱥ", 5) + "date"
	matches := cat.MatchLine(0, line)
	require.Len(t, matches, 1)
	assert.Equal(t, "date", line[matches[0].Start:matches[0].End])
}

func TestCatalogFuzzyMatch(t *testing.T) {
	cat := mustCatalog(t, []FieldDefinition{
		{Name: "technical_specifications", Patterns: []HeadingPattern{{Text: "Technical Specifications", Strategy: MatchFuzzy}}},
	})

	matches := cat.MatchLine(0, "Technical Specificat1ons: Postgres 16")
	require.Len(t, matches, 1)
	assert.True(t, matches[0].Fuzzy)
	assert.Greater(t, matches[0].Confidence, fuzzyFloor)
	assert.Less(t, matches[0].Confidence, 1.0)

	// too garbled to recover
	assert.Empty(t, cat.MatchLine(0, "Tchncl Spcfctns"))
}

func TestCatalogFuzzyMatchMidLine(t *testing.T) {
	cat := mustCatalog(t, []FieldDefinition{
		{Name: "rationale", Patterns: []HeadingPattern{{Text: "Rationale", Strategy: MatchFuzzy}}},
	})

	matches := cat.MatchLine(0, "Appendix B Rat1onale for the change")
	require.Len(t, matches, 1)
	assert.True(t, matches[0].Fuzzy)
}

func TestCatalogAnchoredRejectsMidLine(t *testing.T) {
	cat := mustCatalog(t, []FieldDefinition{
		{Name: "purpose", Patterns: []HeadingPattern{{Text: "Purpose", Strategy: MatchExact, Anchored: true}}},
	})

	assert.Empty(t, cat.MatchLine(0, "see the Purpose section above"))
	assert.Len(t, cat.MatchLine(0, "Purpose: digitize records"), 1)
	assert.Len(t, cat.MatchLine(0, "  Purpose: digitize records"), 1)
}

func TestCatalogTieBreaksByDeclarationOrder(t *testing.T) {
	cat := mustCatalog(t, []FieldDefinition{
		{Name: "decision_drivers", Patterns: []HeadingPattern{{Text: "Decision drivers", Strategy: MatchExact}}},
		{Name: "decision", Patterns: []HeadingPattern{{Text: "Decision", Strategy: MatchExact}}},
	})

	matches := cat.MatchLine(0, "Decision drivers")
	require.Len(t, matches, 2)
	assert.Equal(t, "decision_drivers", matches[0].Field)
}

func TestCatalogMinConfidenceFilter(t *testing.T) {
	cat := mustCatalog(t, []FieldDefinition{
		{Name: "rationale", Patterns: []HeadingPattern{{Text: "Rationale", Strategy: MatchFuzzy}}},
	}, WithMinConfidence(0.9))

	// distance 2 lands below the raised threshold
	assert.Empty(t, cat.MatchLine(0, "Rat1ona1e"))
	assert.Len(t, cat.MatchLine(0, "Rationale"), 1)
}

func TestNewCatalogRejectsDuplicateNames(t *testing.T) {
	_, err := NewCatalog([]FieldDefinition{
		{Name: "purpose", Patterns: []HeadingPattern{{Text: "Purpose"}}},
		{Name: "purpose", Patterns: []HeadingPattern{{Text: "Goal"}}},
	})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestNewCatalogRejectsMissingPatterns(t *testing.T) {
	_, err := NewCatalog([]FieldDefinition{{Name: "purpose"}})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestNewCatalogRejectsBadRegex(t *testing.T) {
	_, err := NewCatalog([]FieldDefinition{
		{Name: "ref", Patterns: []HeadingPattern{{Text: "([", Strategy: MatchRegex}}},
	})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestNewCatalogRejectsUnknownType(t *testing.T) {
	_, err := NewCatalog([]FieldDefinition{
		{Name: "ref", Patterns: []HeadingPattern{{Text: "Ref"}}, Type: "uuid"},
	})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestDefaultCatalogLoads(t *testing.T) {
	cat := DefaultCatalog()
	assert.Contains(t, cat.FieldNames(), "purpose")
	assert.Contains(t, cat.FieldNames(), "context_and_problem_statement")

	def, ok := cat.Field("purpose")
	require.True(t, ok)
	assert.True(t, def.Required)
}
