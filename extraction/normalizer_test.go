package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCollapsesWhitespace(t *testing.T) {
	n := NewNormalizer()

	doc := NewDocument("Purpose:\tto  digitize   CDR records.\x00", SourceNative)
	out := n.Normalize(doc)

	assert.Equal(t, []string{"Purpose: to digitize CDR records."}, out.Lines)
}

func TestNormalizeIdempotent(t *testing.T) {
	n := NewNormalizer()

	text := `ACME Platform  CDR


Purpose: capture the target database design
for the billing platform.

Decisions:
Adopt managed Postgres.`

	once := n.Normalize(NewDocument(text, SourceNative))
	twice := n.Normalize(once)

	assert.Equal(t, once.Lines, twice.Lines)
}

func TestNormalizeJoinsWrappedLines(t *testing.T) {
	n := NewNormalizer()

	doc := NewDocument("Purpose: capture the target database design\nfor the billing platform.\nDecisions:", SourceNative)
	out := n.Normalize(doc)

	assert.Equal(t, []string{
		"Purpose: capture the target database design for the billing platform.",
		"Decisions:",
	}, out.Lines)
}

func TestNormalizeDoesNotJoinAfterTerminalPunctuation(t *testing.T) {
	n := NewNormalizer()

	doc := NewDocument("Purpose: modernize the stack.\nnothing here should move up", SourceNative)
	out := n.Normalize(doc)

	assert.Len(t, out.Lines, 2)
}

func TestNormalizeOCRSubstitutions(t *testing.T) {
	n := NewNormalizer()

	// the substitution table only touches digit-bearing tokens
	ocr := n.Normalize(NewDocument("Budget: 1O,OOO euros for Olive Ltd", SourceOCR))
	assert.Equal(t, []string{"Budget: 10,000 euros for Olive Ltd"}, ocr.Lines)

	// native text is trusted and left alone
	native := n.Normalize(NewDocument("Budget: 1O,OOO euros", SourceNative))
	assert.Equal(t, []string{"Budget: 1O,OOO euros"}, native.Lines)
}

func TestNormalizeLeavesAmbiguousTokensAlone(t *testing.T) {
	n := NewNormalizer()

	// "R2D2x" carries digits but substitution would not yield a number,
	// so the conservative default keeps the original
	out := n.Normalize(NewDocument("unit R2D2x passed", SourceOCR))
	assert.Equal(t, []string{"unit R2D2x passed"}, out.Lines)
}

func TestNormalizeEmptyDocument(t *testing.T) {
	n := NewNormalizer()

	out := n.Normalize(NewDocument("", SourceNative))
	assert.Empty(t, out.Lines)
}
