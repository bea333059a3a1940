package extraction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invoiceCatalog(t *testing.T) *Catalog {
	t.Helper()
	return mustCatalog(t, []FieldDefinition{
		{Name: "amount", Patterns: []HeadingPattern{{Text: "Amount Due", Strategy: MatchExact}}, Type: TypeAmount, Required: true},
		{Name: "date", Patterns: []HeadingPattern{{Text: "Date", Strategy: MatchExact}}, Type: TypeDate, Required: true},
	})
}

func TestExtractTypedFields(t *testing.T) {
	engine := NewEngine(invoiceCatalog(t))

	result := engine.Extract(NewDocument("Amount Due: $1,234.56\nDate: 01/02/2023", SourceNative))

	amount := result.Fields["amount"]
	assert.Equal(t, 1234.56, amount.Value)
	assert.Equal(t, 1.0, amount.Confidence)
	assert.Empty(t, amount.Flags)

	date := result.Fields["date"]
	assert.Equal(t, "2023-02-01", date.Value, "day-first is the configured default")
	assert.Equal(t, 1.0, date.Confidence)

	assert.Equal(t, 1.0, result.Confidence)
	assert.Empty(t, result.Diagnostics.UnmatchedHeadings)
	assert.Empty(t, result.Diagnostics.MissingRequired)
	assert.Empty(t, result.Diagnostics.Preamble)
}

func TestExtractMonthFirstPolicy(t *testing.T) {
	engine := NewEngine(invoiceCatalog(t), WithDateOrder(DateOrderMonthFirst))

	result := engine.Extract(NewDocument("Amount Due: $10.00\nDate: 01/02/2023", SourceNative))

	assert.Equal(t, "2023-01-02", result.Fields["date"].Value)
}

func TestExtractJoinsWrappedValue(t *testing.T) {
	cat := mustCatalog(t, []FieldDefinition{
		{Name: "purpose", Patterns: []HeadingPattern{{Text: "Purpose", Strategy: MatchExact, Anchored: true}}, Required: true},
		{Name: "authors", Patterns: []HeadingPattern{{Text: "Authors", Strategy: MatchExact, Anchored: true}}},
	})
	engine := NewEngine(cat)

	text := "Purpose: capture the target database design\nfor the billing platform.\nAuthors: Jane Doe"
	result := engine.Extract(NewDocument(text, SourceNative))

	assert.Equal(t,
		"capture the target database design for the billing platform.",
		result.Fields["purpose"].RawValue)
}

func TestExtractMissingRequiredField(t *testing.T) {
	cat := mustCatalog(t, []FieldDefinition{
		{Name: "purpose", Patterns: []HeadingPattern{{Text: "Purpose", Strategy: MatchExact}}, Required: true},
		{Name: "approver", Patterns: []HeadingPattern{{Text: "Approved By", Strategy: MatchExact}}, Required: true},
	})
	engine := NewEngine(cat)

	result := engine.Extract(NewDocument("Purpose: digitize the records.", SourceNative))

	approver := result.Fields["approver"]
	assert.Zero(t, approver.Confidence)
	assert.Contains(t, approver.Flags, FlagMissingRequired)
	assert.Contains(t, result.Diagnostics.MissingRequired, "approver")

	// both fields are required and equally weighted, so the absent one
	// halves the document confidence
	assert.InDelta(t, 0.5, result.Confidence, 1e-9)
}

func TestExtractFuzzyGarbledHeading(t *testing.T) {
	cat := mustCatalog(t, []FieldDefinition{
		{Name: "technical_specifications", Patterns: []HeadingPattern{{Text: "Technical Specifications", Strategy: MatchFuzzy, Anchored: true}}},
	})
	engine := NewEngine(cat)

	result := engine.Extract(NewDocument("Technical Specificat1ons: Postgres 16, S3, EKS", SourceNative))

	field := result.Fields["technical_specifications"]
	assert.Contains(t, field.Flags, FlagFuzzyMatch)
	assert.Greater(t, field.Confidence, fuzzyFloor)
	assert.Less(t, field.Confidence, 1.0)
	assert.Equal(t, "Postgres 16, S3, EKS", field.RawValue)
}

func TestExtractEmptyDocument(t *testing.T) {
	engine := NewEngine(invoiceCatalog(t))

	result := engine.Extract(NewDocument("   \n \n", SourceNative))

	assert.Zero(t, result.Confidence)
	require.Len(t, result.Fields, 2)
	for _, f := range result.Fields {
		assert.True(t, f.Missing())
	}
	assert.NotEmpty(t, result.Diagnostics.Notes)
}

func TestExtractDuplicateHeadingKeepsFirstOnTie(t *testing.T) {
	cat := mustCatalog(t, []FieldDefinition{
		{Name: "authors", Patterns: []HeadingPattern{{Text: "Authors", Strategy: MatchExact, Anchored: true}}},
	})
	engine := NewEngine(cat)

	text := "Authors: Jane Doe.\nAuthors: footer repeat."
	result := engine.Extract(NewDocument(text, SourceNative))

	field := result.Fields["authors"]
	assert.Equal(t, "Jane Doe.", field.RawValue)
	assert.Contains(t, field.Flags, FlagMultipleCandidates)
	assert.Contains(t, result.Diagnostics.DuplicateFields, "authors")
}

func TestExtractOCRDocumentGetsCorrections(t *testing.T) {
	engine := NewEngine(invoiceCatalog(t))

	// OCR read the zero as the letter O; the lenient path repairs it
	result := engine.Extract(NewDocument("Amount Due: $5O.00\nDate: 01/02/2023", SourceOCR))

	assert.Equal(t, 50.00, result.Fields["amount"].Value)
	assert.Equal(t, SourceOCR, result.Source)
}

func TestExtractSurvivesMultibyteCaseFolding(t *testing.T) {
	// runes whose lowercase form has a different byte length must not break
	// heading offsets anywhere in the pipeline
	cat := mustCatalog(t, []FieldDefinition{
		{Name: "date", Patterns: []HeadingPattern{{Text: "Date", Strategy: MatchCaseInsensitive}}, Type: TypeDate},
	})
	engine := NewEngine(cat)

	result := engine.Extract(NewDocument(strings.Repeat("Ⱥ", 5)+"date:\n01/02/2023", SourceNative))

	require.Len(t, result.Fields, 1)
	assert.Equal(t, "2023-02-01", result.Fields["date"].Value)
}

func TestExtractEveryCatalogFieldAppearsOnce(t *testing.T) {
	engine := NewEngine(DefaultCatalog())

	result := engine.Extract(NewDocument("Purpose: digitize the records.", SourceNative))

	assert.Len(t, result.Fields, len(DefaultCatalog().FieldNames()))
	for _, name := range DefaultCatalog().FieldNames() {
		_, present := result.Fields[name]
		assert.True(t, present, "field %s must appear in the result", name)
	}
}
