package extraction

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk YAML shape of a heading catalog.
type catalogFile struct {
	MinConfidence float64           `yaml:"min_confidence"`
	Fields        []FieldDefinition `yaml:"fields"`
}

// LoadCatalogFile reads a heading catalog from a YAML file. Any structural
// problem surfaces as a ConfigurationError here, at load time, so a bad
// catalog can never reach a document run.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrConfiguration, path, err)
	}
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrConfiguration, path, err)
	}
	var opts []CatalogOption
	if cf.MinConfidence > 0 {
		opts = append(opts, WithMinConfidence(cf.MinConfidence))
	}
	return NewCatalog(cf.Fields, opts...)
}

// DefaultCatalog returns the built-in CDR heading set. Declaration order
// matters: "decision_drivers" comes before "decisions" and "decision" so the
// longer heading wins when a line contains both spellings.
func DefaultCatalog() *Catalog {
	cat, err := NewCatalog(defaultCDRFields())
	if err != nil {
		// the built-in set is validated by tests; reaching this is a bug
		panic(err)
	}
	return cat
}

func defaultCDRFields() []FieldDefinition {
	heading := func(text string) []HeadingPattern {
		return []HeadingPattern{{Text: text, Strategy: MatchFuzzy, Anchored: true}}
	}
	return []FieldDefinition{
		{Name: "purpose", Patterns: heading("Purpose"), Type: TypeFreeText, Required: true},
		{Name: "architects", Patterns: heading("Architects"), Type: TypeFreeText},
		{Name: "audience", Patterns: heading("Audience"), Type: TypeFreeText},
		{Name: "context_and_problem_statement", Patterns: heading("Context and Problem Statement"), Type: TypeFreeText, Required: true},
		{Name: "decision_drivers", Patterns: heading("Decision drivers"), Type: TypeFreeText},
		{Name: "decisions", Patterns: heading("Decisions"), Type: TypeFreeText, Required: true},
		{Name: "decision", Patterns: heading("Decision"), Type: TypeFreeText},
		{Name: "aws_architecture", Patterns: heading("High-Level AWS Architecture"), Type: TypeFreeText},
		{Name: "technical_specifications", Patterns: heading("Technical Specifications"), Type: TypeFreeText},
		{Name: "database", Patterns: heading("Database"), Type: TypeFreeText},
		{Name: "key_points", Patterns: []HeadingPattern{
			{Text: "Key Points / Notes", Strategy: MatchFuzzy, Anchored: true},
			{Text: "Key Points", Strategy: MatchCaseInsensitive, Anchored: true},
		}, Type: TypeFreeText},
		{Name: "rationale", Patterns: heading("Rationale"), Type: TypeFreeText},
		{Name: "authors", Patterns: heading("Authors"), Type: TypeFreeText},
		{Name: "contributors", Patterns: heading("Contributors"), Type: TypeFreeText},
	}
}
