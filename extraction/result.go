package extraction

// Per-field flags surfaced to human review.
const (
	FlagLowConfidence      = "low-confidence"
	FlagTypeMismatch       = "type-mismatch"
	FlagMissingRequired    = "missing-required"
	FlagFuzzyMatch         = "fuzzy-match"
	FlagMultipleCandidates = "multiple-candidates"
)

// ExtractedField is the final typed result for one field. It is immutable
// once created.
type ExtractedField struct {
	Name     string `json:"name"`
	RawValue string `json:"raw_value"`
	// Value is the coerced typed value (string for free text, dates as
	// ISO-8601 strings, float64 for amounts) or nil when coercion failed.
	Value      any      `json:"value"`
	Confidence float64  `json:"confidence"`
	Flags      []string `json:"flags,omitempty"`
}

// Missing reports whether the field had no matching span at all.
func (f ExtractedField) Missing() bool {
	return f.RawValue == "" && f.Value == nil && f.Confidence == 0
}

// Diagnostics collect everything the pipeline could not confidently assign,
// for display next to the extracted fields.
type Diagnostics struct {
	Preamble          []string `json:"preamble,omitempty"`
	UnmatchedHeadings []string `json:"unmatched_headings,omitempty"`
	DuplicateFields   []string `json:"duplicate_fields,omitempty"`
	MissingRequired   []string `json:"missing_required,omitempty"`
	Notes             []string `json:"notes,omitempty"`
}

// ExtractionResult is the artifact handed to the storage/confirmation layer:
// one entry per canonical catalog field (present or absent, never
// duplicated), diagnostics, and an overall document confidence.
type ExtractionResult struct {
	Fields      map[string]ExtractedField `json:"fields"`
	Diagnostics Diagnostics               `json:"diagnostics"`
	Confidence  float64                   `json:"confidence"`
	Source      SourceKind                `json:"source"`
}

// overallConfidence is the weighted mean of per-field confidences across the
// whole catalog; required fields weigh in at requiredWeight, optional ones at
// one. Absent fields count as zero, so a missing required field drags the
// document score down proportionally.
func overallConfidence(cat *Catalog, fields map[string]ExtractedField, requiredWeight float64) float64 {
	var sum, weight float64
	for _, def := range cat.fields {
		w := 1.0
		if def.Required {
			w = requiredWeight
		}
		sum += fields[def.Name].Confidence * w
		weight += w
	}
	if weight == 0 {
		return 0
	}
	return sum / weight
}
