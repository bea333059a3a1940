// Package extraction turns raw, possibly OCR-noisy document text into a
// confidence-annotated mapping of canonical field names to values. The
// pipeline is normalize -> segment (against a heading catalog) -> type ->
// assemble; it is pure and synchronous, performs no I/O, and shares nothing
// mutable between invocations, so one engine may serve any number of
// goroutines.
package extraction

// Options are the per-engine tunables. Zero values fall back to documented
// defaults.
type Options struct {
	// DateOrder is the locale policy for ambiguous numeric dates,
	// DateOrderDayFirst or DateOrderMonthFirst.
	DateOrder string
	// MismatchPenalty scales confidence when type coercion fails.
	MismatchPenalty float64
	// LengthPenalty scales confidence when a span's size is implausible for
	// its type.
	LengthPenalty float64
	// LowConfidence is the threshold below which a field is flagged for
	// manual review.
	LowConfidence float64
	// RequiredWeight is the weight of required fields in the overall
	// document confidence.
	RequiredWeight float64

	normalizer *Normalizer
}

// Option mutates engine options at construction.
type Option func(*Options)

func WithDateOrder(order string) Option {
	return func(o *Options) { o.DateOrder = order }
}

func WithMismatchPenalty(p float64) Option {
	return func(o *Options) { o.MismatchPenalty = p }
}

func WithLowConfidenceThreshold(t float64) Option {
	return func(o *Options) { o.LowConfidence = t }
}

func WithNormalizer(n *Normalizer) Option {
	return func(o *Options) { o.normalizer = n }
}

// Engine binds a read-only catalog to the extraction pipeline.
type Engine struct {
	catalog    *Catalog
	normalizer *Normalizer
	opts       Options
}

// NewEngine creates an engine for the given catalog. The catalog must have
// been built with NewCatalog (or LoadCatalogFile) and is never mutated.
func NewEngine(cat *Catalog, opts ...Option) *Engine {
	o := Options{
		DateOrder:       DateOrderDayFirst,
		MismatchPenalty: 0.5,
		LengthPenalty:   0.8,
		LowConfidence:   0.6,
		RequiredWeight:  2.0,
	}
	for _, opt := range opts {
		opt(&o)
	}
	n := o.normalizer
	if n == nil {
		n = NewNormalizer()
	}
	return &Engine{catalog: cat, normalizer: n, opts: o}
}

// Extract runs the full pipeline over one document and always returns a
// well-formed result: field-level problems become flags, and empty or
// unreadable input yields a zero-confidence result with every field missing
// rather than an error.
func (e *Engine) Extract(doc RawDocumentText) ExtractionResult {
	result := ExtractionResult{
		Fields: make(map[string]ExtractedField, len(e.catalog.fields)),
		Source: doc.Source,
	}

	if doc.Empty() {
		for _, def := range e.catalog.fields {
			f := ExtractedField{Name: def.Name}
			if def.Required {
				f.Flags = append(f.Flags, FlagMissingRequired)
				result.Diagnostics.MissingRequired = append(result.Diagnostics.MissingRequired, def.Name)
			}
			result.Fields[def.Name] = f
		}
		result.Diagnostics.Notes = append(result.Diagnostics.Notes, "document text is empty")
		return result
	}

	normalized := e.normalizer.Normalize(doc)
	seg := Segment(normalized.Lines, e.catalog)
	grouped := spansByField(seg.Spans)

	topts := typerOptions{
		dateOrder:       e.opts.DateOrder,
		mismatchPenalty: e.opts.MismatchPenalty,
		lengthPenalty:   e.opts.LengthPenalty,
		lowConfidence:   e.opts.LowConfidence,
	}
	for _, def := range e.catalog.fields {
		spans := grouped[def.Name]
		field := extractField(*def, spans, topts)
		result.Fields[def.Name] = field
		if len(spans) > 1 {
			result.Diagnostics.DuplicateFields = append(result.Diagnostics.DuplicateFields, def.Name)
		}
		if def.Required && len(spans) == 0 {
			result.Diagnostics.MissingRequired = append(result.Diagnostics.MissingRequired, def.Name)
		}
	}

	result.Diagnostics.Preamble = seg.Preamble
	result.Diagnostics.UnmatchedHeadings = seg.Unmatched
	if seg.OrderConflict {
		result.Diagnostics.Notes = append(result.Diagnostics.Notes, "catalog declaration order was ambiguous for at least one line")
	}
	result.Confidence = overallConfidence(e.catalog, result.Fields, e.opts.RequiredWeight)
	return result
}

// Catalog exposes the engine's catalog for callers that need field metadata.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}
