package extraction

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Date-order policies. The policy is locale configuration, not a guess: a
// deployment reading day-first documents must say so.
const (
	DateOrderDayFirst   = "dmy"
	DateOrderMonthFirst = "mdy"
)

const isoDate = "2006-01-02"

// dateLayouts returns the ordered candidate layouts for the configured
// policy. The first layout that fully parses wins; ISO is always accepted.
func dateLayouts(order string) []string {
	if order == DateOrderMonthFirst {
		return []string{
			"01/02/2006", "1/2/2006", "01-02-2006",
			isoDate,
			"January 2, 2006", "Jan 2, 2006", "2 January 2006",
		}
	}
	return []string{
		"02/01/2006", "2/1/2006", "02-01-2006", "02.01.2006",
		isoDate,
		"2 January 2006", "2 Jan 2006", "January 2, 2006",
	}
}

// typerOptions hold the tunable parts of value extraction.
type typerOptions struct {
	dateOrder       string
	mismatchPenalty float64
	lengthPenalty   float64
	lowConfidence   float64
}

// extractField turns the candidate spans for one field into its final
// ExtractedField. When several candidate spans exist (a heading repeated in a
// footer, say) the span with the higher heading confidence wins; on a tie the
// first occurrence does, since documents present authoritative fields before
// repeated mentions.
func extractField(def FieldDefinition, spans []FieldSpan, opts typerOptions) ExtractedField {
	field := ExtractedField{Name: def.Name}
	if len(spans) == 0 {
		if def.Required {
			field.Flags = append(field.Flags, FlagMissingRequired)
		}
		return field
	}

	span := spans[0]
	for _, s := range spans[1:] {
		if s.Heading.Confidence > span.Heading.Confidence {
			span = s
		}
	}
	if len(spans) > 1 {
		field.Flags = append(field.Flags, FlagMultipleCandidates)
	}
	if span.Heading.Fuzzy {
		field.Flags = append(field.Flags, FlagFuzzyMatch)
	}

	field.RawValue = trimHeadingRemnant(span)
	typed, ok := coerceValue(def, field.RawValue, opts)
	field.Value = typed
	if !ok {
		field.Flags = append(field.Flags, FlagTypeMismatch)
	}

	conf := span.Heading.Confidence
	if !ok {
		conf *= opts.mismatchPenalty
	}
	if !plausibleLength(def.Type, field.RawValue) {
		conf *= opts.lengthPenalty
	}
	field.Confidence = conf
	if conf < opts.lowConfidence {
		field.Flags = append(field.Flags, FlagLowConfidence)
	}
	return field
}

// trimHeadingRemnant drops the matched heading substring and any separator
// characters that follow it from the span text.
func trimHeadingRemnant(span FieldSpan) string {
	lines := strings.Split(span.Text, "\n")
	first := lines[0]
	if span.Heading.End <= len(first) {
		first = first[span.Heading.End:]
	} else {
		first = ""
	}
	first = reSeparator.ReplaceAllString(first, "")
	rest := lines[1:]
	parts := make([]string, 0, len(rest)+1)
	if first != "" {
		parts = append(parts, first)
	}
	for _, l := range rest {
		parts = append(parts, l)
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// coerceValue converts the raw span text to the field's expected type. A
// false return means the raw text is kept but the typed value stays nil.
func coerceValue(def FieldDefinition, raw string, opts typerOptions) (any, bool) {
	switch def.Type {
	case TypeDate:
		return coerceDate(raw, opts.dateOrder)
	case TypeAmount:
		return coerceAmount(raw)
	case TypeNumeric:
		return coerceNumeric(raw)
	case TypeIdentifier:
		return coerceIdentifier(def, raw)
	default:
		if raw == "" {
			return nil, true
		}
		return raw, true
	}
}

func coerceDate(raw, order string) (any, bool) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return nil, false
	}
	for _, layout := range dateLayouts(order) {
		if t, err := time.Parse(layout, candidate); err == nil {
			return t.Format(isoDate), true
		}
	}
	return nil, false
}

func coerceAmount(raw string) (any, bool) {
	cleaned := strings.TrimSpace(raw)
	for _, sym := range []string{"$", "€", "£", "₹", "Rs.", "Rs", "INR", "USD", "EUR", "GBP"} {
		cleaned = strings.ReplaceAll(cleaned, sym, "")
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return nil, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil, false
	}
	return v, true
}

func coerceNumeric(raw string) (any, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return nil, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil, false
	}
	return v, true
}

// coerceIdentifier validates against the configured shape when one exists;
// otherwise the identifier passes through as free text.
func coerceIdentifier(def FieldDefinition, raw string) (any, bool) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return nil, false
	}
	if def.idRe != nil && !def.idRe.MatchString(candidate) {
		return nil, false
	}
	return candidate, true
}

// plausibleLength is a sanity check on the span size for the expected type:
// scalar values should be short, and nothing should be empty.
func plausibleLength(t ValueType, raw string) bool {
	n := utf8.RuneCountInString(raw)
	if n == 0 {
		return false
	}
	switch t {
	case TypeDate, TypeAmount, TypeNumeric, TypeIdentifier:
		return n <= 64
	default:
		return true
	}
}
