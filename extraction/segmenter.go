package extraction

import "strings"

// FieldSpan is the contiguous text attributed to one matched field: the
// heading line itself plus everything up to (not including) the next accepted
// heading. StartLine and EndLine are inclusive indices into the normalized
// document.
type FieldSpan struct {
	Field     string
	StartLine int
	EndLine   int
	Text      string
	Heading   HeadingMatch
}

// Segmentation is the segmenter's output: the accepted spans in line order,
// the preamble that precedes the first heading, and per-run diagnostics.
type Segmentation struct {
	Spans    []FieldSpan
	Preamble []string
	// Unmatched collects heading-like lines the catalog did not recognize.
	Unmatched []string
	// OrderConflict is set when two distinct fields matched a line with equal
	// confidence and equal declaration order. NewCatalog guarantees unique
	// declaration order, so this only fires on a broken catalog; the first
	// registered match still wins deterministically.
	OrderConflict bool
}

// Segment partitions normalized lines into field spans by scanning for
// catalog headings. Accepting a heading at line L closes the open span at
// line L-1 and opens a new span at L. Repeated headings for the same field
// produce additional candidate spans rather than overwriting earlier ones.
func Segment(lines []string, cat *Catalog) Segmentation {
	var seg Segmentation

	openStart := -1
	var openMatch HeadingMatch

	closeSpan := func(end int) {
		if openStart < 0 {
			return
		}
		seg.Spans = append(seg.Spans, FieldSpan{
			Field:     openMatch.Field,
			StartLine: openStart,
			EndLine:   end,
			Text:      strings.Join(lines[openStart:end+1], "\n"),
			Heading:   openMatch,
		})
	}

	for i, line := range lines {
		matches := cat.MatchLine(i, line)
		if len(matches) == 0 {
			if openStart < 0 {
				seg.Preamble = append(seg.Preamble, line)
			}
			if looksLikeHeading(line) && strings.Contains(line, ":") {
				seg.Unmatched = append(seg.Unmatched, strings.TrimSpace(line))
			}
			continue
		}
		best := matches[0]
		if len(matches) > 1 {
			second := matches[1]
			if second.Field != best.Field &&
				second.Confidence == best.Confidence && second.order == best.order {
				seg.OrderConflict = true
			}
		}
		closeSpan(i - 1)
		openStart = i
		openMatch = best
	}
	closeSpan(len(lines) - 1)

	return seg
}

// spansByField groups candidate spans per canonical field, preserving
// document order within each group.
func spansByField(spans []FieldSpan) map[string][]FieldSpan {
	grouped := make(map[string][]FieldSpan)
	for _, s := range spans {
		grouped[s.Field] = append(grouped[s.Field], s)
	}
	return grouped
}
