package extraction

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reMultiSpace = regexp.MustCompile(`[ \t]{2,}`)
	reSeparator  = regexp.MustCompile(`^[:\-–|\s]+`)
)

// NormalizerOptions control the cleanup heuristics. The substitution table
// maps common OCR misreads to their intended characters and is only applied
// to digit-bearing tokens, never inside alphabetic words.
type NormalizerOptions struct {
	Substitutions map[rune]rune
	JoinWrapped   bool
}

// DefaultSubstitutions returns the stock OCR correction table. Callers that
// know their scanner's failure modes can supply their own.
func DefaultSubstitutions() map[rune]rune {
	return map[rune]rune{
		'O': '0',
		'o': '0',
		'l': '1',
		'I': '1',
		'S': '5',
		'B': '8',
	}
}

// Normalizer cleans raw extracted text before segmentation. Normalization
// never fails; whenever a correction would be ambiguous the original text is
// left unchanged.
type Normalizer struct {
	opts NormalizerOptions
}

func NewNormalizer(opts ...NormalizerOptions) *Normalizer {
	o := NormalizerOptions{
		Substitutions: DefaultSubstitutions(),
		JoinWrapped:   true,
	}
	if len(opts) > 0 {
		o = opts[0]
	}
	return &Normalizer{opts: o}
}

// Normalize returns a cleaned copy of the document: control characters
// stripped, whitespace runs collapsed, blank-line runs reduced to one,
// wrapped value lines rejoined. The OCR substitution table is applied only
// when the text came from OCR. Running Normalize on its own output yields
// identical output.
func (n *Normalizer) Normalize(doc RawDocumentText) RawDocumentText {
	lines := make([]string, 0, len(doc.Lines))
	blank := false
	for _, line := range doc.Lines {
		line = cleanLine(line)
		if doc.Source == SourceOCR && len(n.opts.Substitutions) > 0 {
			line = n.correctOCRArtifacts(line)
		}
		if strings.TrimSpace(line) == "" {
			// collapse runs of blank lines into a single separator
			if !blank && len(lines) > 0 {
				lines = append(lines, "")
			}
			blank = true
			continue
		}
		blank = false
		lines = append(lines, line)
	}
	// drop a trailing blank separator
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if n.opts.JoinWrapped {
		lines = joinWrappedLines(lines)
	}
	return RawDocumentText{Lines: lines, Source: doc.Source}
}

// cleanLine strips non-printable characters and collapses whitespace runs
// while preserving the line itself.
func cleanLine(line string) string {
	var b strings.Builder
	for _, r := range line {
		switch {
		case r == '\t':
			b.WriteRune(' ')
		case unicode.IsControl(r):
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	cleaned := reMultiSpace.ReplaceAllString(b.String(), " ")
	return strings.TrimRight(cleaned, " ")
}

// correctOCRArtifacts applies the substitution table to tokens that carry at
// least one digit and would become purely numeric after substitution. Tokens
// containing real words are never touched.
func (n *Normalizer) correctOCRArtifacts(line string) string {
	tokens := strings.Split(line, " ")
	for i, tok := range tokens {
		tokens[i] = n.correctToken(tok)
	}
	return strings.Join(tokens, " ")
}

func (n *Normalizer) correctToken(tok string) string {
	hasDigit := false
	for _, r := range tok {
		if unicode.IsDigit(r) {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		return tok
	}
	runes := []rune(tok)
	out := make([]rune, len(runes))
	for i, r := range runes {
		if sub, ok := n.opts.Substitutions[r]; ok {
			out[i] = sub
			continue
		}
		out[i] = r
	}
	// accept the correction only when the result is digits and punctuation;
	// anything else means the token was a real word and we leave it alone
	for _, r := range out {
		if !unicode.IsDigit(r) && !isNumericPunct(r) {
			return tok
		}
	}
	return string(out)
}

func isNumericPunct(r rune) bool {
	switch r {
	case '.', ',', '-', '/', ':', '%', '$', '€', '£', '₹', '(', ')':
		return true
	}
	return false
}

// joinWrappedLines merges a line that ends without terminal punctuation into
// the next line when the next line does not itself look like a heading. The
// merge is greedy, so the output is a fixpoint and normalization stays
// idempotent.
func joinWrappedLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		cur := lines[i]
		for i+1 < len(lines) {
			next := lines[i+1]
			if strings.TrimSpace(cur) == "" || strings.TrimSpace(next) == "" {
				break
			}
			if endsWithTerminal(cur) || looksLikeHeading(next) {
				break
			}
			cur = strings.TrimRight(cur, " ") + " " + strings.TrimSpace(next)
			i++
		}
		out = append(out, cur)
	}
	return out
}

// endsWithTerminal reports whether the last visible character closes a
// sentence or a heading.
func endsWithTerminal(line string) bool {
	trimmed := strings.TrimRight(line, " ")
	if trimmed == "" {
		return false
	}
	switch trimmed[len(trimmed)-1] {
	case '.', '!', '?', ':', ';':
		return true
	}
	return false
}

// looksLikeHeading is the continuation-join heuristic: a short line that is
// colon-terminated, carries an early key-value colon, or reads as a title
// (every word capitalized) is treated as a heading and never swallowed into
// the previous line.
func looksLikeHeading(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	runes := []rune(trimmed)
	if len(runes) > 64 {
		return false
	}
	if strings.HasSuffix(trimmed, ":") {
		return true
	}
	if idx := strings.IndexByte(trimmed, ':'); idx > 0 && idx <= 40 {
		return true
	}
	words := strings.Fields(trimmed)
	if len(words) > 6 {
		return false
	}
	for _, w := range words {
		r := []rune(w)[0]
		if !unicode.IsUpper(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
