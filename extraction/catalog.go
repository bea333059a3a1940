package extraction

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrConfiguration marks a malformed catalog. It is only ever returned at
// load time, never during a document run.
var ErrConfiguration = errors.New("invalid catalog configuration")

// MatchStrategy selects how a heading pattern is compared against a line.
type MatchStrategy string

const (
	MatchExact           MatchStrategy = "exact"
	MatchCaseInsensitive MatchStrategy = "case-insensitive"
	MatchFuzzy           MatchStrategy = "fuzzy"
	MatchRegex           MatchStrategy = "regex"
)

// ValueType is the expected type of a field's value.
type ValueType string

const (
	TypeFreeText   ValueType = "free-text"
	TypeDate       ValueType = "date"
	TypeAmount     ValueType = "currency-amount"
	TypeNumeric    ValueType = "numeric"
	TypeIdentifier ValueType = "identifier"
)

const (
	// confidence assigned per strategy
	exactConfidence    = 1.0
	caseFoldConfidence = 0.95

	// fuzzy matches scale linearly from 1.0 at distance zero down to the
	// floor at the tolerance boundary
	fuzzyFloor            = 0.6
	defaultFuzzyTolerance = 0.25

	defaultMinConfidence = 0.6

	// anchored patterns must start within this many columns of line start
	anchorSlack = 3
)

// HeadingPattern is one recognized spelling of a field heading.
type HeadingPattern struct {
	Text      string        `yaml:"text"`
	Strategy  MatchStrategy `yaml:"strategy"`
	Tolerance float64       `yaml:"tolerance,omitempty"`
	Anchored  bool          `yaml:"anchored,omitempty"`

	re *regexp.Regexp
}

// FieldDefinition is one entry in the heading catalog: a canonical field
// name, its recognized heading patterns, and the expected value type.
type FieldDefinition struct {
	Name     string           `yaml:"name"`
	Patterns []HeadingPattern `yaml:"patterns"`
	Type     ValueType        `yaml:"type"`
	Required bool             `yaml:"required,omitempty"`
	// IDShape optionally constrains identifier values (a full-match regex).
	IDShape string `yaml:"id_shape,omitempty"`

	idRe  *regexp.Regexp
	order int
}

// HeadingMatch is a located occurrence of a heading pattern within a line.
type HeadingMatch struct {
	Field      string
	Line       int
	Start      int // byte offset of the matched substring
	End        int
	Matched    string
	Confidence float64
	Fuzzy      bool

	order int
	def   *FieldDefinition
}

// Catalog is the process-wide, read-only heading registry. It is constructed
// once at startup and never mutated during extraction, so it is safe to share
// across concurrent engine invocations.
type Catalog struct {
	fields        []*FieldDefinition
	byName        map[string]*FieldDefinition
	minConfidence float64
}

// CatalogOption tweaks catalog construction.
type CatalogOption func(*Catalog)

// WithMinConfidence sets the minimum confidence a heading match needs to be
// reported at all.
func WithMinConfidence(min float64) CatalogOption {
	return func(c *Catalog) {
		c.minConfidence = min
	}
}

// NewCatalog validates the field definitions and builds the registry.
// Declaration order is significant: earlier fields win confidence ties during
// segmentation, so catalog order encodes domain priority.
func NewCatalog(defs []FieldDefinition, opts ...CatalogOption) (*Catalog, error) {
	c := &Catalog{
		byName:        make(map[string]*FieldDefinition, len(defs)),
		minConfidence: defaultMinConfidence,
	}
	for _, opt := range opts {
		opt(c)
	}

	for i := range defs {
		def := defs[i]
		if strings.TrimSpace(def.Name) == "" {
			return nil, fmt.Errorf("%w: field %d has no canonical name", ErrConfiguration, i)
		}
		if _, dup := c.byName[def.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate canonical field name %q", ErrConfiguration, def.Name)
		}
		if len(def.Patterns) == 0 {
			return nil, fmt.Errorf("%w: field %q has no heading patterns", ErrConfiguration, def.Name)
		}
		if def.Type == "" {
			def.Type = TypeFreeText
		}
		if !validValueType(def.Type) {
			return nil, fmt.Errorf("%w: field %q has unknown value type %q", ErrConfiguration, def.Name, def.Type)
		}
		for j := range def.Patterns {
			p := &def.Patterns[j]
			if p.Strategy == "" {
				p.Strategy = MatchExact
			}
			switch p.Strategy {
			case MatchExact, MatchCaseInsensitive:
				if p.Text == "" {
					return nil, fmt.Errorf("%w: field %q pattern %d is empty", ErrConfiguration, def.Name, j)
				}
			case MatchFuzzy:
				if p.Text == "" {
					return nil, fmt.Errorf("%w: field %q pattern %d is empty", ErrConfiguration, def.Name, j)
				}
				if p.Tolerance <= 0 {
					p.Tolerance = defaultFuzzyTolerance
				}
				if p.Tolerance >= 1 {
					return nil, fmt.Errorf("%w: field %q pattern %q tolerance must be below 1", ErrConfiguration, def.Name, p.Text)
				}
			case MatchRegex:
				re, err := regexp.Compile(p.Text)
				if err != nil {
					return nil, fmt.Errorf("%w: field %q pattern %q: %v", ErrConfiguration, def.Name, p.Text, err)
				}
				p.re = re
			default:
				return nil, fmt.Errorf("%w: field %q has unknown match strategy %q", ErrConfiguration, def.Name, p.Strategy)
			}
		}
		if def.IDShape != "" {
			re, err := regexp.Compile("^(?:" + def.IDShape + ")$")
			if err != nil {
				return nil, fmt.Errorf("%w: field %q identifier shape %q: %v", ErrConfiguration, def.Name, def.IDShape, err)
			}
			def.idRe = re
		}
		def.order = i
		c.fields = append(c.fields, &def)
		c.byName[def.Name] = &def
	}
	if len(c.fields) == 0 {
		return nil, fmt.Errorf("%w: catalog has no fields", ErrConfiguration)
	}
	return c, nil
}

func validValueType(t ValueType) bool {
	switch t {
	case TypeFreeText, TypeDate, TypeAmount, TypeNumeric, TypeIdentifier:
		return true
	}
	return false
}

// FieldNames returns the canonical field names in declaration order.
func (c *Catalog) FieldNames() []string {
	names := make([]string, len(c.fields))
	for i, f := range c.fields {
		names[i] = f.Name
	}
	return names
}

// Field looks up a field definition by canonical name.
func (c *Catalog) Field(name string) (FieldDefinition, bool) {
	def, ok := c.byName[name]
	if !ok {
		return FieldDefinition{}, false
	}
	return *def, true
}

// MatchLine returns every field whose heading occurs in the line with
// confidence at or above the catalog minimum, best match first. Ties are
// broken by declaration order.
func (c *Catalog) MatchLine(lineIdx int, line string) []HeadingMatch {
	var matches []HeadingMatch
	for _, def := range c.fields {
		best, ok := c.matchField(def, line)
		if !ok || best.Confidence < c.minConfidence {
			continue
		}
		best.Field = def.Name
		best.Line = lineIdx
		best.order = def.order
		best.def = def
		matches = append(matches, best)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Confidence != matches[j].Confidence {
			return matches[i].Confidence > matches[j].Confidence
		}
		return matches[i].order < matches[j].order
	})
	return matches
}

// matchField tries each pattern of a field in declaration order and keeps the
// highest-confidence hit.
func (c *Catalog) matchField(def *FieldDefinition, line string) (HeadingMatch, bool) {
	var best HeadingMatch
	found := false
	for i := range def.Patterns {
		p := &def.Patterns[i]
		m, ok := matchPattern(p, line)
		if !ok {
			continue
		}
		if !found || m.Confidence > best.Confidence {
			best = m
			found = true
		}
	}
	return best, found
}

func matchPattern(p *HeadingPattern, line string) (HeadingMatch, bool) {
	var m HeadingMatch
	switch p.Strategy {
	case MatchExact:
		idx := strings.Index(line, p.Text)
		if idx < 0 {
			return m, false
		}
		m = HeadingMatch{Start: idx, End: idx + len(p.Text), Matched: p.Text, Confidence: exactConfidence}
	case MatchCaseInsensitive:
		idx, end, ok := foldIndex(line, p.Text)
		if !ok {
			return m, false
		}
		conf := caseFoldConfidence
		if line[idx:end] == p.Text {
			conf = exactConfidence
		}
		m = HeadingMatch{Start: idx, End: end, Matched: line[idx:end], Confidence: conf}
	case MatchRegex:
		loc := p.re.FindStringIndex(line)
		if loc == nil {
			return m, false
		}
		m = HeadingMatch{Start: loc[0], End: loc[1], Matched: line[loc[0]:loc[1]], Confidence: exactConfidence}
	case MatchFuzzy:
		fm, ok := matchFuzzy(p, line)
		if !ok {
			return m, false
		}
		m = fm
	default:
		return m, false
	}
	if p.Anchored && !anchoredAtLineStart(line, m.Start) {
		return HeadingMatch{}, false
	}
	return m, true
}

// foldIndex locates the first case-insensitive occurrence of pat in line and
// returns its byte offsets within line. Offsets must come from the original
// string: lowercasing can change a rune's byte length, so indexes computed on
// a lowered copy do not line up with the source.
func foldIndex(line, pat string) (start, end int, ok bool) {
	pr := []rune(pat)
	lr := []rune(line)
	if len(pr) == 0 || len(pr) > len(lr) {
		return 0, 0, false
	}
	startByte := 0
	for i := 0; i+len(pr) <= len(lr); i++ {
		if foldEqual(lr[i:i+len(pr)], pr) {
			endByte := startByte + len(string(lr[i:i+len(pr)]))
			return startByte, endByte, true
		}
		startByte += utf8.RuneLen(lr[i])
	}
	return 0, 0, false
}

func foldEqual(a, b []rune) bool {
	for i := range b {
		if unicode.ToLower(a[i]) != unicode.ToLower(b[i]) {
			return false
		}
	}
	return true
}

// anchoredAtLineStart requires that nothing but whitespace precedes the match
// and the match begins within the leading-whitespace tolerance.
func anchoredAtLineStart(line string, start int) bool {
	if start > anchorSlack {
		return false
	}
	return strings.TrimSpace(line[:start]) == ""
}

// matchFuzzy slides a pattern-sized window across word boundaries of the line
// and keeps the start with the smallest edit distance within tolerance.
func matchFuzzy(p *HeadingPattern, line string) (HeadingMatch, bool) {
	// cheap path: an exact hit is a fuzzy match at distance zero
	if idx, end, ok := foldIndex(line, p.Text); ok {
		conf := caseFoldConfidence
		if line[idx:end] == p.Text {
			conf = exactConfidence
		}
		return HeadingMatch{Start: idx, End: end, Matched: line[idx:end], Confidence: conf}, true
	}

	pat := []rune(strings.ToLower(p.Text))
	tol := int(math.Ceil(p.Tolerance * float64(len(pat))))
	if tol == 0 {
		return HeadingMatch{}, false
	}

	runes := []rune(line)
	lower := []rune(strings.ToLower(line))
	starts := wordStarts(runes)

	bestDist := tol + 1
	bestStart := -1
	for _, s := range starts {
		end := s + len(pat)
		if end > len(runes) {
			end = len(runes)
		}
		if end-s < len(pat)-tol {
			continue
		}
		d := levenshtein(lower[s:end], pat)
		if d < bestDist {
			bestDist = d
			bestStart = s
		}
	}
	if bestStart < 0 || bestDist > tol {
		return HeadingMatch{}, false
	}

	endRune := bestStart + len(pat)
	if endRune > len(runes) {
		endRune = len(runes)
	}
	conf := 1.0 - (float64(bestDist)/float64(tol))*(1.0-fuzzyFloor)
	startByte := len(string(runes[:bestStart]))
	endByte := len(string(runes[:endRune]))
	return HeadingMatch{
		Start:      startByte,
		End:        endByte,
		Matched:    string(runes[bestStart:endRune]),
		Confidence: conf,
		Fuzzy:      true,
	}, true
}

// wordStarts lists the candidate window offsets: line start plus the start of
// every subsequent word.
func wordStarts(runes []rune) []int {
	var starts []int
	inSpace := true
	for i, r := range runes {
		if r == ' ' {
			inSpace = true
			continue
		}
		if inSpace {
			starts = append(starts, i)
			inSpace = false
		}
	}
	if len(starts) == 0 {
		starts = append(starts, 0)
	}
	return starts
}

// levenshtein is the classic edit distance over rune slices.
func levenshtein(a, b []rune) int {
	n, m := len(a), len(b)
	if n == 0 {
		return m
	}
	if m == 0 {
		return n
	}
	prev := make([]int, m+1)
	cur := make([]int, m+1)
	for j := 0; j <= m; j++ {
		prev[j] = j
	}
	for i := 1; i <= n; i++ {
		cur[0] = i
		for j := 1; j <= m; j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			cur[j] = minInt(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[m]
}

func minInt(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
