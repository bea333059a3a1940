package extraction

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	reKVSeparator = regexp.MustCompile(`^[:\|\-\s]+`)
	reColumnSplit = regexp.MustCompile(`\s{2,}`)
	reEmailTail   = regexp.MustCompile(`@[^.\s]+$`)
	reDomainLine  = regexp.MustCompile(`(?i)^[\w.-]+\.[a-z]{2,}$`)
)

// ExtractKeyValues parses a block of table-ish text into key/value pairs.
// It recognizes "Key: Value" lines, column-aligned rows split by runs of
// whitespace, and prefix matches against an expected-key list (longest keys
// first, so "Service offering" beats "Service"). Lines that fit nothing are
// treated as continuations of the previous value when they read like one;
// split email addresses are stitched back together without a space.
func ExtractKeyValues(text string, expectedKeys []string) map[string]string {
	result := make(map[string]string)
	if strings.TrimSpace(text) == "" {
		return result
	}

	// longest-first so more specific keys win the prefix match
	keys := make([]string, len(expectedKeys))
	copy(keys, expectedKeys)
	sort.SliceStable(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })

	lastKey := ""
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if key, ok := matchExpectedKey(line, keys); ok {
			value := reKVSeparator.ReplaceAllString(line[len(key):], "")
			result[key] = strings.TrimSpace(value)
			lastKey = key
			continue
		}

		if k, v, ok := strings.Cut(line, ":"); ok {
			result[strings.TrimSpace(k)] = strings.TrimSpace(v)
			lastKey = strings.TrimSpace(k)
			continue
		}

		if parts := reColumnSplit.Split(line, 2); len(parts) == 2 {
			result[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
			lastKey = strings.TrimSpace(parts[0])
			continue
		}

		if appendContinuation(result, lastKey, line) {
			continue
		}

		// keep unattributable lines so nothing silently disappears
		key := freeTextKey(result)
		result[key] = line
		lastKey = key
	}
	return result
}

func matchExpectedKey(line string, keys []string) (string, bool) {
	low := strings.ToLower(line)
	for _, key := range keys {
		if strings.HasPrefix(low, strings.ToLower(key)) {
			return key, true
		}
	}
	return "", false
}

// appendContinuation folds a bare line into the previous key's value. A
// previous value ending in a cut-off email local part is stitched without a
// space; a bare domain line following an "@" value likewise.
func appendContinuation(result map[string]string, lastKey, line string) bool {
	if lastKey == "" {
		return false
	}
	prev, ok := result[lastKey]
	if !ok {
		return false
	}
	switch {
	case prev == "":
		result[lastKey] = line
	case strings.Contains(prev, "@") && reEmailTail.MatchString(prev):
		result[lastKey] = prev + line
	case strings.Contains(prev, "@") && reDomainLine.MatchString(line):
		result[lastKey] = prev + line
	default:
		result[lastKey] = prev + " " + line
	}
	return true
}

func freeTextKey(result map[string]string) string {
	for i := 0; ; i++ {
		key := "text_" + strconv.Itoa(i)
		if _, exists := result[key]; !exists {
			return key
		}
	}
}
