package extraction

import (
	"regexp"
	"strings"
)

var (
	reAPMHeading = regexp.MustCompile(`(?i)Application\s*Portfolio\s*Management\s*Details`)
	reURL        = regexp.MustCompile(`https?://\S+`)
	reEmail      = regexp.MustCompile(`[\w.-]+@[\w.-]+\.[a-zA-Z]{2,}`)
	reSpaceRun   = regexp.MustCompile(`\s+`)
	reOwnerLabel = regexp.MustCompile(`(?i)application\s*owner`)
)

// apmExpectedKeys are the row labels of an APM details table. Longer labels
// are listed so the prefix matcher can prefer them over their shorter
// prefixes.
var apmExpectedKeys = []string{
	"Details",
	"Service offering",
	"Automated Service",
	"Environment",
	"APM Name",
	"APM ID",
	"MIO",
	"Business Unit",
	"Application Owner",
	"Compliance",
	"Application Service Level commitment",
	"Strategic Project ID",
	"Operational Project ID",
	"PMS ID",
	"Backup Policy",
	"Network Zone",
	"Patching Wave",
}

// ExtractAPM pulls the Application Portfolio Management details out of a raw
// text blob. It locates the APM block (by heading when present, by known row
// labels otherwise), parses it into key/value pairs and backfills the
// Application Owner from any nearby email address when the table left it
// blank.
func ExtractAPM(text string) map[string]string {
	if strings.TrimSpace(text) == "" {
		return map[string]string{}
	}

	t := strings.ReplaceAll(text, "\r", "")
	block := locateAPMBlock(t)
	if block == "" {
		block = t
	}

	// strip pasted hyperlinks before parsing
	block = reURL.ReplaceAllString(block, "")

	kv := ExtractKeyValues(block, apmExpectedKeys)

	cleaned := make(map[string]string, len(kv))
	for k, v := range kv {
		cleanKey := strings.TrimSpace(reSpaceRun.ReplaceAllString(k, " "))
		cleaned[cleanKey] = strings.TrimSpace(v)
	}

	backfillApplicationOwner(cleaned, block, t)
	return cleaned
}

// locateAPMBlock returns the text region holding the APM table: everything
// after the heading until two consecutive blank lines, or the context around
// any line carrying a known row label when there is no heading.
func locateAPMBlock(t string) string {
	if loc := reAPMHeading.FindStringIndex(t); loc != nil {
		lines := strings.Split(t[loc[1]:], "\n")
		var take []string
		blanks := 0
		for _, ln := range lines {
			if strings.TrimSpace(ln) == "" {
				blanks++
				if blanks >= 2 {
					break
				}
				continue
			}
			blanks = 0
			take = append(take, ln)
			if len(take) > 200 {
				break
			}
		}
		return strings.Join(take, "\n")
	}

	lines := strings.Split(t, "\n")
	var candidates []string
	for i, ln := range lines {
		low := strings.ToLower(ln)
		for _, key := range apmExpectedKeys {
			if strings.Contains(low, strings.ToLower(key)) {
				end := i + 4
				if end > len(lines) {
					end = len(lines)
				}
				candidates = append(candidates, lines[i:end]...)
				break
			}
		}
	}
	return strings.Join(candidates, "\n")
}

// backfillApplicationOwner fills in the owner from an email address near the
// "Application Owner" label, falling back to the first email anywhere in the
// document.
func backfillApplicationOwner(fields map[string]string, block, full string) {
	ownerKey := ""
	for k := range fields {
		if strings.EqualFold(strings.ReplaceAll(k, " ", ""), "applicationowner") {
			ownerKey = k
			break
		}
	}
	if ownerKey != "" && fields[ownerKey] != "" {
		return
	}

	search := block
	if search == "" {
		search = full
	}

	email := ""
	if loc := reOwnerLabel.FindStringIndex(search); loc != nil {
		window := search[loc[1]:]
		if len(window) > 400 {
			window = window[:400]
		}
		email = reEmail.FindString(window)
	}
	if email == "" {
		email = reEmail.FindString(full)
	}
	if email == "" {
		return
	}

	if ownerKey == "" {
		ownerKey = "Application Owner"
	}
	fields[ownerKey] = email
}
