package domain

import (
	"regexp"
	"strings"
)

// followWindow is how far past a reach heading the status paragraph may start.
const followWindow = 600

var (
	// section bounds on the visitor moorings page, tried in order.
	sectionStartMarkers = foldPatterns("Stream warnings", "River conditions")
	sectionEndMarkers   = foldPatterns("Related pages", "<footer")

	headingPattern   = regexp.MustCompile(`(?is)<h3(?:\s[^>]*)?>(.*?)</h3>`)
	paragraphPattern = regexp.MustCompile(`(?is)<p(?:\s[^>]*)?>(.*?)</p>`)
	lockSuffix       = regexp.MustCompile(`(?i)\s+lock$`)
)

// ParseMoorings extracts reach statuses from the visitor moorings conditions
// page. Each level-3 heading names a reach and the first paragraph after it,
// before the next heading, carries the board text.
func ParseMoorings(doc string) []ReachStatus {
	section := narrowSection(doc)

	headings := headingPattern.FindAllStringSubmatchIndex(section, -1)
	var records []ReachStatus
	for i, loc := range headings {
		reach := HTMLToText(section[loc[2]:loc[3]])
		if reach == "" {
			continue
		}

		end := min(loc[1]+followWindow, len(section))
		if i+1 < len(headings) {
			end = min(end, headings[i+1][0])
		}
		text := ""
		if p := paragraphPattern.FindStringSubmatch(section[loc[1]:end]); p != nil {
			text = HTMLToText(p[1])
		}

		from, to := SplitReach(reach)
		records = append(records, NewReachStatus(reach, from, to, text))
	}
	return records
}

// MooringsHeadings returns the reach headings found in the narrowed section
// of the visitor moorings page, for diagnostics.
func MooringsHeadings(doc string) []string {
	section := narrowSection(doc)
	var out []string
	for _, m := range headingPattern.FindAllStringSubmatch(section, -1) {
		if h := HTMLToText(m[1]); h != "" {
			out = append(out, h)
		}
	}
	return out
}

// SplitReach derives the upstream and downstream lock names from a reach
// label. Labels that are not "<X> to <Y>" return the whole label as from.
func SplitReach(reach string) (from, to string) {
	parts := strings.Split(reach, " to ")
	if len(parts) != 2 {
		return strings.TrimSpace(reach), ""
	}
	return trimLock(parts[0]), trimLock(parts[1])
}

func trimLock(s string) string {
	return lockSuffix.ReplaceAllString(strings.TrimSpace(s), "")
}

// narrowSection slices doc between the first start marker found and the
// following end marker. Missing markers widen the slice to the whole document.
func narrowSection(doc string) string {
	start := -1
	for _, m := range sectionStartMarkers {
		if loc := m.FindStringIndex(doc); loc != nil {
			start = loc[0]
			break
		}
	}
	if start < 0 {
		return doc
	}

	rest := doc[start:]
	for _, m := range sectionEndMarkers {
		if loc := m.FindStringIndex(rest); loc != nil && loc[0] > 0 {
			return rest[:loc[0]]
		}
	}
	return rest
}

func foldPatterns(markers ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(markers))
	for i, m := range markers {
		out[i] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(m))
	}
	return out
}
