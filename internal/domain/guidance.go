package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMaxLineLength bounds candidate lines so long paragraphs that mention
// a lock in passing are not parsed as board entries.
const DefaultMaxLineLength = 160

const reachMarker = " lock to "

var (
	// "<From> Lock to <To> Lock <free text>"; lock names are letters,
	// apostrophes (straight or curly), hyphens and spaces. The free text
	// must not be empty.
	reachLinePattern = regexp.MustCompile(`(?i)([a-z'‘’\- ]+?) lock to ([a-z'‘’\- ]+?) lock\b[\s:;,.\-–]*([^\s:;,.\-–].*)$`)
	sentenceEnd      = regexp.MustCompile(`[.!?]\s+`)
)

// CandidateLines keeps the lines that mention a lock-to-lock reach and are
// shorter than maxLen runes. A line that fails the test is split into
// sentences and each sentence is tested on its own.
func CandidateLines(lines []string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLineLength
	}
	var out []string
	for _, line := range lines {
		if isCandidate(line, maxLen) {
			out = append(out, line)
			continue
		}
		sentences := splitSentences(line)
		if len(sentences) < 2 {
			continue
		}
		for _, s := range sentences {
			if isCandidate(s, maxLen) {
				out = append(out, s)
			}
		}
	}
	return out
}

func isCandidate(line string, maxLen int) bool {
	return strings.Contains(strings.ToLower(line), reachMarker) &&
		utf8.RuneCountInString(line) < maxLen
}

func splitSentences(line string) []string {
	var (
		out  []string
		prev int
	)
	for _, loc := range sentenceEnd.FindAllStringIndex(line, -1) {
		if s := strings.TrimSpace(line[prev : loc[0]+1]); s != "" {
			out = append(out, s)
		}
		prev = loc[1]
	}
	if s := strings.TrimSpace(line[prev:]); s != "" {
		out = append(out, s)
	}
	return out
}

// ParseReachLine matches a single "<From> Lock to <To> Lock <text>" line and
// classifies the trailing text. ok is false when the line does not follow
// that shape or carries no board text after the reach.
func ParseReachLine(line string) (ReachStatus, bool) {
	m := reachLinePattern.FindStringSubmatch(line)
	if m == nil {
		return ReachStatus{}, false
	}
	from := strings.TrimSpace(m[1])
	to := strings.TrimSpace(m[2])
	if from == "" || to == "" {
		return ReachStatus{}, false
	}
	reach := from + " Lock to " + to + " Lock"
	return NewReachStatus(reach, from, to, m[3]), true
}

// ParseGuidance extracts reach statuses from the river conditions guidance
// page, preserving source order. Duplicate reaches are kept.
func ParseGuidance(doc string, maxLen int) []ReachStatus {
	var records []ReachStatus
	for _, line := range CandidateLines(HTMLToLines(doc), maxLen) {
		if r, ok := ParseReachLine(line); ok {
			records = append(records, r)
		}
	}
	return records
}
