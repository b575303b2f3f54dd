package domain

import "strings"

// Status is the aggregate warning severity shown on a stream board.
type Status string

const (
	StatusGreen  Status = "green"
	StatusYellow Status = "yellow"
	StatusRed    Status = "red"
)

// Trend is the stated direction of change in stream strength. The zero
// value means the source did not state one.
type Trend string

const (
	TrendNone       Trend = ""
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendUnchanged  Trend = "unchanged"
)

// Source identifies which board source produced a record set.
type Source string

const (
	SourcePrimary  Source = "primary"
	SourceFallback Source = "fallback"
	SourceNone     Source = "none"
)

// PlaceholderReach is the reach label of the record served when no source
// produced any data.
const PlaceholderReach = "No board data available"

// ReachStatus is the board status for one lock-to-lock reach.
type ReachStatus struct {
	Reach    string `json:"reach" yaml:"reach"`
	FromLock string `json:"fromLock" yaml:"fromLock"`
	ToLock   string `json:"toLock" yaml:"toLock"`
	Status   Status `json:"status" yaml:"status"`
	Trend    Trend  `json:"trend,omitempty" yaml:"trend,omitempty"`
}

// Placeholder returns the single neutral record set served when nothing could
// be extracted from any source.
func Placeholder() []ReachStatus {
	return []ReachStatus{{
		Reach:  PlaceholderReach,
		Status: StatusGreen,
	}}
}

// IsPlaceholder reports whether records is exactly the placeholder set.
func IsPlaceholder(records []ReachStatus) bool {
	return len(records) == 1 && records[0] == Placeholder()[0]
}

// classification rules, first match wins.
var classifyRules = []struct {
	keywords []string
	status   Status
	trend    Trend
}{
	{keywords: []string{"red", "strong stream"}, status: StatusRed},
	{keywords: []string{"stream increasing"}, status: StatusYellow, trend: TrendIncreasing},
	{keywords: []string{"stream decreasing"}, status: StatusYellow, trend: TrendDecreasing},
	{keywords: []string{"no stream warnings"}, status: StatusGreen},
	{keywords: []string{"caution"}, status: StatusYellow},
}

// Classify maps the free text attached to a reach onto a board status and
// trend using case-insensitive keyword matching.
//
//	"red" | "strong stream"  -> red
//	"stream increasing"      -> yellow, increasing
//	"stream decreasing"      -> yellow, decreasing
//	"no stream warnings"     -> green
//	"caution"                -> yellow
//	anything else            -> green
func Classify(text string) (Status, Trend) {
	lower := strings.ToLower(text)
	for _, rule := range classifyRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.status, rule.trend
			}
		}
	}
	return StatusGreen, TrendNone
}

// NewReachStatus builds a record for the reach between two locks, classifying
// text for its status.
func NewReachStatus(reach, fromLock, toLock, text string) ReachStatus {
	status, trend := Classify(text)
	return ReachStatus{
		Reach:    reach,
		FromLock: fromLock,
		ToLock:   toLock,
		Status:   status,
		Trend:    trend,
	}
}
