package pipeline

import (
	"github.com/ferrylane/river-conditions/internal/domain"
)

// Stage is one source in the board fallback chain: where to fetch, how to
// parse, and whether the parsed result is good enough to stop.
type Stage struct {
	Source domain.Source
	URL    string

	// Parse turns the fetched document into records in source order.
	Parse func(doc string) []domain.ReachStatus

	// Inspect returns the raw candidate text the parser looked at. Used only
	// for diagnostics.
	Inspect func(doc string) []string

	// Acceptable reports whether records are sufficient to skip later stages.
	Acceptable func(records []domain.ReachStatus) bool
}

// DefaultStages builds the guidance page stage, which needs at least
// minRecords records, followed by the visitor moorings stage, which accepts
// any non-empty result. An empty fallbackURL omits the second stage.
func DefaultStages(primaryURL, fallbackURL string, minRecords, maxLineLength int) []Stage {
	stages := []Stage{{
		Source: domain.SourcePrimary,
		URL:    primaryURL,
		Parse: func(doc string) []domain.ReachStatus {
			return domain.ParseGuidance(doc, maxLineLength)
		},
		Inspect: func(doc string) []string {
			return domain.CandidateLines(domain.HTMLToLines(doc), maxLineLength)
		},
		Acceptable: AtLeast(minRecords),
	}}

	if fallbackURL != "" {
		stages = append(stages, Stage{
			Source:     domain.SourceFallback,
			URL:        fallbackURL,
			Parse:      domain.ParseMoorings,
			Inspect:    domain.MooringsHeadings,
			Acceptable: AtLeast(1),
		})
	}
	return stages
}

// AtLeast accepts record sets with n or more records.
func AtLeast(n int) func([]domain.ReachStatus) bool {
	return func(records []domain.ReachStatus) bool {
		return len(records) >= n
	}
}
