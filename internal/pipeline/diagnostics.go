package pipeline

import (
	"context"

	"github.com/ferrylane/river-conditions/internal/domain"
	"github.com/google/uuid"
)

// StageReport shows what one stage saw during a diagnostic run.
type StageReport struct {
	Stage      domain.Source        `json:"stage" yaml:"stage"`
	URL        string               `json:"url" yaml:"url"`
	Error      string               `json:"error,omitempty" yaml:"error,omitempty"`
	Candidates []string             `json:"candidates" yaml:"candidates"`
	Records    []domain.ReachStatus `json:"records" yaml:"records"`
	Acceptable bool                 `json:"acceptable" yaml:"acceptable"`
}

// Diagnostics is the raw extraction output of every stage.
type Diagnostics struct {
	CycleID string        `json:"cycleId" yaml:"cycleId"`
	Stages  []StageReport `json:"stages" yaml:"stages"`
}

// Diagnose fetches and parses every stage without consulting or updating the
// cache, so operators can see how the current upstream pages are read.
// Unlike GetBoardStatuses it does not stop at the first acceptable stage.
func (e *Extractor) Diagnose(ctx context.Context) Diagnostics {
	d := Diagnostics{CycleID: uuid.NewString()}
	for _, st := range e.stages {
		report := StageReport{
			Stage:      st.Source,
			URL:        st.URL,
			Candidates: []string{},
			Records:    []domain.ReachStatus{},
		}

		doc, err := e.fetcher.FetchPage(ctx, st.URL)
		if err != nil {
			report.Error = err.Error()
			d.Stages = append(d.Stages, report)
			continue
		}

		if st.Inspect != nil {
			if c := st.Inspect(doc); c != nil {
				report.Candidates = c
			}
		}
		if r := st.Parse(doc); r != nil {
			report.Records = r
		}
		report.Acceptable = st.Acceptable(report.Records)
		d.Stages = append(d.Stages, report)
	}

	e.logger.Info("board diagnostics complete", "cycle_id", d.CycleID, "stages", len(d.Stages))
	return d
}
