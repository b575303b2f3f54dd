package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// FlowReading is one river flow sample in cubic metres per second.
type FlowReading struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// FlowSeries is the normalized flow-monitoring response.
type FlowSeries struct {
	Measure  string        `json:"measure"`
	Readings []FlowReading `json:"readings"`
}

// DefaultFlowWindow is how far back flow readings are requested when the
// caller does not say.
const DefaultFlowWindow = 14 * 24 * time.Hour

// DefaultFlowSince returns the start of the default flow window.
func DefaultFlowSince() time.Time {
	return clock.Now().UTC().Add(-DefaultFlowWindow)
}

type flowEnvelope struct {
	Items []map[string]any `json:"items"`
}

// ParseFlowReadings normalizes a flood-monitoring readings response. Items
// without a parseable timestamp or finite value are dropped and the result is
// sorted oldest first.
func ParseFlowReadings(measure string, body []byte) (FlowSeries, error) {
	var env flowEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return FlowSeries{}, fmt.Errorf("decode flow readings: %w", err)
	}

	readings := make([]FlowReading, 0, len(env.Items))
	for _, item := range env.Items {
		ts, err := time.Parse(time.RFC3339, FirstString(item, "dateTime", "date"))
		if err != nil {
			continue
		}
		v, ok := FirstFloat(item, "value")
		if !ok {
			continue
		}
		readings = append(readings, FlowReading{Time: ts.UTC(), Value: v})
	}
	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].Time.Before(readings[j].Time)
	})

	return FlowSeries{Measure: measure, Readings: readings}, nil
}
