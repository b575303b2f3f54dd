package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsForTesting_IsolatedInstances(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.BoardCache.WithLabelValues("hit").Inc()

	assert.InDelta(t, 1.0, testutil.ToFloat64(a.BoardCache.WithLabelValues("hit")), 1e-9)
	assert.InDelta(t, 0.0, testutil.ToFloat64(b.BoardCache.WithLabelValues("hit")), 1e-9)
}

func TestMetrics_RegisterUnderNamespace(t *testing.T) {
	m := NewMetricsForTesting()
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(m.BoardExtractions))
	require.NoError(t, reg.Register(m.BoardPublishErrors))

	m.BoardExtractions.WithLabelValues("primary").Inc()
	m.BoardPublishErrors.Inc()

	count, err := testutil.GatherAndCount(reg, "river_conditions_board_extractions_total", "river_conditions_board_publish_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
