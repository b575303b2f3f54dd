package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReachLine(t *testing.T) {
	t.Run("standard line", func(t *testing.T) {
		r, ok := ParseReachLine("Shiplake Lock to Marsh Lock Stream increasing")
		require.True(t, ok)
		assert.Equal(t, ReachStatus{
			Reach:    "Shiplake Lock to Marsh Lock",
			FromLock: "Shiplake",
			ToLock:   "Marsh",
			Status:   StatusYellow,
			Trend:    TrendIncreasing,
		}, r)
	})

	t.Run("apostrophes and hyphens in names", func(t *testing.T) {
		r, ok := ParseReachLine("Boulter's Lock to Bray-on-Thames Lock: Strong stream")
		require.True(t, ok)
		assert.Equal(t, "Boulter's", r.FromLock)
		assert.Equal(t, "Bray-on-Thames", r.ToLock)
		assert.Equal(t, StatusRed, r.Status)
	})

	t.Run("multi word names", func(t *testing.T) {
		r, ok := ParseReachLine("Old Windsor Lock to Bell Weir Lock no stream warnings")
		require.True(t, ok)
		assert.Equal(t, "Old Windsor Lock to Bell Weir Lock", r.Reach)
		assert.Equal(t, StatusGreen, r.Status)
	})

	t.Run("case insensitive marker", func(t *testing.T) {
		r, ok := ParseReachLine("SONNING LOCK TO SHIPLAKE LOCK CAUTION")
		require.True(t, ok)
		assert.Equal(t, "SONNING", r.FromLock)
		assert.Equal(t, StatusYellow, r.Status)
	})

	t.Run("curly apostrophes in names", func(t *testing.T) {
		r, ok := ParseReachLine("Boulter’s Lock to Bray Lock Strong stream")
		require.True(t, ok)
		assert.Equal(t, "Boulter’s Lock to Bray Lock", r.Reach)
		assert.Equal(t, "Boulter’s", r.FromLock)
		assert.Equal(t, "Bray", r.ToLock)
		assert.Equal(t, StatusRed, r.Status)

		r, ok = ParseReachLine("Romney Lock to Old Windsor Lock ‘caution’ stream increasing")
		require.True(t, ok)
		assert.Equal(t, "Romney", r.FromLock)
		assert.Equal(t, TrendIncreasing, r.Trend)
	})

	t.Run("no free text", func(t *testing.T) {
		_, ok := ParseReachLine("Temple Lock to Marlow Lock")
		assert.False(t, ok)
	})

	t.Run("separators only", func(t *testing.T) {
		_, ok := ParseReachLine("Temple Lock to Marlow Lock: -")
		assert.False(t, ok)
	})

	t.Run("not a reach", func(t *testing.T) {
		_, ok := ParseReachLine("Check conditions before you travel")
		assert.False(t, ok)
	})
}

func TestCandidateLines(t *testing.T) {
	t.Run("filters on marker and length", func(t *testing.T) {
		lines := []string{
			"River Thames current river conditions",
			"Shiplake Lock to Marsh Lock Caution stream increasing",
			"Marsh Lock to Hambleden Lock " + strings.Repeat("x", 200),
		}
		assert.Equal(t, lines[1:2], CandidateLines(lines, 160))
	})

	t.Run("long paragraph split into sentences", func(t *testing.T) {
		para := "Boards are updated at 9am daily and may change without notice during the day. " +
			"Hurley Lock to Temple Lock Strong stream. " +
			"Please check the notices at each lock before setting out and keep clear of weirs at all times."
		assert.Equal(t, []string{"Hurley Lock to Temple Lock Strong stream."}, CandidateLines([]string{para}, 160))
	})

	t.Run("default max length", func(t *testing.T) {
		assert.Len(t, CandidateLines([]string{"A Lock to B Lock red"}, 0), 1)
	})
}

func TestParseGuidance(t *testing.T) {
	doc := `<html><head><script>var x = "Fake Lock to Faker Lock red";</script></head><body>
<h1>River Thames: current river conditions</h1>
<p>Stream warnings for the non-tidal Thames:</p>
<ul>
<li>Shiplake Lock to Marsh Lock: Caution stream increasing</li>
<li>Marsh Lock to Hambleden Lock &ndash; No stream warnings</li>
<li>Shiplake Lock to Marsh Lock Stream decreasing</li>
</ul>
</body></html>`

	records := ParseGuidance(doc, DefaultMaxLineLength)

	require.Len(t, records, 3, "duplicates are kept in source order")
	assert.Equal(t, "Shiplake Lock to Marsh Lock", records[0].Reach)
	assert.Equal(t, TrendIncreasing, records[0].Trend)
	assert.Equal(t, "Marsh Lock to Hambleden Lock", records[1].Reach)
	assert.Equal(t, StatusGreen, records[1].Status)
	assert.Equal(t, TrendDecreasing, records[2].Trend)
}

func TestParseGuidance_BoardTextInSiblingElements(t *testing.T) {
	t.Run("table cells", func(t *testing.T) {
		doc := `<table><tr><th>Reach</th><th>Board</th></tr>` +
			`<tr><td>Hambleden Lock to Hurley Lock</td><td>Red boards: strong stream</td></tr>` +
			`<tr><td>Hurley Lock to Temple Lock</td><td>Stream decreasing</td></tr></table>`

		records := ParseGuidance(doc, DefaultMaxLineLength)

		require.Len(t, records, 2)
		assert.Equal(t, ReachStatus{Reach: "Hambleden Lock to Hurley Lock", FromLock: "Hambleden", ToLock: "Hurley", Status: StatusRed}, records[0])
		assert.Equal(t, TrendDecreasing, records[1].Trend)
	})

	t.Run("nested divs in list items", func(t *testing.T) {
		doc := `<ul><li><span class="reach">Hambleden Lock to Hurley Lock</span><div class="board">Strong stream</div></li>` +
			`<li><div>Hurley Lock to Temple Lock</div><div>No stream warnings</div></li></ul>`

		records := ParseGuidance(doc, DefaultMaxLineLength)

		require.Len(t, records, 2)
		assert.Equal(t, StatusRed, records[0].Status)
		assert.Equal(t, "Hambleden Lock to Hurley Lock", records[0].Reach)
		assert.Equal(t, StatusGreen, records[1].Status)
	})

	t.Run("reach without board text is skipped", func(t *testing.T) {
		doc := `<h3>Temple Lock to Marlow Lock</h3><p>Marlow Lock to Cookham Lock Caution</p>`

		records := ParseGuidance(doc, DefaultMaxLineLength)

		require.Len(t, records, 1)
		assert.Equal(t, "Marlow Lock to Cookham Lock", records[0].Reach)
	})
}

func TestParseGuidance_ScriptOnly(t *testing.T) {
	assert.Empty(t, ParseGuidance("<script>X Lock to Y Lock red</script>", DefaultMaxLineLength))
}
