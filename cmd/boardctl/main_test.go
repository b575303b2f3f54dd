package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ferrylane/river-conditions/internal/domain"
	"github.com/ferrylane/river-conditions/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// execute runs boardctl with args and returns captured stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

const guidanceHTML = `<html><body><ul>
<li>Shiplake Lock to Marsh Lock Caution stream increasing</li>
<li>Marsh Lock to Hambleden Lock No stream warnings</li>
<li>Hambleden Lock to Hurley Lock Strong stream</li>
<li>Hurley Lock to Temple Lock Stream decreasing</li>
<li>Temple Lock to Marlow Lock No stream warnings</li>
</ul></body></html>`

func TestClassify(t *testing.T) {
	out, err := execute(t, "classify", "-o", "json", "Caution", "stream", "increasing")
	require.NoError(t, err)

	var got classification
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, classification{Text: "Caution stream increasing", Status: domain.StatusYellow, Trend: domain.TrendIncreasing}, got)
}

func TestClassify_YAMLDefault(t *testing.T) {
	out, err := execute(t, "classify", "Strong", "stream")
	require.NoError(t, err)

	assert.Contains(t, out, "status: red")
	assert.NotContains(t, out, "trend:")
}

func TestClassify_RequiresText(t *testing.T) {
	_, err := execute(t, "classify")
	assert.Error(t, err)
}

func TestUnknownOutputFormat(t *testing.T) {
	_, err := execute(t, "classify", "-o", "xml", "red")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "boardctl dev\n"))
	assert.Contains(t, out, "commit: none")
}

func TestParse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(guidanceHTML), 0o644))

	out, err := execute(t, "parse", "-o", "yaml", path)
	require.NoError(t, err)

	var records []domain.ReachStatus
	require.NoError(t, yaml.Unmarshal([]byte(out), &records))
	require.Len(t, records, 5)
	assert.Equal(t, "Hambleden", records[2].FromLock)
	assert.Equal(t, domain.StatusRed, records[2].Status)
}

func TestParse_UnknownSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(guidanceHTML), 0o644))

	_, err := execute(t, "parse", "--source", "ea", path)
	assert.Error(t, err)
}

func TestBoards(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(guidanceHTML))
	}))
	defer srv.Close()

	out, err := execute(t, "boards", "-o", "json", "--primary-url", srv.URL, "--fallback-url", srv.URL+"/moorings")
	require.NoError(t, err)

	var res pipeline.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, domain.SourcePrimary, res.Source)
	assert.Len(t, res.Records, 5)
	assert.False(t, res.Cached)
	assert.NotEmpty(t, res.CycleID)
}

func TestBoards_NoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	out, err := execute(t, "boards", "-o", "json", "--primary-url", srv.URL, "--fallback-url", srv.URL)
	require.ErrorIs(t, err, errNoBoardData)

	var res pipeline.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, domain.IsPlaceholder(res.Records))
}

func TestBoards_Debug(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/moorings" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(guidanceHTML))
	}))
	defer srv.Close()

	out, err := execute(t, "boards", "--debug", "-o", "json", "--primary-url", srv.URL, "--fallback-url", srv.URL+"/moorings")
	require.NoError(t, err)

	var d pipeline.Diagnostics
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	require.Len(t, d.Stages, 2)
	assert.True(t, d.Stages[0].Acceptable)
	assert.Len(t, d.Stages[0].Candidates, 5)
	assert.NotEmpty(t, d.Stages[1].Error)
}
