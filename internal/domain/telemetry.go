package domain

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// TemperatureSample is one row of the riverside telemetry feed.
type TemperatureSample struct {
	Time  time.Time `json:"time"`
	River float64   `json:"river"`
	Air   *float64  `json:"air,omitempty"`
}

var (
	compactUTC = regexp.MustCompile(`^(\d{14})Z?$`)
	epochSecs  = regexp.MustCompile(`^\d{10}(\.\d+)?$`)
	epochMilli = regexp.MustCompile(`^\d{13}$`)
	isoish     = regexp.MustCompile(`(?i)^(\d{4}-\d{2}-\d{2})[ T](\d{2}:\d{2})(:\d{2})?(?:\s*(?:UTC|GMT))?$`)
	headerRow  = regexp.MustCompile(`(?i)date`)
)

// ParseTelemetryCSV reads "time, air, river" rows. The delimiter is whichever
// of ',' and ';' is more frequent on the first line, and a first line that
// mentions "date" is treated as a header. Rows without a river reading are
// skipped; the result is sorted oldest first.
func ParseTelemetryCSV(r io.Reader) ([]TemperatureSample, error) {
	br := bufio.NewReader(r)
	first, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("read telemetry: %w", err)
	}
	firstLine := strings.TrimPrefix(string(first), "\ufeff")
	if i := strings.IndexByte(firstLine, '\n'); i >= 0 {
		firstLine = firstLine[:i]
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	if strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		cr.Comma = ';'
	}

	var samples []TemperatureSample
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse telemetry row %d: %w", row+1, err)
		}
		if row == 0 && headerRow.MatchString(strings.Join(rec, " ")) {
			continue
		}
		if len(rec) < 3 {
			continue
		}

		ts, ok := ParseTelemetryTime(strings.TrimPrefix(rec[0], "\ufeff"))
		if !ok {
			continue
		}
		river, ok := parseReading(rec[2])
		if !ok {
			continue
		}
		s := TemperatureSample{Time: ts, River: river}
		if air, ok := parseReading(rec[1]); ok {
			s.Air = &air
		}
		samples = append(samples, s)
	}

	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Time.Before(samples[j].Time)
	})
	return samples, nil
}

// ParseTelemetryTime accepts compact UTC (YYYYMMDDHHMMSS[Z]), epoch seconds,
// epoch milliseconds, "YYYY-MM-DD HH:MM[:SS] [UTC]" and RFC 3339.
func ParseTelemetryTime(s string) (time.Time, bool) {
	s = strings.Trim(strings.TrimSpace(s), `"`)
	if s == "" {
		return time.Time{}, false
	}

	if m := compactUTC.FindStringSubmatch(s); m != nil {
		t, err := time.Parse("20060102150405", m[1])
		return t, err == nil
	}
	if epochMilli.MatchString(s) {
		ms, err := strconv.ParseInt(s, 10, 64)
		return time.UnixMilli(ms).UTC(), err == nil
	}
	if epochSecs.MatchString(s) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return time.Time{}, false
		}
		sec, frac := math.Modf(f)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
	}
	if m := isoish.FindStringSubmatch(s); m != nil {
		secs := m[3]
		if secs == "" {
			secs = ":00"
		}
		t, err := time.Parse("2006-01-02T15:04:05", m[1]+"T"+m[2]+secs)
		return t, err == nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

func parseReading(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
