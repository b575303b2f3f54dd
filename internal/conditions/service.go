// Package conditions fetches and normalizes the auxiliary river-condition
// feeds: river flow, riverside temperature telemetry, storm-overflow
// discharge status and the site-specific weather forecast.
package conditions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/ferrylane/river-conditions/internal/adapter/upstream"
	"github.com/ferrylane/river-conditions/internal/domain"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultFlowLimit = 10000
	MaxFlowLimit     = 100000
)

// ErrNotConfigured is returned when a source needs credentials that are not set.
var ErrNotConfigured = errors.New("source credentials not configured")

// Sources holds the upstream endpoints and credentials.
type Sources struct {
	FlowURLBase     string
	TelemetryCSVURL string
	DischargeURL    string
	TWClientID      string
	TWClientSecret  string
	WeatherURLBase  string
	MetOfficeAPIKey string
}

// Service serves normalized conditions data through a Getter, normally an
// upstream.CachedGetter.
type Service struct {
	getter upstream.Getter
	src    Sources
	logger *slog.Logger
}

// NewService creates a conditions service.
func NewService(getter upstream.Getter, src Sources, logger *slog.Logger) *Service {
	return &Service{getter: getter, src: src, logger: logger}
}

// Flow returns readings for measure taken at or after since, at most limit
// of them. since is truncated to the minute so repeated default-window
// requests share a cache entry.
func (s *Service) Flow(ctx context.Context, measure string, since time.Time, limit int) (domain.FlowSeries, error) {
	if limit < 1 || limit > MaxFlowLimit {
		return domain.FlowSeries{}, fmt.Errorf("limit %d out of range 1..%d", limit, MaxFlowLimit)
	}

	u := fmt.Sprintf("%s/id/measures/%s/readings?_sorted&_limit=%d",
		s.src.FlowURLBase, url.PathEscape(measure), limit)
	if !since.IsZero() {
		u += "&since=" + url.QueryEscape(since.UTC().Truncate(time.Minute).Format(time.RFC3339))
	}

	body, err := s.getter.Get(ctx, u, nil)
	if err != nil {
		return domain.FlowSeries{}, fmt.Errorf("fetch flow readings: %w", err)
	}
	series, err := domain.ParseFlowReadings(measure, body)
	if err != nil {
		return domain.FlowSeries{}, err
	}
	s.logger.Debug("flow readings fetched", "measure", measure, "readings", len(series.Readings))
	return series, nil
}

// Telemetry returns the riverside temperature samples, oldest first.
func (s *Service) Telemetry(ctx context.Context) ([]domain.TemperatureSample, error) {
	body, err := s.getter.Get(ctx, s.src.TelemetryCSVURL, map[string]string{"Accept": "text/csv"})
	if err != nil {
		return nil, fmt.Errorf("fetch telemetry: %w", err)
	}
	samples, err := domain.ParseTelemetryCSV(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if samples == nil {
		samples = []domain.TemperatureSample{}
	}
	return samples, nil
}

// Discharge returns the current storm-overflow status at site.
func (s *Service) Discharge(ctx context.Context, site string) (domain.DischargeStatus, error) {
	if s.src.TWClientID == "" || s.src.TWClientSecret == "" {
		return domain.DischargeStatus{}, fmt.Errorf("discharge status: %w", ErrNotConfigured)
	}

	q := url.Values{}
	q.Set("col_1", "LocationName")
	q.Set("operand_1", "eq")
	q.Set("value_1", site)

	body, err := s.getter.Get(ctx, s.src.DischargeURL+"?"+q.Encode(), map[string]string{
		"client_id":     s.src.TWClientID,
		"client_secret": s.src.TWClientSecret,
	})
	if err != nil {
		return domain.DischargeStatus{}, fmt.Errorf("fetch discharge status: %w", err)
	}
	return domain.ParseDischargeStatus(site, body)
}

// Forecast fetches the hourly and daily forecasts for a location
// concurrently. Either failing fails the whole request.
func (s *Service) Forecast(ctx context.Context, lat, lon float64) (domain.Forecast, error) {
	if s.src.MetOfficeAPIKey == "" {
		return domain.Forecast{}, fmt.Errorf("forecast: %w", ErrNotConfigured)
	}

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	headers := map[string]string{"apikey": s.src.MetOfficeAPIKey, "Accept": "application/json"}

	var hourly, daily []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := s.getter.Get(gctx, s.src.WeatherURLBase+"/hourly?"+q.Encode(), headers)
		if err != nil {
			return fmt.Errorf("fetch hourly forecast: %w", err)
		}
		hourly = b
		return nil
	})
	g.Go(func() error {
		b, err := s.getter.Get(gctx, s.src.WeatherURLBase+"/daily?"+q.Encode(), headers)
		if err != nil {
			return fmt.Errorf("fetch daily forecast: %w", err)
		}
		daily = b
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.Forecast{}, err
	}

	return domain.ParseForecast(hourly, daily)
}
