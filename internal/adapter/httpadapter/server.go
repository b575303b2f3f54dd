package httpadapter

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/ferrylane/river-conditions/internal/conditions"
	"github.com/ferrylane/river-conditions/internal/domain"
	"github.com/ferrylane/river-conditions/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BoardSource serves board statuses and extraction diagnostics.
type BoardSource interface {
	GetBoardStatuses(ctx context.Context, bypassCache bool) pipeline.Result
	Diagnose(ctx context.Context) pipeline.Diagnostics
}

// ConditionsSource serves the auxiliary conditions feeds.
type ConditionsSource interface {
	Flow(ctx context.Context, measure string, since time.Time, limit int) (domain.FlowSeries, error)
	Telemetry(ctx context.Context) ([]domain.TemperatureSample, error)
	Discharge(ctx context.Context, site string) (domain.DischargeStatus, error)
	Forecast(ctx context.Context, lat, lon float64) (domain.Forecast, error)
}

// Defaults fill in query parameters the caller leaves out.
type Defaults struct {
	FlowMeasure   string
	DischargeSite string
	Lat, Lon      float64
}

// Server exposes the API alongside health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	boards     BoardSource
	conditions ConditionsSource
	defaults   Defaults
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the /api routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, boards BoardSource, cond ConditionsSource, defaults Defaults, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		boards:     boards,
		conditions: cond,
		defaults:   defaults,
		logger:     logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/ea/boards", s.handleBoards)
	mux.HandleFunc("GET /api/ea/flow", s.handleFlow)
	mux.HandleFunc("GET /api/csv/shiplake", s.handleTelemetry)
	mux.HandleFunc("GET /api/tw/status", s.handleDischarge)
	mux.HandleFunc("GET /api/metoffice", s.handleForecast)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleBoards always answers 200: failures surface as the placeholder record.
func (s *Server) handleBoards(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if flag(q.Get("debug")) {
		sharedobs.WriteJSON(w, http.StatusOK, s.boards.Diagnose(r.Context()))
		return
	}

	res := s.boards.GetBoardStatuses(r.Context(), flag(q.Get("refresh")))
	w.Header().Set("X-Board-Source", string(res.Source))
	w.Header().Set("X-Board-Cycle", res.CycleID)
	w.Header().Set("X-Board-Cached", strconv.FormatBool(res.Cached))
	sharedobs.WriteJSON(w, http.StatusOK, res.Records)
}

func (s *Server) handleFlow(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	measure := q.Get("measure")
	if measure == "" {
		measure = s.defaults.FlowMeasure
	}

	limit := conditions.DefaultFlowLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > conditions.MaxFlowLimit {
			writeError(w, http.StatusBadRequest, "limit must be an integer between 1 and "+strconv.Itoa(conditions.MaxFlowLimit))
			return
		}
		limit = n
	}

	since := domain.DefaultFlowSince()
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "since must be an RFC 3339 timestamp")
			return
		}
		since = t
	}

	series, err := s.conditions.Flow(r.Context(), measure, since, limit)
	if err != nil {
		s.upstreamError(w, "flow", err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, series)
}

func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	samples, err := s.conditions.Telemetry(r.Context())
	if err != nil {
		s.upstreamError(w, "telemetry", err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"samples": samples})
}

func (s *Server) handleDischarge(w http.ResponseWriter, r *http.Request) {
	site := r.URL.Query().Get("site")
	if site == "" {
		site = s.defaults.DischargeSite
	}

	st, err := s.conditions.Discharge(r.Context(), site)
	if err != nil {
		s.upstreamError(w, "discharge", err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, st)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, ok := coordinate(q.Get("lat"), s.defaults.Lat, 90)
	if !ok {
		writeError(w, http.StatusBadRequest, "lat must be a number between -90 and 90")
		return
	}
	lon, ok := coordinate(q.Get("lon"), s.defaults.Lon, 180)
	if !ok {
		writeError(w, http.StatusBadRequest, "lon must be a number between -180 and 180")
		return
	}

	f, err := s.conditions.Forecast(r.Context(), lat, lon)
	if err != nil {
		s.upstreamError(w, "forecast", err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, f)
}

func (s *Server) upstreamError(w http.ResponseWriter, source string, err error) {
	if errors.Is(err, conditions.ErrNotConfigured) {
		s.logger.Error("conditions source not configured", "source", source, "error", err)
		writeError(w, http.StatusInternalServerError, source+" source is not configured")
		return
	}
	s.logger.Warn("conditions upstream failed", "source", source, "error", err)
	writeError(w, http.StatusBadGateway, source+" upstream error: "+err.Error())
}

func flag(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

func coordinate(v string, def, limit float64) (float64, bool) {
	if v == "" {
		return def, true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || f < -limit || f > limit {
		return 0, false
	}
	return f, true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}
