package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ferrylane/river-conditions/internal/domain"
	"github.com/ferrylane/river-conditions/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const publishTimeout = 5 * time.Second

// Fetcher retrieves an HTML document.
type Fetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}

// Publisher receives every freshly extracted board result that enters the cache.
type Publisher interface {
	PublishBoards(ctx context.Context, result Result) error
}

// Result is one board extraction outcome. Records is never empty.
type Result struct {
	Records   []domain.ReachStatus `json:"records" yaml:"records"`
	Source    domain.Source        `json:"source" yaml:"source"`
	CycleID   string               `json:"cycleId" yaml:"cycleId"`
	FetchedAt time.Time            `json:"fetchedAt" yaml:"fetchedAt"`
	Cached    bool                 `json:"cached" yaml:"cached"`
}

// Extractor produces board statuses by walking its stages in order and
// caches successful results for a fixed window.
type Extractor struct {
	fetcher   Fetcher
	stages    []Stage
	cache     *resultCache
	clock     clockwork.Clock
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock sets the time source used for cache expiry and timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(e *Extractor) { e.clock = c }
}

// WithPublisher sets where fresh results are published.
func WithPublisher(p Publisher) Option {
	return func(e *Extractor) { e.publisher = p }
}

// New creates an Extractor over the given stages with a cache window of ttl.
func New(fetcher Fetcher, stages []Stage, ttl time.Duration, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Extractor {
	e := &Extractor{
		fetcher: fetcher,
		stages:  stages,
		clock:   clockwork.NewRealClock(),
		logger:  logger,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cache = newResultCache(ttl, e.clock)
	return e
}

// CheckReadiness returns nil once at least one extraction cycle has completed.
func (e *Extractor) CheckReadiness(_ context.Context) error {
	if !e.ready.Load() {
		return errors.New("no board extraction has completed yet")
	}
	return nil
}

// GetBoardStatuses returns the current board statuses. A fresh cached result
// is served without network access unless bypassCache is set; bypassing
// neither reads nor writes the cache. Failures are absorbed: the worst case
// is the placeholder record with source "none".
func (e *Extractor) GetBoardStatuses(ctx context.Context, bypassCache bool) Result {
	if bypassCache {
		e.metrics.BoardCache.WithLabelValues("bypass").Inc()
		return e.extract(ctx)
	}

	if r, ok := e.cache.get(); ok {
		e.metrics.BoardCache.WithLabelValues("hit").Inc()
		r.Cached = true
		return r
	}
	e.metrics.BoardCache.WithLabelValues("miss").Inc()

	r := e.extract(ctx)
	if r.Source == domain.SourceNone {
		return r
	}
	e.cache.put(r)
	e.publish(ctx, r)
	return r
}

// Run keeps the cache warm by refreshing it every interval until ctx is
// cancelled. A non-positive interval returns immediately.
func (e *Extractor) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	e.logger.Info("board refresher started", "interval", interval)

	ticker := e.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		e.GetBoardStatuses(ctx, false)

		select {
		case <-ctx.Done():
			e.logger.Info("board refresher stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		}
	}
}

// extract runs one cycle through the stages. The first acceptable result
// wins; otherwise the first non-empty one; otherwise the placeholder.
func (e *Extractor) extract(ctx context.Context) Result {
	cycleID := uuid.NewString()
	logger := e.logger.With("cycle_id", cycleID)

	var (
		records []domain.ReachStatus
		source  = domain.SourceNone
	)
	for _, st := range e.stages {
		got, err := e.runStage(ctx, st)
		if err != nil {
			logger.Warn("board stage fetch failed", "stage", st.Source, "url", st.URL, "error", err)
			e.metrics.BoardStageRejections.WithLabelValues(string(st.Source)).Inc()
			continue
		}

		if st.Acceptable(got) {
			records, source = got, st.Source
			break
		}
		logger.Warn("board stage result insufficient", "stage", st.Source, "url", st.URL, "records", len(got))
		e.metrics.BoardStageRejections.WithLabelValues(string(st.Source)).Inc()
		if len(got) > 0 && records == nil {
			records, source = got, st.Source
		}
	}

	if len(records) == 0 {
		records, source = domain.Placeholder(), domain.SourceNone
		logger.Error("no board data from any source, serving placeholder")
	}

	e.ready.Store(true)
	e.metrics.BoardExtractions.WithLabelValues(string(source)).Inc()
	e.metrics.BoardRecords.WithLabelValues(string(source)).Set(float64(len(records)))
	logger.Info("board extraction complete", "source", source, "records", len(records))

	return Result{
		Records:   records,
		Source:    source,
		CycleID:   cycleID,
		FetchedAt: e.clock.Now().UTC(),
	}
}

func (e *Extractor) runStage(ctx context.Context, st Stage) ([]domain.ReachStatus, error) {
	doc, err := e.fetcher.FetchPage(ctx, st.URL)
	if err != nil {
		return nil, err
	}
	return st.Parse(doc), nil
}

func (e *Extractor) publish(ctx context.Context, r Result) {
	if e.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := e.publisher.PublishBoards(ctx, r); err != nil {
		e.metrics.BoardPublishErrors.Inc()
		e.logger.Error("publish board statuses failed", "cycle_id", r.CycleID, "error", err)
	}
}
