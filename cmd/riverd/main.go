package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/ferrylane/river-conditions/internal/adapter/httpadapter"
	kafkaadapter "github.com/ferrylane/river-conditions/internal/adapter/kafka"
	"github.com/ferrylane/river-conditions/internal/adapter/upstream"
	"github.com/ferrylane/river-conditions/internal/conditions"
	"github.com/ferrylane/river-conditions/internal/config"
	"github.com/ferrylane/river-conditions/internal/observability"
	"github.com/ferrylane/river-conditions/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	client := upstream.NewClient(cfg.UpstreamTimeout, cfg.UserAgent, metrics, logger)

	var opts []pipeline.Option
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		opts = append(opts, pipeline.WithPublisher(writer))
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaBoardsTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	stages := pipeline.DefaultStages(cfg.BoardsPrimaryURL, cfg.BoardsFallbackURL, cfg.BoardsMinRecords, cfg.BoardsMaxLineLength)
	extractor := pipeline.New(client, stages, cfg.BoardsCacheTTL, logger, metrics, opts...)

	cached := upstream.NewCachedGetter(client, cfg.ProxyCacheSize, cfg.ProxyCacheTTL, clockwork.NewRealClock(), metrics)
	svc := conditions.NewService(cached, conditions.Sources{
		FlowURLBase:     cfg.FlowURLBase,
		TelemetryCSVURL: cfg.TelemetryCSVURL,
		DischargeURL:    cfg.DischargeURL,
		TWClientID:      cfg.TWClientID,
		TWClientSecret:  cfg.TWClientSecret,
		WeatherURLBase:  cfg.WeatherURLBase,
		MetOfficeAPIKey: cfg.MetOfficeAPIKey,
	}, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, extractor, extractor, svc, httpadapter.Defaults{
		FlowMeasure:   cfg.FlowDefaultMeasure,
		DischargeSite: cfg.DischargeSite,
		Lat:           cfg.WeatherDefaultLat,
		Lon:           cfg.WeatherDefaultLon,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Keep the board cache warm when a refresh interval is set.
	go func() {
		if err := extractor.Run(ctx, cfg.BoardsRefreshInterval); err != nil {
			logger.Error("board refresher error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
