package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/ferrylane/river-conditions/internal/config"
	"github.com/ferrylane/river-conditions/internal/domain"
	"github.com/ferrylane/river-conditions/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	publishAttempts = 3
	initialBackoff  = 200 * time.Millisecond
	maxBackoff      = 2 * time.Second
)

// messageWriter is the subset of *kafkago.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes board extraction results to a Kafka topic, one message per
// reach. It implements pipeline.Publisher.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured board topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaBoardsTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishBoards writes every record of result in a single WriteMessages call,
// retrying with backoff until ctx expires or the attempts run out.
func (w *Writer) PublishBoards(ctx context.Context, result pipeline.Result) error {
	if len(result.Records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(result.Records))
	for i := range result.Records {
		msg, err := serializeToMessage(result, result.Records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}

	backoff := initialBackoff
	var err error
	for attempt := 1; attempt <= publishAttempts; attempt++ {
		if err = w.writer.WriteMessages(ctx, msgs...); err == nil {
			w.logger.Debug("board statuses published", "cycle_id", result.CycleID, "messages", len(msgs))
			return nil
		}
		w.logger.Warn("publish board statuses failed", "attempt", attempt, "cycle_id", result.CycleID, "error", err)
		if attempt == publishAttempts || !retry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
	return fmt.Errorf("publish %d board statuses: %w", len(msgs), err)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals one reach status into a Kafka message keyed by reach.
func serializeToMessage(result pipeline.Result, rs domain.ReachStatus) (kafkago.Message, error) {
	data, err := json.Marshal(rs)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize reach status: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rs.Reach),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "status", Value: []byte(rs.Status)},
			{Key: "source", Value: []byte(result.Source)},
			{Key: "cycle_id", Value: []byte(result.CycleID)},
			{Key: "fetched_at", Value: []byte(result.FetchedAt.Format(time.RFC3339))},
		},
	}, nil
}
