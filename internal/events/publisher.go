package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/kailas-cloud/semrouter/internal/domain/routing"
)

// messageWriter is the subset of *kafka.Writer used by Publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes JSON-encoded route events to a Kafka topic, keyed by route
// name so one route's events stay on one partition.
type Publisher struct {
	writer messageWriter
	logger *zap.Logger
}

// NewPublisher creates a Publisher for the given brokers and topic.
func NewPublisher(brokers []string, topic string, logger *zap.Logger) *Publisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireOne,
	}
	return newPublisher(w, logger.With(zap.String("component", "route-events"), zap.String("topic", topic)))
}

func newPublisher(w messageWriter, logger *zap.Logger) *Publisher {
	return &Publisher{writer: w, logger: logger}
}

// Publish writes one event synchronously.
func (p *Publisher) Publish(ctx context.Context, ev routing.Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal route event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.Route),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish route event: %w", err)
	}
	p.logger.Debug("Route event published",
		zap.String("route", ev.Route),
		zap.Int("value_size", len(value)),
	)
	return nil
}

// Close flushes pending writes and closes the writer.
func (p *Publisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("close kafka writer: %w", err)
	}
	return nil
}
