// Package stream publishes signup and capture events to Kafka for downstream
// analytics. Publishing is best-effort: failures are logged and never affect
// the HTTP response, same posture as the ledger sink.
package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/tobias915/leadership-companion/libs/kafkax"
)

const (
	EventSignupRecorded   = "signup.recorded"
	EventCaptureConfirmed = "capture.confirmed"
)

type Publisher struct {
	writer *kafka.Writer
	topic  string
	logger *slog.Logger
}

type Config struct {
	Brokers string // comma-separated; empty disables publishing
	Topic   string
}

// NewPublisher returns nil when no brokers are configured; a nil Publisher
// is safe to call and publishes nothing.
func NewPublisher(cfg Config, logger *slog.Logger) *Publisher {
	brokers := kafkax.SplitBrokers(cfg.Brokers)
	if len(brokers) == 0 {
		logger.Info("signup stream disabled (no kafka brokers configured)")
		return nil
	}
	topic := cfg.Topic
	if topic == "" {
		topic = "founding.signups"
	}
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      brokers,
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: 5 * time.Second,
	})
	return &Publisher{writer: writer, topic: topic, logger: logger}
}

// Publish fires one event into the topic, keyed so events for the same email
// stay ordered. Errors are logged and swallowed.
func (p *Publisher) Publish(ctx context.Context, eventID, eventType, key string, payload any) {
	if p == nil {
		return
	}
	value, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("stream payload marshal failed", "err", err, "event_type", eventType)
		return
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(eventID)},
			{Key: "event_type", Value: []byte(eventType)},
		},
	}
	msg.Headers = kafkax.InjectTraceHeaders(ctx, msg.Headers)
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("stream publish failed", "err", err, "event_type", eventType, "event_id", eventID)
	}
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
