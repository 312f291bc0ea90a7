package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Producer handles Kafka event emission
type Producer struct {
	writer *kafka.Writer
	logger ectologger.Logger
	topic  string
}

// ProducerConfig holds Kafka producer configuration
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int
	Compression  string
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg ProducerConfig, logger ectologger.Logger) *Producer {
	compression := kafka.Snappy
	switch cfg.Compression {
	case "gzip":
		compression = kafka.Gzip
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	case "none":
		compression = 0
	}

	requiredAcks := kafka.RequiredAcks(cfg.RequiredAcks)

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           requiredAcks,
		Compression:            compression,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer: writer,
		logger: logger,
		topic:  cfg.Topic,
	}
}

// Close closes the producer
func (p *Producer) Close() error {
	return p.writer.Close()
}

// MatchCompletedEvent announces that an incoming record finished matching
type MatchCompletedEvent struct {
	EventType          string               `json:"event_type"` // match.completed, match.failed
	IncomingCustomerID string               `json:"incoming_customer_id"`
	RequestID          *string              `json:"request_id,omitempty"`
	Strategy           string               `json:"strategy"`
	MatchCount         int                  `json:"match_count"`
	Results            []models.MatchResult `json:"results,omitempty"`
	Error              string               `json:"error,omitempty"`
	Timestamp          time.Time            `json:"timestamp"`
}

// PublishMatchCompleted publishes a match outcome to Kafka
func (p *Producer) PublishMatchCompleted(ctx context.Context, event *MatchCompletedEvent) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishMatchCompleted")
	defer span.End()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.EventType == "" {
		event.EventType = "match.completed"
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.IncomingCustomerID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "strategy", Value: []byte(event.Strategy)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to publish match completed event")
		return err
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"event_type":           event.EventType,
		"incoming_customer_id": event.IncomingCustomerID,
		"match_count":          event.MatchCount,
	}).Debug("Published match completed event")

	return nil
}
