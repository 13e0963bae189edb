package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/msg2-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher writes raw 64-byte records to the source topic.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a producer for topic on brokers.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish sends raw records as-is and returns how many were written. Each
// message carries the record's source and ingest headers and is keyed by the
// record ID. Records that are not exactly domain.RecordSize bytes are logged
// and skipped.
func (p *Publisher) Publish(ctx context.Context, raws []domain.RawEvent) (int, error) {
	msgs := make([]kafkago.Message, 0, len(raws))
	for _, raw := range raws {
		if len(raw.Value) != domain.RecordSize {
			p.logger.Warn("skipping malformed record", "key", string(raw.Key), "bytes", len(raw.Value))
			continue
		}
		msgs = append(msgs, rawToMessage(raw))
	}
	if len(msgs) == 0 {
		return 0, nil
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return 0, fmt.Errorf("publish: %w", err)
	}
	p.logger.Debug("published raw records", "count", len(msgs), "topic", p.writer.Topic)
	return len(msgs), nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func rawToMessage(raw domain.RawEvent) kafkago.Message {
	headers := make([]kafkago.Header, 0, 2)
	for _, k := range []string{domain.HeaderSource, domain.HeaderIngestID} {
		if v, ok := raw.Headers[k]; ok {
			headers = append(headers, kafkago.Header{Key: k, Value: []byte(v)})
		}
	}
	return kafkago.Message{
		Key:     []byte(domain.GenerateID(raw.Value)),
		Value:   raw.Value,
		Headers: headers,
		Time:    raw.Timestamp,
	}
}
