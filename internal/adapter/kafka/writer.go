package kafka

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/msg2-etl/internal/config"
	"github.com/couchcryptid/msg2-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces decoded records to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes decoded records to the sink topic in a
// single WriteMessages call. Records are keyed by ID so replays land on the
// same partition.
func (w *Writer) LoadBatch(ctx context.Context, records []domain.DecodedRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a DecodedRecord into a Kafka message.
func serializeToMessage(rec domain.DecodedRecord) (kafkago.Message, error) {
	out, err := domain.SerializeRecord(rec)
	if err != nil {
		return kafkago.Message{}, err
	}
	return kafkago.Message{
		Key:   out.Key,
		Value: out.Value,
		Headers: []kafkago.Header{
			{Key: "group", Value: []byte(out.Headers["group"])},
			{Key: "processed_at", Value: []byte(out.Headers["processed_at"])},
		},
	}, nil
}
