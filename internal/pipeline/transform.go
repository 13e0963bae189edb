package pipeline

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/couchcryptid/msg2-etl/internal/domain"
	"github.com/couchcryptid/msg2-etl/internal/observability"
)

// RecordTransformer implements Transformer with the MSG2 decoder and counts
// decoded records by group.
type RecordTransformer struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewTransformer creates a RecordTransformer.
func NewTransformer(logger *slog.Logger, metrics *observability.Metrics) *RecordTransformer {
	return &RecordTransformer{
		logger:  logger,
		metrics: metrics,
	}
}

func (t *RecordTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.DecodedRecord, error) {
	rec, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.DecodedRecord{}, err
	}

	t.metrics.RecordsByGroup.WithLabelValues(strconv.Itoa(rec.Header.Group)).Inc()
	if !rec.Known {
		t.metrics.UnknownGroups.Inc()
		t.logger.Debug("record has unknown group",
			"id", rec.ID,
			"group", rec.Header.Group,
			"source", rec.Source,
		)
	}
	return rec, nil
}
