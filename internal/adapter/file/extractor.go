// Package file reads MSG2 records from local files for the pipeline.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/msg2-etl/internal/domain"
	"github.com/couchcryptid/msg2-etl/internal/msgfile"
	"github.com/couchcryptid/msg2-etl/internal/pipeline"
	"github.com/segmentio/ksuid"
)

// Extractor hands out the records of one MSG2 file in batches.
// It implements pipeline.BatchExtractor.
type Extractor struct {
	rc       io.ReadCloser
	scanner  *msgfile.Scanner
	source   string
	ingestID string
	modTime  time.Time
	logger   *slog.Logger
	done     bool
	err      error // first read error; sticky
	pending  error // read error not yet returned by ExtractBatch
}

// Open opens path for extraction. Every record is tagged with the file's base
// name and a fresh KSUID identifying this ingest run.
func Open(path string, logger *slog.Logger) (*Extractor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	e := newExtractor(f, filepath.Base(path), info.ModTime().UTC(), logger)
	logger.Info("opened msg2 file", "source", e.source, "ingest_id", e.ingestID, "bytes", info.Size())
	return e, nil
}

func newExtractor(rc io.ReadCloser, source string, modTime time.Time, logger *slog.Logger) *Extractor {
	return &Extractor{
		rc:       rc,
		scanner:  msgfile.NewScanner(rc),
		source:   source,
		ingestID: ksuid.New().String(),
		modTime:  modTime,
		logger:   logger,
	}
}

// IngestID returns the KSUID assigned to this file.
func (e *Extractor) IngestID() string {
	return e.ingestID
}

// Err returns the read error that ended extraction early, or nil when the
// whole file was read. The pipeline treats the end of a file as exhaustion
// either way, so callers check Err after Run.
func (e *Extractor) Err() error {
	return e.err
}

// ExtractBatch returns up to batchSize records. A trailing partial record is
// passed through as-is so the decoder rejects it and the pipeline counts it.
// Once the file is consumed it returns pipeline.ErrSourceExhausted.
func (e *Extractor) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error) {
	if e.pending != nil {
		err := e.pending
		e.pending = nil
		return nil, err
	}
	if e.done {
		return nil, pipeline.ErrSourceExhausted
	}

	batch := make([]domain.RawEvent, 0, batchSize)
	for len(batch) < batchSize {
		if err := ctx.Err(); err != nil {
			return batch, err
		}
		if !e.scanner.Scan() {
			e.done = true
			return e.finish(batch)
		}
		batch = append(batch, e.rawEvent(e.scanner.Index(), e.scanner.Record()))
	}
	return batch, nil
}

func (e *Extractor) finish(batch []domain.RawEvent) ([]domain.RawEvent, error) {
	err := e.scanner.Err()
	switch {
	case err == nil:
	case errors.Is(err, msgfile.ErrShortRecord):
		e.logger.Warn("trailing partial record", "source", e.source, "error", err)
		batch = append(batch, e.rawEvent(e.scanner.Index()+1, e.scanner.Partial()))
	default:
		e.err = fmt.Errorf("%s: %w", e.source, err)
		e.logger.Error("read failed", "source", e.source, "error", err, "records", e.scanner.Index()+1)
		if len(batch) == 0 {
			return nil, e.err
		}
		// Hand out what was read; the error follows on the next call.
		e.pending = e.err
		return batch, nil
	}
	if len(batch) == 0 {
		return nil, pipeline.ErrSourceExhausted
	}
	return batch, nil
}

func (e *Extractor) rawEvent(index int, rec []byte) domain.RawEvent {
	value := make([]byte, len(rec))
	copy(value, rec)
	return domain.RawEvent{
		Key:   []byte(fmt.Sprintf("%s:%d", e.source, index)),
		Value: value,
		Headers: map[string]string{
			domain.HeaderSource:   e.source,
			domain.HeaderIngestID: e.ingestID,
		},
		Offset:    int64(index) * domain.RecordSize,
		Timestamp: e.modTime,
	}
}

func (e *Extractor) Close() error {
	return e.rc.Close()
}
