// Package archive keeps decoded MSG2 records in a local Pebble database,
// indexed by year, month and group.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/couchcryptid/msg2-etl/internal/domain"
	"github.com/couchcryptid/msg2-etl/internal/observability"
)

// ErrNotFound is returned when no record exists for an ID.
var ErrNotFound = errors.New("record not found")

// Key layout:
//
//	rec/<year:04d>/<month:02d>/<group:02d>/<id>  -> stored record JSON
//	id/<id>                                      -> primary key
const (
	recordPrefix = "rec/"
	idPrefix     = "id/"
)

// Options configures Open.
type Options struct {
	// FS overrides the filesystem, e.g. vfs.NewMem() in tests.
	FS      vfs.FS
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// Store is a Pebble-backed archive of decoded records.
// It implements pipeline.BatchLoader.
type Store struct {
	db      *pebble.DB
	logger  *slog.Logger
	metrics *observability.Metrics
}

// storedRecord keeps the raw bytes alongside the decoded form so records can
// be re-decoded later.
type storedRecord struct {
	domain.DecodedRecord
	Raw []byte `json:"raw"`
}

// Open opens or creates the archive at path.
func Open(path string, opts Options) (*Store, error) {
	pebbleOpts := &pebble.Options{}
	if opts.FS != nil {
		pebbleOpts.FS = opts.FS
	}
	db, err := pebble.Open(path, pebbleOpts)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger, metrics: opts.Metrics}, nil
}

// LoadBatch writes records in a single atomic Pebble batch. Writing a record
// that already exists overwrites it, so replays are harmless.
func (s *Store) LoadBatch(_ context.Context, records []domain.DecodedRecord) error {
	if len(records) == 0 {
		return nil
	}
	b := s.db.NewBatch()
	defer b.Close()

	for _, rec := range records {
		value, err := json.Marshal(storedRecord{DecodedRecord: rec, Raw: rec.RawPayload})
		if err != nil {
			return fmt.Errorf("archive %s: %w", rec.ID, err)
		}
		key := recordKey(rec)
		if err := b.Set(key, value, nil); err != nil {
			return fmt.Errorf("archive %s: %w", rec.ID, err)
		}
		if err := b.Set(idKey(rec.ID), key, nil); err != nil {
			return fmt.Errorf("archive %s: %w", rec.ID, err)
		}
	}

	if err := b.Commit(pebble.Sync); err != nil {
		s.observe("error")
		return fmt.Errorf("archive commit: %w", err)
	}
	s.observe("success")
	s.logger.Debug("archived batch", "size", len(records))
	return nil
}

// Get returns the archived record with the given ID.
func (s *Store) Get(id string) (domain.DecodedRecord, error) {
	key, err := s.get(idKey(id))
	if err != nil {
		return domain.DecodedRecord{}, err
	}
	value, err := s.get(key)
	if err != nil {
		return domain.DecodedRecord{}, err
	}
	return decodeStored(value)
}

// Filter narrows Scan. Zero fields match everything. Month is only honoured
// when Year is set, and Group only when Month is set.
type Filter struct {
	Year  int
	Month int
	Group *int
}

// Validate reports filters that would silently match more than asked for.
func (f Filter) Validate() error {
	switch {
	case f.Month < 0 || f.Month > 12:
		return fmt.Errorf("archive filter: month %d out of range", f.Month)
	case f.Month != 0 && f.Year == 0:
		return errors.New("archive filter: month requires year")
	case f.Group != nil && f.Month == 0:
		return errors.New("archive filter: group requires month")
	}
	return nil
}

func (f Filter) prefix() []byte {
	switch {
	case f.Year == 0:
		return []byte(recordPrefix)
	case f.Month == 0:
		return []byte(fmt.Sprintf("%s%04d/", recordPrefix, f.Year))
	case f.Group == nil:
		return []byte(fmt.Sprintf("%s%04d/%02d/", recordPrefix, f.Year, f.Month))
	default:
		return []byte(fmt.Sprintf("%s%04d/%02d/%02d/", recordPrefix, f.Year, f.Month, *f.Group))
	}
}

// Scan calls fn for every archived record matching f, ordered by year, month,
// group and ID. It stops at the first error from fn or when ctx is done.
func (s *Store) Scan(ctx context.Context, f Filter, fn func(domain.DecodedRecord) error) error {
	prefix := f.prefix()
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixEnd(prefix),
	})
	if err != nil {
		return fmt.Errorf("archive scan: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := decodeStored(iter.Value())
		if err != nil {
			return fmt.Errorf("archive scan %s: %w", iter.Key(), err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) get(key []byte) ([]byte, error) {
	value, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *Store) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.ArchiveWrites.WithLabelValues(outcome).Inc()
	}
}

func recordKey(rec domain.DecodedRecord) []byte {
	h := rec.Header
	return []byte(fmt.Sprintf("%s%04d/%02d/%02d/%s", recordPrefix, h.Year, h.Month, h.Group, rec.ID))
}

func idKey(id string) []byte {
	return []byte(idPrefix + id)
}

func decodeStored(value []byte) (domain.DecodedRecord, error) {
	var stored storedRecord
	if err := json.Unmarshal(value, &stored); err != nil {
		return domain.DecodedRecord{}, err
	}
	rec := stored.DecodedRecord
	rec.RawPayload = stored.Raw
	return rec, nil
}

// prefixEnd returns the smallest key greater than every key with prefix.
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
