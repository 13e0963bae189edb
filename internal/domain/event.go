package domain

import (
	"context"
	"time"
)

// RawEvent represents one undecoded record from a source, along with the
// transport metadata needed to acknowledge it.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// DecodedRecord is the sink representation of a decoded record.
type DecodedRecord struct {
	ID          string     `json:"id"`
	Source      string     `json:"source,omitempty"`    // file the record was read from
	IngestID    string     `json:"ingest_id,omitempty"` // publish run that produced it
	Header      Header     `json:"header"`
	Known       bool       `json:"known_group"`
	Variables   []Variable `json:"variables"`
	RawPayload  []byte     `json:"-"`
	ProcessedAt time.Time  `json:"processed_at"`
}

// OutputEvent is the serialized form destined for a sink.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Header keys carried on raw record messages.
const (
	HeaderSource   = "source"
	HeaderIngestID = "ingest_id"
)
