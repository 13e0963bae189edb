package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ParseRawEvent decodes the record carried by a RawEvent and wraps it in a
// DecodedRecord stamped with the current clock time.
func ParseRawEvent(raw RawEvent) (DecodedRecord, error) {
	rec, err := Decode(raw.Value)
	if err != nil {
		return DecodedRecord{}, fmt.Errorf("parse raw event: %w", err)
	}
	payload := raw.Value[:RecordSize]

	return DecodedRecord{
		ID:          GenerateID(payload),
		Source:      raw.Headers[HeaderSource],
		IngestID:    raw.Headers[HeaderIngestID],
		Header:      rec.Header,
		Known:       rec.Known(),
		Variables:   rec.Variables(),
		RawPayload:  payload,
		ProcessedAt: clock.Now().UTC(),
	}, nil
}

// GenerateID derives a deterministic record ID from the raw record bytes.
// Identical records always map to the same ID, so replays are idempotent.
func GenerateID(payload []byte) string {
	hash := sha256.Sum256(payload)
	return "msg2-" + hex.EncodeToString(hash[:8])
}

// SerializeRecord marshals a DecodedRecord for a sink. The key is the record
// ID; headers carry the group code and processing time.
func SerializeRecord(rec DecodedRecord) (OutputEvent, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize record: %w", err)
	}
	return OutputEvent{
		Key:   []byte(rec.ID),
		Value: data,
		Headers: map[string]string{
			"group":        strconv.Itoa(rec.Header.Group),
			"processed_at": rec.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}
