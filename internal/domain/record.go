package domain

import (
	"errors"
	"fmt"
)

const (
	// RecordSize is the fixed width of one MSG2 record.
	RecordSize = 64
	// HeaderSize is the number of leading bytes holding the header.
	HeaderSize = 8
)

// ErrShortBuffer is returned when fewer than RecordSize bytes are supplied.
var ErrShortBuffer = errors.New("short buffer")

// Record is a decoded MSG2 record: a header plus up to four variable slots.
// Slots are empty when the group is unrecognised or leaves them undefined.
type Record struct {
	Header Header
	slots  [SlotCount]*Variable
}

// Decode decodes one record from the first RecordSize bytes of b. Bytes past
// RecordSize are ignored. Decode is a pure function of its input and is safe
// for concurrent use.
func Decode(b []byte) (Record, error) {
	if len(b) < RecordSize {
		return Record{}, fmt.Errorf("decode record: %w: got %d bytes, want %d", ErrShortBuffer, len(b), RecordSize)
	}
	b = b[:RecordSize]

	rec := Record{Header: DecodeHeader(b)}
	defs, ok := LookupGroup(rec.Header.Group)
	if !ok {
		return rec, nil
	}
	for i, def := range defs {
		if def == nil {
			continue
		}
		v := DecodeVariable(b, *def, rec.Header.BoxSize)
		v.Slot = i + 1
		rec.slots[i] = &v
	}
	return rec, nil
}

// Slot returns the variable in slot i (0-based) and whether it is populated.
func (r Record) Slot(i int) (Variable, bool) {
	if i < 0 || i >= SlotCount || r.slots[i] == nil {
		return Variable{}, false
	}
	return *r.slots[i], true
}

// Variables returns the populated slots in slot order.
func (r Record) Variables() []Variable {
	vars := make([]Variable, 0, SlotCount)
	for _, v := range r.slots {
		if v != nil {
			vars = append(vars, *v)
		}
	}
	return vars
}

// Known reports whether the record's group is recognised.
func (r Record) Known() bool {
	_, ok := LookupGroup(r.Header.Group)
	return ok
}
