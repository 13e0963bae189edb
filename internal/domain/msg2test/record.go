// Package msg2test builds synthetic MSG2 records for tests.
package msg2test

import "encoding/binary"

// Size is the width of one record.
const Size = 64

// Stat is the start of an 8-byte statistics block.
type Stat int

const (
	S1     Stat = 8
	S3     Stat = 16
	S5     Stat = 24
	Mean   Stat = 32
	NumObs Stat = 40
	Stdev  Stat = 48
)

// Aux is the start of a 2-byte nibble block.
type Aux int

const (
	MeanDay Aux = 56
	HT      Aux = 58
	X       Aux = 60
	Y       Aux = 62
)

// Header holds raw (still coded) header fields.
type Header struct {
	RptIn    int
	RptID    int
	YearByte int
	Month    int
	BoxRaw   int // 3-bit field; decoded box size is BoxRaw-1
	LonField int // 10-bit field; longitude is (LonField-1)*0.5
	LatField int // 9-bit field; latitude is (LatField-181)*0.5
	PID1Raw  int
	PID2Raw  int
	Group    int
	Checksum int
}

// Record is a mutable 64-byte record under construction.
type Record [Size]byte

// New returns a record with the given header packed into bytes 0-7.
func New(h Header) *Record {
	r := &Record{}
	r.SetHeader(h)
	return r
}

// SetHeader packs h into bytes 0-7.
func (r *Record) SetHeader(h Header) {
	r[0] = byte(h.RptIn >> 4)
	r[1] = byte((h.RptIn&0x0F)<<4 | h.RptID&0x0F)
	r[2] = byte(h.YearByte)
	r[3] = byte((h.Month&0x0F)<<4 | (h.BoxRaw&0x07)<<1 | (h.LonField>>9)&0x01)
	r[4] = byte(h.LonField >> 1)
	r[5] = byte((h.LonField&0x01)<<7 | (h.LatField>>2)&0x7F)
	r[6] = byte((h.LatField&0x03)<<6 | (h.PID1Raw&0x07)<<3 | h.PID2Raw&0x07)
	r[7] = byte((h.Group&0x0F)<<4 | h.Checksum&0x0F)
}

// SetStat writes a 16-bit code for the slot at offset (0, 2, 4 or 6).
func (r *Record) SetStat(s Stat, offset, code int) *Record {
	binary.BigEndian.PutUint16(r[int(s)+offset:], uint16(code))
	return r
}

// SetAux writes a 4-bit code for the slot at offset (0, 2, 4 or 6).
func (r *Record) SetAux(a Aux, offset, code int) *Record {
	i := int(a) + offset/4
	if offset%4 == 0 {
		r[i] = r[i]&0x0F | byte(code&0x0F)<<4
	} else {
		r[i] = r[i]&0xF0 | byte(code&0x0F)
	}
	return r
}

// Bytes returns a copy of the record.
func (r *Record) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, r[:])
	return b
}
