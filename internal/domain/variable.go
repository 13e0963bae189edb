package domain

import "encoding/binary"

// Missing is the in-band sentinel for any field that is absent, invalid or
// outside its coded range.
const Missing = -9999

// Variable is one decoded variable slot. Every numeric field holds either a
// physical value or Missing. NumObs is the raw observation count.
type Variable struct {
	Slot    int     `json:"slot"`
	Label   string  `json:"label"`
	S1      float64 `json:"s1"`
	S3      float64 `json:"s3"`
	S5      float64 `json:"s5"`
	Mean    float64 `json:"mean"`
	NumObs  int     `json:"num_obs"`
	Stdev   float64 `json:"stdev"`
	MeanDay int     `json:"mean_day"`
	HT      float64 `json:"ht"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// Start of each 8-byte statistics block. A slot's code sits at start+ByteOffset.
const (
	s1Block     = 8
	s3Block     = 16
	s5Block     = 24
	meanBlock   = 32
	numObsBlock = 40
	stdevBlock  = 48
)

// Start of each 2-byte nibble block. Offsets 0 and 2 share the first byte of
// the block, offsets 4 and 6 the second.
const (
	meanDayBlock = 56
	htBlock      = 58
	xBlock       = 60
	yBlock       = 62
)

const htScale = 0.1

// positionScale gives the x/y uncertainty values for one box size: the value
// for code 1, the step applied to codes 2-10, and the value for code 11.
type positionScale struct {
	first float64
	step  float64
	last  float64
}

var positionScales = map[int]positionScale{
	1: {first: 0.02, step: 0.1, last: 0.98},
	2: {first: 0.05, step: 0.2, last: 1.95},
}

// DecodeVariable decodes the ten statistics of one variable slot from a full
// record. boxSize is the header's box size code and drives the x/y scale.
//
// Decoding never fails. A buffer shorter than RecordSize or a ByteOffset other
// than 0, 2, 4 or 6 yields a Variable with every field set to Missing.
func DecodeVariable(b []byte, def VariableDefinition, boxSize int) Variable {
	v := Variable{Label: def.Label}
	if len(b) < RecordSize || !validOffset(def.ByteOffset) {
		return missingVariable(v)
	}

	off := def.ByteOffset
	v.S1 = scaleCode(code16(b, s1Block+off), def)
	v.S3 = scaleCode(code16(b, s3Block+off), def)
	v.S5 = scaleCode(code16(b, s5Block+off), def)
	v.Mean = scaleCode(code16(b, meanBlock+off), def)
	v.NumObs = code16(b, numObsBlock+off)

	if stdev := code16(b, stdevBlock+off); stdev == 0 {
		v.Stdev = Missing
	} else {
		v.Stdev = float64(stdev-1) * def.UnitScale
	}

	if day := nibble(b, meanDayBlock, off); day == 0 {
		v.MeanDay = Missing
	} else {
		v.MeanDay = day * 2
	}

	if ht := nibble(b, htBlock, off); ht == 0 {
		v.HT = Missing
	} else {
		v.HT = float64(ht-1) * htScale
	}

	v.X = decodePosition(nibble(b, xBlock, off), boxSize)
	v.Y = decodePosition(nibble(b, yBlock, off), boxSize)
	return v
}

func validOffset(off int) bool {
	switch off {
	case 0, 2, 4, 6:
		return true
	}
	return false
}

func missingVariable(v Variable) Variable {
	v.S1, v.S3, v.S5, v.Mean, v.Stdev = Missing, Missing, Missing, Missing, Missing
	v.NumObs, v.MeanDay = Missing, Missing
	v.HT, v.X, v.Y = Missing, Missing, Missing
	return v
}

// code16 reads the big-endian uint16 at pos.
func code16(b []byte, pos int) int {
	return int(binary.BigEndian.Uint16(b[pos : pos+2]))
}

// nibble selects the 4-bit code for a slot from a 2-byte block: offsets 0 and
// 4 take the high nibble, 2 and 6 the low nibble.
func nibble(b []byte, block, off int) int {
	v := b[block+off/4]
	if off%4 == 0 {
		return int(v >> 4)
	}
	return int(v & 0x0F)
}

// scaleCode applies the range check and linear transform shared by s1, s3,
// s5 and mean.
func scaleCode(code int, def VariableDefinition) float64 {
	if code < def.CodeLow || code > def.CodeHigh {
		return Missing
	}
	return float64(code+def.Base) * def.UnitScale
}

// decodePosition maps an x or y code to a fraction of the box. Codes outside
// 1-11 are Missing. Box sizes without a scale leave the value at zero, which
// is not a measurement.
func decodePosition(code, boxSize int) float64 {
	if code < 1 || code > 11 {
		return Missing
	}
	s, ok := positionScales[boxSize]
	if !ok {
		return 0
	}
	switch code {
	case 1:
		return s.first
	case 11:
		return s.last
	default:
		return float64(code-1) * s.step
	}
}
