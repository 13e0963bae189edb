package domain

// Header holds the identity fields packed into bytes 0-7 of a record.
type Header struct {
	RptIn        int     `json:"rptin"`
	RptID        int     `json:"rptid"`
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	BoxSize      int     `json:"box_size"`
	BoxLongitude float64 `json:"box_longitude"`
	BoxLatitude  float64 `json:"box_latitude"`
	PID1         int     `json:"pid1"`
	PID2         int     `json:"pid2"`
	Group        int     `json:"group"`
	Checksum     int     `json:"checksum"`
}

const (
	yearEpoch       = 1799
	longitudeOffset = 1
	latitudeOffset  = 181
	degreesPerStep  = 0.5
)

// DecodeHeader extracts the header from the first 8 bytes of b. Any 8 bytes
// form a valid header; callers must guarantee len(b) >= HeaderSize.
// The checksum nibble is extracted but not verified.
func DecodeHeader(b []byte) Header {
	b0, b1, b2, b3 := int(b[0]), int(b[1]), int(b[2]), int(b[3])
	b4, b5, b6, b7 := int(b[4]), int(b[5]), int(b[6]), int(b[7])

	lonField := (b3&0x01)<<9 | b4<<1 | (b5>>7)&0x01
	latField := (b5&0x7F)<<2 | b6>>6

	pid1 := (b6 >> 3) & 0x07
	if pid1 == 0 {
		pid1 = Missing
	}

	return Header{
		RptIn:        b0<<4 | b1>>4,
		RptID:        b1 & 0x0F,
		Year:         b2 + yearEpoch,
		Month:        (b3 >> 4) & 0x0F,
		BoxSize:      ((b3 >> 1) & 0x07) - 1,
		BoxLongitude: float64(lonField-longitudeOffset) * degreesPerStep,
		BoxLatitude:  float64(latField-latitudeOffset) * degreesPerStep,
		PID1:         pid1,
		PID2:         (b6 & 0x07) - 1,
		Group:        b7 >> 4,
		Checksum:     b7 & 0x0F,
	}
}
