// Package report renders decoded MSG2 records as fixed-width text tables.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/couchcryptid/msg2-etl/internal/domain"
)

var columns = []string{"S1", "S3", "S5", "M", "N", "S", "D", "HT", "X", "Y"}

// Format renders rec as text: a header summary line, a column header row and
// one row per populated variable slot.
func Format(rec domain.Record) string {
	var b strings.Builder
	writeRecord(&b, rec)
	return b.String()
}

// Write renders rec to w.
func Write(w io.Writer, rec domain.Record) error {
	_, err := io.WriteString(w, Format(rec))
	return err
}

func writeRecord(b *strings.Builder, rec domain.Record) {
	h := rec.Header
	fmt.Fprintf(b, "YEAR %d. MONTH %d. BSZ %d. BLO %3.1f. BLA %3.1f. PID1 %d. PID2 %d. GRP %d. CK %d.\n",
		h.Year, h.Month, h.BoxSize, h.BoxLongitude, h.BoxLatitude, h.PID1, h.PID2, h.Group, h.Checksum)

	fmt.Fprintf(b, "%12s\t", "")
	for _, c := range columns {
		fmt.Fprintf(b, "%8s\t", c)
	}
	b.WriteByte('\n')

	for _, v := range rec.Variables() {
		writeVariable(b, v)
	}
}

func writeVariable(b *strings.Builder, v domain.Variable) {
	fmt.Fprintf(b, "%12s\t", v.Label)
	fmt.Fprintf(b, "%8.2f\t", v.S1)
	fmt.Fprintf(b, "%8.2f\t", v.S3)
	fmt.Fprintf(b, "%8.2f\t", v.S5)
	fmt.Fprintf(b, "%8.2f\t", v.Mean)
	fmt.Fprintf(b, "%8d\t", v.NumObs)
	fmt.Fprintf(b, "%8.2f\t", v.Stdev)
	fmt.Fprintf(b, "%8d\t", v.MeanDay)
	fmt.Fprintf(b, "%8.2f\t", v.HT)
	fmt.Fprintf(b, "%8.2f\t", v.X)
	fmt.Fprintf(b, "%8.2f\t", v.Y)
	b.WriteByte('\n')
}
