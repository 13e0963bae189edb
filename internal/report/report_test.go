package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/couchcryptid/msg2-etl/internal/domain"
	"github.com/couchcryptid/msg2-etl/internal/domain/msg2test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *msg2test.Record) domain.Record {
	t.Helper()
	got, err := domain.Decode(rec.Bytes())
	require.NoError(t, err)
	return got
}

func TestFormat_HeaderLine(t *testing.T) {
	rec := decode(t, msg2test.New(msg2test.Header{
		YearByte: 26, Month: 12, BoxRaw: 2, LonField: 21, LatField: 121,
		PID1Raw: 3, PID2Raw: 4, Group: 0, Checksum: 7,
	}))

	lines := strings.Split(Format(rec), "\n")
	assert.Equal(t, "YEAR 1825. MONTH 12. BSZ 1. BLO 10.0. BLA -30.0. PID1 3. PID2 3. GRP 0. CK 7.", lines[0])
}

func TestFormat_ColumnsAndRows(t *testing.T) {
	r := msg2test.New(msg2test.Header{Group: 3, BoxRaw: 2})
	r.SetStat(msg2test.S1, 0, 4501)
	r.SetStat(msg2test.NumObs, 0, 42)
	r.SetAux(msg2test.MeanDay, 0, 5)
	r.SetAux(msg2test.X, 0, 5)
	rec := decode(t, r)

	lines := strings.Split(strings.TrimSuffix(Format(rec), "\n"), "\n")
	require.Len(t, lines, 2+4)

	assert.Equal(t, "            \t      S1\t      S3\t      S5\t       M\t       N\t       S\t       D\t      HT\t       X\t       Y\t", lines[1])

	row := strings.Split(lines[2], "\t")
	assert.Equal(t, "           S", row[0])
	assert.Equal(t, "   40.00", row[1])
	assert.Equal(t, "-9999.00", row[2])
	assert.Equal(t, "      42", row[5])
	assert.Equal(t, "      10", row[7])
	assert.Equal(t, "    0.40", row[9])
	assert.Equal(t, "-9999.00", row[10])

	assert.True(t, strings.HasPrefix(lines[5], "           R\t"))
}

func TestFormat_SkipsUndefinedSlots(t *testing.T) {
	rec := decode(t, msg2test.New(msg2test.Header{Group: 5, BoxRaw: 2}))
	lines := strings.Split(strings.TrimSuffix(Format(rec), "\n"), "\n")
	assert.Len(t, lines, 2+3)

	rec = decode(t, msg2test.New(msg2test.Header{Group: 15}))
	lines = strings.Split(strings.TrimSuffix(Format(rec), "\n"), "\n")
	assert.Len(t, lines, 2)
}

func TestWrite(t *testing.T) {
	rec := decode(t, msg2test.New(msg2test.Header{Group: 4, BoxRaw: 2}))
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rec))
	assert.Equal(t, Format(rec), buf.String())
}
