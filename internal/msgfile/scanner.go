// Package msgfile frames MSG2 files into fixed-width records.
package msgfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/msg2-etl/internal/domain"
)

// ErrShortRecord is returned when the input ends partway through a record.
var ErrShortRecord = errors.New("short record")

// Scanner reads consecutive domain.RecordSize byte records from a stream.
type Scanner struct {
	r     *bufio.Reader
	buf   [domain.RecordSize]byte
	index int
	tail  int
	err   error
	done  bool
}

// NewScanner returns a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReaderSize(r, 64*domain.RecordSize), index: -1}
}

// Scan advances to the next record. It returns false at end of input or on
// error; Err distinguishes the two.
func (s *Scanner) Scan() bool {
	if s.done {
		return false
	}
	n, err := io.ReadFull(s.r, s.buf[:])
	switch {
	case err == nil:
		s.index++
		return true
	case errors.Is(err, io.EOF):
		// Clean end on a record boundary.
	case errors.Is(err, io.ErrUnexpectedEOF):
		s.tail = n
		s.err = fmt.Errorf("record %d: %w: %d of %d bytes", s.index+1, ErrShortRecord, n, domain.RecordSize)
	default:
		s.err = fmt.Errorf("record %d: %w", s.index+1, err)
	}
	s.done = true
	return false
}

// Record returns the current record. The slice is reused by the next call to
// Scan; copy it to retain it.
func (s *Scanner) Record() []byte {
	return s.buf[:]
}

// Index returns the 0-based position of the current record.
func (s *Scanner) Index() int {
	return s.index
}

// Partial returns the bytes of a trailing incomplete record after Scan has
// stopped with ErrShortRecord, or nil otherwise.
func (s *Scanner) Partial() []byte {
	if s.tail == 0 {
		return nil
	}
	return s.buf[:s.tail]
}

// Err returns the first non-EOF error encountered.
func (s *Scanner) Err() error {
	return s.err
}

// ReadFile calls fn for every record in the file at path, stopping at the
// first error from the file or from fn.
func ReadFile(path string, fn func(index int, rec []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	s := NewScanner(f)
	for s.Scan() {
		if err := fn(s.Index(), s.Record()); err != nil {
			return err
		}
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}
