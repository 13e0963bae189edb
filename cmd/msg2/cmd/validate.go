package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/couchcryptid/msg2-etl/internal/domain"
	"github.com/couchcryptid/msg2-etl/internal/msgfile"
	"github.com/spf13/cobra"
)

// maxIssues caps how many problems a phase prints.
const maxIssues = 10

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
	total  int
}

func (p *phase) errorf(format string, args ...any) {
	p.total++
	if len(p.errors) < maxIssues {
		p.errors = append(p.errors, fmt.Sprintf(format, args...))
	}
}

func (p *phase) passed() bool { return p.total == 0 }

// fileReport is the outcome of validating one file.
type fileReport struct {
	path    string
	records int
	groups  map[int]int
	phases  []*phase
}

func (r *fileReport) passed() bool {
	for _, p := range r.phases {
		if !p.passed() {
			return false
		}
	}
	return true
}

func newValidateCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check MSG2 files for framing and header problems",
		Long: `Check that each file is a whole number of records, that every
record belongs to a known group and that header fields are in range.

Exits non-zero if any check fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				rep, err := validateFile(path)
				if err != nil {
					return err
				}
				printReport(out, rep)
				if !rep.passed() {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed validation", failed, len(args))
			}
			return nil
		},
	}
}

func validateFile(path string) (*fileReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	framing := &phase{name: "framing"}
	groups := &phase{name: "groups"}
	header := &phase{name: "header"}
	rep := &fileReport{
		path:   path,
		groups: make(map[int]int),
		phases: []*phase{framing, groups, header},
	}

	s := msgfile.NewScanner(f)
	for s.Scan() {
		rep.records++
		rec, err := domain.Decode(s.Record())
		if err != nil {
			return nil, err
		}
		h := rec.Header
		rep.groups[h.Group]++

		if !rec.Known() {
			groups.errorf("record %d: unknown group %d", s.Index(), h.Group)
		}
		checkHeader(header, s.Index(), h)
	}
	if err := s.Err(); err != nil {
		if !errors.Is(err, msgfile.ErrShortRecord) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		framing.errorf("%v", err)
	}
	if rep.records == 0 && framing.passed() {
		framing.errorf("file is empty")
	}
	return rep, nil
}

func checkHeader(p *phase, index int, h domain.Header) {
	if h.Month < 1 || h.Month > 12 {
		p.errorf("record %d: month %d out of range", index, h.Month)
	}
	if h.BoxSize != 1 && h.BoxSize != 2 {
		p.errorf("record %d: box size %d is neither 1 nor 2", index, h.BoxSize)
	}
	if h.BoxLongitude < 0 || h.BoxLongitude >= 360 {
		p.errorf("record %d: longitude %.1f out of range", index, h.BoxLongitude)
	}
	if h.BoxLatitude < -90 || h.BoxLatitude > 90 {
		p.errorf("record %d: latitude %.1f out of range", index, h.BoxLatitude)
	}
}

func printReport(w io.Writer, rep *fileReport) {
	fmt.Fprintf(w, "%s: %d records\n", rep.path, rep.records)

	keys := make([]int, 0, len(rep.groups))
	for g := range rep.groups {
		keys = append(keys, g)
	}
	sort.Ints(keys)
	for _, g := range keys {
		fmt.Fprintf(w, "  group %2d: %d\n", g, rep.groups[g])
	}

	for _, p := range rep.phases {
		if p.passed() {
			fmt.Fprintf(w, "  PASS %s\n", p.name)
			continue
		}
		fmt.Fprintf(w, "  FAIL %s (%d issues)\n", p.name, p.total)
		for _, e := range p.errors {
			fmt.Fprintf(w, "    %s\n", e)
		}
	}
}
