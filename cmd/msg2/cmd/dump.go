package cmd

import (
	"encoding/json"
	"errors"
	"path/filepath"

	"github.com/couchcryptid/msg2-etl/internal/domain"
	"github.com/couchcryptid/msg2-etl/internal/msgfile"
	"github.com/couchcryptid/msg2-etl/internal/report"
	"github.com/spf13/cobra"
)

var errLimitReached = errors.New("limit reached")

func newDumpCmd(_ *app) *cobra.Command {
	var (
		asJSON bool
		group  int
		limit  int
	)

	c := &cobra.Command{
		Use:   "dump <file>...",
		Short: "Print decoded records",
		Long: `Decode every record in one or more MSG2 files and print it as a
text table, or as one JSON object per line with --json.

Example:
  msg2 dump MSG2.S.1990.01
  msg2 dump --group 4 --limit 10 --json MSG2.S.1990.01`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			printed := 0

			for _, path := range args {
				source := filepath.Base(path)
				err := msgfile.ReadFile(path, func(_ int, raw []byte) error {
					if limit > 0 && printed >= limit {
						return errLimitReached
					}
					rec, err := domain.Decode(raw)
					if err != nil {
						return err
					}
					if group >= 0 && rec.Header.Group != group {
						return nil
					}
					printed++

					if !asJSON {
						return report.Write(out, rec)
					}
					decoded, err := domain.ParseRawEvent(domain.RawEvent{
						Value:   raw,
						Headers: map[string]string{domain.HeaderSource: source},
					})
					if err != nil {
						return err
					}
					return enc.Encode(decoded)
				})
				if errors.Is(err, errLimitReached) {
					return nil
				}
				if err != nil {
					return err
				}
			}
			return nil
		},
	}

	c.Flags().BoolVar(&asJSON, "json", false, "Print JSON lines instead of text tables")
	c.Flags().IntVarP(&group, "group", "g", -1, "Only print records of this group")
	c.Flags().IntVarP(&limit, "limit", "n", 0, "Stop after this many records (0 for all)")
	return c
}
