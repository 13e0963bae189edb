package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/couchcryptid/msg2-etl/internal/adapter/archive"
	"github.com/couchcryptid/msg2-etl/internal/adapter/file"
	"github.com/couchcryptid/msg2-etl/internal/domain"
	"github.com/couchcryptid/msg2-etl/internal/observability"
	"github.com/couchcryptid/msg2-etl/internal/pipeline"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/spf13/cobra"
)

type openFunc func() (*archive.Store, error)

func newArchiveCmd(a *app) *cobra.Command {
	var path string

	c := &cobra.Command{
		Use:   "archive",
		Short: "Work with the local archive of decoded records",
		Long: `The archive is a Pebble database of decoded records keyed by year,
month and group. The ETL service writes to it when ARCHIVE_ENABLED is set;
these commands load files into it directly and read it back.`,
	}
	c.PersistentFlags().StringVarP(&path, "path", "p", sharedcfg.EnvOrDefault("ARCHIVE_PATH", "./msg2-archive"), "Archive directory")

	open := func() (*archive.Store, error) {
		return archive.Open(path, archive.Options{Logger: a.logger})
	}
	c.AddCommand(
		newArchiveImportCmd(a, open),
		newArchiveGetCmd(open),
		newArchiveScanCmd(open),
	)
	return c
}

// countingLoader forwards batches to a loader and counts what it accepted.
type countingLoader struct {
	pipeline.BatchLoader
	loaded int
}

func (c *countingLoader) LoadBatch(ctx context.Context, records []domain.DecodedRecord) error {
	if err := c.BatchLoader.LoadBatch(ctx, records); err != nil {
		return err
	}
	c.loaded += len(records)
	return nil
}

func newArchiveImportCmd(a *app, open openFunc) *cobra.Command {
	var batchSize int

	c := &cobra.Command{
		Use:   "import <file>...",
		Short: "Decode files into the archive",
		Long: `Run the decode pipeline over one or more MSG2 files with the archive
as its sink. Importing the same file twice leaves one copy of each record.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if batchSize <= 0 {
				return fmt.Errorf("--batch-size must be positive, got %d", batchSize)
			}
			store, err := open()
			if err != nil {
				return err
			}
			defer store.Close()

			metrics := observability.NewUnregisteredMetrics()
			transformer := pipeline.NewTransformer(a.logger, metrics)

			for _, path := range args {
				e, err := file.Open(path, a.logger)
				if err != nil {
					return err
				}
				loader := &countingLoader{BatchLoader: store}
				p := pipeline.New(e, transformer, loader, a.logger, metrics, batchSize)
				err = p.Run(cmd.Context())
				e.Close()
				if err == nil {
					err = e.Err()
				}
				if err != nil {
					return fmt.Errorf("import %s: %w", path, err)
				}
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: archived %d records (ingest %s)\n", path, loader.loaded, e.IngestID())
			}
			return nil
		},
	}

	c.Flags().IntVar(&batchSize, "batch-size", 500, "Records per archive write")
	return c
}

func newArchiveGetCmd(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print one archived record as JSON",
		Long: `Print one archived record as JSON.

Example:
  msg2 archive get msg2-3f1c0a9e4b7d2c11`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			defer store.Close()

			rec, err := store.Get(args[0])
			if errors.Is(err, archive.ErrNotFound) {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		},
	}
}

func newArchiveScanCmd(open openFunc) *cobra.Command {
	var (
		year  int
		month int
		group int
		limit int
	)

	c := &cobra.Command{
		Use:   "scan",
		Short: "List archived records",
		Long: `Print archived records as JSON lines in year, month, group order.
--month requires --year and --group requires --month.

Example:
  msg2 archive scan --year 1990 --month 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := archive.Filter{Year: year, Month: month}
			if cmd.Flags().Changed("group") {
				filter.Group = &group
			}
			if err := filter.Validate(); err != nil {
				return err
			}
			store, err := open()
			if err != nil {
				return err
			}
			defer store.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			printed := 0
			err = store.Scan(cmd.Context(), filter, func(rec domain.DecodedRecord) error {
				if limit > 0 && printed >= limit {
					return errLimitReached
				}
				printed++
				return enc.Encode(rec)
			})
			if errors.Is(err, errLimitReached) {
				return nil
			}
			return err
		},
	}

	c.Flags().IntVar(&year, "year", 0, "Only records from this year")
	c.Flags().IntVar(&month, "month", 0, "Only records from this month")
	c.Flags().IntVarP(&group, "group", "g", 0, "Only records of this group")
	c.Flags().IntVarP(&limit, "limit", "n", 0, "Stop after this many records (0 for all)")
	return c
}
