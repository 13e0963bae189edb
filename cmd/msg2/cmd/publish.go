package cmd

import (
	"errors"
	"fmt"

	"github.com/couchcryptid/msg2-etl/internal/adapter/file"
	kafkaadapter "github.com/couchcryptid/msg2-etl/internal/adapter/kafka"
	"github.com/couchcryptid/msg2-etl/internal/pipeline"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/spf13/cobra"
)

func newPublishCmd(a *app) *cobra.Command {
	var (
		brokers   string
		topic     string
		batchSize int
	)

	c := &cobra.Command{
		Use:   "publish <file>...",
		Short: "Publish raw records to Kafka",
		Long: `Send each record of one or more MSG2 files, undecoded, to the raw
records topic consumed by the ETL service. Messages are keyed by record ID
and carry the source file name and an ingest ID per file.

Example:
  msg2 publish --brokers kafka:9092 MSG2.S.1990.01 MSG2.S.1990.02`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if batchSize <= 0 {
				return fmt.Errorf("--batch-size must be positive, got %d", batchSize)
			}
			pub := kafkaadapter.NewPublisher(sharedcfg.ParseBrokers(brokers), topic, a.logger)
			defer pub.Close()

			for _, path := range args {
				e, err := file.Open(path, a.logger)
				if err != nil {
					return err
				}
				sent, skipped, err := publishFile(cmd, e, pub, batchSize)
				e.Close()
				if err != nil {
					return fmt.Errorf("publish %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: published %d records, skipped %d (ingest %s)\n",
					path, sent, skipped, e.IngestID())
			}
			return nil
		},
	}

	c.Flags().StringVar(&brokers, "brokers", sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092"), "Comma-separated Kafka brokers")
	c.Flags().StringVarP(&topic, "topic", "t", sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "raw-msg2-records"), "Destination topic")
	c.Flags().IntVar(&batchSize, "batch-size", 500, "Records per produce request")
	return c
}

func publishFile(cmd *cobra.Command, e *file.Extractor, pub *kafkaadapter.Publisher, batchSize int) (sent, skipped int, err error) {
	ctx := cmd.Context()
	for {
		batch, err := e.ExtractBatch(ctx, batchSize)
		if errors.Is(err, pipeline.ErrSourceExhausted) {
			return sent, skipped, nil
		}
		if err != nil {
			return sent, skipped, err
		}
		n, err := pub.Publish(ctx, batch)
		if err != nil {
			return sent, skipped, err
		}
		sent += n
		skipped += len(batch) - n
	}
}
