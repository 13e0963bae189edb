package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/msg2-etl/internal/observability"
	"github.com/spf13/cobra"
)

// app carries state shared by every subcommand.
type app struct {
	logger *slog.Logger
}

// NewRootCmd builds the msg2 command tree.
func NewRootCmd() *cobra.Command {
	a := &app{logger: slog.New(slog.DiscardHandler)}

	root := &cobra.Command{
		Use:   "msg2",
		Short: "MSG2 record toolkit",
		Long: `msg2 works with ICOADS MSG2 files: fixed-width 64-byte records of
monthly summary statistics over 1 or 2 degree ocean boxes.

It can print decoded records, generate synthetic files, check files for
framing and header problems, publish raw records to Kafka and keep a local
archive of decoded records.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level, _ := cmd.Flags().GetString("log-level")
			a.logger = observability.NewCLILogger(level)
		},
	}
	root.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newDumpCmd(a),
		newGenCmd(a),
		newValidateCmd(a),
		newPublishCmd(a),
		newArchiveCmd(a),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
