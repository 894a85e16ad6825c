// Command gitvid stores and plays fixed-resolution video inside a git
// object database: one commit per frame, one frame.bin blob per commit.
//
// Usage:
//
//	gitvid encode <input_dir|"test"> <repo_path>   raw RGB frames -> repository
//	gitvid play [repo_path]                        repository -> display sink
//	gitvid ingest <file.mp4> <repo_path>           MP4 -> repository (needs ffmpeg)
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gitvid/gitvid/errs"
	"github.com/gitvid/gitvid/format"
	"github.com/gitvid/gitvid/internal/logging"
	"github.com/gitvid/gitvid/internal/metrics"
)

var (
	flagLogLevel    string
	flagLogFormat   string
	flagCodec       string
	flagMetricsAddr string
)

func main() {
	root := &cobra.Command{
		Use:           "gitvid",
		Short:         "Video storage and playback over a git object database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			l := logging.New(flagLogFormat, logging.ParseLevel(flagLogLevel), os.Stderr).
				With("app", "gitvid")
			logging.Set(l)

			if flagMetricsAddr != "" {
				srv := metrics.StartHTTP(flagMetricsAddr)
				cobra.OnFinalize(func() { _ = srv.Shutdown(context.Background()) })
			}
		},
	}

	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug|info|warn|error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "log format (text|json)")
	root.PersistentFlags().StringVar(&flagCodec, "codec", "zstd", "stream entropy codec (zstd|s2|lz4|none)")
	root.PersistentFlags().StringVar(&flagMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	root.AddCommand(newEncodeCmd(), newPlayCmd(), newIngestCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "gitvid: error (%d): %v\n", errorCode(err), err)
		os.Exit(1)
	}
}

// signalContext cancels on SIGINT/SIGTERM so every pipeline observes one
// shared stop signal.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// streamCodec resolves the --codec flag.
func streamCodec() (format.CompressionType, error) {
	return format.ParseCompressionType(flagCodec)
}

// errorCode maps an error to the numeric code printed alongside it.
func errorCode(err error) int {
	switch {
	case errors.Is(err, errs.ErrStore), errors.Is(err, errs.ErrFrameNotFound):
		return -3
	case errors.Is(err, errs.ErrCompression):
		return -4
	case errors.Is(err, errs.ErrMalformedRecord):
		return -5
	case errors.Is(err, errs.ErrDisplay):
		return -6
	default:
		return -2
	}
}
