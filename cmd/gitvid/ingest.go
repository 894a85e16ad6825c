package main

import (
	"github.com/spf13/cobra"

	"github.com/gitvid/gitvid/ingest"
	"github.com/gitvid/gitvid/internal/logging"
)

func newIngestCmd() *cobra.Command {
	var ffmpegPath string

	cmd := &cobra.Command{
		Use:   "ingest <file.mp4> <repo_path>",
		Short: "Convert an MP4 file into a frame repository",
		Long: `Ingest pipes the video stream of an MP4 file through ffmpeg (scaled and
letterboxed to the stream geometry, decoded to raw RGB) and commits every
frame to the repository at repo_path.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.L()

			compression, err := streamCodec()
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			stats, err := ingest.Run(ctx, args[0], args[1], ingest.Config{
				Compression: compression,
				FFmpegPath:  ffmpegPath,
				Logger:      log,
			})
			if err != nil {
				return err
			}

			log.Info("ingest_summary",
				"frames", stats.Frames,
				"compressed_bytes", stats.CompressedBytes,
				"head", stats.HeadCommit,
			)

			return nil
		},
	}

	cmd.Flags().StringVar(&ffmpegPath, "ffmpeg", "", "path to the ffmpeg binary (default: search PATH)")

	return cmd
}
