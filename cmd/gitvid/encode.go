package main

import (
	"github.com/spf13/cobra"

	"github.com/gitvid/gitvid/encoder"
	"github.com/gitvid/gitvid/format"
	"github.com/gitvid/gitvid/internal/logging"
	"github.com/gitvid/gitvid/store"
)

func newEncodeCmd() *cobra.Command {
	var (
		frames        int
		progressEvery int
	)

	cmd := &cobra.Command{
		Use:   `encode <input_dir|"test"> <repo_path>`,
		Short: "Encode raw RGB frames into a frame repository",
		Long: `Encode reads frame_NNNNNN.rgb files from input_dir (or generates an
animated test pattern when input_dir is the literal "test") and commits one
frame per git commit into the repository at repo_path.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, repoPath := args[0], args[1]
			log := logging.L()

			compression, err := streamCodec()
			if err != nil {
				return err
			}

			st, err := store.Init(repoPath)
			if err != nil {
				return err
			}

			geo := format.DefaultGeometry()

			var src encoder.Source
			if input == "test" {
				src = encoder.NewPatternSource(geo, frames)
			} else {
				src, err = encoder.NewDirSource(input, geo)
				if err != nil {
					return err
				}
			}

			enc, err := encoder.New(st, encoder.Config{
				Geometry:      geo,
				Compression:   compression,
				ProgressEvery: progressEvery,
				Logger:        log,
			})
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			stats, err := enc.EncodeSequence(ctx, src)
			if err != nil {
				return err
			}

			log.Info("encode_summary",
				"repo", repoPath,
				"frames", stats.Frames,
				"head", stats.HeadCommit,
			)

			return nil
		},
	}

	cmd.Flags().IntVar(&frames, "frames", 600, `frame count for the "test" pattern source`)
	cmd.Flags().IntVar(&progressEvery, "progress-every", 60, "log encode progress every N frames")

	return cmd
}
