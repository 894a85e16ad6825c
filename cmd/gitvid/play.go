package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gitvid/gitvid/internal/logging"
	"github.com/gitvid/gitvid/player"
	"github.com/gitvid/gitvid/store"
)

func newPlayCmd() *cobra.Command {
	var (
		noPrefetch bool
		maxSpeed   bool
		cacheSize  int
		ringSize   int
		targetFPS  int
	)

	cmd := &cobra.Command{
		Use:   "play [repo_path]",
		Short: "Play a frame repository",
		Long: `Play walks the commit chain from the first frame and drives every decoded
frame through the display sink in order.

With a repo_path argument the whole chain is played from HEAD. Without one,
commit oids (7..40 hex characters, one per line) are read from stdin,
expanded against the repository in the current directory, and played in the
given order.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.L()

			compression, err := streamCodec()
			if err != nil {
				return err
			}

			repoPath := "."
			fromStdin := len(args) == 0
			if !fromStdin {
				repoPath = args[0]
			}

			st, err := store.Open(repoPath)
			if err != nil {
				return err
			}

			p, err := player.New(st, player.Config{
				Compression: compression,
				CacheSize:   cacheSize,
				RingSize:    ringSize,
				TargetFPS:   targetFPS,
				Pacing:      !maxSpeed,
				Prefetch:    !noPrefetch,
				Display:     player.NewStatsDisplay(log),
				Logger:      log,
			})
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			var stats player.Stats
			if fromStdin {
				oids, err := readCommitList(st)
				if err != nil {
					return err
				}
				stats, err = p.PlayCommits(ctx, oids)
				if err != nil {
					return err
				}
			} else {
				stats, err = p.Play(ctx)
				if err != nil {
					return err
				}
			}

			log.Info("play_summary",
				"displayed", stats.FramesDisplayed,
				"skipped", stats.FramesSkipped,
				"elapsed_s", stats.Elapsed.Seconds(),
			)

			return nil
		},
	}

	cmd.Flags().BoolVar(&noPrefetch, "no-prefetch", false, "disable the background blob prefetcher")
	cmd.Flags().BoolVar(&maxSpeed, "max-speed", false, "disable frame pacing and run at maximum throughput")
	cmd.Flags().IntVar(&cacheSize, "cache-size", player.DefaultCacheSize, "blob cache slots")
	cmd.Flags().IntVar(&ringSize, "ring-size", player.DefaultRingSize, "decoded frame ring depth")
	cmd.Flags().IntVar(&targetFPS, "fps", 0, "target frame rate when pacing (default 60)")

	return cmd
}

// readCommitList reads short oids from stdin, one per line, and expands each
// against the store in a single pass.
func readCommitList(st *store.Store) ([]string, error) {
	var oids []string

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		full, err := st.ResolvePrefix(line)
		if err != nil {
			return nil, err
		}
		oids = append(oids, full)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read commit list: %w", err)
	}

	return oids, nil
}
