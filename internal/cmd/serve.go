package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Hubro/nso-log-reader/internal/aggregator"
	"github.com/Hubro/nso-log-reader/internal/hub"
	"github.com/Hubro/nso-log-reader/internal/model"
	"github.com/Hubro/nso-log-reader/internal/parser"
	"github.com/Hubro/nso-log-reader/internal/server"
	"github.com/Hubro/nso-log-reader/internal/source"
)

var serveFromStart bool

var serveCmd = &cobra.Command{
	Use:   "serve <file|glob>...",
	Short: "Follow log files and serve the record stream over HTTP",
	Long: `Follow one or more log files and expose the combined record stream to
websocket clients, with severity counts and throughput on /api/stats.

Each file gets its own segmenter, so severity carry and record merging never
bleed across files.

Examples:
  nso-log-reader serve /var/opt/ncs/logs/ncs-python-vm-mypkg.log
  nso-log-reader serve "/var/opt/ncs/logs/ncs-python-vm-*.log" --listen :9000`,
	Args: cobra.MinimumNArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("listen", ":8799", "HTTP listen address")
	serveCmd.Flags().Duration("timeout", 500*time.Millisecond, "bounded-wait read timeout (flushes open records)")
	serveCmd.Flags().BoolVar(&serveFromStart, "from-start", false, "read existing file content before following")

	_ = viper.BindPFlag("serve.listen", serveCmd.Flags().Lookup("listen"))
	_ = viper.BindPFlag("serve.timeout", serveCmd.Flags().Lookup("timeout"))
}

func runServe(cmd *cobra.Command, args []string) error {
	paths, err := expandGlobs(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no files matched the given patterns: %v", args)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	offset := source.FromEnd
	if serveFromStart {
		offset = 0
	}
	timeout := viper.GetDuration("serve.timeout")

	records := make(chan model.Record, 512)
	var tails []*source.Tail
	var wg sync.WaitGroup

	for _, path := range paths {
		tail, err := source.TailFile(path, offset, timeout)
		if err != nil {
			for _, t := range tails {
				t.Close()
			}
			return fmt.Errorf("cannot follow %s: %w", path, err)
		}
		tails = append(tails, tail)

		wg.Add(1)
		go func(t *source.Tail) {
			defer wg.Done()
			seg := parser.NewSegmenter(t, t.Path())
			for seg.Scan() {
				select {
				case records <- seg.Record():
				case <-ctx.Done():
					return
				}
			}
			if err := seg.Err(); err != nil {
				log.Error().Err(err).Str("path", t.Path()).Msg("source failed")
			}
		}(tail)
	}

	go func() {
		<-ctx.Done()
		for _, t := range tails {
			t.Close()
		}
	}()
	go func() {
		wg.Wait()
		close(records)
	}()

	h := hub.New(records)
	agg := aggregator.New(h.Subscribe(), h.Dropped, func() int { return len(paths) })
	go h.Start(ctx)
	go agg.Start(ctx)

	for _, p := range paths {
		log.Info().Str("path", p).Msg("following")
	}
	addr := viper.GetString("serve.listen")
	log.Info().Str("addr", addr).Msg("serving record stream")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.New(h, agg, addr).Start()
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// expandGlobs resolves each argument as a doublestar pattern, passing plain
// paths through untouched.
func expandGlobs(patterns []string) ([]string, error) {
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		paths = append(paths, matches...)
	}
	return paths, nil
}
