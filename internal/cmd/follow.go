package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Hubro/nso-log-reader/internal/parser"
	"github.com/Hubro/nso-log-reader/internal/source"
)

var (
	followFromStart bool
	followResume    bool
)

var followCmd = &cobra.Command{
	Use:   "follow <file>",
	Short: "Follow a growing log file and stream records as they complete",
	Long: `Follow a live log file. New header lines open records; continuation
lines are merged in. When the file goes quiet for longer than the read
timeout, the record accumulated so far is flushed instead of waiting forever
for a closing header line.

By default following starts at the current end of the file. --from-start
reads the existing content first; --resume continues from the offset saved
by a previous run.`,
	Args: cobra.ExactArgs(1),
	RunE: runFollow,
}

func init() {
	rootCmd.AddCommand(followCmd)

	followCmd.Flags().Duration("timeout", 500*time.Millisecond, "bounded-wait read timeout (flushes open records)")
	followCmd.Flags().String("checkpoint", ".nso-log-reader-state.json", "checkpoint file for --resume offsets")
	followCmd.Flags().BoolVar(&followFromStart, "from-start", false, "read existing file content before following")
	followCmd.Flags().BoolVar(&followResume, "resume", false, "resume from the checkpointed offset")

	_ = viper.BindPFlag("follow.timeout", followCmd.Flags().Lookup("timeout"))
	_ = viper.BindPFlag("follow.checkpoint", followCmd.Flags().Lookup("checkpoint"))
}

func runFollow(cmd *cobra.Command, args []string) error {
	ckpt := source.LoadCheckpoint(viper.GetString("follow.checkpoint"))

	tail, err := openTail(args[0], ckpt)
	if err != nil {
		return err
	}
	defer tail.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Closing the tail ends the record sequence cleanly on SIGINT.
	go func() {
		<-ctx.Done()
		tail.Close()
	}()

	// Periodically persist the read offset for --resume.
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				saveOffset(ckpt, tail)
			}
		}
	}()

	renderer, err := newRenderer()
	if err != nil {
		return err
	}

	log.Info().Str("path", tail.Path()).Msg("following")

	seg := parser.NewSegmenter(tail, args[0])
	for seg.Scan() {
		if err := renderer.Render(seg.Record()); err != nil {
			return err
		}
	}
	saveOffset(ckpt, tail)

	if err := seg.Err(); err != nil {
		return fmt.Errorf("following %s: %w", args[0], err)
	}
	return nil
}

// openTail resolves the start offset for a followed file: checkpoint when
// resuming, start of file, or the default tail position at the end.
func openTail(path string, ckpt *source.Checkpoint) (*source.Tail, error) {
	offset := source.FromEnd
	if followFromStart {
		offset = 0
	}
	if followResume {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		if saved, ok := ckpt.Offset(abs); ok {
			offset = saved
		}
	}

	return source.TailFile(path, offset, viper.GetDuration("follow.timeout"))
}

func saveOffset(ckpt *source.Checkpoint, tail *source.Tail) {
	ckpt.Record(tail.Path(), tail.Offset())
	if err := ckpt.Save(); err != nil {
		log.Warn().Err(err).Msg("checkpoint save failed")
	}
}
