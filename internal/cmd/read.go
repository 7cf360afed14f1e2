package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Hubro/nso-log-reader/internal/parser"
	"github.com/Hubro/nso-log-reader/internal/source"
)

var readCmd = &cobra.Command{
	Use:   "read [file]",
	Short: "Segment a finished log file (or stdin) into records",
	Long: `Read a static log file from start to finish, or standard input when no
file (or "-") is given, and print one record per header line with its merged
continuation lines.

Examples:
  nso-log-reader read ncs-python-vm-mypkg.log
  tail -n 500 ncs-python-vm-mypkg.log | nso-log-reader read
  nso-log-reader read --output json app.log | jq .severity`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	var (
		in    io.Reader
		label string
	)
	if len(args) == 0 || args[0] == "-" {
		in = os.Stdin
		label = "stdin"
	} else {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
		label = args[0]
	}

	renderer, err := newRenderer()
	if err != nil {
		return err
	}

	seg := parser.NewSegmenter(source.NewReader(in), label)
	for seg.Scan() {
		if err := renderer.Render(seg.Record()); err != nil {
			return err
		}
	}
	if err := seg.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", label, err)
	}
	return nil
}
