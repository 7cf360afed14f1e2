package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Hubro/nso-log-reader/internal/output"
)

var (
	cfgFile   string
	outputFmt string
	verbose   bool
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "nso-log-reader",
	Short: "Segmenting reader for NSO python-vm logs",
	Long: `nso-log-reader turns raw NSO/NCS python-vm log files into a stream of
classified records. Lines that start a <SEVERITY>-tagged header open a new
record; lines that don't are merged into the message of the record above
them, so multi-line tracebacks come out as one record.

Read a finished file, follow a growing one, or serve the live record stream
to websocket clients.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: $HOME/.nso-log-reader.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging on stderr")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".nso-log-reader")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("NSO_LOG_READER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

func setupLogging() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
}

// newRenderer picks the record renderer from the --output flag.
func newRenderer() (output.Renderer, error) {
	switch strings.ToLower(outputFmt) {
	case "json":
		return output.NewJSONRenderer(), nil
	case "text", "":
		return output.NewTextRenderer(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want text or json)", outputFmt)
	}
}
