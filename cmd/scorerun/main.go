package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	appName = "scorerun"
	version = "v1.3.0"
)

var flags struct {
	configPath  string
	logLevel    string
	logFile     string
	metricsAddr string
	jsonOut     bool
}

func main() {
	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Multi-factor opportunity scorer and screener",
		Version: version,
		Long: `scorerun scores tradable instruments from their price history: technical
indicators, bottoming structures and regime classification roll up into one
capped opportunity score with a full contribution breakdown.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging()
		},
		SilenceUsage: true,
	}

	registerGlobalFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newScoreCmd())
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newBacktestCmd())
	rootCmd.AddCommand(newCacheCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func registerGlobalFlags(pf *pflag.FlagSet) {
	pf.StringVar(&flags.configPath, "config", "", "path to YAML config (defaults apply when absent)")
	pf.StringVar(&flags.logLevel, "log-level", "info", "log level (trace|debug|info|warn|error)")
	pf.StringVar(&flags.logFile, "log-file", "", "also write logs to this rotating file")
	pf.StringVar(&flags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9100)")
	pf.BoolVar(&flags.jsonOut, "json", false, "force JSON output even on a TTY")
}

func setupLogging() error {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(strings.ToLower(flags.logLevel))
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", flags.logLevel, err)
	}
	zerolog.SetGlobalLevel(level)

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	if flags.logFile == "" {
		log.Logger = log.Output(console)
		return nil
	}

	rotating := &lumberjack.Logger{
		Filename:   flags.logFile,
		MaxSize:    20, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	log.Logger = log.Output(zerolog.MultiLevelWriter(console, rotating))
	return nil
}
