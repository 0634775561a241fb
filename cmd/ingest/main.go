package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roivaz/ragsplit/internal/config"
	"github.com/roivaz/ragsplit/internal/ingest"
	"github.com/roivaz/ragsplit/internal/logging"
	"github.com/roivaz/ragsplit/internal/splitter"
)

var rootCmd = &cobra.Command{
	Use:           "ingest",
	Short:         "Split documents into retrieval chunks and load them into postgres",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	flags := rootCmd.PersistentFlags()
	flags.String(config.KeyLogLevel, "info", "Log level (debug, info, warn, error)")
	flags.Int(config.KeyContextSize, 0, "Context window size in length units (0 disables stitching)")
	flags.Int(config.KeyChunkSize, 1000, "Embedding chunk size in length units (0 disables re-chunking)")
	flags.Int(config.KeyChunkOverlap, 0, "Overlap between embedding chunks")
	flags.String(config.KeyLengthFunction, "chars", "Length function: chars or tokens")
	flags.String(config.KeyTokenEncoding, "cl100k_base", "tiktoken encoding used by the tokens length function")
	flags.String(config.KeyKeepSeparator, "", "Separator placement: none, start or end (default per splitter)")
	flags.Bool(config.KeyPrettyJSON, false, "Pretty-print OpenAPI chunks")

	config.Init(rootCmd)
	bindDocsFlags(docsCmd)
	rootCmd.AddCommand(splitCmd, docsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ingest: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() logging.Logger {
	return logging.NewWithLevel(config.LogLevel())
}

func newFactory(cfg ingest.Config, log logging.Logger) (*splitter.Factory, error) {
	opts, err := cfg.SplitterOptions(log.WithName("splitter"))
	if err != nil {
		return nil, err
	}
	return splitter.NewFactory(opts...)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
