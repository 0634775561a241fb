package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roivaz/ragsplit/internal/document"
	"github.com/roivaz/ragsplit/internal/ingest"
	"github.com/roivaz/ragsplit/internal/source"
)

// Output formats accepted by split --format.
const (
	formatRows   = "rows"
	formatSchema = "schema"
)

var splitCmd = &cobra.Command{
	Use:   "split <file>...",
	Short: "Split local files and print one JSON line per chunk",
	Long: `Split local files and print one JSON line per chunk.

--format rows prints the flattened rows written to the chunk table.
--format schema prints langchaingo schema.Document values, with the embedding
text carried in the content_to_embed metadata key, ready to hand to a
langchaingo vector store.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if format != formatRows && format != formatSchema {
			return fmt.Errorf("unknown --format %q: want %s or %s", format, formatRows, formatSchema)
		}
		cfg, err := ingest.LoadConfig()
		if err != nil {
			return err
		}
		log := newLogger()
		factory, err := newFactory(cfg, log)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		src := source.NewFiles(args, nil)
		files, err := src.List(ctx)
		if err != nil {
			return err
		}

		for _, f := range files {
			text, err := src.Read(ctx, f)
			if err != nil {
				return err
			}
			docs, err := factory.Split(f.Name, text, f.Metadata, cfg.Pretty)
			if err != nil {
				return fmt.Errorf("split %s: %w", f.Key, err)
			}
			if err := writeDocuments(cmd.OutOrStdout(), docs, format); err != nil {
				return err
			}
			log.Debug("split file", "file", f.Key, "documents", len(docs))
		}
		return nil
	},
}

func init() {
	splitCmd.Flags().String("format", formatRows, "output format: rows or schema")
}

// writeDocuments encodes docs to w as JSON lines in the given format.
func writeDocuments(w io.Writer, docs []document.Document, format string) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	switch format {
	case formatRows:
		for _, row := range document.NewRows(docs) {
			if err := enc.Encode(row); err != nil {
				return err
			}
		}
	case formatSchema:
		for _, d := range docs {
			if err := enc.Encode(d.ToSchema()); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}
