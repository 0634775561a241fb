package source

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
)

// extractText returns the text of a file. PDF pages are joined by blank
// lines; every other format is read as UTF-8.
func extractText(ctx context.Context, name string, data []byte) (string, error) {
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return string(data), nil
	}
	pages, err := documentloaders.NewPDF(bytes.NewReader(data), int64(len(data))).Load(ctx)
	if err != nil {
		return "", fmt.Errorf("extract pdf %s: %w", name, err)
	}
	texts := make([]string, 0, len(pages))
	for _, p := range pages {
		if t := strings.TrimSpace(p.PageContent); t != "" {
			texts = append(texts, t)
		}
	}
	return strings.Join(texts, "\n\n"), nil
}
