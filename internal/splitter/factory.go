package splitter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"sigs.k8s.io/yaml"

	"github.com/roivaz/ragsplit/internal/document"
	"github.com/roivaz/ragsplit/internal/textutil"
)

// Factory picks a splitter for a file from its extension and, for JSON and
// YAML, from its content.
type Factory struct {
	text     *Splitter
	pdf      *Splitter
	markdown *Splitter
	openapi  *Splitter
	json     *Splitter
}

// NewFactory builds one splitter per format from the shared opts. PDF text
// skips context stitching; OpenAPI documents are never stitched or
// re-chunked.
func NewFactory(opts ...Option) (*Factory, error) {
	var (
		f   Factory
		err error
	)
	if f.text, err = NewTextSplitter(opts...); err != nil {
		return nil, err
	}
	if f.pdf, err = NewTextSplitter(withOverrides(opts, WithContextSize(0))...); err != nil {
		return nil, err
	}
	if f.markdown, err = NewMarkdownSplitter(opts...); err != nil {
		return nil, err
	}
	if f.openapi, err = NewOpenAPISplitter(withOverrides(opts, WithContextSize(0), WithChunkSize(0))...); err != nil {
		return nil, err
	}
	if f.json, err = NewJSONSplitter(opts...); err != nil {
		return nil, err
	}
	return &f, nil
}

// ForFile returns the splitter for name together with the text it should
// receive, which differs from text for HTML (tags stripped) and YAML
// (converted to JSON).
func (f *Factory) ForFile(name, text string) (*Splitter, string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".pdf":
		return f.pdf, text, nil
	case ".txt", ".text":
		return f.text, text, nil
	case ".md", ".mdx", ".markdown":
		return f.markdown, text, nil
	case ".html", ".htm":
		return f.text, textutil.StripHTML(text), nil
	case ".json":
		if isOpenAPI(text) {
			return f.openapi, text, nil
		}
		return f.json, text, nil
	case ".yaml", ".yml":
		converted, err := yaml.YAMLToJSON([]byte(text))
		if err != nil {
			return nil, "", &ParseError{Format: "yaml", Err: err}
		}
		if !isOpenAPI(string(converted)) {
			return nil, "", fmt.Errorf("%w: %s is not an OpenAPI document", ErrUnsupportedFormat, name)
		}
		return f.openapi, string(converted), nil
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Split segments one file's text with the splitter chosen for name.
func (f *Factory) Split(name, text string, metadata map[string]any, pretty bool) ([]document.Document, error) {
	s, input, err := f.ForFile(name, text)
	if err != nil {
		return nil, err
	}
	return s.CreateDocuments(input, metadata, pretty)
}

func withOverrides(opts []Option, overrides ...Option) []Option {
	out := make([]Option, 0, len(opts)+len(overrides))
	out = append(out, opts...)
	return append(out, overrides...)
}

func isOpenAPI(text string) bool {
	return gjson.Valid(text) && gjson.Get(text, "openapi").Exists()
}
