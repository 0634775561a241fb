package splitter

import (
	"errors"

	"github.com/tidwall/gjson"

	"github.com/roivaz/ragsplit/internal/document"
)

type jsonSegmenter struct{}

// NewJSONSplitter returns a splitter that keeps a JSON document whole,
// titled "json". Only context stitching applies.
func NewJSONSplitter(opts ...Option) (*Splitter, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.ChunkSize = 0
	return newSplitter("json", jsonSegmenter{}, o, DefaultSeparators)
}

func (jsonSegmenter) SegmentText(text string, meta document.Metadata, _ bool) ([]Block, error) {
	if !gjson.Valid(text) {
		return nil, &ParseError{Format: "json", Err: errors.New("invalid json document")}
	}
	return []Block{NewBlock(text, meta.With(document.KeyTitle, "json"))}, nil
}

func (jsonSegmenter) FormatDocument(doc document.Document) document.Document {
	return doc
}
