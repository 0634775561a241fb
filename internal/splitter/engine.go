// Package splitter turns raw documents into ordered, metadata-tagged chunks.
//
// Every splitter runs the same pipeline: a format-specific Segmenter cuts the
// text into blocks, optional context stitching regroups small blocks into
// windows of ContextSize, optional re-chunking cuts blocks down to ChunkSize
// with overlap, and a final pass assigns page/position numbers and lets the
// segmenter clean up each document.
package splitter

import (
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/roivaz/ragsplit/internal/document"
	"github.com/roivaz/ragsplit/internal/logging"
)

// minContextFragment is the length below which context-stitching fragments
// are folded into the next one.
const minContextFragment = 100

// Block is an intermediate record. Original is the text the block was cut
// from; when it ends up different from Content the final document keeps
// Original for display and embeds Content.
type Block struct {
	Content  string
	Original string
	Metadata document.Metadata

	start    int
	hasStart bool
}

// NewBlock returns a block whose snapshot is its own content.
func NewBlock(content string, meta document.Metadata) Block {
	return Block{Content: content, Original: content, Metadata: meta}
}

// Segmenter is the format-specific part of a Splitter.
type Segmenter interface {
	// SegmentText cuts text into blocks. meta must not be mutated.
	SegmentText(text string, meta document.Metadata, pretty bool) ([]Block, error)
	// FormatDocument post-processes one numbered document.
	FormatDocument(doc document.Document) document.Document
}

// Splitter runs a Segmenter through the stitching, re-chunking and
// numbering stages. It holds no mutable state and is safe for concurrent use.
type Splitter struct {
	name      string
	segmenter Segmenter
	opts      Options
	context   textsplitter.TextSplitter
	chunker   *RecursiveCharacter
	log       logging.Logger
}

func newSplitter(name string, seg Segmenter, o Options, fallback []string) (*Splitter, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}
	s := &Splitter{name: name, segmenter: seg, opts: o, log: o.Logger.WithName(name)}
	if o.ContextSize > 0 {
		s.context = textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(o.ContextSize),
			textsplitter.WithChunkOverlap(0),
			textsplitter.WithLenFunc(o.LengthFunc),
		)
	}
	if o.ChunkSize > 0 {
		chunker, err := NewRecursiveCharacter(o, fallback)
		if err != nil {
			return nil, err
		}
		s.chunker = chunker
	}
	return s, nil
}

// Name identifies the segmenter, e.g. "markdown".
func (s *Splitter) Name() string { return s.name }

// Options returns the effective configuration.
func (s *Splitter) Options() Options { return s.opts }

// CreateDocuments segments content. metadata is copied, never mutated.
func (s *Splitter) CreateDocuments(content string, metadata map[string]any, pretty bool) ([]document.Document, error) {
	if strings.TrimSpace(content) == "" {
		return []document.Document{}, nil
	}
	blocks, err := s.segmenter.SegmentText(content, document.Metadata(metadata).Clone(), pretty)
	if err != nil {
		return nil, err
	}
	s.log.Debug("segmented", "blocks", len(blocks))

	if s.context != nil {
		blocks, err = s.stitch(blocks)
		if err != nil {
			return nil, err
		}
		s.log.Debug("stitched context windows", "blocks", len(blocks))
	}
	if s.chunker != nil {
		blocks = s.rechunk(blocks)
		s.log.Debug("re-chunked", "chunks", len(blocks))
	}
	return s.format(blocks), nil
}

// SplitDocuments re-segments each document's content with its metadata and
// concatenates the results in order.
func (s *Splitter) SplitDocuments(docs []document.Document, pretty bool) ([]document.Document, error) {
	out := []document.Document{}
	for _, d := range docs {
		split, err := s.CreateDocuments(d.Content, d.Metadata, pretty)
		if err != nil {
			return nil, err
		}
		out = append(out, split...)
	}
	return out, nil
}

// stitch regroups each block into windows of ContextSize. Fragments shorter
// than minContextFragment are held back and prefixed to the next fragment.
func (s *Splitter) stitch(blocks []Block) ([]Block, error) {
	var out []Block
	for _, b := range blocks {
		fragments, err := s.context.SplitText(b.Content)
		if err != nil {
			return nil, err
		}
		var pending strings.Builder
		emit := func(text string) {
			text = strings.TrimRight(text, " ")
			if text == "" {
				return
			}
			out = append(out, NewBlock(text, b.Metadata.Clone()))
		}
		for _, f := range fragments {
			if s.opts.LengthFunc(f) < minContextFragment {
				pending.WriteString(f)
				pending.WriteString(" ")
				if s.opts.LengthFunc(pending.String()) < s.opts.ContextSize {
					continue
				}
				emit(pending.String())
				pending.Reset()
				continue
			}
			emit(pending.String() + f)
			pending.Reset()
		}
		emit(pending.String())
	}
	return out, nil
}

// rechunk cuts every block down to ChunkSize and records where each chunk
// starts inside its block. The block's snapshot travels with every chunk.
func (s *Splitter) rechunk(blocks []Block) []Block {
	var out []Block
	for _, b := range blocks {
		for _, c := range s.chunker.SplitWithOffsets(b.Content) {
			out = append(out, Block{
				Content:  c.Text,
				Original: b.Original,
				Metadata: b.Metadata.Clone(),
				start:    c.Start,
				hasStart: true,
			})
		}
	}
	return out
}

// format numbers the blocks and builds the final documents. A block without
// a start offset, or starting at offset 0, opens a new page.
func (s *Splitter) format(blocks []Block) []document.Document {
	docs := make([]document.Document, 0, len(blocks))
	page, position := 0, 0
	for _, b := range blocks {
		if !b.hasStart || b.start == 0 {
			page++
			position = 1
		} else {
			position++
		}
		d := document.Document{Content: b.Content, Metadata: b.Metadata.Clone()}
		if b.Original != "" && b.Original != b.Content {
			d.Content = b.Original
			d.ContentToEmbed = b.Content
		}
		d.Metadata[document.KeyPage] = page
		d.Metadata[document.KeyPosition] = position
		docs = append(docs, s.segmenter.FormatDocument(d))
	}
	return docs
}
