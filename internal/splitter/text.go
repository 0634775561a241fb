package splitter

import (
	"regexp"
	"strings"

	"github.com/roivaz/ragsplit/internal/document"
	"github.com/roivaz/ragsplit/internal/textutil"
)

var (
	// A blank line followed by a short line that does not open a fence or a
	// heading and does not end a sentence. This is a guess at "title" lines
	// and misfires on numbered lists and code.
	textHeading = regexp.MustCompile("\n\n[^(`|#)].{0,50}[^.]\n")
	// A short first line.
	textLeadTitle = regexp.MustCompile(`^.{0,50}\n`)
)

type textSegmenter struct{}

// NewTextSplitter returns a splitter for plain text. Paragraph-separated
// short lines are treated as titles.
func NewTextSplitter(opts ...Option) (*Splitter, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newSplitter("text", textSegmenter{}, o, DefaultSeparators)
}

func (textSegmenter) SegmentText(text string, meta document.Metadata, _ bool) ([]Block, error) {
	text = textutil.NormalizeWhitespace(text)
	parts := splitKeepingMatches(textHeading, text)

	var blocks []Block
	add := func(title, body string) {
		content := textutil.SanitizeText(body)
		if strings.TrimSpace(content) == "" {
			return
		}
		m := meta.Clone()
		if t := strings.ReplaceAll(title, "\n", ""); t != "" {
			m[document.KeyTitle] = t
		}
		blocks = append(blocks, NewBlock(content, m))
	}

	first := parts[0]
	if loc := textLeadTitle.FindStringIndex(first); loc != nil {
		title := first[:loc[1]]
		add(title, title+"\n\n"+first[loc[1]:])
	} else {
		add("", first)
	}
	for i := 1; i+1 < len(parts); i += 2 {
		title, body := parts[i], parts[i+1]
		add(title, title+"\n\n"+body)
	}
	return blocks, nil
}

func (textSegmenter) FormatDocument(doc document.Document) document.Document {
	doc.Content = textutil.SanitizeText(doc.Content)
	return doc
}

// splitKeepingMatches splits text around re and returns text, match, text,
// match, ..., text. The result always has an odd length.
func splitKeepingMatches(re *regexp.Regexp, text string) []string {
	var parts []string
	last := 0
	for _, m := range re.FindAllStringIndex(text, -1) {
		parts = append(parts, text[last:m[0]], text[m[0]:m[1]])
		last = m[1]
	}
	return append(parts, text[last:])
}
