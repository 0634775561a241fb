package splitter

import (
	"regexp"
	"strings"

	"github.com/roivaz/ragsplit/internal/document"
	"github.com/roivaz/ragsplit/internal/logging"
	"github.com/roivaz/ragsplit/internal/textutil"
)

type headingLevel struct {
	key     string
	split   *regexp.Regexp
	heading *regexp.Regexp
}

var headingLevels = []headingLevel{
	{document.KeyTitle, regexp.MustCompile(`\n\n#[^#]`), regexp.MustCompile(`^#[^#]`)},
	{document.KeySubtitle, regexp.MustCompile(`\n\n##[^#]`), regexp.MustCompile(`^##[^#]`)},
	{document.KeySection, regexp.MustCompile(`\n\n###[^#]`), regexp.MustCompile(`^###[^#]`)},
}

type markdownSegmenter struct {
	log logging.Logger
}

// NewMarkdownSplitter returns a splitter that cuts markdown at #, ## and ###
// headings, records them as title, subtitle and section, and strips the
// markup from the final text. Re-chunking defaults to MarkdownSeparators.
func NewMarkdownSplitter(opts ...Option) (*Splitter, error) {
	o := defaultOptions()
	o.KeepSeparator = KeepStart
	for _, opt := range opts {
		opt(&o)
	}
	if len(o.Separators) == 0 {
		o.IsSeparatorRegex = true
	}
	return newSplitter("markdown", markdownSegmenter{log: o.Logger}, o, MarkdownSeparators)
}

func (markdownSegmenter) SegmentText(text string, meta document.Metadata, _ bool) ([]Block, error) {
	text = textutil.NormalizeWhitespace(strings.ReplaceAll(text, "\r", ""))
	blocks := []Block{NewBlock(text, meta)}
	for _, level := range headingLevels {
		var next []Block
		for _, b := range blocks {
			for _, frag := range splitBeforeHeadings(level.split, b.Content) {
				frag = strings.TrimSpace(frag)
				if frag == "" {
					continue
				}
				m := b.Metadata.Clone()
				if level.heading.MatchString(frag) {
					m[level.key] = headingText(frag)
				}
				next = append(next, NewBlock(frag, m))
			}
		}
		blocks = next
	}
	return blocks, nil
}

func (s markdownSegmenter) FormatDocument(doc document.Document) document.Document {
	doc.Content = s.clean(doc.Content)
	if doc.ContentToEmbed != "" {
		doc.ContentToEmbed = s.clean(doc.ContentToEmbed)
	}
	return doc
}

func (s markdownSegmenter) clean(text string) string {
	return textutil.SanitizeText(SanitizeBlocks(textutil.StripMarkdown(text), s.log))
}

// splitBeforeHeadings cuts text at every blank line that is followed by a
// heading of the level matched by re. The heading stays with the fragment it
// opens.
func splitBeforeHeadings(re *regexp.Regexp, text string) []string {
	var parts []string
	last := 0
	for _, m := range re.FindAllStringIndex(text, -1) {
		parts = append(parts, text[last:m[0]])
		last = m[0] + 2
	}
	return append(parts, text[last:])
}

func headingText(frag string) string {
	line, _, _ := strings.Cut(frag, "\n")
	return strings.TrimSpace(strings.ReplaceAll(line, "#", ""))
}
