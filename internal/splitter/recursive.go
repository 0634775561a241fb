package splitter

import (
	"regexp"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/roivaz/ragsplit/internal/logging"
)

// DefaultSeparators is the paragraph, line, word, character fallback chain.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// MarkdownSeparators are regular expressions that prefer heading, fence and
// rule boundaries before falling back to paragraphs and lines.
var MarkdownSeparators = []string{
	`\n#{1,6} `,
	"```\n",
	`\n\*\*\*+\n`,
	`\n---+\n`,
	`\n___+\n`,
	`\n\n`,
	`\n`,
	` `,
	``,
}

// Chunk is one piece produced by RecursiveCharacter together with its byte
// offset in the text it was cut from. Start is -1 when the piece could not be
// located (whitespace stripping can make a merged piece differ from the source).
type Chunk struct {
	Text  string
	Start int
}

// RecursiveCharacter splits text on the first separator present in it,
// merges the pieces back up to ChunkSize with ChunkOverlap, and recurses
// with the remaining separators into pieces that are still too long.
type RecursiveCharacter struct {
	Separators       []string
	ChunkSize        int
	ChunkOverlap     int
	LenFunc          LengthFunc
	KeepSeparator    KeepSeparator
	StripWhitespace  bool
	IsSeparatorRegex bool

	patterns []*regexp.Regexp
	log      logging.Logger
}

var _ textsplitter.TextSplitter = (*RecursiveCharacter)(nil)

// NewRecursiveCharacter builds a splitter from o. When o has no separators,
// fallback is used.
func NewRecursiveCharacter(o Options, fallback []string) (*RecursiveCharacter, error) {
	seps := o.Separators
	if len(seps) == 0 {
		seps = fallback
	}
	if len(seps) == 0 {
		seps = DefaultSeparators
	}
	s := &RecursiveCharacter{
		Separators:       seps,
		ChunkSize:        o.ChunkSize,
		ChunkOverlap:     o.ChunkOverlap,
		LenFunc:          o.LengthFunc,
		KeepSeparator:    o.KeepSeparator,
		StripWhitespace:  o.StripWhitespace,
		IsSeparatorRegex: o.IsSeparatorRegex,
		log:              o.Logger,
	}
	if s.LenFunc == nil {
		s.LenFunc = CharLength
	}
	s.patterns = make([]*regexp.Regexp, len(seps))
	for i, sep := range seps {
		if sep == "" {
			continue
		}
		expr := sep
		if !s.IsSeparatorRegex {
			expr = regexp.QuoteMeta(sep)
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, &ConfigError{Field: "separators", Reason: err.Error()}
		}
		s.patterns[i] = re
	}
	return s, nil
}

// SplitText implements textsplitter.TextSplitter.
func (s *RecursiveCharacter) SplitText(text string) ([]string, error) {
	return s.split(text, 0), nil
}

// SplitWithOffsets splits text and locates every piece in it. The first
// piece reports offset 0 when only whitespace precedes it.
func (s *RecursiveCharacter) SplitWithOffsets(text string) []Chunk {
	pieces := s.split(text, 0)
	chunks := make([]Chunk, 0, len(pieces))
	index, prevLen := -1, 0
	for i, piece := range pieces {
		from := 0
		if i > 0 && index >= 0 {
			from = index + 1
			if s.ChunkOverlap == 0 {
				from = index + prevLen
			}
		}
		start := -1
		if from <= len(text) {
			if pos := strings.Index(text[from:], piece); pos >= 0 {
				start = from + pos
			}
		}
		if start >= 0 {
			index, prevLen = start, len(piece)
		}
		if i == 0 && start > 0 && s.StripWhitespace && strings.TrimSpace(text[:start]) == "" {
			start = 0
		}
		chunks = append(chunks, Chunk{Text: piece, Start: start})
	}
	return chunks
}

func (s *RecursiveCharacter) split(text string, from int) []string {
	chosen, next := len(s.Separators)-1, len(s.Separators)
	for i := from; i < len(s.Separators); i++ {
		if s.Separators[i] == "" {
			chosen, next = i, len(s.Separators)
			break
		}
		if s.patterns[i].MatchString(text) {
			chosen, next = i, i+1
			break
		}
	}

	joiner := s.Separators[chosen]
	switch {
	case s.KeepSeparator != KeepNone:
		joiner = ""
	case s.IsSeparatorRegex && s.patterns[chosen] != nil:
		// a pattern is not valid text; rejoin with what it matched first
		joiner = s.patterns[chosen].FindString(text)
	}

	var (
		final []string
		good  []string
	)
	for _, piece := range s.splitOn(text, chosen) {
		if s.LenFunc(piece) < s.ChunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.merge(good, joiner)...)
			good = nil
		}
		if next >= len(s.Separators) {
			final = append(final, piece)
			continue
		}
		final = append(final, s.split(piece, next)...)
	}
	if len(good) > 0 {
		final = append(final, s.merge(good, joiner)...)
	}
	return final
}

// splitOn cuts text at every match of separator i, dropping empty pieces.
func (s *RecursiveCharacter) splitOn(text string, i int) []string {
	var pieces []string
	add := func(p string) {
		if p != "" {
			pieces = append(pieces, p)
		}
	}

	re := s.patterns[i]
	if re == nil {
		for _, r := range text {
			add(string(r))
		}
		return pieces
	}

	matches := re.FindAllStringIndex(text, -1)
	last := 0
	switch s.KeepSeparator {
	case KeepStart:
		for _, m := range matches {
			add(text[last:m[0]])
			last = m[0]
		}
		add(text[last:])
	case KeepEnd:
		for _, m := range matches {
			add(text[last:m[1]])
			last = m[1]
		}
		add(text[last:])
	default:
		for _, m := range matches {
			add(text[last:m[0]])
			last = m[1]
		}
		add(text[last:])
	}
	return pieces
}

// merge packs pieces into chunks no longer than ChunkSize, carrying up to
// ChunkOverlap of trailing pieces into the next chunk.
func (s *RecursiveCharacter) merge(pieces []string, joiner string) []string {
	sepLen := s.LenFunc(joiner)
	var (
		docs    []string
		current []string
		total   int
	)
	extra := func() int {
		if len(current) > 0 {
			return sepLen
		}
		return 0
	}
	for _, p := range pieces {
		n := s.LenFunc(p)
		if total+n+extra() > s.ChunkSize {
			if total > s.ChunkSize {
				s.log.Debug("chunk longer than the configured size", "size", total, "chunkSize", s.ChunkSize)
			}
			if len(current) > 0 {
				if doc, ok := s.join(current, joiner); ok {
					docs = append(docs, doc)
				}
				for len(current) > 0 && (total > s.ChunkOverlap || (total+n+extra() > s.ChunkSize && total > 0)) {
					drop := s.LenFunc(current[0])
					if len(current) > 1 {
						drop += sepLen
					}
					total -= drop
					current = current[1:]
				}
			}
		}
		current = append(current, p)
		total += n
		if len(current) > 1 {
			total += sepLen
		}
	}
	if doc, ok := s.join(current, joiner); ok {
		docs = append(docs, doc)
	}
	return docs
}

func (s *RecursiveCharacter) join(pieces []string, joiner string) (string, bool) {
	text := strings.Join(pieces, joiner)
	if s.StripWhitespace {
		text = strings.TrimSpace(text)
	}
	return text, text != ""
}
