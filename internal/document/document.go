// Package document defines the chunk record produced by the splitters and
// its flattened row form.
package document

import (
	"fmt"

	"github.com/tmc/langchaingo/schema"

	"github.com/roivaz/ragsplit/internal/textutil"
)

// Well-known metadata keys.
const (
	KeyTitle          = "title"
	KeySubtitle       = "subtitle"
	KeySection        = "section"
	KeyPage           = "page"
	KeyPosition       = "position"
	KeyFileKey        = "file_key"
	KeyCategory       = "category"
	KeySubCategory    = "sub_category"
	KeyContentToEmbed = "content_to_embed"
)

// Metadata is a JSON-shaped attribute map. Values are treated as immutable:
// use Clone or With to derive a changed copy.
type Metadata map[string]any

// Clone returns a deep copy. A nil receiver yields an empty map.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m)+2)
	for k, v := range m {
		out[k] = textutil.DeepCopy(v)
	}
	return out
}

// With returns a copy of m with key set to value.
func (m Metadata) With(key string, value any) Metadata {
	out := m.Clone()
	out[key] = value
	return out
}

// String returns the value under key formatted as a string, or "" if absent.
func (m Metadata) String(key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Int returns the integer stored under key.
func (m Metadata) Int(key string) (int, bool) {
	switch v := m[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// Document is one retrieval chunk. Content is what a reader sees;
// ContentToEmbed, when set, is the text sent to the embedding model instead.
type Document struct {
	Content        string
	ContentToEmbed string
	Metadata       Metadata
}

// EmbedText returns the text that should be embedded for d.
func (d Document) EmbedText() string {
	if d.ContentToEmbed != "" {
		return d.ContentToEmbed
	}
	return d.Content
}

// ToSchema converts d into a langchaingo document. The embedding text travels
// in the metadata under content_to_embed when it differs from the content.
func (d Document) ToSchema() schema.Document {
	meta := map[string]any(d.Metadata.Clone())
	if d.ContentToEmbed != "" {
		meta[KeyContentToEmbed] = d.ContentToEmbed
	}
	return schema.Document{PageContent: d.Content, Metadata: meta}
}
