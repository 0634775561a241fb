package document

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/roivaz/ragsplit/internal/textutil"
)

// rowNamespace scopes the deterministic row identifiers.
var rowNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/roivaz/ragsplit/chunks"))

// Row is the flattened, storage-ready form of a Document.
type Row struct {
	ID             string            `json:"id"`
	Content        string            `json:"content"`
	ContentToEmbed string            `json:"content_to_embed,omitempty"`
	Metadata       map[string]string `json:"metadata"`
	FileKey        string            `json:"file_key"`
}

// NewRow flattens d. Content is trimmed with whitespace runs (including
// Unicode spaces) collapsed, and the ID is stable for the same file, page,
// position and content.
func NewRow(d Document) Row {
	content := textutil.CollapseSpaces(d.Content)
	embed := ""
	if d.ContentToEmbed != "" {
		embed = textutil.CollapseSpaces(d.ContentToEmbed)
	}

	meta := make(map[string]string, len(d.Metadata))
	for k, v := range d.Metadata {
		meta[k] = flattenValue(v)
	}

	fileKey := d.Metadata.String(KeyFileKey)
	page, _ := d.Metadata.Int(KeyPage)
	pos, _ := d.Metadata.Int(KeyPosition)
	id := uuid.NewSHA1(rowNamespace, []byte(fmt.Sprintf("%s|%d|%d|%s", fileKey, page, pos, content)))

	return Row{
		ID:             id.String(),
		Content:        content,
		ContentToEmbed: embed,
		Metadata:       meta,
		FileKey:        fileKey,
	}
}

// NewRows flattens docs, keeping their order.
func NewRows(docs []Document) []Row {
	rows := make([]Row, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, NewRow(d))
	}
	return rows
}

// EmbedText mirrors Document.EmbedText for a flattened row.
func (r Row) EmbedText() string {
	if r.ContentToEmbed != "" {
		return r.ContentToEmbed
	}
	return r.Content
}

func flattenValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]any, []any, Metadata:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}
