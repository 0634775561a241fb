package splitter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roivaz/ragsplit/internal/document"
	"github.com/roivaz/ragsplit/internal/logging"
	"github.com/roivaz/ragsplit/internal/openapi"
	"github.com/roivaz/ragsplit/internal/textutil"
)

// Top-level properties shared by every per-operation document.
var openAPIBaseProperties = []string{
	"openapi",
	"servers",
	"components.securitySchemes",
	"security",
}

const openAPIEmbedTemplate = "Example of a '%s' call to the endpoint '%s' in the api '%s'. " +
	"This call '%s' is used to '%s'. " +
	"The api is responsible for '%s'"

type openAPISegmenter struct {
	log logging.Logger
}

// NewOpenAPISplitter returns a splitter that emits one document per
// operation of an OpenAPI JSON document. Context stitching and re-chunking
// are off unless enabled through opts.
func NewOpenAPISplitter(opts ...Option) (*Splitter, error) {
	o := defaultOptions()
	o.ChunkSize = 0
	for _, opt := range opts {
		opt(&o)
	}
	return newSplitter("openapi", openAPISegmenter{log: o.Logger.WithName("openapi")}, o, DefaultSeparators)
}

func (s openAPISegmenter) SegmentText(text string, meta document.Metadata, pretty bool) ([]Block, error) {
	var root any
	if err := json.Unmarshal([]byte(text), &root); err != nil {
		return nil, &ParseError{Format: "openapi", Err: err}
	}
	obj, ok := root.(map[string]any)
	if !ok {
		return nil, &ParseError{Format: "openapi", Err: &ReferenceError{Ref: "#", Err: fmt.Errorf("document root is %T, not an object", root)}}
	}

	resolved := openapi.Dereference(obj, func(ref string, err error) {
		s.log.Warn("leaving $ref unresolved", "error", (&ReferenceError{Ref: ref, Err: err}).Error())
	})

	base := map[string]any{}
	for _, prop := range openAPIBaseProperties {
		textutil.CopyProperty(resolved, base, prop)
	}

	info, _ := resolved["info"].(map[string]any)
	var blocks []Block
	for _, op := range openapi.Operations(text, resolved) {
		item := map[string]any{op.Method: op.Spec}
		if op.Parameters != nil {
			item["parameters"] = op.Parameters
		}
		spec := textutil.DeepCopy(base).(map[string]any)
		spec["paths"] = map[string]any{op.Path: item}

		content, err := encodeJSON(spec, pretty)
		if err != nil {
			return nil, &ParseError{Format: "openapi", Err: err}
		}
		embed := fmt.Sprintf(openAPIEmbedTemplate,
			op.Method, op.Path, str(info["title"]),
			str(op.Spec["summary"]), str(op.Spec["description"]), str(info["description"]))
		embed = strings.ReplaceAll(embed, "\n", "")

		m := meta.With(document.KeySubtitle, "endpoint")
		m[document.KeySection] = strings.ToUpper(op.Method) + " " + op.Path
		blocks = append(blocks, Block{Content: embed, Original: content, Metadata: m})
	}
	return blocks, nil
}

func (openAPISegmenter) FormatDocument(doc document.Document) document.Document {
	return doc
}

// encodeJSON serializes v without HTML escaping, indented by two spaces when
// pretty is set.
func encodeJSON(v any, pretty bool) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func str(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
