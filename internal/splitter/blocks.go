package splitter

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/roivaz/ragsplit/internal/logging"
)

var (
	wikiBlock     = regexp.MustCompile(`(?s)\[block:([a-z]+)\](.*?)\[/block\]`)
	payloadEscape = strings.NewReplacer("\\`", "", `\"`, "", `\n`, "", `\`, "")
)

// SanitizeBlocks rewrites wiki [block:<type>]...[/block] sections:
// image blocks become their http(s) links, embed blocks their url, parameter
// blocks the compact JSON of their data, and html blocks are dropped. Blocks
// whose payload is not valid JSON are left untouched.
func SanitizeBlocks(text string, log logging.Logger) string {
	if !strings.Contains(text, "[block:") {
		return text
	}
	return wikiBlock.ReplaceAllStringFunc(text, func(block string) string {
		m := wikiBlock.FindStringSubmatch(block)
		kind := m[1]
		if kind == "html" {
			return ""
		}
		payload := payloadEscape.Replace(m[2])
		if !gjson.Valid(payload) {
			log.Debug("skipping block with invalid payload", "kind", kind)
			return block
		}
		switch kind {
		case "image":
			return strings.Join(imageLinks(payload), " ")
		case "embed":
			return gjson.Get(payload, "url").String()
		case "parameters":
			return compactJSON(gjson.Get(payload, "data").Raw)
		default:
			return block
		}
	})
}

func imageLinks(payload string) []string {
	var links []string
	collect := func(v gjson.Result) {
		if s := v.String(); v.Type == gjson.String && strings.HasPrefix(s, "http") {
			links = append(links, s)
		}
	}
	for _, img := range gjson.Get(payload, "images.#.image").Array() {
		if img.IsArray() {
			for _, v := range img.Array() {
				collect(v)
			}
			continue
		}
		collect(img)
	}
	return links
}

func compactJSON(raw string) string {
	if raw == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(raw)); err != nil {
		return raw
	}
	return buf.String()
}
