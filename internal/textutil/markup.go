package textutil

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"gitlab.com/golang-commonmark/markdown"
)

var md = markdown.New(
	markdown.HTML(true),
	markdown.Tables(true),
	markdown.Linkify(false),
	markdown.Typographer(false),
)

// StripMarkdown renders markdown to HTML and returns the visible text.
// Block boundaries survive as newlines.
func StripMarkdown(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return htmlText(md.RenderToString([]byte(text)), false)
}

// StripHTML returns the visible text of an HTML fragment. Tables are
// flattened into "Header: value" lines, one blank line per row, and a
// rowspan repeats its cell into the rows it covers. Headings and paragraphs
// end with a newline.
func StripHTML(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	return htmlText(fragment, true)
}

func htmlText(fragment string, flattenTables bool) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	if flattenTables {
		doc.Find("table").Each(func(_ int, table *goquery.Selection) {
			table.ReplaceWithHtml(html.EscapeString(flattenTable(table)))
		})
		doc.Find("h1, h2, h3, h4, h5, h6, p").Each(func(_ int, s *goquery.Selection) {
			s.AppendHtml("\n")
		})
	}
	doc.Find("script, style").Remove()
	return strings.ReplaceAll(doc.Text(), "\u00a0", " ")
}

func flattenTable(table *goquery.Selection) string {
	var (
		b       strings.Builder
		headers []string
		carried = map[int]map[int]string{}
	)
	table.Find("tr").Each(func(row int, tr *goquery.Selection) {
		cells := tr.Find("th, td")
		if headers == nil {
			cells.Each(func(_ int, c *goquery.Selection) {
				headers = append(headers, strings.TrimSpace(c.Text()))
			})
			return
		}
		next := 0
		for col, header := range headers {
			if v, ok := carried[row][col]; ok {
				fmt.Fprintf(&b, "%s: %s\n", header, v)
				continue
			}
			if next >= cells.Length() {
				fmt.Fprintf(&b, "%s: \n", header)
				continue
			}
			cell := cells.Eq(next)
			next++
			value := strings.TrimSpace(cell.Text())
			fmt.Fprintf(&b, "%s: %s\n", header, value)
			span, _ := strconv.Atoi(cell.AttrOr("rowspan", "1"))
			for r := row + 1; r < row+span; r++ {
				if carried[r] == nil {
					carried[r] = map[int]string{}
				}
				carried[r][col] = value
			}
		}
		b.WriteString("\n")
	})
	return b.String()
}
