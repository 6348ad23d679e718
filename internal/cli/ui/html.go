package ui

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const htmlBlocks = "h1, h2, h3, h4, h5, h6, p, li, tr, pre, blockquote"

// HTMLToMarkdown converts (sanitized) report HTML into Markdown so it can be
// rendered in a terminal. Block elements are emitted in document order;
// inline markup is flattened to text.
func HTMLToMarkdown(source string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(source))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript").Remove()

	var (
		b          strings.Builder
		tablesSeen = make(map[*html.Node]bool)
	)

	doc.Find(htmlBlocks).Each(func(_ int, s *goquery.Selection) {
		// nested blocks are covered by their outermost block
		if s.ParentsFiltered(htmlBlocks).Length() > 0 {
			return
		}

		node := s.Get(0)
		switch tag := node.Data; tag {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			writeBlock(&b, strings.Repeat("#", int(tag[1]-'0'))+" "+flatText(s))
		case "p":
			writeBlock(&b, flatText(s))
		case "li":
			marker := "- "
			if s.Parent().Is("ol") {
				marker = "1. "
			}
			b.WriteString(marker + flatText(s) + "\n")
		case "pre":
			writeBlock(&b, "```\n"+strings.Trim(s.Text(), "\n")+"\n```")
		case "blockquote":
			writeBlock(&b, "> "+flatText(s))
		case "tr":
			var cells []string
			s.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.ReplaceAll(flatText(cell), "|", `\|`))
			})
			if len(cells) == 0 {
				return
			}
			b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
			if table := s.Closest("table"); table.Length() > 0 && !tablesSeen[table.Get(0)] {
				tablesSeen[table.Get(0)] = true
				b.WriteString("|" + strings.Repeat(" --- |", len(cells)) + "\n")
			}
		}
	})

	out := strings.TrimSpace(b.String())
	if out == "" {
		out = flatText(doc.Selection)
	}
	return out, nil
}

func writeBlock(b *strings.Builder, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n\n") {
		b.WriteString("\n")
	}
	b.WriteString(text + "\n\n")
}

// flatText collapses whitespace the way a browser would
func flatText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
