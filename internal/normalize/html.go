package normalize

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// HTMLFlattener handles HTML filings, the primary EDGAR format.
//
// Unlike a heading-tree parser, it keeps every piece of visible text in
// document order: the section locator addresses the document by character
// offset, so table-of-contents entries, cross-references, and real headings
// must all survive flattening.
type HTMLFlattener struct{}

func (p *HTMLFlattener) Flatten(r io.Reader, filename string) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		// html.Parse only fails on reader errors; malformed markup is
		// repaired into a best-effort tree.
		return "", err
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "head", "noscript":
				return
			case "br":
				buf.WriteByte('\n')
				return
			}
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			switch {
			case isBlockTag(n.Data):
				buf.WriteByte('\n')
			case n.Data == "td" || n.Data == "th":
				// Cells on one row stay on one line but must not fuse.
				buf.WriteByte(' ')
			}
		}
	}
	walk(doc)

	return buf.String(), nil
}

func isBlockTag(tag string) bool {
	switch tag {
	case "p", "div", "tr", "table", "li", "ul", "ol", "blockquote",
		"h1", "h2", "h3", "h4", "h5", "h6", "hr", "section", "article":
		return true
	}
	return false
}
