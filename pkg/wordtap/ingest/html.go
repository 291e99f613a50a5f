package ingest

import (
	"strings"

	"golang.org/x/net/html"
)

// ExtractText returns the visible text of raw when it looks like an HTML
// fragment (pasted from a web page). Plain text is returned unchanged.
func ExtractText(raw string) string {
	if !looksLikeHTML(raw) {
		return raw
	}

	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		// Fallback to the raw string if parsing fails
		return raw
	}

	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && isBlock(n.Data) && buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(doc)

	return strings.TrimSpace(buf.String())
}

func looksLikeHTML(s string) bool {
	open := strings.IndexByte(s, '<')
	if open < 0 || open+1 >= len(s) {
		return false
	}
	next := s[open+1]
	isTagStart := next == '/' || next == '!' || (next|0x20 >= 'a' && next|0x20 <= 'z')
	return isTagStart && strings.IndexByte(s[open:], '>') > 0
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "br", "li", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "tr":
		return true
	}
	return false
}
