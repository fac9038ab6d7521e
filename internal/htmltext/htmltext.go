// Package htmltext extracts readable text from HTML ticket bodies exported
// by help-desk systems.
package htmltext

import (
	"strings"

	"golang.org/x/net/html"
)

// blockElements end a visual line, so their text is separated by a space
// instead of being glued to the neighbouring element.
var blockElements = map[string]struct{}{
	"p": {}, "div": {}, "br": {}, "li": {}, "tr": {}, "td": {}, "th": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"pre": {}, "blockquote": {},
}

// LooksLikeHTML is a cheap check used to skip parsing plain text.
func LooksLikeHTML(s string) bool {
	i := strings.IndexByte(s, '<')
	return i >= 0 && strings.IndexByte(s[i:], '>') > 0
}

// Extract returns the text content of s. Script and style contents are
// dropped. If s cannot be parsed it is returned unchanged.
func Extract(s string) string {
	if !LooksLikeHTML(s) {
		return strings.TrimSpace(s)
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(n.Data)
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			if _, ok := blockElements[n.Data]; ok {
				buf.WriteByte(' ')
			}
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(buf.String()), " ")
}
