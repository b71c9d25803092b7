package extract

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// parseHTML parses a document. x/net/html recovers from malformed markup,
// so an error only means the reader failed.
func parseHTML(body []byte) (*html.Node, error) {
	return html.Parse(bytes.NewReader(body))
}

// walk visits n and its descendants in document order.
func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

// findAll returns the element descendants of root (excluding root) that
// satisfy match, in document order.
func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		walk(c, func(n *html.Node) {
			if n.Type == html.ElementNode && match(n) {
				out = append(out, n)
			}
		})
	}
	return out
}

// findFirst returns the first element in document order named tag.
func findFirst(root *html.Node, tag string) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) {
		if found == nil && n.Type == html.ElementNode && n.Data == tag {
			found = n
		}
	})
	return found
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// classContains matches elements whose class attribute contains any of
// subs as a substring, like the CSS selector [class*="sub"].
func classContains(subs ...string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		class := attr(n, "class")
		if class == "" {
			return false
		}
		for _, s := range subs {
			if strings.Contains(class, s) {
				return true
			}
		}
		return false
	}
}

func isTag(tags ...string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		for _, t := range tags {
			if n.Data == t {
				return true
			}
		}
		return false
	}
}

// textContent concatenates every text node under n without separators,
// skipping script and style content.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style" || n.Data == "noscript") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return sb.String()
}

// bodyText returns the text of <body>, or of the whole document when the
// parser produced none.
func bodyText(doc *html.Node) string {
	if body := findFirst(doc, "body"); body != nil {
		return textContent(body)
	}
	return textContent(doc)
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
