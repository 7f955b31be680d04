package preview

import (
	"strings"

	"golang.org/x/net/html"
)

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "table": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "main": true, "section": true, "ul": true, "ol": true,
}

// Text flattens preview HTML into plain text for terminals. Pending
// placeholders are wrapped in square brackets so they stand out.
func Text(markup string) (string, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	extractText(doc, &b)

	lines := strings.Split(b.String(), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n")), nil
}

func extractText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "head", "title":
			return
		}
	}

	pending := n.Type == html.ElementNode && n.Data == "span" && hasClass(n, "docfill-pending")
	block := n.Type == html.ElementNode && blockElements[n.Data]

	if pending {
		b.WriteByte('[')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractText(c, b)
	}
	if pending {
		b.WriteByte(']')
	}
	if block {
		b.WriteByte('\n')
	}
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}
