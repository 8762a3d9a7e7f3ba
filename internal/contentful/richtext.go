package contentful

import (
	"html"
	"strings"
)

// Node is one element of a Contentful rich text document.
type Node struct {
	NodeType string         `json:"nodeType"`
	Value    string         `json:"value"`
	Marks    []Mark         `json:"marks"`
	Data     map[string]any `json:"data"`
	Content  []Node         `json:"content"`
}

type Mark struct {
	Type string `json:"type"`
}

var blockTags = map[string]string{
	"paragraph":         "p",
	"heading-1":         "h1",
	"heading-2":         "h2",
	"heading-3":         "h3",
	"heading-4":         "h4",
	"heading-5":         "h5",
	"heading-6":         "h6",
	"unordered-list":    "ul",
	"ordered-list":      "ol",
	"list-item":         "li",
	"blockquote":        "blockquote",
	"table":             "table",
	"table-row":         "tr",
	"table-cell":        "td",
	"table-header-cell": "th",
}

var markTags = map[string]string{
	"bold":        "strong",
	"italic":      "em",
	"underline":   "u",
	"code":        "code",
	"superscript": "sup",
	"subscript":   "sub",
}

// RenderHTML renders a rich text document. Embedded assets resolve through assets (id to URL).
func RenderHTML(doc *Node, assets map[string]string) string {
	var b strings.Builder
	render(&b, doc, assets)
	return b.String()
}

func render(b *strings.Builder, n *Node, assets map[string]string) {
	switch n.NodeType {
	case "document":
		renderChildren(b, n, assets)
	case "text":
		renderText(b, n)
	case "hr":
		b.WriteString("<hr/>")
	case "hyperlink":
		uri, _ := n.Data["uri"].(string)
		b.WriteString(`<a href="`)
		b.WriteString(html.EscapeString(uri))
		b.WriteString(`">`)
		renderChildren(b, n, assets)
		b.WriteString("</a>")
	case "embedded-asset-block":
		if src := assets[targetID(n)]; src != "" {
			b.WriteString(`<img src="`)
			b.WriteString(html.EscapeString(src))
			b.WriteString(`" alt=""/>`)
		}
	default:
		tag, ok := blockTags[n.NodeType]
		if !ok {
			// unknown inline or embedded entry: keep its text
			renderChildren(b, n, assets)
			return
		}
		b.WriteString("<" + tag + ">")
		renderChildren(b, n, assets)
		b.WriteString("</" + tag + ">")
	}
}

func renderChildren(b *strings.Builder, n *Node, assets map[string]string) {
	for i := range n.Content {
		render(b, &n.Content[i], assets)
	}
}

func renderText(b *strings.Builder, n *Node) {
	var open, closing []string
	for _, m := range n.Marks {
		if tag, ok := markTags[m.Type]; ok {
			open = append(open, "<"+tag+">")
			closing = append([]string{"</" + tag + ">"}, closing...)
		}
	}
	b.WriteString(strings.Join(open, ""))
	b.WriteString(strings.ReplaceAll(html.EscapeString(n.Value), "\n", "<br/>"))
	b.WriteString(strings.Join(closing, ""))
}

func targetID(n *Node) string {
	target, _ := n.Data["target"].(map[string]any)
	s, _ := target["sys"].(map[string]any)
	id, _ := s["id"].(string)
	return id
}

// PlainText concatenates the document's text, one line per block.
func PlainText(doc *Node) string {
	var b strings.Builder
	plain(&b, doc)
	return strings.TrimSpace(b.String())
}

func plain(b *strings.Builder, n *Node) {
	if n.NodeType == "text" {
		b.WriteString(n.Value)
		return
	}
	for i := range n.Content {
		plain(b, &n.Content[i])
	}
	if _, ok := blockTags[n.NodeType]; ok {
		b.WriteString("\n")
	}
}
