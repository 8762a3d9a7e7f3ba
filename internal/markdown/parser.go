package markdown

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"go.abhg.dev/goldmark/frontmatter"
)

// Parser renders Markdown to sanitized HTML. Safe for concurrent use.
type Parser struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewParser() *Parser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.Typographer,
			&frontmatter.Extender{},
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithHardWraps(),
			goldmarkhtml.WithXHTML(),
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")

	return &Parser{md: md, policy: policy}
}

func (p *Parser) Parse(source []byte) ([]byte, error) {
	html, _, err := p.ParseWithFrontmatter(source)
	return html, err
}

// ParseWithFrontmatter renders the body and decodes any YAML frontmatter into meta.
func (p *Parser) ParseWithFrontmatter(source []byte) (html []byte, meta map[string]any, err error) {
	ctx := parser.NewContext()
	var buf bytes.Buffer

	err = p.md.Convert(source, &buf, parser.WithContext(ctx))
	if err != nil {
		return nil, nil, err
	}

	meta = make(map[string]any)
	if data := frontmatter.Get(ctx); data != nil {
		if err := data.Decode(&meta); err != nil {
			meta = make(map[string]any)
		}
	}

	return p.policy.SanitizeBytes(buf.Bytes()), meta, nil
}

// Sanitize cleans HTML produced elsewhere, like the CMS rich text renderer.
func (p *Parser) Sanitize(html string) string {
	return p.policy.Sanitize(html)
}
