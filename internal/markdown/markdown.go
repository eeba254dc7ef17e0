// Package markdown renders post and reply bodies to sanitized HTML.
package markdown

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New builds a deliberately narrow renderer: emphasis, code spans, fenced
// code and strikethrough. Forum bodies are prose, not documents; headings,
// raw HTML and images stay plain text.
func New() *Renderer {
	p := parser.NewParser(
		parser.WithBlockParsers(
			util.Prioritized(parser.NewFencedCodeBlockParser(), 700),
			util.Prioritized(parser.NewParagraphParser(), 1000),
		),
		parser.WithInlineParsers(
			util.Prioritized(parser.NewCodeSpanParser(), 100),
			util.Prioritized(parser.NewEmphasisParser(), 500),
		),
	)

	md := goldmark.New(
		goldmark.WithParser(p),
		goldmark.WithRendererOptions(html.WithUnsafe()),
		goldmark.WithExtensions(extension.Strikethrough),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowRelativeURLs(true)

	return &Renderer{md: md, policy: policy}
}

// Render converts markdown to HTML and strips everything the policy rejects.
func (r *Renderer) Render(text string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return r.policy.Sanitize(strings.TrimSpace(buf.String())), nil
}

// Plain strips any markup for contexts that render raw text (snippets,
// notification lines).
func (r *Renderer) Plain(text string) string {
	return bluemonday.StrictPolicy().Sanitize(text)
}
