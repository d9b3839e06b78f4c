package markdown

import (
	"bytes"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
)

// RendererConfig controls link rewriting and code highlighting output.
type RendererConfig struct {
	// BaseURL prefixes rewritten wikilink anchors. Empty is valid and yields
	// site-relative links.
	BaseURL string
}

// Renderer converts Markdown body text into HTML. The goldmark engine is
// stateless, so a single Renderer is safe for concurrent use.
type Renderer struct {
	baseURL string
	engine  goldmark.Markdown
}

// NewRenderer builds a renderer with tables, definition lists, typographic
// quotes, auto heading anchors, attribute lists, and language-aware code
// highlighting enabled. Raw HTML passes through unescaped, which the
// wikilink pre-pass depends on.
func NewRenderer(cfg RendererConfig) *Renderer {
	engine := goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			extension.DefinitionList,
			extension.Typographer,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithAttribute(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)

	return &Renderer{
		baseURL: cfg.BaseURL,
		engine:  engine,
	}
}

// Render rewrites wikilinks and converts the result to HTML. goldmark treats
// malformed Markdown leniently, so errors here indicate writer failures
// rather than bad input.
func (r *Renderer) Render(body []byte) ([]byte, error) {
	rewritten := RewriteWikiLinks(string(body), r.baseURL)

	var buf bytes.Buffer
	if err := r.engine.Convert([]byte(rewritten), &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), nil
}
