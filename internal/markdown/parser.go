package markdown

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// ExcerptLength is the number of characters kept by Excerpt.
const ExcerptLength = 150

type Parser struct {
	md goldmark.Markdown
}

// NewParser renders GitHub-flavoured markdown. Raw HTML in post bodies is
// escaped.
func NewParser() *Parser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.Typographer,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithHardWraps(),
			goldmarkhtml.WithXHTML(),
		),
	)

	return &Parser{
		md: md,
	}
}

func (p *Parser) Render(source string) (string, error) {
	var buf bytes.Buffer
	err := p.md.Convert([]byte(source), &buf)
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PlainText returns the visible text of source with markup removed and
// whitespace collapsed.
func (p *Parser) PlainText(source string) string {
	src := []byte(source)
	doc := p.md.Parser().Parse(text.NewReader(src))

	var buf bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				buf.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			buf.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(node.Value)
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				buf.Write(line.Value(src))
			}
			return ast.WalkSkipChildren, nil
		case *ast.Image:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return strings.Join(strings.Fields(buf.String()), " ")
}

// Excerpt returns the first ExcerptLength characters of the plain text of
// source, followed by "..." when it was cut.
func (p *Parser) Excerpt(source string) string {
	plain := p.PlainText(source)
	if utf8.RuneCountInString(plain) <= ExcerptLength {
		return plain
	}
	runes := []rune(plain)
	return strings.TrimSpace(string(runes[:ExcerptLength])) + "..."
}
