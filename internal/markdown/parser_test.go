package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	p := NewParser()

	html, err := p.Render("# Đà Lạt\n\nMột **chuyến đi** đẹp.")
	require.NoError(t, err)
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<strong>chuyến đi</strong>")
}

func TestRenderEscapesRawHTML(t *testing.T) {
	html, err := NewParser().Render("<script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestPlainText(t *testing.T) {
	p := NewParser()

	got := p.PlainText("# Title\n\nSome *emphasis* and a [link](https://x.io).\n\n![alt](/a.png)\n\n- one\n- two")
	assert.Equal(t, "Title Some emphasis and a link. one two", got)
}

func TestExcerpt(t *testing.T) {
	p := NewParser()

	assert.Equal(t, "short text", p.Excerpt("short **text**"))

	long := strings.Repeat("ẩm thực ", 40)
	excerpt := p.Excerpt(long)
	assert.True(t, strings.HasSuffix(excerpt, "..."))
	assert.LessOrEqual(t, len([]rune(excerpt)), ExcerptLength+3)
}
