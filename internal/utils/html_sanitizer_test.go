package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty string", "", ""},
		{"plain text", "Hello World", "Hello World"},
		{"simple tag", "<p>Paragraph</p>", "Paragraph"},
		{"nested tags", "<div><p>Text</p></div>", "Text"},
		{"multiple tags", "<b>Bold</b> and <i>italic</i>", "Bold and italic"},
		{"script body dropped", `<script>alert('xss')</script>`, ""},
		{"comparison survives", "5 < 10 and 10 > 5", "5 < 10 and 10 > 5"},
		{"quotes survive", `It's "fine"`, `It's "fine"`},
		{"newlines kept", "line one<br>\nline two", "line one\nline two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHTML(tt.input))
		})
	}
}

func TestDecodeEntities(t *testing.T) {
	assert.Equal(t, "<p>Tom & Jerry</p>", DecodeEntities("&lt;p&gt;Tom &amp; Jerry&lt;/p&gt;"))
	assert.Equal(t, "&lt;b&gt;", DecodeEntities("&amp;lt;b&amp;gt;"), "only one level is decoded")
	assert.Equal(t, "plain", DecodeEntities("plain"))
}

func TestIsHTML(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", false},
		{"Hello World", false},
		{"5 < 10 and 10 > 5", false},
		{"<p>Hello</p>", true},
		{"Line 1<br>Line 2", true},
		{"<br/>", true},
		{`<a href="url">Link</a>`, true},
		{"<P>Paragraph</P>", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsHTML(tt.input), tt.input)
	}
}

func TestIsMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"empty string", "", false},
		{"plain text", "Hello World", false},
		{"html", "<p>**not markdown**</p>", false},
		{"bold", "This is **bold**", true},
		{"inline code", "Run `make build`", true},
		{"heading", "# Title\ntext", true},
		{"bullet list", "- Item 1\n- Item 2", true},
		{"numbered list", "1. First\n2. Second", true},
		{"link", "See [docs](https://example.com)", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMarkdown(tt.input))
		})
	}
}

func TestMarkdownToHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
	}{
		{"bold", "**bold text**", []string{"<strong>bold text</strong>"}},
		{"heading", "# Heading 1", []string{"<h1>Heading 1</h1>"}},
		{"code", "`inline code`", []string{"<code>inline code</code>"}},
		{"link", "[Link](https://example.com)", []string{`href="https://example.com"`, ">Link</a>"}},
		{"unordered list", "- Item 1\n- Item 2", []string{"<ul>", "<li>Item 1</li>", "<li>Item 2</li>"}},
		{"ordered list", "1. First\n2. Second", []string{"<ol>", "<li>First</li>"}},
		{"paragraph", "This is a paragraph.", []string{"<p>This is a paragraph.</p>"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MarkdownToHTML(tt.input)
			for _, want := range tt.contains {
				assert.Contains(t, result, want)
			}
		})
	}
}

func BenchmarkStripHTML(b *testing.B) {
	input := `<div class="container"><h1>Title</h1><p>Paragraph with <b>bold</b> and <a href="https://example.com">link</a></p></div>`

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		StripHTML(input)
	}
}
