// Package utils holds text helpers for ticket transcripts and KB content.
package utils

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
)

var stripPolicy = bluemonday.StrictPolicy()

// StripHTML removes every tag and returns plain text with entities decoded.
// Unlike plain tag stripping, the text inside <script> and <style> elements is
// dropped along with the tags.
func StripHTML(input string) string {
	if input == "" {
		return ""
	}
	return html.UnescapeString(stripPolicy.Sanitize(input))
}

// DecodeEntities decodes one level of HTML entities, so "&amp;lt;p&amp;gt;"
// becomes "&lt;p&gt;" and "&lt;p&gt;" becomes "<p>".
func DecodeEntities(input string) string {
	return html.UnescapeString(input)
}

var htmlTag = regexp.MustCompile(`(?i)<(p|div|span|b|i|strong|em|br|h[1-6]|ul|ol|li|table|tr|td|th|a|blockquote|img|pre|code)(\s[^>]*)?/?>`)

// IsHTML reports whether input contains common HTML tags.
func IsHTML(input string) bool {
	return htmlTag.MatchString(input)
}

var markdownPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\*\*[^*\n]+\*\*`),
	regexp.MustCompile(`(^|\s)\*[^*\s][^*\n]*\*`),
	regexp.MustCompile("`[^`\n]+`"),
	regexp.MustCompile(`(?m)^#{1,6}\s+\S`),
	regexp.MustCompile(`(?m)^\s*[-*]\s+\S`),
	regexp.MustCompile(`(?m)^\s*\d+\.\s+\S`),
	regexp.MustCompile(`!?\[[^\]\n]+\]\([^)\n]+\)`),
}

// IsMarkdown reports whether input looks like Markdown rather than HTML
// or plain text.
func IsMarkdown(input string) bool {
	if strings.TrimSpace(input) == "" || IsHTML(input) {
		return false
	}
	for _, re := range markdownPatterns {
		if re.MatchString(input) {
			return true
		}
	}
	return false
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// MarkdownToHTML renders Markdown to HTML. Raw HTML in the source is
// omitted. On a render error the input is returned unchanged.
func MarkdownToHTML(input string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(input), &buf); err != nil {
		return input
	}
	return buf.String()
}
