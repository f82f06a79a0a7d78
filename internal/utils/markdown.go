package utils

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	contentRenderer = goldmark.New(
		goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)
	contentPolicy = bluemonday.UGCPolicy()
)

func init() {
	contentPolicy.AllowImages()
	contentPolicy.AddTargetBlankToFullyQualifiedLinks(true)
	contentPolicy.RequireNoReferrerOnLinks(true)
}

// RenderContent turns a post or comment body (plain text or light markdown)
// into sanitized HTML.
func RenderContent(source string) template.HTML {
	var buf bytes.Buffer
	if err := contentRenderer.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	sanitized := contentPolicy.SanitizeBytes(buf.Bytes())
	return EnhanceImages(string(sanitized))
}
