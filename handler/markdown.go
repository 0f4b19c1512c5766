package handler

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// Policies are safe for concurrent use once constructed.
var sanitizerUGC = bluemonday.UGCPolicy()

func mdToHTML(md string) []byte {
	// create markdown parser with extensions
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(md))

	// create HTML renderer with extensions
	htmlFlags := html.CommonFlags | html.HrefTargetBlank
	opts := html.RendererOptions{Flags: htmlFlags}
	renderer := html.NewRenderer(opts)

	return markdown.Render(doc, renderer)
}

// renderMarkdown converts raw markdown into HTML ready for embedding. The
// author is trusted, but rendered output still goes through the UGC policy so
// a pasted script tag cannot end up in a page.
func renderMarkdown(source string) string {
	maybeUnsafeHTML := mdToHTML(source)
	return string(sanitizerUGC.SanitizeBytes(maybeUnsafeHTML))
}
