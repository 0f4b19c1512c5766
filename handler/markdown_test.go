package handler

import (
	"strings"
	"testing"
)

func TestRenderMarkdownHeading(t *testing.T) {
	out := renderMarkdown("# Hello")
	if !strings.Contains(out, "<h1") || !strings.Contains(out, "Hello") {
		t.Fatalf("expected an h1 wrapping Hello, got %q", out)
	}
}

func TestRenderMarkdownEmphasis(t *testing.T) {
	out := renderMarkdown("**bold**")
	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Fatalf("expected strong element, got %q", out)
	}
	if !strings.Contains(out, "<p>") {
		t.Fatalf("expected paragraph wrapper, got %q", out)
	}
}

func TestRenderMarkdownDeterministic(t *testing.T) {
	const source = "# Title\n\nSome *text* with a [link](https://example.com).\n"
	first := renderMarkdown(source)
	for i := 0; i < 5; i++ {
		if got := renderMarkdown(source); got != first {
			t.Fatalf("render %d differed:\n%q\nvs\n%q", i, got, first)
		}
	}
}

func TestRenderMarkdownStripsScript(t *testing.T) {
	out := renderMarkdown("hello <script>alert(1)</script> world")
	if strings.Contains(out, "<script") {
		t.Fatalf("script tag survived sanitization: %q", out)
	}
}
