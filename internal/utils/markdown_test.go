package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "Broken streetlight", SanitizeText("  <b>Broken</b> streetlight<script>alert(1)</script> "))
}

func TestRenderMarkdown(t *testing.T) {
	out := string(RenderMarkdown("**Road closed** near the market\n\n<script>x()</script>"))
	assert.Contains(t, out, "<strong>Road closed</strong>")
	assert.NotContains(t, out, "<script>")
}

func TestRenderMarkdownEmbedsYouTube(t *testing.T) {
	out := string(RenderMarkdown("https://youtu.be/abc123"))
	assert.Contains(t, out, "https://www.youtube.com/embed/abc123")
}

func TestRenderMarkdownLazyImages(t *testing.T) {
	out := string(RenderMarkdown("![pothole](https://example.org/p.png)"))
	assert.Contains(t, out, `loading="lazy"`)
}

func TestSanitizeTextKeepsPlainEntities(t *testing.T) {
	assert.Equal(t, "Tom & Jerry's \"cafe\"", SanitizeText(`Tom & Jerry's "cafe"`))
}

func TestSanitizeTextStripsEncodedTags(t *testing.T) {
	assert.Equal(t, "Hi", SanitizeText("&lt;script&gt;alert(1)&lt;/script&gt;Hi"))
	assert.Equal(t, "bold", SanitizeText("&lt;b&gt;bold&lt;/b&gt;"))
	assert.NotContains(t, SanitizeText("&amp;lt;img src=x onerror=alert(1)&amp;gt;x"), "<")
	assert.Equal(t, "a < b", SanitizeText("a < b"))
}
