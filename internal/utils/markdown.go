package utils

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	mdhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	mdParser = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			mdhtml.WithHardWraps(),
			mdhtml.WithXHTML(),
		),
	)
	policy      = bluemonday.UGCPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

func init() {
	policy.AllowImages()
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.RequireNoReferrerOnLinks(true)
}

// RenderMarkdown 描述渲染为安全 HTML，用于详情页
func RenderMarkdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	sanitized := policy.SanitizeBytes(buf.Bytes())
	return EnhanceHTMLContent(string(sanitized))
}

// 实体解码后可能重新出现标签，反复清理直到稳定
const maxSanitizePasses = 5

// SanitizeText 去除所有 HTML 标签，保留纯文本，入库前处理用户输入
func SanitizeText(s string) string {
	for i := 0; i < maxSanitizePasses; i++ {
		out := html.UnescapeString(plainPolicy.Sanitize(s))
		if out == s {
			break
		}
		s = out
	}
	return strings.TrimSpace(s)
}
