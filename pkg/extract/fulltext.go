package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"lawscraper/pkg/utils"
)

// Content containers tried in order; the first that matches wins. The body
// fallback keeps badly-templated pages extractable.
var contentSelectors = []string{
	"div[class*=judgment]",
	"div[class*=content]",
	"div[class*=main]",
	"article",
	"main",
	"div[id*=content]",
	"div[id*=main]",
	"body",
}

// ExtractFullText pulls the judgment text out of a document page, preserving
// paragraph boundaries as blank lines. Script, style, and chrome elements are
// removed first.
func ExtractFullText(pageHTML []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(pageHTML))
	if err != nil {
		return "", fmt.Errorf("%w: HTML judgment page: %v", utils.ErrParsing, err)
	}

	doc.Find("script, style, noscript, nav, header, footer, form").Remove()

	var content *goquery.Selection
	for _, selector := range contentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() > 0 && strings.TrimSpace(sel.Text()) != "" {
			content = sel
			break
		}
	}
	if content == nil {
		return "", fmt.Errorf("%w: no content container", utils.ErrEmptyDocument)
	}

	var sb strings.Builder
	blocks := content.Find("p, h1, h2, h3, h4, h5, h6, li, blockquote, dd, dt")
	if blocks.Length() > 0 {
		blocks.Each(func(_ int, sel *goquery.Selection) {
			text := utils.CollapseWhitespace(sel.Text())
			if text != "" {
				sb.WriteString(text)
				sb.WriteString("\n\n")
			}
		})
	} else {
		sb.WriteString(content.Text())
	}

	text := Normalize(sb.String())
	if text == "" {
		return "", fmt.Errorf("%w: page yielded no text", utils.ErrEmptyDocument)
	}
	return text, nil
}
