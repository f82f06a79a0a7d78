package utils

import (
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// EnhanceImages adds lazy loading and a no-referrer policy to every image
// in an already sanitized HTML fragment.
func EnhanceImages(htmlStr string) template.HTML {
	if !strings.Contains(htmlStr, "<img") {
		return template.HTML(htmlStr)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return template.HTML(htmlStr)
	}

	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		s.SetAttr("referrerpolicy", "no-referrer")
		s.SetAttr("loading", "lazy")
	})

	// goquery wraps fragments in html/body; return only the body content
	out, err := doc.Find("body").Html()
	if err != nil || out == "" {
		return template.HTML(htmlStr)
	}
	return template.HTML(out)
}
