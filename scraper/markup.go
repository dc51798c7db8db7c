package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FlattenMarkup reduces a results page to newline-separated text, scoped to
// the listView container when the page has one. Script and style contents
// are dropped.
func FlattenMarkup(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("parse markup: %w", err)
	}

	root := doc.Find("div.listView")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var parts []string
	collectText(root, &parts)
	return strings.Join(parts, "\n"), nil
}

func collectText(s *goquery.Selection, parts *[]string) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		switch goquery.NodeName(c) {
		case "#text":
			if t := strings.TrimSpace(c.Text()); t != "" {
				*parts = append(*parts, t)
			}
		case "script", "style", "noscript":
		default:
			collectText(c, parts)
		}
	})
}
