package listing

import (
	"bytes"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"lawscraper/pkg/utils"
)

// Item is one document reference extracted from a listing page.
type Item struct {
	Title string
	URL   string
}

// Parser extracts document references from listing pages.
type Parser struct {
	log *logrus.Entry
}

// NewParser creates a listing Parser.
func NewParser(log *logrus.Logger) *Parser {
	return &Parser{log: log.WithField("component", "listing")}
}

// ParseItems tries each strategy in order against the page and returns the
// items from the first strategy that matches, along with that strategy's
// name. Relative hrefs are resolved against baseURL and duplicate URLs are
// dropped. When no strategy yields items the page is unparseable.
func (p *Parser) ParseItems(pageHTML []byte, baseURL string, strategies []Strategy) ([]Item, string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(pageHTML))
	if err != nil {
		return nil, "", fmt.Errorf("%w: HTML listing page: %v", utils.ErrParsing, err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, "", fmt.Errorf("%w: base URL %q", utils.ErrMalformedURL, baseURL)
	}

	for _, strategy := range strategies {
		items := p.applyStrategy(doc, base, strategy)
		if len(items) > 0 {
			p.log.WithFields(logrus.Fields{
				"strategy": strategy.Name,
				"items":    len(items),
				"base_url": baseURL,
			}).Debug("Listing strategy matched")
			return items, strategy.Name, nil
		}
	}

	return nil, "", fmt.Errorf("%w: %s", utils.ErrListingUnparseable, baseURL)
}

func (p *Parser) applyStrategy(doc *goquery.Document, base *url.URL, strategy Strategy) []Item {
	var items []Item
	seen := make(map[string]bool)

	doc.Find(strategy.ItemSelector).Each(func(_ int, sel *goquery.Selection) {
		anchor := sel
		if strategy.LinkSelector != "" {
			anchor = sel.Find(strategy.LinkSelector).First()
		}

		href, ok := anchor.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref).String()
		if seen[resolved] {
			return
		}

		title := utils.CollapseWhitespace(anchor.Text())
		if title == "" {
			title = utils.CollapseWhitespace(sel.Text())
		}

		seen[resolved] = true
		items = append(items, Item{Title: title, URL: resolved})
	})

	return items
}

// PageURL returns the URL for the given 1-based page of a listing. Page 1 is
// the listing itself; later pages add the page query parameter.
func PageURL(listingURL string, page int) string {
	if page <= 1 {
		return listingURL
	}
	u, err := url.Parse(listingURL)
	if err != nil {
		return listingURL
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}
