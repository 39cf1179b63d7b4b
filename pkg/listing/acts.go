package listing

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"lawscraper/pkg/utils"
)

// ActRow is one legislation entry scraped from a listing row: the act link
// plus whatever chapter, year, and download data the row carries.
type ActRow struct {
	Title         string
	URL           string
	ChapterNumber string
	YearEnacted   *int
	PDFURL        string
}

var (
	chapterPattern = regexp.MustCompile(`(?i)\b(?:cap\.?|chapter)\s*(\d+[A-Z]?)`)
	yearPattern    = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
)

// Rows the acts listings use across the primary site and the mirror's
// chapter table.
const actRowSelector = "table.contenttable tr, div[class*=act], article[class*=legislation], li[class*=chapter], tr[class*=act]"

// ParseActRows extracts legislation rows from an acts listing page. Rows
// without a usable link are skipped; chapter and year are best-effort reads
// of the row text.
func (p *Parser) ParseActRows(pageHTML []byte, baseURL string) ([]ActRow, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(pageHTML))
	if err != nil {
		return nil, fmt.Errorf("%w: HTML acts page: %v", utils.ErrParsing, err)
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: base URL %q", utils.ErrMalformedURL, baseURL)
	}

	var rows []ActRow
	seen := make(map[string]bool)

	doc.Find(actRowSelector).Each(func(_ int, sel *goquery.Selection) {
		anchor := sel.Find("a[href]").First()
		href, ok := anchor.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref).String()
		if seen[resolved] {
			return
		}
		seen[resolved] = true

		row := ActRow{
			Title: utils.CollapseWhitespace(anchor.Text()),
			URL:   resolved,
		}
		rowText := utils.CollapseWhitespace(sel.Text())

		if m := chapterPattern.FindStringSubmatch(rowText); m != nil {
			row.ChapterNumber = m[1]
		}
		if m := yearPattern.FindString(rowText); m != "" {
			if year, err := strconv.Atoi(m); err == nil {
				row.YearEnacted = &year
			}
		}
		if pdf, ok := sel.Find(`a[href$=".pdf"]`).First().Attr("href"); ok {
			if pdfRef, err := url.Parse(strings.TrimSpace(pdf)); err == nil {
				row.PDFURL = base.ResolveReference(pdfRef).String()
			}
		}

		if row.Title != "" {
			rows = append(rows, row)
		}
	})

	if len(rows) == 0 {
		// Row shapes missed; fall back to the generic act listing strategies
		// and read chapter and year out of the link titles.
		for _, strategy := range LegislationStrategies {
			for _, item := range p.applyStrategy(doc, base, strategy) {
				if seen[item.URL] || item.Title == "" {
					continue
				}
				seen[item.URL] = true
				row := ActRow{Title: item.Title, URL: item.URL}
				if m := chapterPattern.FindStringSubmatch(item.Title); m != nil {
					row.ChapterNumber = m[1]
				}
				if m := yearPattern.FindString(item.Title); m != "" {
					if year, err := strconv.Atoi(m); err == nil {
						row.YearEnacted = &year
					}
				}
				rows = append(rows, row)
			}
			if len(rows) > 0 {
				break
			}
		}
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", utils.ErrListingUnparseable, baseURL)
	}
	return rows, nil
}
