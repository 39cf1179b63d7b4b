package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"lawscraper/pkg/listing"
	"lawscraper/pkg/models"
	"lawscraper/pkg/output"
)

// RunLegislation paginates the acts listing until count acts are collected
// (0 = all found), categorizes each act by title, and writes the records
// plus a run summary as JSON. Acts are scraped from the listing rows
// themselves; there is no per-act page fetch.
func (s *Session) RunLegislation(ctx context.Context, count int) error {
	listURL := s.primaryURL(s.cfg.Site.LegislationPath)

	var rows []listing.ActRow
	seen := make(map[string]bool)

	for page := 1; page <= s.cfg.MaxListingPages && (count <= 0 || len(rows) < count); page++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		pageURL := listing.PageURL(listURL, page)
		body, finalURL, err := s.fetcher.FetchWithFallback(ctx, pageURL)
		if err != nil {
			if page == 1 {
				return fmt.Errorf("fetch legislation listing: %w", err)
			}
			s.log.WithField("page", page).Warnf("Acts page fetch failed, stopping pagination: %v", err)
			break
		}

		pageRows, err := s.parser.ParseActRows(body, finalURL)
		if err != nil {
			if page == 1 {
				return err
			}
			// Past the last page
			break
		}

		added := 0
		for _, row := range pageRows {
			if seen[row.URL] {
				continue
			}
			seen[row.URL] = true
			rows = append(rows, row)
			added++
		}
		s.log.WithFields(logrus.Fields{"page": page, "new_acts": added}).Debug("Parsed acts page")
		if added == 0 {
			break
		}
	}

	if count > 0 && len(rows) > count {
		rows = rows[:count]
	}

	now := time.Now().UTC()
	acts := make([]models.ActRecord, 0, len(rows))
	for _, row := range rows {
		acts = append(acts, models.ActRecord{
			DocumentType:  models.DocTypeLegislation,
			ActTitle:      row.Title,
			ChapterNumber: row.ChapterNumber,
			YearEnacted:   row.YearEnacted,
			DownloadURL:   row.PDFURL,
			LegalCategory: s.categorizer.Categorize(row.Title),
			SourceURL:     row.URL,
			ScrapedAt:     now,
		})
	}

	runID := uuid.NewString()
	if err := s.writer.WriteJSON(s.writer.TimestampedPath("legislation", "json"), acts); err != nil {
		return err
	}
	summary := output.SummarizeLegislation(runID, acts)
	if err := s.writer.WriteJSON(s.writer.TimestampedPath("legislation_summary", "json"), summary); err != nil {
		return err
	}
	s.indexActs(ctx, acts)

	s.log.WithFields(logrus.Fields{
		"run_id":     runID,
		"acts":       len(acts),
		"categories": len(summary.Categories),
	}).Info("Legislation scrape complete")
	return nil
}

func (s *Session) indexActs(ctx context.Context, acts []models.ActRecord) {
	if !s.sink.Enabled() || len(acts) == 0 {
		return
	}
	if err := s.sink.EnsureIndex(ctx); err != nil {
		s.log.Warnf("Index setup failed, skipping indexing: %v", err)
		return
	}
	for _, act := range acts {
		if err := s.sink.IndexDocument(ctx, act, string(act.DocumentType), act.ActTitle, act.ChapterNumber); err != nil {
			s.log.WithField("act", act.ActTitle).Warnf("Indexing failed: %v", err)
		}
	}
}
