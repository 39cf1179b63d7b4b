package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"lawscraper/pkg/listing"
	"lawscraper/pkg/models"
)

// RunCaseExtraction discovers up to count judgment pages (0 = all found),
// scrapes each one's document details panel into a shallow case record, and
// writes the complete records as CSV. Records missing citation or court are
// dropped, not emitted with holes.
func (s *Session) RunCaseExtraction(ctx context.Context, count int) error {
	targets, err := s.collectCaseTargets(ctx, count)
	if err != nil {
		return fmt.Errorf("collect judgment targets: %w", err)
	}
	targets = s.claimTargets(targets, models.DocTypeCaseLaw)
	if len(targets) == 0 {
		s.log.Info("No new judgments to extract")
		return nil
	}

	urls := make([]string, len(targets))
	index := make(map[string]int, len(targets))
	norms := make(map[string]string, len(targets))
	for i, t := range targets {
		urls[i] = t.URL
		index[t.URL] = i
		norms[t.URL] = t.Norm
	}

	records := make([]*models.CaseRecord, len(targets))
	report := s.coordinator.RunBatch(ctx, urls, func(ctx context.Context, target string) error {
		body, _, err := s.fetcher.FetchWithFallback(ctx, target)
		if err != nil {
			return err
		}
		details, err := listing.ExtractCaseDetails(body)
		if err != nil {
			return err
		}

		i := index[target]
		name := targets[i].Title
		if name == "" {
			name = details.Citation
		}
		records[i] = &models.CaseRecord{
			DocumentType: models.DocTypeCaseLaw,
			CaseName:     name,
			Citation:     details.Citation,
			Court:        details.Court,
			JudgmentDate: details.JudgmentDate,
			Judges:       details.Judges,
			SourceURL:    target,
			ScrapedAt:    time.Now().UTC(),
		}
		return nil
	})

	s.recordOutcomes(report.Results, norms, models.DocTypeCaseLaw)

	var complete []models.CaseRecord
	dropped := 0
	for _, rec := range records {
		if rec == nil {
			continue
		}
		if !rec.IsComplete() {
			dropped++
			continue
		}
		complete = append(complete, *rec)
	}
	if dropped > 0 {
		s.log.WithField("dropped", dropped).Warn("Dropped incomplete case records")
	}

	if len(complete) > 0 {
		path := s.writer.TimestampedPath("case_extraction", "csv")
		if err := s.writer.WriteCasesCSV(path, complete); err != nil {
			return err
		}
	}
	s.indexCases(ctx, complete)

	s.log.WithFields(logrus.Fields{
		"run_id":    report.RunID,
		"requested": report.Requested,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
		"emitted":   len(complete),
		"failures":  report.FailureCounts(),
	}).Info("Case extraction complete")
	return nil
}

func (s *Session) indexCases(ctx context.Context, cases []models.CaseRecord) {
	if !s.sink.Enabled() || len(cases) == 0 {
		return
	}
	if err := s.sink.EnsureIndex(ctx); err != nil {
		s.log.Warnf("Index setup failed, skipping indexing: %v", err)
		return
	}
	for _, rec := range cases {
		if err := s.sink.IndexDocument(ctx, rec, string(rec.DocumentType), rec.CaseName, rec.Citation); err != nil {
			s.log.WithField("citation", rec.Citation).Warnf("Indexing failed: %v", err)
		}
	}
}
