package pipeline

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"lawscraper/pkg/extract"
	"lawscraper/pkg/listing"
	"lawscraper/pkg/models"
	"lawscraper/pkg/output"
)

// RunCaseAnalysis fetches judgment pages and runs full-text extraction over
// each one: parties, issues, decision, principles, precedents, judges, and
// advocates, merged with the page's document details panel. With no URLs
// given, up to count targets (0 = all found) come from the same discovery as
// case extraction. Results are written as JSON alongside a run summary.
func (s *Session) RunCaseAnalysis(ctx context.Context, urls []string, count int) error {
	var targets []caseTarget
	if len(urls) > 0 {
		targets = truncateTargets(s.targetsFromURLs(urls), count)
	} else {
		var err error
		targets, err = s.collectCaseTargets(ctx, count)
		if err != nil {
			return fmt.Errorf("collect judgment targets: %w", err)
		}
	}
	targets = s.claimTargets(targets, models.DocTypeCaseAnalysis)
	if len(targets) == 0 {
		s.log.Info("No new judgments to analyze")
		return nil
	}

	batch := make([]string, len(targets))
	index := make(map[string]int, len(targets))
	norms := make(map[string]string, len(targets))
	for i, t := range targets {
		batch[i] = t.URL
		index[t.URL] = i
		norms[t.URL] = t.Norm
	}

	records := make([]*models.AnalysisRecord, len(targets))
	report := s.coordinator.RunBatch(ctx, batch, func(ctx context.Context, target string) error {
		body, _, err := s.fetcher.FetchWithFallback(ctx, target)
		if err != nil {
			return err
		}
		fullText, err := extract.ExtractFullText(body)
		if err != nil {
			return err
		}

		rec := s.extractor.Extract(target, fullText)
		if details, derr := listing.ExtractCaseDetails(body); derr == nil {
			mergeDetails(rec, details)
		}
		if s.cfg.ArchiveJudgments {
			s.archiveJudgment(rec, body)
		}

		records[index[target]] = rec
		return nil
	})

	s.recordOutcomes(report.Results, norms, models.DocTypeCaseAnalysis)

	analyzed := make([]*models.AnalysisRecord, 0, len(records))
	for _, rec := range records {
		if rec != nil {
			analyzed = append(analyzed, rec)
		}
	}

	if len(analyzed) > 0 {
		if err := s.writer.WriteJSON(s.writer.TimestampedPath("case_analysis", "json"), analyzed); err != nil {
			return err
		}
	}
	summary := output.SummarizeAnalysis(report.RunID, analyzed)
	if err := s.writer.WriteJSON(s.writer.TimestampedPath("case_analysis_summary", "json"), summary); err != nil {
		return err
	}
	s.indexAnalyses(ctx, analyzed)

	s.log.WithFields(logrus.Fields{
		"run_id":    report.RunID,
		"requested": report.Requested,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
		"failures":  report.FailureCounts(),
	}).Info("Case analysis complete")
	return nil
}

// mergeDetails overlays the document details panel onto the text-derived
// record. The panel is authoritative for citation and court metadata; judges
// from the text win when both sources found them.
func mergeDetails(rec *models.AnalysisRecord, d listing.CaseDetails) {
	rec.Citation = d.Citation
	rec.Court = d.Court
	rec.CourtStation = d.CourtStation
	rec.CaseNumber = d.CaseNumber
	rec.JudgmentDate = d.JudgmentDate
	rec.CaseAction = d.CaseAction
	if len(rec.Judges) == 0 && len(d.Judges) > 0 {
		rec.Judges = d.Judges
	}
}

// archiveJudgment converts the judgment page to markdown and saves it under
// the output directory. Archive failures never fail the analysis itself.
func (s *Session) archiveJudgment(rec *models.AnalysisRecord, pageHTML []byte) {
	s.convertMu.Lock()
	markdown, err := s.converter.ConvertString(string(pageHTML))
	s.convertMu.Unlock()
	if err != nil {
		s.log.WithField("url", rec.SourceURL).Warnf("Markdown conversion failed: %v", err)
		return
	}

	name := rec.Citation
	if name == "" {
		name = rec.SourceURL
	}
	path, err := s.writer.WriteMarkdown("judgments", name, markdown)
	if err != nil {
		s.log.WithField("url", rec.SourceURL).Warnf("Archive write failed: %v", err)
		return
	}
	s.log.WithField("path", path).Debug("Archived judgment")
}

func (s *Session) indexAnalyses(ctx context.Context, records []*models.AnalysisRecord) {
	if !s.sink.Enabled() || len(records) == 0 {
		return
	}
	if err := s.sink.EnsureIndex(ctx); err != nil {
		s.log.Warnf("Index setup failed, skipping indexing: %v", err)
		return
	}
	for _, rec := range records {
		if err := s.sink.IndexDocument(ctx, rec, string(rec.DocumentType), rec.SourceURL); err != nil {
			s.log.WithField("url", rec.SourceURL).Warnf("Indexing failed: %v", err)
		}
	}
}
