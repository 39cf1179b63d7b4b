package extract

import (
	"time"

	"github.com/sirupsen/logrus"

	"lawscraper/pkg/models"
)

// Extractor turns free-form judgment text into a structured AnalysisRecord
// through a pipeline of independent best-effort extractors. Each layer is
// failure-isolated: a miss degrades its own field to the empty terminal
// state and never blocks the others.
type Extractor struct {
	log *logrus.Entry
}

// NewExtractor creates an Extractor.
func NewExtractor(log *logrus.Logger) *Extractor {
	return &Extractor{log: log.WithField("component", "extractor")}
}

// Extract analyzes fullText and returns a fully-shaped record. Size metadata
// is computed unconditionally, whether or not any extractor matches.
func (e *Extractor) Extract(sourceURL, fullText string) *models.AnalysisRecord {
	rec := models.NewAnalysisRecord(sourceURL)

	text := Normalize(fullText)
	rec.FullText = text

	paragraphs := Paragraphs(text)
	rec.Metadata = models.AnalysisMetadata{
		TextLength:     len(text),
		WordCount:      WordCount(text),
		ParagraphCount: len(paragraphs),
		ScrapedAt:      time.Now().UTC(),
	}

	rec.Parties = ExtractParties(paragraphs)
	rec.CaseSummary = ExtractSummary(paragraphs)
	rec.LegalIssues = ExtractIssues(paragraphs)
	rec.Decision = ExtractDecision(paragraphs)
	rec.LegalPrinciples = ExtractPrinciples(paragraphs)
	rec.PrecedentsCited = ExtractPrecedents(text)
	rec.Judges = ExtractJudges(paragraphs)
	rec.Advocates = ExtractAdvocates(paragraphs)

	if populated := rec.PopulatedFieldCount(); populated == 0 {
		e.log.WithField("source_url", sourceURL).Warn("No extractor matched; record carries metadata only")
	} else {
		e.log.WithFields(logrus.Fields{
			"source_url":       sourceURL,
			"populated_fields": populated,
			"word_count":       rec.Metadata.WordCount,
		}).Debug("Extraction complete")
	}

	return rec
}
