package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"lawscraper/pkg/models"
	"lawscraper/pkg/utils"
)

// Writer persists scraped records under the output directory. All writes go
// through the coordinator, never concurrent workers, so no locking here.
type Writer struct {
	dir string
	log *logrus.Entry
}

// NewWriter creates a Writer rooted at dir, creating it if needed.
func NewWriter(dir string, log *logrus.Logger) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create output directory %s: %v", utils.ErrFilesystem, dir, err)
	}
	return &Writer{dir: dir, log: log.WithField("component", "output")}, nil
}

// TimestampedPath returns dir/<prefix>_<YYYYMMDD_HHMMSS>.<ext>.
func (w *Writer) TimestampedPath(prefix, ext string) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s_%s.%s", prefix, time.Now().Format("20060102_150405"), ext))
}

// Case CSV columns, in header order.
var caseCSVHeader = []string{"case_name", "citation", "court", "judgment_date", "judges", "source_url", "scraped_at"}

// WriteCasesCSV writes case records as CSV with a fixed header. Judges are
// joined with "; " inside a single cell.
func (w *Writer) WriteCasesCSV(path string, cases []models.CaseRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", utils.ErrFilesystem, path, err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(caseCSVHeader); err != nil {
		return fmt.Errorf("%w: write header: %v", utils.ErrFilesystem, err)
	}
	for _, c := range cases {
		row := []string{
			c.CaseName,
			c.Citation,
			c.Court,
			c.JudgmentDate,
			strings.Join(c.Judges, "; "),
			c.SourceURL,
			c.ScrapedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("%w: write row: %v", utils.ErrFilesystem, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%w: flush %s: %v", utils.ErrFilesystem, path, err)
	}

	w.log.WithFields(logrus.Fields{"path": path, "records": len(cases)}).Info("Wrote cases CSV")
	return nil
}

// WriteJSON marshals v indented into path.
func (w *Writer) WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal for %s: %v", utils.ErrParsing, path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", utils.ErrFilesystem, path, err)
	}
	w.log.WithField("path", path).Info("Wrote JSON")
	return nil
}

// LegislationSummary aggregates an acts run for the summary file.
type LegislationSummary struct {
	RunID               string         `json:"run_id"`
	TotalActs           int            `json:"total_acts"`
	Categories          map[string]int `json:"categories"`
	Years               map[string]int `json:"years"`
	ChaptersWithNumbers int            `json:"chapters_with_numbers"`
	WithPDFLinks        int            `json:"with_pdf_links"`
	ScrapedAt           time.Time      `json:"scraped_at"`
}

// SummarizeLegislation computes the acts summary object.
func SummarizeLegislation(runID string, acts []models.ActRecord) LegislationSummary {
	summary := LegislationSummary{
		RunID:      runID,
		TotalActs:  len(acts),
		Categories: make(map[string]int),
		Years:      make(map[string]int),
		ScrapedAt:  time.Now().UTC(),
	}
	for _, act := range acts {
		summary.Categories[act.LegalCategory]++

		year := "Unknown"
		if act.YearEnacted != nil {
			year = fmt.Sprintf("%d", *act.YearEnacted)
		}
		summary.Years[year]++

		if act.ChapterNumber != "" {
			summary.ChaptersWithNumbers++
		}
		if act.DownloadURL != "" {
			summary.WithPDFLinks++
		}
	}
	return summary
}

// AnalysisSummary aggregates an analysis run for the summary file.
type AnalysisSummary struct {
	RunID                string    `json:"run_id"`
	TotalCasesAnalyzed   int       `json:"total_cases_analyzed"`
	AverageTextLength    int       `json:"average_text_length"`
	TotalLegalIssues     int       `json:"total_legal_issues"`
	TotalPrecedentsCited int       `json:"total_precedents_cited"`
	CasesWithParties     int       `json:"cases_with_parties"`
	CasesWithDecision    int       `json:"cases_with_decision"`
	ScrapedAt            time.Time `json:"scraped_at"`
}

// SummarizeAnalysis computes the analysis summary object.
func SummarizeAnalysis(runID string, records []*models.AnalysisRecord) AnalysisSummary {
	summary := AnalysisSummary{
		RunID:              runID,
		TotalCasesAnalyzed: len(records),
		ScrapedAt:          time.Now().UTC(),
	}
	totalLength := 0
	for _, rec := range records {
		totalLength += rec.Metadata.TextLength
		summary.TotalLegalIssues += len(rec.LegalIssues)
		summary.TotalPrecedentsCited += len(rec.PrecedentsCited)
		if rec.Parties.Plaintiff != "" {
			summary.CasesWithParties++
		}
		if rec.Decision != "" {
			summary.CasesWithDecision++
		}
	}
	if len(records) > 0 {
		summary.AverageTextLength = totalLength / len(records)
	}
	return summary
}

// WriteMarkdown writes an archived judgment markdown document named from the
// record's key fields.
func (w *Writer) WriteMarkdown(subdir, name, markdown string) (string, error) {
	dir := filepath.Join(w.dir, subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("%w: create %s: %v", utils.ErrFilesystem, dir, err)
	}
	path := filepath.Join(dir, utils.SanitizeFilename(name)+".md")
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		return "", fmt.Errorf("%w: write %s: %v", utils.ErrFilesystem, path, err)
	}
	return path, nil
}
