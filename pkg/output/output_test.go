package output

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawscraper/pkg/models"
)

func newTestWriter(t *testing.T) *Writer {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	w, err := NewWriter(t.TempDir(), log)
	require.NoError(t, err)
	return w
}

func TestWriteCasesCSV(t *testing.T) {
	w := newTestWriter(t)
	path := w.TimestampedPath("cases", "csv")

	cases := []models.CaseRecord{
		{
			DocumentType: models.DocTypeCaseLaw,
			CaseName:     "John Doe v Republic",
			Citation:     "[2024] KEHC 100 (KLR)",
			Court:        "High Court",
			JudgmentDate: "2024-05-30",
			Judges:       []string{"FR Olel", "JM Mativo"},
			SourceURL:    "https://new.kenyalaw.org/judgments/1",
			ScrapedAt:    time.Date(2024, 5, 30, 12, 0, 0, 0, time.UTC),
		},
	}
	require.NoError(t, w.WriteCasesCSV(path, cases))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"case_name", "citation", "court", "judgment_date", "judges", "source_url", "scraped_at"}, rows[0])
	assert.Equal(t, "FR Olel; JM Mativo", rows[1][4])
	assert.Equal(t, "[2024] KEHC 100 (KLR)", rows[1][1])
}

func TestWriteJSONRoundTrip(t *testing.T) {
	w := newTestWriter(t)
	path := w.TimestampedPath("legislation", "json")

	year := 1930
	acts := []models.ActRecord{{
		DocumentType:  models.DocTypeLegislation,
		ActTitle:      "Penal Code",
		ChapterNumber: "63",
		YearEnacted:   &year,
		LegalCategory: "Criminal",
	}}
	require.NoError(t, w.WriteJSON(path, acts))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded []models.ActRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "Penal Code", decoded[0].ActTitle)
}

func TestSummarizeLegislation(t *testing.T) {
	year := 1930
	acts := []models.ActRecord{
		{ActTitle: "Penal Code", ChapterNumber: "63", YearEnacted: &year, LegalCategory: "Criminal", DownloadURL: "https://x/penal.pdf"},
		{ActTitle: "Evidence Act", ChapterNumber: "80", LegalCategory: "Criminal"},
		{ActTitle: "Widget Registration Act", LegalCategory: "Uncategorized"},
	}

	s := SummarizeLegislation("run-1", acts)
	assert.Equal(t, 3, s.TotalActs)
	assert.Equal(t, 2, s.Categories["Criminal"])
	assert.Equal(t, 1, s.Categories["Uncategorized"])
	assert.Equal(t, 1, s.Years["1930"])
	assert.Equal(t, 2, s.Years["Unknown"])
	assert.Equal(t, 2, s.ChaptersWithNumbers)
	assert.Equal(t, 1, s.WithPDFLinks)
}

func TestSummarizeAnalysis(t *testing.T) {
	withParties := models.NewAnalysisRecord("u1")
	withParties.Parties.Plaintiff = "John Doe"
	withParties.Decision = "Appeal allowed."
	withParties.LegalIssues = []string{"a", "b"}
	withParties.Metadata.TextLength = 1000

	empty := models.NewAnalysisRecord("u2")
	empty.Metadata.TextLength = 500

	s := SummarizeAnalysis("run-2", []*models.AnalysisRecord{withParties, empty})
	assert.Equal(t, 2, s.TotalCasesAnalyzed)
	assert.Equal(t, 750, s.AverageTextLength)
	assert.Equal(t, 2, s.TotalLegalIssues)
	assert.Equal(t, 1, s.CasesWithParties)
	assert.Equal(t, 1, s.CasesWithDecision)
}

func TestSummarizeAnalysisEmpty(t *testing.T) {
	s := SummarizeAnalysis("run-3", nil)
	assert.Equal(t, 0, s.TotalCasesAnalyzed)
	assert.Equal(t, 0, s.AverageTextLength)
}

func TestWriteMarkdown(t *testing.T) {
	w := newTestWriter(t)

	path, err := w.WriteMarkdown("judgments", "John Doe v Republic [2024]", "# Judgment\n\nHeld: allowed.")
	require.NoError(t, err)
	assert.Equal(t, "John_Doe_v_Republic_2024.md", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Judgment")
}
