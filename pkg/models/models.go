package models

import "time"

// DocumentType discriminates the three record shapes sharing one search index.
type DocumentType string

const (
	DocTypeCaseLaw      DocumentType = "case_law"
	DocTypeLegislation  DocumentType = "legislation"
	DocTypeCaseAnalysis DocumentType = "case_analysis"
)

// CaseRecord holds the shallow metadata extracted for a single judgment.
// Citation and Court must be non-empty for the record to be emitted; the
// pipeline drops incomplete records rather than writing nulls.
type CaseRecord struct {
	DocumentType DocumentType `json:"document_type"`
	CaseName     string       `json:"case_name"`
	Citation     string       `json:"citation"`
	Court        string       `json:"court"`
	JudgmentDate string       `json:"judgment_date"` // ISO 8601 (YYYY-MM-DD) when parseable
	Judges       []string     `json:"judges"`
	SourceURL    string       `json:"source_url"`
	ScrapedAt    time.Time    `json:"scraped_at"`
}

// IsComplete reports whether the record satisfies the emission invariant.
func (c CaseRecord) IsComplete() bool {
	return c.Citation != "" && c.Court != ""
}

// ActRecord holds the metadata for a single piece of legislation.
// LegalCategory is always assigned; the categorizer falls back to
// "Uncategorized" rather than leaving it empty.
type ActRecord struct {
	DocumentType  DocumentType `json:"document_type"`
	ActTitle      string       `json:"act_title"`
	ChapterNumber string       `json:"chapter_number,omitempty"`
	YearEnacted   *int         `json:"year_enacted,omitempty"`
	DownloadURL   string       `json:"download_url,omitempty"`
	LegalCategory string       `json:"legal_category"`
	SourceURL     string       `json:"source_url"`
	ScrapedAt     time.Time    `json:"scraped_at"`
}

// Parties holds the litigants identified in a judgment text.
type Parties struct {
	Plaintiff    string   `json:"plaintiff"`
	Defendant    string   `json:"defendant"`
	OtherParties []string `json:"other_parties"`
}

// AnalysisMetadata carries size statistics computed unconditionally for every
// analyzed judgment, whether or not any extractor matched.
type AnalysisMetadata struct {
	TextLength     int       `json:"text_length"`
	WordCount      int       `json:"word_count"`
	ParagraphCount int       `json:"paragraph_count"`
	ScrapedAt      time.Time `json:"scraped_at"`
}

// AnalysisRecord is the structured result of full-text judgment analysis.
// Every container field is initialized, never nil: a missed extraction
// degrades to an empty slice or string so the JSON shape is stable for
// downstream consumers.
type AnalysisRecord struct {
	DocumentType    DocumentType     `json:"document_type"`
	SourceURL       string           `json:"source_url"`
	FullText        string           `json:"full_text"`
	Parties         Parties          `json:"parties"`
	CaseSummary     string           `json:"case_summary"`
	LegalIssues     []string         `json:"legal_issues"`
	Decision        string           `json:"decision"`
	LegalPrinciples []string         `json:"legal_principles"`
	PrecedentsCited []string         `json:"precedents_cited"`
	Advocates       []string         `json:"advocates"`
	Judges          []string         `json:"judges"`
	Citation        string           `json:"citation,omitempty"`
	Court           string           `json:"court,omitempty"`
	CourtStation    string           `json:"court_station,omitempty"`
	CaseNumber      string           `json:"case_number,omitempty"`
	JudgmentDate    string           `json:"judgment_date,omitempty"`
	CaseAction      string           `json:"case_action,omitempty"`
	Metadata        AnalysisMetadata `json:"analysis_metadata"`
}

// NewAnalysisRecord returns a record with every container initialized so a
// marshalled record never contains null where a consumer expects [].
func NewAnalysisRecord(sourceURL string) *AnalysisRecord {
	return &AnalysisRecord{
		DocumentType:    DocTypeCaseAnalysis,
		SourceURL:       sourceURL,
		Parties:         Parties{OtherParties: []string{}},
		LegalIssues:     []string{},
		LegalPrinciples: []string{},
		PrecedentsCited: []string{},
		Advocates:       []string{},
		Judges:          []string{},
	}
}

// PopulatedFieldCount reports how many of the heuristic extraction fields
// matched. Callers use it as a low-confidence marker: a count of zero means
// every extractor degraded to its empty terminal state.
func (a *AnalysisRecord) PopulatedFieldCount() int {
	count := 0
	if a.Parties.Plaintiff != "" || a.Parties.Defendant != "" {
		count++
	}
	if a.CaseSummary != "" {
		count++
	}
	if len(a.LegalIssues) > 0 {
		count++
	}
	if a.Decision != "" {
		count++
	}
	if len(a.LegalPrinciples) > 0 {
		count++
	}
	if len(a.PrecedentsCited) > 0 {
		count++
	}
	if len(a.Advocates) > 0 {
		count++
	}
	if len(a.Judges) > 0 {
		count++
	}
	return count
}
