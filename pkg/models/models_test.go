package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAnalysisRecordShapeStable(t *testing.T) {
	rec := NewAnalysisRecord("https://new.kenyalaw.org/judgments/12345")

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	// Containers must marshal to empty arrays, never null: downstream
	// consumers rely on shape stability for records with no matches.
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	for _, field := range []string{"legal_issues", "legal_principles", "precedents_cited", "advocates", "judges"} {
		val, ok := decoded[field]
		require.True(t, ok, "field %s missing", field)
		assert.NotNil(t, val, "field %s must not be null", field)
	}
	parties, ok := decoded["parties"].(map[string]any)
	require.True(t, ok)
	assert.NotNil(t, parties["other_parties"])
}

func TestCaseRecordIsComplete(t *testing.T) {
	complete := CaseRecord{Citation: "[2024] KEHC 100 (KLR)", Court: "High Court"}
	assert.True(t, complete.IsComplete())

	assert.False(t, CaseRecord{Court: "High Court"}.IsComplete())
	assert.False(t, CaseRecord{Citation: "[2024] KEHC 100"}.IsComplete())
}

func TestPopulatedFieldCount(t *testing.T) {
	rec := NewAnalysisRecord("u")
	assert.Equal(t, 0, rec.PopulatedFieldCount())

	rec.Parties.Plaintiff = "John Doe"
	rec.Decision = "The appeal is dismissed."
	rec.LegalIssues = append(rec.LegalIssues, "Whether the appeal was filed out of time")
	assert.Equal(t, 3, rec.PopulatedFieldCount())
}
