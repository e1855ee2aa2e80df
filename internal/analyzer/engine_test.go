package analyzer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSONStripsFences(t *testing.T) {
	raw := "```json\n{\"project_name\": \"X\"}\n```"
	cleaned := CleanJSON(raw)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(cleaned), &out))
	assert.Equal(t, "X", out["project_name"])
}

func TestCleanJSONPlainObject(t *testing.T) {
	raw := `{"a": 1}`
	assert.Equal(t, raw, CleanJSON(raw))
}

func TestCleanJSONLeadingProse(t *testing.T) {
	raw := "Here is the analysis you asked for:\n{\"a\": 1}\nHope this helps."
	cleaned := CleanJSON(raw)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(cleaned), &out))
	assert.Equal(t, float64(1), out["a"])
}

func TestBuildPayloadShape(t *testing.T) {
	var parsed llmAnalysis
	src := `{
		"project_name": "InvoiceHub",
		"executive_summary": "A summary.",
		"keywords": ["invoicing", "smb"],
		"core_features": ["Recurring invoices"],
		"market_analysis": {"target_market": "SMBs", "market_size": "large"},
		"tech_stack": {"frontend": "React", "backend": "Go"},
		"development_roadmap": [{"phase": "Phase 1", "duration": "2 months", "tasks": ["MVP"]}],
		"methodology_analysis": "Agile.",
		"sentiment_analysis": "Positive.",
		"confidence_score": 0.9
	}`
	require.NoError(t, json.Unmarshal([]byte(src), &parsed))

	payload := buildPayload(&parsed)
	assert.Equal(t, "InvoiceHub", payload["project_name"])

	meta, ok := payload["analysis_metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "InvoiceHub", meta["suggested_name"])
	assert.Equal(t, "llm", meta["analysis_source"])
	assert.Equal(t, 0.9, meta["confidence_score"])

	roadmap, ok := payload["development_roadmap"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, roadmap, 1)
	assert.Equal(t, "Phase 1", roadmap[0]["phase"])
}

func TestBuildPayloadDefaultsConfidence(t *testing.T) {
	payload := buildPayload(&llmAnalysis{ProjectName: "X"})
	meta := payload["analysis_metadata"].(map[string]any)
	assert.Equal(t, 0.85, meta["confidence_score"])
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 1.23, roundTo(1.2345, 2))
	assert.Equal(t, 0.5, roundTo(0.499, 1))
}
