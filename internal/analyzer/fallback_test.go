package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackPicksIndustry(t *testing.T) {
	result := Fallback("An invoicing and payment platform for small business accounting")

	assert.Equal(t, "FinTech SaaS Platform", result["project_name"])
	meta := result["analysis_metadata"].(map[string]any)
	assert.Equal(t, "fallback", meta["analysis_source"])
	assert.Equal(t, 0.3, meta["confidence_score"])
}

func TestFallbackFeatureDetection(t *testing.T) {
	result := Fallback("A tool with user login, a dashboard, and email notifications for teams")

	features, ok := result["core_features"].([]string)
	require.True(t, ok)
	assert.Contains(t, features, "User authentication and role-based access control")
	assert.Contains(t, features, "Interactive dashboard with key metrics at a glance")
	assert.Contains(t, features, "Real-time notifications and alerts")
}

func TestFallbackDefaultsWhenNothingMatches(t *testing.T) {
	result := Fallback("zzz qqq")

	features := result["core_features"].([]string)
	assert.NotEmpty(t, features)

	keywords := result["keywords"].([]string)
	assert.Contains(t, keywords, "saas")

	roadmap := result["development_roadmap"].([]map[string]any)
	assert.Len(t, roadmap, 3)
}

func TestFallbackAlwaysRenderable(t *testing.T) {
	result := Fallback("A health tracking app for patients and doctors")

	for _, key := range []string{
		"project_name", "executive_summary", "keywords", "core_features",
		"market_analysis", "tech_stack", "development_roadmap",
		"methodology_analysis", "sentiment_analysis", "analysis_metadata",
	} {
		assert.Contains(t, result, key)
	}
}
