package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const exportPayload = `{
	"executive_summary": "A promising idea.",
	"keywords": ["invoicing", "freelancers"],
	"market_analysis": {"target_market": "Freelancers", "niche_notes": "Underserved"},
	"core_features": ["Recurring invoices", "Payment tracking"],
	"tech_stack": {"frontend": "React", "backend": "Go"},
	"development_roadmap": [
		{"phase": "Phase 1: MVP", "duration": "2 months", "tasks": ["Auth", "Invoices"]}
	]
}`

func TestExportMarkdown(t *testing.T) {
	md := ExportMarkdown("InvoiceHub", []byte(exportPayload))

	assert.True(t, strings.HasPrefix(md, "# InvoiceHub\n"))
	assert.Contains(t, md, "## Executive Summary\n\nA promising idea.")
	assert.Contains(t, md, "- invoicing\n- freelancers\n")
	assert.Contains(t, md, "**Target Market:** Freelancers")
	assert.Contains(t, md, "**Niche Notes:** Underserved")
	assert.Contains(t, md, "### Phase 1: MVP (2 months)")
	assert.Contains(t, md, "- Auth\n- Invoices\n")
}

func TestExportMarkdownPlaceholders(t *testing.T) {
	md := ExportMarkdown("Empty", []byte(`{}`))

	assert.Contains(t, md, "Executive summary not available")
	assert.Contains(t, md, "No keywords available")
	assert.Contains(t, md, "Development roadmap not available")
}

func TestExportHTMLSelfContained(t *testing.T) {
	out := ExportHTML("InvoiceHub", []byte(exportPayload))

	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "<title>InvoiceHub</title>")
	assert.Contains(t, out, `<ul class="keyword-tags">`)
	assert.Contains(t, out, `<div class="roadmap-phase">`)
	assert.Contains(t, out, "</html>")
}

func TestExportHTMLEscapesTitle(t *testing.T) {
	out := ExportHTML(`<script>alert(1)</script>`, []byte(`{}`))
	assert.NotContains(t, out, "<script>alert")
}
