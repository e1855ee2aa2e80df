package analyzer

import (
	"fmt"
	"strings"
	"time"
)

type industry struct {
	name     string
	market   string
	size     string
	keywords []string
}

var industries = []industry{
	{
		name:     "FinTech",
		market:   "Financial institutions, small businesses, and individual consumers managing money digitally",
		size:     "The global fintech market exceeds $300B and is growing at roughly 20% annually",
		keywords: []string{"payment", "banking", "finance", "invoice", "accounting", "budget", "crypto", "lending", "insurance"},
	},
	{
		name:     "E-commerce",
		market:   "Online retailers, marketplaces, and direct-to-consumer brands",
		size:     "Global e-commerce sales surpass $6T with steady double-digit growth",
		keywords: []string{"shop", "store", "e-commerce", "ecommerce", "marketplace", "retail", "product catalog", "checkout", "inventory"},
	},
	{
		name:     "EdTech",
		market:   "Schools, universities, corporate training teams, and independent learners",
		size:     "The edtech market is valued above $140B, accelerated by remote learning adoption",
		keywords: []string{"learn", "course", "education", "student", "teacher", "training", "quiz", "tutoring", "classroom"},
	},
	{
		name:     "HealthTech",
		market:   "Clinics, hospitals, wellness providers, and health-conscious consumers",
		size:     "Digital health spending exceeds $200B worldwide with strong regulatory tailwinds",
		keywords: []string{"health", "medical", "patient", "doctor", "fitness", "wellness", "clinic", "therapy", "telemedicine"},
	},
	{
		name:     "Productivity",
		market:   "Knowledge workers, remote teams, and operations managers",
		size:     "The productivity software market tops $50B, driven by hybrid work",
		keywords: []string{"task", "project management", "collaboration", "workflow", "team", "schedule", "automation", "document", "notes"},
	},
}

type featureHint struct {
	feature  string
	keywords []string
}

var featureHints = []featureHint{
	{"User authentication and role-based access control", []string{"user", "login", "account", "auth", "member", "profile"}},
	{"Interactive dashboard with key metrics at a glance", []string{"dashboard", "overview", "monitor", "track", "visualiz"}},
	{"REST API for third-party integrations", []string{"api", "integrat", "connect", "webhook", "sync"}},
	{"Real-time notifications and alerts", []string{"notif", "alert", "remind", "email", "message"}},
	{"Reporting and data export", []string{"report", "export", "analytic", "insight", "statistic"}},
	{"Subscription billing and payment processing", []string{"payment", "billing", "subscription", "pricing", "plan"}},
}

// Fallback produces a deterministic keyword-based analysis used when the
// language model is unavailable. Confidence is capped low so callers can
// tell it apart from model output.
func Fallback(description string) map[string]any {
	lower := strings.ToLower(description)

	best := industries[len(industries)-1]
	bestScore := 0
	for _, ind := range industries {
		score := 0
		for _, kw := range ind.keywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			best = ind
			bestScore = score
		}
	}

	features := make([]string, 0, len(featureHints))
	for _, h := range featureHints {
		for _, kw := range h.keywords {
			if strings.Contains(lower, kw) {
				features = append(features, h.feature)
				break
			}
		}
	}
	if len(features) == 0 {
		features = []string{
			"User authentication and role-based access control",
			"Interactive dashboard with key metrics at a glance",
			"Reporting and data export",
		}
	}

	keywords := extractKeywords(lower, best)
	name := fmt.Sprintf("%s SaaS Platform", best.name)

	return map[string]any{
		"project_name": name,
		"executive_summary": fmt.Sprintf(
			"This concept targets the %s space. %s. The product described would serve this market with a focused SaaS offering; "+
				"a lean MVP validating the core workflow is the recommended first step before expanding the feature set.",
			best.name, best.market),
		"keywords":      keywords,
		"core_features": features,
		"market_analysis": map[string]any{
			"target_market":    best.market,
			"market_size":      best.size,
			"competition":      "Established incumbents exist, but niche positioning and superior UX leave room for new entrants",
			"growth_potential": "Moderate to high, depending on differentiation and go-to-market execution",
			"trends":           "AI-assisted workflows, vertical specialization, and usage-based pricing",
		},
		"tech_stack": map[string]any{
			"frontend":       "React with TypeScript",
			"backend":        "Go or Node.js REST API",
			"database":       "PostgreSQL",
			"infrastructure": "Docker on a managed cloud platform",
			"tools":          "GitHub Actions CI, Sentry, Stripe",
		},
		"development_roadmap": []map[string]any{
			{
				"phase":    "Phase 1: MVP",
				"duration": "2-3 months",
				"tasks":    []string{"Core workflow implementation", "User authentication", "Basic dashboard"},
			},
			{
				"phase":    "Phase 2: Market validation",
				"duration": "2 months",
				"tasks":    []string{"Beta user onboarding", "Feedback-driven iteration", "Billing integration"},
			},
			{
				"phase":    "Phase 3: Growth",
				"duration": "3-6 months",
				"tasks":    []string{"Third-party integrations", "Advanced reporting", "Scalability hardening"},
			},
		},
		"methodology_analysis": "An agile, two-week-sprint process fits an early-stage SaaS: ship the MVP fast, then iterate on real usage data.",
		"sentiment_analysis":   "Cautiously positive. Viability depends on validating demand within the identified niche before heavy investment.",
		"analysis_metadata": map[string]any{
			"suggested_name":   name,
			"confidence_score": 0.3,
			"analysis_source":  "fallback",
			"timestamp":        time.Now().UTC().Format(time.RFC3339),
		},
	}
}

func extractKeywords(lower string, ind industry) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, 8)
	add := func(kw string) {
		if !seen[kw] && len(out) < 8 {
			seen[kw] = true
			out = append(out, kw)
		}
	}
	add(strings.ToLower(ind.name))
	for _, kw := range ind.keywords {
		if strings.Contains(lower, kw) {
			add(kw)
		}
	}
	add("saas")
	add("startup")
	return out
}
