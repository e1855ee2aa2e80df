package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/saasgenius/saasgenius/internal/research"
	"github.com/saasgenius/saasgenius/pkg/logger"
)

const (
	maxRetries     = 3
	baseRetryDelay = 2 * time.Second
)

// Options configures the analysis engine.
type Options struct {
	BaseURL string
	APIKey  string
	Model   string

	// RPM caps model calls per minute, QPS bounds the burst. A zero RPM
	// disables the limiter.
	RPM int
	QPS int

	Research *research.Client
}

// Engine turns a free-text product description into a structured business
// analysis. When the model is unconfigured or fails, it degrades to the
// keyword fallback so analysis never errors out.
type Engine struct {
	chat     model.ToolCallingChatModel
	model    string
	limiter  *rate.Limiter
	research *research.Client
}

// NewEngine builds an engine. A missing API key yields a fallback-only
// engine rather than an error.
func NewEngine(ctx context.Context, opts Options) (*Engine, error) {
	e := &Engine{model: opts.Model, research: opts.Research}

	if opts.RPM > 0 {
		burst := opts.QPS
		if burst <= 0 {
			burst = 1
		}
		e.limiter = rate.NewLimiter(rate.Limit(float64(opts.RPM)/60.0), burst)
	}

	if opts.APIKey == "" {
		logger.Log.Warn("analyzer: no API key configured, using fallback analysis only")
		return e, nil
	}

	chat, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: opts.BaseURL,
		APIKey:  opts.APIKey,
		Model:   opts.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	e.chat = chat
	return e, nil
}

// Configured reports whether a chat model is available.
func (e *Engine) Configured() bool {
	return e.chat != nil
}

// llmAnalysis is the shape the model is asked to produce.
type llmAnalysis struct {
	ProjectName      string   `json:"project_name"`
	ExecutiveSummary string   `json:"executive_summary"`
	Keywords         []string `json:"keywords"`
	CoreFeatures     []string `json:"core_features"`
	MarketAnalysis   struct {
		TargetMarket    string `json:"target_market"`
		MarketSize      string `json:"market_size"`
		Competition     string `json:"competition"`
		GrowthPotential string `json:"growth_potential"`
		Trends          string `json:"trends"`
	} `json:"market_analysis"`
	TechStack struct {
		Frontend       string `json:"frontend"`
		Backend        string `json:"backend"`
		Database       string `json:"database"`
		Infrastructure string `json:"infrastructure"`
		Tools          string `json:"tools"`
	} `json:"tech_stack"`
	DevelopmentRoadmap []struct {
		Phase    string   `json:"phase"`
		Duration string   `json:"duration"`
		Tasks    []string `json:"tasks"`
	} `json:"development_roadmap"`
	MethodologyAnalysis string  `json:"methodology_analysis"`
	SentimentAnalysis   string  `json:"sentiment_analysis"`
	ConfidenceScore     float64 `json:"confidence_score"`
}

// Analyze produces the full analysis payload for a description. It never
// returns an error: model failures fall back to keyword analysis.
func (e *Engine) Analyze(ctx context.Context, description string) map[string]any {
	start := time.Now()

	result, err := e.analyzeLLM(ctx, description)
	if err != nil {
		if e.chat != nil {
			logger.Log.Warnf("analyzer: model analysis failed, falling back: %v", err)
		}
		result = Fallback(description)
	}

	result["analysis_time"] = roundTo(time.Since(start).Seconds(), 2)
	return result
}

func (e *Engine) analyzeLLM(ctx context.Context, description string) (map[string]any, error) {
	if e.chat == nil {
		return nil, fmt.Errorf("chat model not configured")
	}

	marketContext := ""
	if e.research != nil {
		mc, err := e.research.MarketContext(ctx, description, 3)
		if err != nil {
			logger.Log.Debugf("analyzer: market research unavailable: %v", err)
		} else {
			marketContext = mc
		}
	}

	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(buildPrompt(description, marketContext)),
	}

	raw, err := e.generateWithRetry(ctx, messages)
	if err != nil {
		return nil, err
	}

	var parsed llmAnalysis
	if err := json.Unmarshal([]byte(CleanJSON(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("parse model output: %w", err)
	}
	return buildPayload(&parsed), nil
}

func (e *Engine) generateWithRetry(ctx context.Context, messages []*schema.Message) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return "", fmt.Errorf("rate limiter: %w", err)
			}
		}

		resp, err := e.chat.Generate(ctx, messages)
		if err == nil {
			return resp.Content, nil
		}
		lastErr = err

		if !isRateLimited(err) {
			return "", err
		}
		delay := baseRetryDelay * time.Duration(1<<attempt)
		logger.Log.Warnf("analyzer: rate limited, retry %d/%d in %s", attempt+1, maxRetries, delay)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
	return "", fmt.Errorf("model call failed after %d attempts: %w", maxRetries, lastErr)
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "rate_limit")
}

// CleanJSON strips markdown code fences and surrounding noise from model
// output so the JSON body can be unmarshalled.
func CleanJSON(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	// Models sometimes prepend prose before the object.
	if !strings.HasPrefix(s, "{") {
		if i := strings.Index(s, "{"); i >= 0 {
			if j := strings.LastIndex(s, "}"); j > i {
				s = s[i : j+1]
			}
		}
	}
	return s
}

func buildPayload(a *llmAnalysis) map[string]any {
	roadmap := make([]map[string]any, 0, len(a.DevelopmentRoadmap))
	for _, p := range a.DevelopmentRoadmap {
		roadmap = append(roadmap, map[string]any{
			"phase":    p.Phase,
			"duration": p.Duration,
			"tasks":    p.Tasks,
		})
	}

	confidence := a.ConfidenceScore
	if confidence <= 0 || confidence > 1 {
		confidence = 0.85
	}

	return map[string]any{
		"project_name":      a.ProjectName,
		"executive_summary": a.ExecutiveSummary,
		"keywords":          a.Keywords,
		"core_features":     a.CoreFeatures,
		"market_analysis": map[string]any{
			"target_market":    a.MarketAnalysis.TargetMarket,
			"market_size":      a.MarketAnalysis.MarketSize,
			"competition":      a.MarketAnalysis.Competition,
			"growth_potential": a.MarketAnalysis.GrowthPotential,
			"trends":           a.MarketAnalysis.Trends,
		},
		"tech_stack": map[string]any{
			"frontend":       a.TechStack.Frontend,
			"backend":        a.TechStack.Backend,
			"database":       a.TechStack.Database,
			"infrastructure": a.TechStack.Infrastructure,
			"tools":          a.TechStack.Tools,
		},
		"development_roadmap":  roadmap,
		"methodology_analysis": a.MethodologyAnalysis,
		"sentiment_analysis":   a.SentimentAnalysis,
		"analysis_metadata": map[string]any{
			"suggested_name":   a.ProjectName,
			"confidence_score": confidence,
			"analysis_source":  "llm",
			"timestamp":        time.Now().UTC().Format(time.RFC3339),
		},
	}
}

func roundTo(v float64, places int) float64 {
	shift := 1.0
	for i := 0; i < places; i++ {
		shift *= 10
	}
	return float64(int64(v*shift+0.5)) / shift
}

const systemPrompt = `You are a senior business analyst specializing in SaaS products. ` +
	`Given a product description, produce a rigorous business analysis. ` +
	`Respond with a single JSON object only, no markdown, no commentary.`

func buildPrompt(description, marketContext string) string {
	var sb strings.Builder
	sb.WriteString("Analyze the following SaaS product idea and respond with JSON matching exactly this schema:\n")
	sb.WriteString(`{
  "project_name": "short catchy product name",
  "executive_summary": "2-3 paragraph summary",
  "keywords": ["5-8 keywords"],
  "core_features": ["5-8 concrete features"],
  "market_analysis": {
    "target_market": "...",
    "market_size": "...",
    "competition": "...",
    "growth_potential": "...",
    "trends": "..."
  },
  "tech_stack": {
    "frontend": "...",
    "backend": "...",
    "database": "...",
    "infrastructure": "...",
    "tools": "..."
  },
  "development_roadmap": [
    {"phase": "Phase 1: ...", "duration": "...", "tasks": ["..."]}
  ],
  "methodology_analysis": "recommended development methodology and why",
  "sentiment_analysis": "overall viability sentiment",
  "confidence_score": 0.0
}
`)
	if marketContext != "" {
		sb.WriteString("\nRecent market research to ground the market_analysis section:\n")
		sb.WriteString(marketContext)
	}
	sb.WriteString("\nProduct idea:\n")
	sb.WriteString(description)
	return sb.String()
}
