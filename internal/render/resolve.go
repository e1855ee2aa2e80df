package render

import "strings"

// Rule is one candidate location for a logical field. If Unwrap is set and
// the value at Path is an object carrying that key, the member is used
// instead (e.g. executive_summary sometimes arrives as {"summary": "..."}).
type Rule struct {
	Path   string
	Unwrap string
}

// Field binds a logical section to an ordered list of candidate paths.
// The order is significant: the backend schema evolved without retiring old
// shapes, and the first populated path wins.
type Field struct {
	Name        string
	Rules       []Rule
	Placeholder string
}

// Logical fields of an analysis payload, newest backend shape first, then
// the legacy "analysis.*" nesting, then NLP side-channels.
var (
	FieldName = Field{
		Name: "name",
		Rules: []Rule{
			{Path: "analysis_metadata.suggested_name"},
			{Path: "project_name"},
			{Path: "suggested_name"},
			{Path: "analysis.suggested_name"},
		},
		Placeholder: "Untitled Project",
	}

	FieldSummary = Field{
		Name: "summary",
		Rules: []Rule{
			{Path: "executive_summary", Unwrap: "summary"},
			{Path: "analysis.executive_summary", Unwrap: "summary"},
			{Path: "summary"},
		},
		Placeholder: "Executive summary not available",
	}

	FieldKeywords = Field{
		Name: "keywords",
		Rules: []Rule{
			{Path: "keywords"},
			{Path: "analysis.keywords"},
			{Path: "keywords_nlp"},
			{Path: "analysis_metadata.keywords_extracted"},
			{Path: "nlp_analysis.keywords_nlp"},
		},
		Placeholder: "No keywords available",
	}

	FieldMarket = Field{
		Name: "market",
		Rules: []Rule{
			{Path: "market_analysis"},
			{Path: "analysis.market_analysis"},
			{Path: "market_analysis_detailed"},
		},
		Placeholder: "Market analysis not available",
	}

	FieldFeatures = Field{
		Name: "features",
		Rules: []Rule{
			{Path: "core_features"},
			{Path: "analysis.core_features"},
			{Path: "features"},
		},
		Placeholder: "No features identified",
	}

	FieldTechStack = Field{
		Name: "tech_stack",
		Rules: []Rule{
			{Path: "tech_stack"},
			{Path: "analysis.tech_stack"},
			{Path: "recommended_tech_stack"},
		},
		Placeholder: "Tech stack recommendation not available",
	}

	FieldRoadmap = Field{
		Name: "roadmap",
		Rules: []Rule{
			{Path: "development_roadmap"},
			{Path: "analysis.development_roadmap"},
			{Path: "roadmap"},
		},
		Placeholder: "Development roadmap not available",
	}
)

// Fields lists every logical field in section order.
var Fields = []Field{
	FieldName, FieldKeywords, FieldSummary, FieldMarket,
	FieldFeatures, FieldTechStack, FieldRoadmap,
}

// Resolve probes the field's candidate paths in order and returns the first
// non-empty value. It is pure: no side effects, same input same output.
// Absent, null and empty values count as "not found", never as errors.
func Resolve(root Value, f Field) (Value, bool) {
	for _, r := range f.Rules {
		v, ok := lookup(root, r.Path)
		if !ok || v.IsEmpty() {
			continue
		}
		if r.Unwrap != "" && v.Kind() == KindObject {
			if inner, ok := v.Get(r.Unwrap); ok && !inner.IsEmpty() {
				return inner, true
			}
		}
		return v, true
	}
	return Value{}, false
}

// ResolveText resolves a field and coerces the result to a plain string,
// falling back to the field's placeholder.
func ResolveText(root Value, f Field) string {
	v, ok := Resolve(root, f)
	if !ok {
		return f.Placeholder
	}
	s := strings.TrimSpace(v.Text())
	if s == "" {
		return f.Placeholder
	}
	return s
}

func lookup(root Value, path string) (Value, bool) {
	cur := root
	for _, part := range strings.Split(path, ".") {
		next, ok := cur.Get(part)
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	return cur, true
}
