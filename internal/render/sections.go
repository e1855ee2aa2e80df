package render

import (
	"html"
	"html/template"
	"regexp"
	"strings"
)

// Container ids of the analysis page, one per section.
const (
	SectionName      = "project-name"
	SectionKeywords  = "keywords"
	SectionSummary   = "executive-summary"
	SectionMarket    = "market-analysis"
	SectionFeatures  = "core-features"
	SectionTechStack = "tech-stack"
	SectionRoadmap   = "development-roadmap"
)

var marketKeys = []struct{ key, label string }{
	{"target_market", "Target Market"},
	{"market_size", "Market Size"},
	{"competition", "Competition"},
	{"growth_potential", "Growth Potential"},
	{"trends", "Trends"},
}

var techKeys = []struct{ key, label string }{
	{"frontend", "Frontend"},
	{"backend", "Backend"},
	{"database", "Database"},
	{"infrastructure", "Infrastructure"},
	{"tools", "Tools"},
}

// RenderAll decodes a raw analysis payload and renders every section.
// Malformed input is not an error: every section degrades to its
// placeholder and the page stays usable.
func RenderAll(data []byte) map[string]template.HTML {
	root, err := Decode(data)
	if err != nil {
		out := make(map[string]template.HTML, len(Fields))
		for _, f := range Fields {
			out[sectionID(f)] = placeholder(f)
		}
		return out
	}
	return RenderSections(root)
}

// RenderSections renders the seven sections of an already decoded payload.
func RenderSections(root Value) map[string]template.HTML {
	return map[string]template.HTML{
		SectionName:      renderName(root),
		SectionKeywords:  renderKeywords(root),
		SectionSummary:   renderSummary(root),
		SectionMarket:    renderMarket(root),
		SectionFeatures:  renderFeatures(root),
		SectionTechStack: renderTechStack(root),
		SectionRoadmap:   renderRoadmap(root),
	}
}

func sectionID(f Field) string {
	switch f.Name {
	case FieldName.Name:
		return SectionName
	case FieldKeywords.Name:
		return SectionKeywords
	case FieldSummary.Name:
		return SectionSummary
	case FieldMarket.Name:
		return SectionMarket
	case FieldFeatures.Name:
		return SectionFeatures
	case FieldTechStack.Name:
		return SectionTechStack
	default:
		return SectionRoadmap
	}
}

func placeholder(f Field) template.HTML {
	if f.Name == FieldName.Name {
		return template.HTML(html.EscapeString(f.Placeholder))
	}
	return template.HTML(`<p class="placeholder">` + html.EscapeString(f.Placeholder) + `</p>`)
}

func renderName(root Value) template.HTML {
	return template.HTML(html.EscapeString(ResolveText(root, FieldName)))
}

func renderKeywords(root Value) template.HTML {
	v, ok := Resolve(root, FieldKeywords)
	if !ok {
		return placeholder(FieldKeywords)
	}
	items := v.Strings()
	if len(items) == 0 {
		return placeholder(FieldKeywords)
	}
	var b strings.Builder
	b.WriteString(`<ul class="keyword-tags">`)
	for _, kw := range items {
		b.WriteString("<li>")
		b.WriteString(html.EscapeString(kw))
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return template.HTML(b.String())
}

func renderSummary(root Value) template.HTML {
	v, ok := Resolve(root, FieldSummary)
	if !ok {
		return placeholder(FieldSummary)
	}
	return FormatText(v.Text())
}

func renderMarket(root Value) template.HTML {
	v, ok := Resolve(root, FieldMarket)
	if !ok {
		return placeholder(FieldMarket)
	}
	if v.Kind() != KindObject {
		return FormatText(v.Text())
	}

	var b strings.Builder
	known := make(map[string]bool, len(marketKeys))
	for _, mk := range marketKeys {
		known[mk.key] = true
		if sub, ok := v.Get(mk.key); ok && !sub.IsEmpty() {
			writeLabeledRow(&b, mk.label, sub.Text())
		}
	}
	// Unknown sub-keys still render, in the payload's own order.
	for _, key := range v.Keys() {
		if known[key] {
			continue
		}
		if sub, ok := v.Get(key); ok && !sub.IsEmpty() {
			writeLabeledRow(&b, humanize(key), sub.Text())
		}
	}
	if b.Len() == 0 {
		return placeholder(FieldMarket)
	}
	return template.HTML(b.String())
}

func renderFeatures(root Value) template.HTML {
	v, ok := Resolve(root, FieldFeatures)
	if !ok {
		return placeholder(FieldFeatures)
	}
	if v.Kind() == KindArray {
		return renderList(v.Strings(), FieldFeatures)
	}
	return FormatText(v.Text())
}

func renderTechStack(root Value) template.HTML {
	v, ok := Resolve(root, FieldTechStack)
	if !ok {
		return placeholder(FieldTechStack)
	}
	switch v.Kind() {
	case KindObject:
		var b strings.Builder
		known := make(map[string]bool, len(techKeys))
		for _, tk := range techKeys {
			known[tk.key] = true
			if sub, ok := v.Get(tk.key); ok && !sub.IsEmpty() {
				writeLabeledRow(&b, tk.label, strings.Join(sub.Strings(), ", "))
			}
		}
		for _, key := range v.Keys() {
			if known[key] {
				continue
			}
			if sub, ok := v.Get(key); ok && !sub.IsEmpty() {
				writeLabeledRow(&b, humanize(key), strings.Join(sub.Strings(), ", "))
			}
		}
		if b.Len() == 0 {
			return placeholder(FieldTechStack)
		}
		return template.HTML(b.String())
	case KindArray:
		return renderList(v.Strings(), FieldTechStack)
	default:
		return FormatText(v.Text())
	}
}

func renderRoadmap(root Value) template.HTML {
	v, ok := Resolve(root, FieldRoadmap)
	if !ok {
		return placeholder(FieldRoadmap)
	}
	switch v.Kind() {
	case KindString:
		// A bare string becomes exactly one paragraph.
		return template.HTML("<p>" + inline(v.Text()) + "</p>")
	case KindArray:
		return renderRoadmapPhases(v)
	case KindObject:
		// Mapping of phase -> text, emitted in the mapping's own order.
		var b strings.Builder
		for _, key := range v.Keys() {
			sub, _ := v.Get(key)
			b.WriteString("<h4>")
			b.WriteString(html.EscapeString(key))
			b.WriteString("</h4><p>")
			b.WriteString(inline(sub.Text()))
			b.WriteString("</p>")
		}
		if b.Len() == 0 {
			return placeholder(FieldRoadmap)
		}
		return template.HTML(b.String())
	default:
		return FormatText(v.Text())
	}
}

func renderRoadmapPhases(v Value) template.HTML {
	var b strings.Builder
	structured := false
	for _, item := range v.Items() {
		if item.Kind() != KindObject {
			continue
		}
		phase, ok := item.Get("phase")
		if !ok {
			continue
		}
		structured = true
		b.WriteString(`<div class="roadmap-phase"><h4>`)
		b.WriteString(html.EscapeString(phase.Text()))
		if d, ok := item.Get("duration"); ok && !d.IsEmpty() {
			b.WriteString(" (" + html.EscapeString(d.Text()) + ")")
		}
		b.WriteString("</h4>")
		if tasks, ok := item.Get("tasks"); ok && !tasks.IsEmpty() {
			b.WriteString("<ul>")
			for _, t := range tasks.Strings() {
				b.WriteString("<li>" + inline(t) + "</li>")
			}
			b.WriteString("</ul>")
		}
		b.WriteString("</div>")
	}
	if structured {
		return template.HTML(b.String())
	}
	// Flat list of strings: one list item per entry.
	return renderList(v.Strings(), FieldRoadmap)
}

func renderList(items []string, f Field) template.HTML {
	if len(items) == 0 {
		return placeholder(f)
	}
	var b strings.Builder
	b.WriteString("<ul>")
	for _, item := range items {
		b.WriteString("<li>" + inline(item) + "</li>")
	}
	b.WriteString("</ul>")
	return template.HTML(b.String())
}

func writeLabeledRow(b *strings.Builder, label, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	b.WriteString("<p><strong>")
	b.WriteString(html.EscapeString(label))
	b.WriteString(":</strong> ")
	b.WriteString(inline(text))
	b.WriteString("</p>")
}

func humanize(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '_' || r == '-' })
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

var boldRe = regexp.MustCompile(`\*\*([^*]+)\*\*`)

// inline escapes a single line and applies **bold** spans.
func inline(s string) string {
	escaped := html.EscapeString(strings.TrimSpace(s))
	escaped = boldRe.ReplaceAllString(escaped, "<strong>$1</strong>")
	return strings.ReplaceAll(escaped, "\n", "<br>")
}

// FormatText is the generic fallback formatter for free text: paragraphs on
// blank lines, markdown-style bullet lines to lists, **bold** spans, bare
// newlines to <br>. Everything is escaped first.
func FormatText(s string) template.HTML {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var b strings.Builder
	var para []string
	inList := false

	flushPara := func() {
		if len(para) == 0 {
			return
		}
		b.WriteString("<p>" + strings.Join(para, "<br>") + "</p>")
		para = para[:0]
	}
	closeList := func() {
		if inList {
			b.WriteString("</ul>")
			inList = false
		}
	}

	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flushPara()
			closeList()
		case isBullet(trimmed):
			flushPara()
			if !inList {
				b.WriteString("<ul>")
				inList = true
			}
			b.WriteString("<li>" + inline(stripBullet(trimmed)) + "</li>")
		default:
			closeList()
			para = append(para, inline(trimmed))
		}
	}
	flushPara()
	closeList()
	return template.HTML(b.String())
}

func isBullet(line string) bool {
	return strings.HasPrefix(line, "- ") ||
		strings.HasPrefix(line, "* ") ||
		strings.HasPrefix(line, "• ")
}

func stripBullet(line string) string {
	for _, p := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, p) {
			return strings.TrimSpace(strings.TrimPrefix(line, p))
		}
	}
	return line
}
