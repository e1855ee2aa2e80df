package render

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// ExportMarkdown renders a stored analysis payload as a standalone markdown
// document, section by section in display order.
func ExportMarkdown(title string, data []byte) string {
	root, err := Decode(data)
	if err != nil {
		root = Value{}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "_Exported %s_\n\n", time.Now().UTC().Format("2006-01-02 15:04 UTC"))

	fmt.Fprintf(&sb, "## Executive Summary\n\n%s\n\n", ResolveText(root, FieldSummary))

	sb.WriteString("## Keywords\n\n")
	writeListMarkdown(&sb, root, FieldKeywords)

	sb.WriteString("## Market Analysis\n\n")
	writeObjectMarkdown(&sb, root, FieldMarket, marketKeys)

	sb.WriteString("## Core Features\n\n")
	writeListMarkdown(&sb, root, FieldFeatures)

	sb.WriteString("## Tech Stack\n\n")
	writeObjectMarkdown(&sb, root, FieldTechStack, techKeys)

	sb.WriteString("## Development Roadmap\n\n")
	writeRoadmapMarkdown(&sb, root)

	return sb.String()
}

func writeListMarkdown(sb *strings.Builder, root Value, f Field) {
	v, ok := Resolve(root, f)
	if ok && v.Kind() == KindArray {
		for _, item := range v.Strings() {
			fmt.Fprintf(sb, "- %s\n", item)
		}
		sb.WriteString("\n")
		return
	}
	fmt.Fprintf(sb, "%s\n\n", ResolveText(root, f))
}

func writeObjectMarkdown(sb *strings.Builder, root Value, f Field, known []struct{ key, label string }) {
	v, ok := Resolve(root, f)
	if !ok || v.Kind() != KindObject {
		fmt.Fprintf(sb, "%s\n\n", ResolveText(root, f))
		return
	}
	written := map[string]bool{}
	for _, lk := range known {
		if item, ok := v.Get(lk.key); ok && !item.IsEmpty() {
			fmt.Fprintf(sb, "**%s:** %s\n\n", lk.label, item.Text())
			written[lk.key] = true
		}
	}
	for _, key := range v.Keys() {
		if written[key] {
			continue
		}
		if item, ok := v.Get(key); ok && !item.IsEmpty() {
			fmt.Fprintf(sb, "**%s:** %s\n\n", humanize(key), item.Text())
		}
	}
}

func writeRoadmapMarkdown(sb *strings.Builder, root Value) {
	v, ok := Resolve(root, FieldRoadmap)
	if !ok {
		fmt.Fprintf(sb, "%s\n\n", FieldRoadmap.Placeholder)
		return
	}
	switch v.Kind() {
	case KindArray:
		for _, item := range v.Items() {
			if item.Kind() != KindObject {
				fmt.Fprintf(sb, "- %s\n", item.Text())
				continue
			}
			phase, _ := item.Get("phase")
			header := phase.Text()
			if d, ok := item.Get("duration"); ok && !d.IsEmpty() {
				header = fmt.Sprintf("%s (%s)", header, d.Text())
			}
			fmt.Fprintf(sb, "### %s\n\n", header)
			if tasks, ok := item.Get("tasks"); ok && tasks.Kind() == KindArray {
				for _, task := range tasks.Strings() {
					fmt.Fprintf(sb, "- %s\n", task)
				}
				sb.WriteString("\n")
			}
		}
		sb.WriteString("\n")
	case KindObject:
		for _, key := range v.Keys() {
			item, _ := v.Get(key)
			fmt.Fprintf(sb, "### %s\n\n%s\n\n", key, item.Text())
		}
	default:
		fmt.Fprintf(sb, "%s\n\n", v.Text())
	}
}

// ExportHTML renders a stored analysis payload as a self-contained HTML
// document reusing the section renderers.
func ExportHTML(title string, data []byte) string {
	sections := RenderAll(data)

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&sb, "<title>%s</title>\n", html.EscapeString(title))
	sb.WriteString("<style>body{font-family:sans-serif;max-width:800px;margin:2rem auto;padding:0 1rem;color:#222}" +
		"h1{border-bottom:2px solid #6c5ce7;padding-bottom:.5rem}h2{color:#6c5ce7}" +
		".keyword-tags{list-style:none;padding:0}.keyword-tags li{display:inline-block;background:#eee;border-radius:12px;padding:2px 10px;margin:2px}" +
		".roadmap-phase{border-left:3px solid #6c5ce7;padding-left:1rem;margin:1rem 0}" +
		".placeholder{color:#999;font-style:italic}</style>\n</head>\n<body>\n")
	fmt.Fprintf(&sb, "<h1>%s</h1>\n", sections[SectionName])

	for _, s := range []struct {
		heading string
		id      string
	}{
		{"Executive Summary", SectionSummary},
		{"Keywords", SectionKeywords},
		{"Market Analysis", SectionMarket},
		{"Core Features", SectionFeatures},
		{"Tech Stack", SectionTechStack},
		{"Development Roadmap", SectionRoadmap},
	} {
		fmt.Fprintf(&sb, "<h2>%s</h2>\n%s\n", s.heading, sections[s.id])
	}
	sb.WriteString("</body>\n</html>\n")
	return sb.String()
}
