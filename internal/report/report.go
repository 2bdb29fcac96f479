// Package report renders a TopicReport as Markdown and persists it next to
// a JSON backup.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/IshaanNene/knowledge-aggregator/internal/types"
)

const markdownTmpl = `# Web Knowledge Aggregator Report

## Topic: {{.Topic}}

**Generated:** {{.GeneratedAt.Format "2006-01-02 15:04:05"}}  
**Total Articles Analyzed:** {{.TotalArticles}}  
**Processing Status:** Complete  

---

{{if .Articles -}}
## Table of Contents

{{range $i, $a := .Articles}}{{inc $i}}. [{{$a.Title}}](#{{anchor $a.Title}})
{{end}}
---

## Article Summaries

{{range .Articles -}}
## {{.Title}}

**Source:** {{.URL}}  
**Authors:** {{orUnknown .Authors}}  
**Published:** {{orUnknown .PublishDate}}  
**Extraction Method:** {{.Method}}  
**Summarization:** {{.SummarizationMethod}}  

### Summary
{{.Summary}}

---

{{end}}{{end -}}
## Final Insights

{{.FinalInsights}}

---

## Report Statistics

- **Articles Successfully Processed:** {{.TotalArticles}}
- **Search Method:** DuckDuckGo (Web + News)
- **Summarization:** Language model with extractive fallback
- **Report Generated:** {{.GeneratedAt.Format "2006-01-02 15:04:05"}}

---

*This report was generated automatically by the Web Knowledge Aggregator.*
`

var markdown = template.Must(template.New("report").Funcs(template.FuncMap{
	"inc":    func(i int) int { return i + 1 },
	"anchor": anchor,
	"orUnknown": func(s string) string {
		if strings.TrimSpace(s) == "" {
			return types.Unknown
		}
		return s
	},
}).Parse(markdownTmpl))

// RenderMarkdown renders the full Markdown document for r.
func RenderMarkdown(r *types.TopicReport) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("render report for %q: %w", r.Topic, err)
	}
	return buf.String(), nil
}

// QuickSummary is the short console version of a report.
func QuickSummary(r *types.TopicReport, outputDir string) string {
	var b strings.Builder
	b.WriteString("Web Knowledge Aggregator - Quick Summary\n\n")
	fmt.Fprintf(&b, "Topic: %s\n", r.Topic)
	fmt.Fprintf(&b, "Articles Processed: %d\n\n", r.TotalArticles)
	b.WriteString("Key Insights:\n")
	b.WriteString(r.FinalInsights)
	fmt.Fprintf(&b, "\n\nReport files saved in: %s\n", outputDir)
	return b.String()
}
