package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/IshaanNene/knowledge-aggregator/internal/pipeline"
	"github.com/IshaanNene/knowledge-aggregator/internal/types"
)

var (
	colorAccent = lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#60A5FA"}
	colorOK     = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}
	colorFail   = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}

	bannerStyle  = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	headingStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Underline(true)
	okStyle      = lipgloss.NewStyle().Foreground(colorOK).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(colorFail).Bold(true)
)

type kv struct {
	key   string
	value string
}

func banner() string {
	line := strings.Repeat("=", 50)
	return bannerStyle.Render(line + "\n  Web Knowledge Aggregator\n" + line)
}

// alignKV renders pairs with the values lined up on display width.
func alignKV(pairs []kv, indent string) string {
	width := 0
	for _, p := range pairs {
		if w := runewidth.StringWidth(p.key); w > width {
			width = w
		}
	}
	var b strings.Builder
	for _, p := range pairs {
		b.WriteString(indent)
		b.WriteString(runewidth.FillRight(p.key+":", width+1))
		b.WriteString(" ")
		b.WriteString(p.value)
		b.WriteString("\n")
	}
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// printStatus writes the status snapshot as aligned text or YAML.
func printStatus(w io.Writer, st pipeline.SystemStatus, format string) error {
	switch format {
	case "yaml":
		data, err := yaml.Marshal(st)
		if err != nil {
			return fmt.Errorf("encode status: %w", err)
		}
		_, err = w.Write(data)
		return err
	case "", "text":
	default:
		return fmt.Errorf("%w: %q", errUnknownFormat, format)
	}

	valid := okStyle.Render("valid")
	if !st.ConfigValid {
		valid = failStyle.Render("invalid")
	}

	fmt.Fprintln(w, headingStyle.Render("System Status"))
	fmt.Fprint(w, alignKV([]kv{
		{"Version", st.Version},
		{"Configuration", valid},
	}, "  "))
	if st.ConfigError != "" {
		fmt.Fprintf(w, "  %s\n", st.ConfigError)
	}

	model := []kv{
		{"Provider", st.AI.Provider},
		{"Mode", st.AI.Mode},
		{"Endpoint configured", yesNo(st.AI.EndpointConfigured)},
		{"API key configured", yesNo(st.AI.APIKeyConfigured)},
		{"API version", st.AI.APIVersion},
		{"Deployment", st.AI.Deployment},
	}
	if st.AI.Health != "" {
		model = append(model, kv{"Model health", st.AI.Health})
	}
	fmt.Fprintln(w, headingStyle.Render("Language Model"))
	fmt.Fprint(w, alignKV(model, "  "))

	fmt.Fprintln(w, headingStyle.Render("Components"))
	fmt.Fprint(w, alignKV([]kv{
		{"Web search", st.Components.WebSearch},
		{"News search", st.Components.NewsSearch},
		{"Fetcher", st.Components.Fetcher},
		{"Extraction", st.Components.Extraction},
		{"Summarizer", st.Components.Engine},
		{"History", st.Components.History},
	}, "  "))

	fmt.Fprintln(w, headingStyle.Render("Limits"))
	fmt.Fprint(w, alignKV([]kv{
		{"Max results", fmt.Sprint(st.MaxResults)},
		{"Output directory", st.OutputDir},
		{"Chunk size", fmt.Sprint(st.ChunkSize)},
		{"Max content length", fmt.Sprint(st.MaxContentLength)},
	}, "  "))
	return nil
}

// printResult writes the outcome of one topic run.
func printResult(w io.Writer, res *types.RunResult) {
	if res == nil {
		return
	}
	if res.Failed() {
		fmt.Fprintf(w, "%s %s: %s\n", failStyle.Render("FAILED"), res.Topic, res.Error)
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, res.QuickSummary)
	fmt.Fprint(w, alignKV([]kv{
		{"Search results", fmt.Sprint(res.SearchResultsCount)},
		{"Articles", fmt.Sprint(res.ScrapedArticlesCount)},
		{"Report", res.ReportPath},
		{"Backup", res.JSONPath},
	}, "  "))
}

// printBatchSummary writes the per-topic status of a multi-topic run.
func printBatchSummary(w io.Writer, results []*types.RunResult) {
	ok := 0
	pairs := make([]kv, 0, len(results))
	for _, res := range results {
		status := failStyle.Render("failed")
		if !res.Failed() {
			ok++
			status = okStyle.Render(fmt.Sprintf("%d articles", res.TotalArticles))
		}
		pairs = append(pairs, kv{res.Topic, status})
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("Processed %d/%d topics", ok, len(results))))
	fmt.Fprint(w, alignKV(pairs, "  "))
}
