package ai

import (
	"fmt"
	"strings"

	"github.com/IshaanNene/knowledge-aggregator/internal/types"
)

// NoContentInsights is the insights text for a run with no articles.
const NoContentInsights = "No content available for summarization."

const healthPrompt = "Reply with OK."

const summaryPrompt = `Please provide a comprehensive summary of the following article content.
Focus on key insights, main arguments, and important facts.
Keep the summary concise but informative.

Article Title: %s
URL: %s

Content:
%s

Summary:`

const chunkPrompt = `Write a concise summary of the following:

"%s"

CONCISE SUMMARY:`

const insightsPrompt = `Based on the following article summaries about "%s", provide key insights and conclusions.
Identify common themes, contradictions, and important takeaways.
Format as bullet points with clear, actionable insights.

Article Summaries:
%s

Key Insights:`

func buildSummaryPrompt(a types.Article, text string) string {
	return fmt.Sprintf(summaryPrompt, a.Title, a.URL, text)
}

func buildChunkPrompt(text string) string {
	return fmt.Sprintf(chunkPrompt, text)
}

func buildInsightsPrompt(topic string, articles []types.SummarizedArticle) string {
	entries := make([]string, 0, len(articles))
	for _, a := range articles {
		entries = append(entries, fmt.Sprintf("Article: %s\nSource: %s\nSummary: %s", a.Title, a.URL, a.Summary))
	}
	return fmt.Sprintf(insightsPrompt, topic, strings.Join(entries, "\n\n"))
}
