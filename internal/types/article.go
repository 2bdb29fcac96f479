package types

import "time"

// Unknown is the placeholder for missing article metadata.
const Unknown = "Unknown"

// Vertical identifies which search index produced a result.
type Vertical string

const (
	VerticalWeb  Vertical = "web"
	VerticalNews Vertical = "news"
)

// SearchResult is one ranked hit from a search provider.
type SearchResult struct {
	Title    string   `json:"title"`
	URL      string   `json:"url"`
	Snippet  string   `json:"snippet"`
	Date     string   `json:"date,omitempty"`
	Source   string   `json:"source,omitempty"`
	Vertical Vertical `json:"vertical"`
}

// ExtractionMethod records which strategy produced an Article.
type ExtractionMethod string

const (
	MethodPrimary  ExtractionMethod = "primary"
	MethodFallback ExtractionMethod = "fallback"
)

// Article is the normalized text of one scraped page.
type Article struct {
	Title       string           `json:"title"`
	URL         string           `json:"url"`
	Text        string           `json:"text"`
	Authors     string           `json:"authors"`
	PublishDate string           `json:"publish_date"`
	Method      ExtractionMethod `json:"extraction_method"`
}

// SummarizationMethod records which path produced a summary.
type SummarizationMethod string

const (
	SummaryDirect   SummarizationMethod = "direct"
	SummaryChunked  SummarizationMethod = "chunked"
	SummaryFallback SummarizationMethod = "fallback"
)

// SummarizedArticle is an Article plus its summary.
type SummarizedArticle struct {
	Article
	Summary             string              `json:"summary"`
	SummarizationMethod SummarizationMethod `json:"summarization_method"`
}

// TopicReport is the unit persisted to disk and returned to callers.
type TopicReport struct {
	Topic         string              `json:"topic"`
	Articles      []SummarizedArticle `json:"articles"`
	FinalInsights string              `json:"final_insights"`
	TotalArticles int                 `json:"total_articles"`
	GeneratedAt   time.Time           `json:"generated_at"`
}

// NewTopicReport builds a report whose TotalArticles always matches the
// number of articles.
func NewTopicReport(topic string, articles []SummarizedArticle, insights string, at time.Time) *TopicReport {
	if articles == nil {
		articles = []SummarizedArticle{}
	}
	return &TopicReport{
		Topic:         topic,
		Articles:      articles,
		FinalInsights: insights,
		TotalArticles: len(articles),
		GeneratedAt:   at,
	}
}

// Run statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// RunResult is what one pipeline run hands back to its caller.
type RunResult struct {
	ID                   string       `json:"id"`
	Topic                string       `json:"topic"`
	Status               string       `json:"status"`
	ReportPath           string       `json:"report_path,omitempty"`
	JSONPath             string       `json:"json_path,omitempty"`
	TotalArticles        int          `json:"total_articles"`
	SearchResultsCount   int          `json:"search_results_count"`
	ScrapedArticlesCount int          `json:"scraped_articles_count"`
	QuickSummary         string       `json:"quick_summary,omitempty"`
	Report               *TopicReport `json:"summary_data,omitempty"`
	Error                string       `json:"error,omitempty"`
	StartedAt            time.Time    `json:"started_at"`
	FinishedAt           time.Time    `json:"finished_at"`
}

// Failed reports whether the run ended in a failure record.
func (r *RunResult) Failed() bool {
	return r.Status == StatusFailed
}
