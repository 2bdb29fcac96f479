package types

import (
	"testing"
	"time"
)

func TestNewTopicReportCountsArticles(t *testing.T) {
	arts := []SummarizedArticle{
		{Article: Article{Title: "a"}, Summary: "s1"},
		{Article: Article{Title: "b"}, Summary: "s2"},
	}
	r := NewTopicReport("topic", arts, "insights", time.Now())
	if r.TotalArticles != len(r.Articles) {
		t.Errorf("expected total %d, got %d", len(r.Articles), r.TotalArticles)
	}

	empty := NewTopicReport("topic", nil, "none", time.Now())
	if empty.Articles == nil {
		t.Error("expected non-nil article slice")
	}
	if empty.TotalArticles != 0 {
		t.Errorf("expected 0 articles, got %d", empty.TotalArticles)
	}
}

func TestNewRequestRejectsNonHTTP(t *testing.T) {
	if _, err := NewRequest("ftp://example.com/file"); err == nil {
		t.Error("expected error for ftp scheme")
	}
	if _, err := NewRequest("https://"); err == nil {
		t.Error("expected error for missing host")
	}
	req, err := NewRequest("https://example.com/a?b=c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Domain() != "example.com" {
		t.Errorf("expected domain example.com, got %s", req.Domain())
	}
}
