package index

import (
	"testing"
	"time"

	"github.com/mshibata/chienowa/models"
)

func memStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenMemOnly()
	if err != nil {
		t.Fatalf("failed to build store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUploadAndSearch(t *testing.T) {
	s := memStore(t)

	n, err := s.UploadPDFFaqs([]models.Record{
		{
			Question:  "How do I reset my password?",
			Answer:    "Use the self-service portal.",
			SourceID:  "file-1",
			SourceURL: "https://example.com/doc",
			PageNum:   4,
		},
		{
			Question: "Where is the cafeteria?",
			Answer:   "Building B, first floor.",
			SourceID: "file-2",
		},
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 stored, got %d", n)
	}

	_, err = s.UploadSlackFaqs([]models.Record{{
		Question: "Who owns the password rotation policy?",
		Answer:   "The security team.",
		ThreadID: "171234.5678",
	}})
	if err != nil {
		t.Fatalf("slack upload failed: %v", err)
	}

	results, err := s.Search("password", 3)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results.PDF) == 0 {
		t.Fatalf("expected a PDF hit")
	}
	hit := results.PDF[0]
	if hit.Question != "How do I reset my password?" {
		t.Fatalf("unexpected top hit: %+v", hit)
	}
	if hit.SourceURL != "https://example.com/doc" || hit.PageNum != 4 {
		t.Fatalf("stored fields not round-tripped: %+v", hit)
	}
	if hit.SourceType != models.SourcePDF {
		t.Fatalf("source type not set: %+v", hit)
	}
	if len(results.Slack) == 0 {
		t.Fatalf("expected a Slack hit")
	}
	if results.Slack[0].ThreadID != "171234.5678" {
		t.Fatalf("thread id lost: %+v", results.Slack[0])
	}
}

func TestUpload_AssignsIDAndTimestamp(t *testing.T) {
	s := memStore(t)
	_, err := s.UploadPDFFaqs([]models.Record{{Question: "Q?", Answer: "A."}})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	results, err := s.Search("Q", 1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results.PDF) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(results.PDF))
	}
	if results.PDF[0].ID == "" {
		t.Fatalf("id not assigned")
	}
	if results.PDF[0].CreatedAt.IsZero() || time.Since(results.PDF[0].CreatedAt) > time.Minute {
		t.Fatalf("created_at not assigned: %v", results.PDF[0].CreatedAt)
	}
}

func TestUpload_EmptyBatch(t *testing.T) {
	s := memStore(t)
	n, err := s.UploadSlackFaqs(nil)
	if err != nil || n != 0 {
		t.Fatalf("expected 0, nil for empty batch, got %d, %v", n, err)
	}
}
