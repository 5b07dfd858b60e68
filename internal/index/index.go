// Package index stores FAQ records in two bleve full-text indexes, one
// per source kind, and serves ranked retrieval over both. The rest of the
// pipeline treats it as the indexing sink and retrieval service; the
// schema here is not part of the core contract.
package index

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/blevesearch/bleve"
	"github.com/google/uuid"

	"github.com/mshibata/chienowa/models"
)

const (
	pdfIndexName   = "pdf-faq-index"
	slackIndexName = "slack-faq-index"
)

// DefaultTopK bounds retrieval results per source kind.
const DefaultTopK = 3

// Store owns the two FAQ indexes.
type Store struct {
	pdf    bleve.Index
	slack  bleve.Index
	logger *log.Logger
}

// Open opens the indexes under dir, creating them on first use.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create index dir: %w", err)
	}
	pdf, err := openIndex(filepath.Join(dir, pdfIndexName))
	if err != nil {
		return nil, err
	}
	slack, err := openIndex(filepath.Join(dir, slackIndexName))
	if err != nil {
		_ = pdf.Close()
		return nil, err
	}
	return newStore(pdf, slack), nil
}

// OpenMemOnly builds an in-memory store, used in tests.
func OpenMemOnly() (*Store, error) {
	pdf, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, err
	}
	slack, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, err
	}
	return newStore(pdf, slack), nil
}

func newStore(pdf, slack bleve.Index) *Store {
	return &Store{
		pdf:    pdf,
		slack:  slack,
		logger: log.New(log.Writer(), "[INDEX] ", log.LstdFlags),
	}
}

func openIndex(path string) (bleve.Index, error) {
	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, bleve.NewIndexMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open index %s: %w", path, err)
	}
	return idx, nil
}

// UploadPDFFaqs indexes PDF-sourced records and returns how many were
// stored.
func (s *Store) UploadPDFFaqs(records []models.Record) (int, error) {
	return s.upload(s.pdf, models.SourcePDF, records)
}

// UploadSlackFaqs indexes Slack-sourced records and returns how many
// were stored.
func (s *Store) UploadSlackFaqs(records []models.Record) (int, error) {
	return s.upload(s.slack, models.SourceSlack, records)
}

func (s *Store) upload(idx bleve.Index, sourceType models.SourceType, records []models.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	batch := idx.NewBatch()
	for _, record := range records {
		if record.ID == "" {
			record.ID = uuid.New().String()
		}
		if record.CreatedAt.IsZero() {
			record.CreatedAt = time.Now().UTC()
		}
		record.SourceType = sourceType
		if err := batch.Index(record.ID, toDocument(record)); err != nil {
			return 0, fmt.Errorf("failed to add record to batch: %w", err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		return 0, fmt.Errorf("failed to index batch: %w", err)
	}
	s.logger.Printf("indexed %d %s FAQs", len(records), sourceType)
	return len(records), nil
}

// Search queries both indexes and returns topK ranked records per source
// kind.
func (s *Store) Search(query string, topK int) (models.SearchResults, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	pdfHits, err := searchIndex(s.pdf, models.SourcePDF, query, topK)
	if err != nil {
		return models.SearchResults{}, err
	}
	slackHits, err := searchIndex(s.slack, models.SourceSlack, query, topK)
	if err != nil {
		return models.SearchResults{}, err
	}
	return models.SearchResults{PDF: pdfHits, Slack: slackHits}, nil
}

func searchIndex(idx bleve.Index, sourceType models.SourceType, query string, topK int) ([]models.Record, error) {
	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequestOptions(q, topK, 0, false)
	req.Fields = []string{"*"}

	res, err := idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	records := make([]models.Record, 0, len(res.Hits))
	for _, hit := range res.Hits {
		record := models.Record{
			ID:           hit.ID,
			SourceType:   sourceType,
			Question:     fieldString(hit.Fields, "question"),
			Answer:       fieldString(hit.Fields, "answer"),
			SourceID:     fieldString(hit.Fields, "source_id"),
			SourceURL:    fieldString(hit.Fields, "source_url"),
			ContentChunk: fieldString(hit.Fields, "content_chunk"),
			Summary:      fieldString(hit.Fields, "summary"),
			ThreadID:     fieldString(hit.Fields, "thread_id"),
			ChannelID:    fieldString(hit.Fields, "channel_id"),
			PageNum:      fieldInt(hit.Fields, "page_num"),
		}
		if ts, err := time.Parse(time.RFC3339, fieldString(hit.Fields, "created_at")); err == nil {
			record.CreatedAt = ts
		}
		records = append(records, record)
	}
	return records, nil
}

// toDocument flattens a record into the shape bleve indexes. created_at
// is stored as RFC3339 text so it round-trips through stored fields.
func toDocument(record models.Record) map[string]interface{} {
	return map[string]interface{}{
		"question":      record.Question,
		"answer":        record.Answer,
		"source_id":     record.SourceID,
		"source_url":    record.SourceURL,
		"content_chunk": record.ContentChunk,
		"summary":       record.Summary,
		"page_num":      record.PageNum,
		"thread_id":     record.ThreadID,
		"channel_id":    record.ChannelID,
		"created_at":    record.CreatedAt.Format(time.RFC3339),
	}
}

func fieldString(fields map[string]interface{}, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func fieldInt(fields map[string]interface{}, key string) int {
	if v, ok := fields[key].(float64); ok {
		return int(v)
	}
	return 0
}

// Close releases both indexes.
func (s *Store) Close() error {
	if err := s.pdf.Close(); err != nil {
		return err
	}
	return s.slack.Close()
}
