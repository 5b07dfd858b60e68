// Package models holds the data types shared across the FAQ pipeline.
package models

import "time"

// SourceType identifies where a FAQ was extracted from.
type SourceType string

const (
	SourcePDF   SourceType = "pdf"
	SourceSlack SourceType = "slack"
)

// Faq is the canonical post-processed record: a normalized question and
// answer plus the identity of the source they were extracted from.
// Provenance fields beyond these (content chunk, summary, page or thread
// ids, creation timestamp) are attached by the ingest layer, not here.
type Faq struct {
	Question   string     `json:"question"`
	Answer     string     `json:"answer"`
	SourceType SourceType `json:"source_type"`
	SourceID   string     `json:"source_id"`
	SourceURL  string     `json:"source_url"`
}

// Record is a Faq enriched with index provenance, as stored in and
// returned from the search index.
type Record struct {
	ID           string     `json:"id"`
	Question     string     `json:"question"`
	Answer       string     `json:"answer"`
	SourceType   SourceType `json:"source_type"`
	SourceID     string     `json:"source_id,omitempty"`
	SourceURL    string     `json:"source_url"`
	ContentChunk string     `json:"content_chunk,omitempty"`
	Summary      string     `json:"summary,omitempty"`
	PageNum      int        `json:"page_num,omitempty"`
	ThreadID     string     `json:"thread_id,omitempty"`
	ChannelID    string     `json:"channel_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// SearchResults groups retrieval hits by source kind, ranked per kind.
type SearchResults struct {
	PDF   []Record `json:"pdf"`
	Slack []Record `json:"slack"`
}

// TokenUsage is the token accounting reported by the completion service
// for one call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
