// Package ingest orchestrates the two ingestion pipelines: Drive PDFs
// and Slack conversations through chunking, summarization, FAQ
// extraction and indexing. Runs are sequential and tolerate per-source
// failures; a broken document never aborts the batch.
package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mshibata/chienowa/internal/chunker"
	"github.com/mshibata/chienowa/internal/extract"
	"github.com/mshibata/chienowa/internal/ledger"
	"github.com/mshibata/chienowa/internal/source/drive"
	"github.com/mshibata/chienowa/internal/source/pdfdoc"
	"github.com/mshibata/chienowa/internal/source/slack"
	"github.com/mshibata/chienowa/models"
)

// DriveSource lists and downloads folder documents.
type DriveSource interface {
	ListPDFs(ctx context.Context, folderID string) ([]drive.PDFFile, error)
	Download(ctx context.Context, fileID string) ([]byte, error)
}

// SlackSource fetches flattened channel conversations.
type SlackSource interface {
	ChannelThreads(ctx context.Context, channelID string, daysBack int) ([]slack.Thread, error)
}

// FaqGenerator is the extraction service boundary, satisfied by
// extract.Extractor.
type FaqGenerator interface {
	Extract(ctx context.Context, text string, sourceType models.SourceType, sourceID, sourceURL, extraContext string) extract.Result
	Summarize(ctx context.Context, text string) (string, models.TokenUsage, error)
}

// Indexer is the indexing sink, satisfied by index.Store.
type Indexer interface {
	UploadPDFFaqs(records []models.Record) (int, error)
	UploadSlackFaqs(records []models.Record) (int, error)
}

// Summary reports what one run did.
type Summary struct {
	Sources int `json:"sources"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
	Faqs    int `json:"faqs"`
}

// Options configures an Ingestor.
type Options struct {
	MaxChunkSize  int
	SlackDaysBack int
}

// Ingestor wires sources to the extraction pipeline and the index.
type Ingestor struct {
	drive   DriveSource
	slack   SlackSource
	faqs    FaqGenerator
	store   Indexer
	ledger  *ledger.Ledger
	opts    Options
	logger  *log.Logger
	extract func(data []byte) ([]chunker.Page, error)
}

// New creates an Ingestor. processed may be nil, in which case every run
// reprocesses all sources.
func New(driveSource DriveSource, slackSource SlackSource, faqs FaqGenerator, store Indexer, processed *ledger.Ledger, opts Options) *Ingestor {
	if opts.MaxChunkSize == 0 {
		opts.MaxChunkSize = chunker.DefaultMaxChunkSize
	}
	if opts.SlackDaysBack == 0 {
		opts.SlackDaysBack = 30
	}
	return &Ingestor{
		drive:   driveSource,
		slack:   slackSource,
		faqs:    faqs,
		store:   store,
		ledger:  processed,
		opts:    opts,
		logger:  log.New(log.Writer(), "[INGEST] ", log.LstdFlags),
		extract: pdfdoc.ExtractPages,
	}
}

// IngestDrive processes every PDF in the folder: extract pages, chunk,
// summarize and extract FAQs per chunk, then index the results.
func (i *Ingestor) IngestDrive(ctx context.Context, folderID string) (Summary, error) {
	files, err := i.drive.ListPDFs(ctx, folderID)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list drive folder: %w", err)
	}

	var summary Summary
	for _, file := range files {
		if i.ledger.Seen(ctx, file.ID) {
			summary.Skipped++
			continue
		}

		count, err := i.ingestPDF(ctx, file)
		if err != nil {
			i.logger.Printf("skipping file %s (%s): %v", file.ID, file.Name, err)
			summary.Failed++
			continue
		}
		summary.Sources++
		summary.Faqs += count

		if err := i.ledger.Mark(ctx, file.ID); err != nil {
			i.logger.Printf("failed to mark file %s as processed: %v", file.ID, err)
		}
	}

	i.logger.Printf("drive run complete: %d files, %d skipped, %d failed, %d FAQs",
		summary.Sources, summary.Skipped, summary.Failed, summary.Faqs)
	return summary, nil
}

func (i *Ingestor) ingestPDF(ctx context.Context, file drive.PDFFile) (int, error) {
	data, err := i.drive.Download(ctx, file.ID)
	if err != nil {
		return 0, err
	}
	pages, err := i.extract(data)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, chunk := range chunker.Split(pages, i.opts.MaxChunkSize) {
		summary, _, err := i.faqs.Summarize(ctx, chunk.Text)
		if err != nil {
			i.logger.Printf("summary failed for %s page %d: %v", file.ID, chunk.PageNum, err)
		}

		extraContext := fmt.Sprintf("このテキストは%sのページ%dから抽出されました。", file.Name, chunk.PageNum)
		res := i.faqs.Extract(ctx, chunk.Text, models.SourcePDF, file.ID, file.WebViewLink, extraContext)
		if res.Err != nil {
			i.logger.Printf("extraction failed for %s page %d: %v", file.ID, chunk.PageNum, res.Err)
			continue
		}
		if len(res.Faqs) == 0 {
			continue
		}

		now := time.Now().UTC()
		records := make([]models.Record, 0, len(res.Faqs))
		for _, faq := range res.Faqs {
			records = append(records, models.Record{
				Question:     faq.Question,
				Answer:       faq.Answer,
				SourceType:   faq.SourceType,
				SourceID:     faq.SourceID,
				SourceURL:    faq.SourceURL,
				ContentChunk: chunk.Text,
				Summary:      summary,
				PageNum:      chunk.PageNum,
				CreatedAt:    now,
			})
		}
		stored, err := i.store.UploadPDFFaqs(records)
		if err != nil {
			return total, err
		}
		total += stored
	}
	return total, nil
}

// IngestSlack processes the channel's recent conversations, one
// extraction per thread.
func (i *Ingestor) IngestSlack(ctx context.Context, channelID string) (Summary, error) {
	threads, err := i.slack.ChannelThreads(ctx, channelID, i.opts.SlackDaysBack)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to fetch slack channel: %w", err)
	}

	var summary Summary
	for _, thread := range threads {
		if i.ledger.Seen(ctx, thread.ThreadID) {
			summary.Skipped++
			continue
		}

		threadSummary, _, err := i.faqs.Summarize(ctx, thread.Text)
		if err != nil {
			i.logger.Printf("summary failed for thread %s: %v", thread.ThreadID, err)
		}

		res := i.faqs.Extract(ctx, thread.Text, models.SourceSlack, thread.ThreadID, thread.Permalink, "")
		if res.Err != nil {
			i.logger.Printf("extraction failed for thread %s: %v", thread.ThreadID, res.Err)
			summary.Failed++
			continue
		}
		summary.Sources++

		if len(res.Faqs) > 0 {
			now := time.Now().UTC()
			records := make([]models.Record, 0, len(res.Faqs))
			for _, faq := range res.Faqs {
				records = append(records, models.Record{
					Question:     faq.Question,
					Answer:       faq.Answer,
					SourceType:   faq.SourceType,
					SourceID:     faq.SourceID,
					SourceURL:    faq.SourceURL,
					ContentChunk: thread.Text,
					Summary:      threadSummary,
					ThreadID:     thread.ThreadID,
					ChannelID:    thread.ChannelID,
					CreatedAt:    now,
				})
			}
			stored, err := i.store.UploadSlackFaqs(records)
			if err != nil {
				return summary, err
			}
			summary.Faqs += stored
		}

		if err := i.ledger.Mark(ctx, thread.ThreadID); err != nil {
			i.logger.Printf("failed to mark thread %s as processed: %v", thread.ThreadID, err)
		}
	}

	i.logger.Printf("slack run complete: %d threads, %d skipped, %d failed, %d FAQs",
		summary.Sources, summary.Skipped, summary.Failed, summary.Faqs)
	return summary, nil
}
