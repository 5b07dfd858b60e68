// Package extract drives FAQ generation: structure the source text, build
// the prompt, call the completion service once, parse the response and
// post-process the entries. Expected failures (service errors, unparsable
// output) never propagate as crashes; they produce an empty result that
// carries the failure so callers can tell "no FAQs found" apart from
// "extraction failed".
package extract

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/mshibata/chienowa/internal/llm"
	"github.com/mshibata/chienowa/internal/parser"
	"github.com/mshibata/chienowa/internal/postprocess"
	"github.com/mshibata/chienowa/internal/prompt"
	"github.com/mshibata/chienowa/internal/structurer"
	"github.com/mshibata/chienowa/internal/telemetry"
	"github.com/mshibata/chienowa/models"
)

// Defaults mirror the generation settings the pipeline was tuned with: a
// moderate temperature and an output budget generous enough for the
// reasoning preamble the prompt asks for.
const (
	DefaultFAQTemperature = 0.5
	DefaultFAQMaxTokens   = 3000

	summaryTemperature = 0.3
	summaryMaxTokens   = 300
)

// Options configures an Extractor.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// Result is the outcome of one extraction call. Faqs is empty both when
// the source genuinely yielded nothing and when extraction failed; Err
// distinguishes the two. Usage covers the completion call that was made,
// if any.
type Result struct {
	Faqs  []models.Faq
	Usage models.TokenUsage
	Err   error
}

// Extractor turns source text into post-processed FAQ records.
type Extractor struct {
	provider llm.Provider
	prompts  *prompt.Builder
	tracker  *telemetry.UsageTracker
	opts     Options
	logger   *log.Logger
}

// New creates an Extractor. tracker accumulates token usage across calls
// and is owned by the caller; it must not be nil.
func New(provider llm.Provider, tracker *telemetry.UsageTracker, opts Options) *Extractor {
	if opts.Temperature == 0 {
		opts.Temperature = DefaultFAQTemperature
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = DefaultFAQMaxTokens
	}
	return &Extractor{
		provider: provider,
		prompts:  prompt.NewBuilder(),
		tracker:  tracker,
		opts:     opts,
		logger:   log.New(log.Writer(), "[EXTRACTOR] ", log.LstdFlags),
	}
}

// Extract generates FAQs from text. sourceID and sourceURL are attached
// to every entry; extra context (document title, page number) is folded
// into the prompt. One completion call per invocation, issued
// synchronously.
func (e *Extractor) Extract(ctx context.Context, text string, sourceType models.SourceType, sourceID, sourceURL, extraContext string) Result {
	started := time.Now()

	var userPrompt string
	switch sourceType {
	case models.SourcePDF:
		report := structurer.Structure(text, structurer.KindDocument)
		userPrompt = e.prompts.PDFFaq(report.EnhancedText, extraContext)
	case models.SourceSlack:
		report := structurer.Structure(text, structurer.KindConversation)
		userPrompt = e.prompts.SlackFaq(report.EnhancedText, extraContext)
	default:
		userPrompt = e.prompts.GenericFaq(text, extraContext)
	}

	completion, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Model: e.opts.Model,
		Messages: []llm.Message{
			{Role: "system", Content: prompt.FAQSystem},
			{Role: "user", Content: userPrompt},
		},
		Temperature: e.opts.Temperature,
		MaxTokens:   e.opts.MaxTokens,
	})
	if err != nil {
		e.logger.Printf("completion failed for %s %s: %v", sourceType, sourceID, err)
		e.tracker.RecordFailure("faq")
		return Result{Err: err}
	}
	e.tracker.Record("faq", completion.Usage)

	raw, err := parser.Parse(completion.Text)
	if err != nil {
		e.logger.Printf("unparsable response for %s %s: %v", sourceType, sourceID, err)
		return Result{Usage: completion.Usage, Err: err}
	}

	faqs := make([]models.Faq, 0, len(raw))
	for _, entry := range raw {
		faqs = append(faqs, models.Faq{
			Question:   entry.Question,
			Answer:     entry.Answer,
			SourceType: sourceType,
			SourceID:   sourceID,
			SourceURL:  sourceURL,
		})
	}
	processed := postprocess.Process(faqs, sourceType, sourceURL)

	e.logger.Printf("extracted %d FAQs from %s %s in %v (tokens: %d, cumulative: %d)",
		len(processed), sourceType, sourceID, time.Since(started).Round(time.Millisecond),
		completion.Usage.TotalTokens, e.tracker.Total().TotalTokens)

	return Result{Faqs: processed, Usage: completion.Usage}
}

// Summarize produces a short summary of text, used as index metadata. A
// service failure is returned to the caller, who may carry on without a
// summary.
func (e *Extractor) Summarize(ctx context.Context, text string) (string, models.TokenUsage, error) {
	completion, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Model: e.opts.Model,
		Messages: []llm.Message{
			{Role: "system", Content: prompt.SummarySystem},
			{Role: "user", Content: e.prompts.Summary(text)},
		},
		Temperature: summaryTemperature,
		MaxTokens:   summaryMaxTokens,
	})
	if err != nil {
		e.tracker.RecordFailure("summary")
		return "", models.TokenUsage{}, err
	}
	e.tracker.Record("summary", completion.Usage)
	return strings.TrimSpace(completion.Text), completion.Usage, nil
}
