// Package rag answers user questions against the FAQ index: retrieve
// relevant records, assemble them into a context block, ask the
// completion service for a reasoned answer and extract the final answer
// from the chain-of-thought output.
package rag

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mshibata/chienowa/internal/llm"
	"github.com/mshibata/chienowa/internal/prompt"
	"github.com/mshibata/chienowa/internal/telemetry"
	"github.com/mshibata/chienowa/models"
)

const (
	answerTemperature = 0.3
	answerMaxTokens   = 1200
)

// finalAnswerMarkers, in priority order. The answer prompt asks for
// 最終回答; the others catch models that phrase the closing section
// differently.
var finalAnswerMarkers = []string{"最終回答:", "結論:", "回答:", "まとめると:", "以上を踏まえると:"}

// Searcher is the retrieval service boundary.
type Searcher interface {
	Search(query string, topK int) (models.SearchResults, error)
}

// Source identifies one document or thread an answer drew from.
type Source struct {
	Type  models.SourceType `json:"type"`
	Title string            `json:"title"`
	URL   string            `json:"url"`
}

// Response is the outcome of one question. A service failure produces a
// degraded Message with no sources and Err set; the engine never crashes
// the caller for expected failures.
type Response struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
	Err     error    `json:"-"`
}

// Options configures the engine.
type Options struct {
	Model string
	TopK  int
}

// Engine generates grounded answers.
type Engine struct {
	provider llm.Provider
	searcher Searcher
	prompts  *prompt.Builder
	tracker  *telemetry.UsageTracker
	opts     Options
	logger   *log.Logger
}

func New(provider llm.Provider, searcher Searcher, tracker *telemetry.UsageTracker, opts Options) *Engine {
	return &Engine{
		provider: provider,
		searcher: searcher,
		prompts:  prompt.NewBuilder(),
		tracker:  tracker,
		opts:     opts,
		logger:   log.New(log.Writer(), "[RAG] ", log.LstdFlags),
	}
}

// Answer retrieves FAQs relevant to query and generates an answer from
// them.
func (e *Engine) Answer(ctx context.Context, query string) Response {
	results, err := e.searcher.Search(query, e.opts.TopK)
	if err != nil {
		e.logger.Printf("search failed: %v", err)
		return Response{Answer: "検索中にエラーが発生しました。しばらくしてからもう一度お試しください。", Err: err}
	}

	searchContext, sources := buildContext(results)
	if searchContext == "" {
		return Response{Answer: "関連する情報が見つかりませんでした。"}
	}

	completion, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Model: e.opts.Model,
		Messages: []llm.Message{
			{Role: "system", Content: prompt.AnswerSystem},
			{Role: "user", Content: e.prompts.Answer(query, searchContext)},
		},
		Temperature: answerTemperature,
		MaxTokens:   answerMaxTokens,
	})
	if err != nil {
		e.logger.Printf("answer generation failed: %v", err)
		e.tracker.RecordFailure("answer")
		return Response{Answer: "回答の生成中にエラーが発生しました。", Err: err}
	}
	e.tracker.Record("answer", completion.Usage)

	return Response{
		Answer:  ExtractFinalAnswer(completion.Text),
		Sources: sources,
	}
}

// buildContext renders search hits into the prompt context and collects
// the deduplicated source list.
func buildContext(results models.SearchResults) (string, []Source) {
	var parts []string
	var sources []Source
	seen := map[string]bool{}

	for i, hit := range results.PDF {
		parts = append(parts, fmt.Sprintf("PDF情報 %d:\n質問: %s\n回答: %s", i+1, hit.Question, hit.Answer))
		if hit.SourceURL != "" && !seen[hit.SourceURL] {
			seen[hit.SourceURL] = true
			sources = append(sources, Source{
				Type:  models.SourcePDF,
				Title: fmt.Sprintf("PDF文書 #%s", orUnknown(hit.SourceID)),
				URL:   hit.SourceURL,
			})
		}
	}
	for i, hit := range results.Slack {
		parts = append(parts, fmt.Sprintf("Slack情報 %d:\n質問: %s\n回答: %s", i+1, hit.Question, hit.Answer))
		if hit.SourceURL != "" && !seen[hit.SourceURL] {
			seen[hit.SourceURL] = true
			sources = append(sources, Source{
				Type:  models.SourceSlack,
				Title: fmt.Sprintf("Slackスレッド #%s", orUnknown(hit.ThreadID)),
				URL:   hit.SourceURL,
			})
		}
	}
	return strings.Join(parts, "\n\n"), sources
}

// ExtractFinalAnswer pulls the answer section out of chain-of-thought
// output. When no closing marker is present the reasoning section is
// stripped if recognizable; otherwise the text is returned as is.
func ExtractFinalAnswer(generated string) string {
	for _, marker := range finalAnswerMarkers {
		if _, after, found := strings.Cut(generated, marker); found {
			return strings.TrimSpace(after)
		}
	}

	if _, after, found := strings.Cut(generated, "思考プロセス:"); found && strings.Contains(after, "情報源") {
		if _, rest, ok := strings.Cut(after, "\n\n"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return strings.TrimSpace(generated)
}

func orUnknown(id string) string {
	if id == "" {
		return "Unknown"
	}
	return id
}
