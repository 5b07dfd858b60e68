// Package telemetry tracks completion-service token consumption. The
// tracker is an explicit, caller-owned accumulator passed into the
// extractor rather than a hidden process-wide counter, so concurrent
// pipelines can own separate trackers or share one safely.
package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mshibata/chienowa/models"
)

var (
	completionRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chienowa_completion_requests_total",
		Help: "Completion service calls, by operation and outcome.",
	}, []string{"operation", "outcome"})

	completionTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chienowa_completion_tokens_total",
		Help: "Tokens consumed by completion calls, by direction.",
	}, []string{"direction"})
)

// UsageTracker accumulates token usage across completion calls. Safe for
// concurrent use. The zero value is not usable; call NewUsageTracker.
type UsageTracker struct {
	mu       sync.Mutex
	requests int64
	total    models.TokenUsage
}

func NewUsageTracker() *UsageTracker {
	return &UsageTracker{}
}

// Record adds one call's usage to the running totals and exports it to
// the prometheus counters.
func (t *UsageTracker) Record(operation string, usage models.TokenUsage) {
	t.mu.Lock()
	t.requests++
	t.total.PromptTokens += usage.PromptTokens
	t.total.CompletionTokens += usage.CompletionTokens
	t.total.TotalTokens += usage.TotalTokens
	t.mu.Unlock()

	completionRequests.WithLabelValues(operation, "success").Inc()
	completionTokens.WithLabelValues("prompt").Add(float64(usage.PromptTokens))
	completionTokens.WithLabelValues("completion").Add(float64(usage.CompletionTokens))
}

// RecordFailure counts a failed completion call.
func (t *UsageTracker) RecordFailure(operation string) {
	completionRequests.WithLabelValues(operation, "error").Inc()
}

// Total returns the accumulated usage so far.
func (t *UsageTracker) Total() models.TokenUsage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Requests returns how many successful calls were recorded.
func (t *UsageTracker) Requests() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.requests
}
