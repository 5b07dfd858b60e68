// Package structurer extracts structural signals (headings, bullet lists,
// emphasized terms, speaker turns, question/answer pairs) from raw source
// text and produces an annotated text block for prompt construction.
package structurer

import (
	"log"
	"unicode/utf8"
)

// Kind selects the heuristics applied to the input text.
type Kind string

const (
	// KindDocument applies document heuristics (headings, bullets, terms).
	KindDocument Kind = "document"
	// KindConversation applies conversation heuristics (turns, Q&A pairs).
	KindConversation Kind = "conversation"
)

// QAPair links a question-like turn to the immediately following turn.
// Adjacency is a greedy heuristic, not semantic matching: in multi-party
// threads the recorded answer may not actually address the question.
type QAPair struct {
	QuestionBy string `json:"question_by"`
	Question   string `json:"question"`
	AnswerBy   string `json:"answer_by"`
	Answer     string `json:"answer"`
}

// Report holds the structural metadata extracted from one input text.
// EnhancedText is the original text with an appended analysis block and is
// what downstream prompt building consumes.
type Report struct {
	Headers        []string
	BulletPoints   []string
	ImportantTerms []string
	Participants   []string
	QAPairs        []QAPair
	EnhancedText   string
}

var logger = log.New(log.Writer(), "[STRUCTURER] ", log.LstdFlags)

// Structure analyzes text according to kind. It never fails: if anything
// goes wrong internally the returned report carries the input text
// unchanged as EnhancedText, so generation can proceed without the
// structural annotations.
func Structure(text string, kind Kind) (report Report) {
	defer func() {
		if r := recover(); r != nil {
			logger.Printf("structure analysis failed (%s): %v", kind, r)
			report = Report{EnhancedText: text}
		}
	}()

	switch kind {
	case KindConversation:
		return structureConversation(text)
	default:
		return structureDocument(text)
	}
}

// charLen counts characters, not bytes. The length thresholds throughout
// this package are rune counts so Japanese text is measured the same way
// as Latin text.
func charLen(s string) int {
	return utf8.RuneCountInString(s)
}
