package structurer

import (
	"fmt"
	"strings"
)

// turn is one speaker's contiguous block of messages.
type turn struct {
	speaker string
	message string
}

// questionIndicators marks a turn as question-like when any of these
// substrings appears in its lowercased text. The set is bilingual on
// purpose: corporate Slack threads mix English and Japanese freely.
var questionIndicators = []string{
	"?", "？", "how", "what", "when", "where", "why", "who", "which",
	"could you", "can you", "どう", "なぜ", "どこ", "いつ", "だれ", "何",
	"教えて", "ください", "できますか", "できる？", "ですか",
}

// structureConversation splits conversation text into speaker turns,
// records question/answer adjacency pairs and appends both the detected
// pairs and the participant list to the text.
func structureConversation(text string) Report {
	report := Report{}
	turns := splitTurns(text, &report)

	for i := 0; i+1 < len(turns); i++ {
		if !isQuestion(turns[i].message) {
			continue
		}
		// Greedy adjacency: assume the very next turn answers the
		// question. This misattributes answers in busy multi-party
		// threads; the annotation block is advisory input for the LLM,
		// not ground truth.
		report.QAPairs = append(report.QAPairs, QAPair{
			QuestionBy: turns[i].speaker,
			Question:   turns[i].message,
			AnswerBy:   turns[i+1].speaker,
			Answer:     turns[i+1].message,
		})
	}

	report.EnhancedText = text + conversationSummary(report)
	return report
}

// splitTurns parses "Name: message" lines. A line opens a new turn when it
// contains a colon whose prefix is shorter than 30 characters; anything
// else continues the current turn.
func splitTurns(text string, report *Report) []turn {
	var turns []turn
	var current *turn
	seen := map[string]bool{}

	flush := func() {
		if current != nil && strings.TrimSpace(current.message) != "" {
			turns = append(turns, *current)
		}
	}

	for _, line := range strings.Split(text, "\n") {
		name, rest, found := strings.Cut(line, ":")
		if found && charLen(name) < 30 {
			flush()
			speaker := strings.TrimSpace(name)
			current = &turn{speaker: speaker, message: strings.TrimSpace(rest)}
			if !seen[speaker] {
				seen[speaker] = true
				report.Participants = append(report.Participants, speaker)
			}
			continue
		}
		if current != nil {
			current.message += "\n" + line
		}
	}
	flush()
	return turns
}

func isQuestion(message string) bool {
	lowered := strings.ToLower(message)
	for _, indicator := range questionIndicators {
		if strings.Contains(lowered, indicator) {
			return true
		}
	}
	return false
}

func conversationSummary(report Report) string {
	var b strings.Builder

	if len(report.QAPairs) > 0 {
		b.WriteString("\n\n=== 検出された質問と回答のパターン ===\n")
		for i, qa := range report.QAPairs {
			fmt.Fprintf(&b, "\n【質問%d】 (%s): %s\n", i+1, qa.QuestionBy, qa.Question)
			fmt.Fprintf(&b, "【回答%d】 (%s): %s\n", i+1, qa.AnswerBy, qa.Answer)
		}
	}
	if len(report.Participants) > 0 {
		b.WriteString("\n\n=== 会話参加者 ===\n")
		for _, participant := range report.Participants {
			b.WriteString("- " + participant + "\n")
		}
	}
	return b.String()
}
