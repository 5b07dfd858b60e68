// Package postprocess normalizes generated FAQ entries and removes
// near-duplicates so the records handed to the index are consistent:
// questions end in a question mark, answers end in a full sentence with a
// source reference, and paraphrased duplicates collapse to one record.
package postprocess

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mshibata/chienowa/models"
)

const maxQuestionLen = 100

var (
	firstClausePattern = regexp.MustCompile(`^[^.;,?!]+[.;,?!]`)
	affirmationPattern = regexp.MustCompile(`^(はい|いいえ|Yes|No)(、|\.|,|\s)`)
	latinOrDigitEnd    = regexp.MustCompile(`[a-zA-Z0-9]$`)
	japaneseEnd        = regexp.MustCompile(`[ぁ-んァ-ン一-龯々]$`)
)

// japaneseInterrogatives: a question containing any of these gets the
// full-width terminator.
var japaneseInterrogatives = []string{"どう", "なぜ", "どこ", "いつ", "だれ", "何", "ですか"}

// sourceReferenceTerms: an answer already mentioning one of these is not
// given an extra reference sentence.
var sourceReferenceTerms = []string{"参照", "詳細は", "マニュアル", "ドキュメント", "スレッド", "会話"}

// Process normalizes each entry and deduplicates the batch, preserving
// order. Entries whose question or answer is empty after trimming are
// dropped. Both normalization passes are idempotent.
func Process(faqs []models.Faq, sourceType models.SourceType, sourceURL string) []models.Faq {
	if len(faqs) == 0 {
		return nil
	}

	processed := make([]models.Faq, 0, len(faqs))
	for _, faq := range faqs {
		question := strings.TrimSpace(faq.Question)
		answer := strings.TrimSpace(faq.Answer)
		if question == "" || answer == "" {
			continue
		}
		faq.Question = NormalizeQuestion(question)
		faq.Answer = NormalizeAnswer(answer, sourceType, sourceURL)
		processed = append(processed, faq)
	}

	return dedupe(processed)
}

// NormalizeQuestion trims the question, terminates it with a question
// mark matching its detected language, shortens questions over 100
// characters and uppercases a leading lowercase Latin letter.
func NormalizeQuestion(question string) string {
	improved := strings.TrimSpace(question)
	if improved == "" {
		return improved
	}

	if !strings.HasSuffix(improved, "?") && !strings.HasSuffix(improved, "？") {
		if containsAny(strings.ToLower(improved), japaneseInterrogatives) {
			improved += "？"
		} else {
			improved += "?"
		}
	}

	if utf8.RuneCountInString(improved) > maxQuestionLen {
		if m := firstClausePattern.FindString(improved); m != "" {
			improved = m
		} else {
			improved = string([]rune(improved)[:maxQuestionLen-3]) + "..."
		}
	}

	r := []rune(improved)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] = unicode.ToUpper(r[0])
		improved = string(r)
	}
	return improved
}

// NormalizeAnswer trims the answer, strips a leading yes/no affirmation,
// terminates the sentence and appends a reference to the original source
// unless the answer already points the reader somewhere.
func NormalizeAnswer(answer string, sourceType models.SourceType, sourceURL string) string {
	improved := strings.TrimSpace(answer)
	if improved == "" {
		return improved
	}

	improved = affirmationPattern.ReplaceAllString(improved, "")

	if !strings.HasSuffix(improved, ".") && !strings.HasSuffix(improved, "。") {
		switch {
		case latinOrDigitEnd.MatchString(improved):
			improved += "."
		case japaneseEnd.MatchString(improved):
			improved += "。"
		}
	}

	if sourceURL != "" && !containsAny(improved, sourceReferenceTerms) {
		sourceName := "ドキュメント"
		if sourceType == models.SourceSlack {
			sourceName = "Slack会話"
		}
		improved += "\n\n詳細については元の" + sourceName + "を参照してください。"
	}
	return improved
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
