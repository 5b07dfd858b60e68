package structurer

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// Numbered or chaptered heading: "1. Title", "2- Title", "3: Title",
	// "第4章 ...", "①. ...".
	headingPattern = regexp.MustCompile(`^\s*(\d+\.|\d+-|\d+:|第\d+章|[①-⑩]\.)\s*[\p{L}\p{N}_]`)

	// Bullet glyph, numbered-list marker or circled digit followed by a word.
	bulletPattern = regexp.MustCompile(`^\s*([•\-*・]|\d+\.|[①-⑩]\.?)\s+[\p{L}\p{N}_]`)

	// Terms quoted in Japanese corner brackets or double quotes.
	quotedTermPattern = regexp.MustCompile(`「([^」]{2,})」|"([^"]{2,})"`)

	// Compound Katakana+Kanji tokens, a rough signal for domain jargon.
	compoundTermPattern = regexp.MustCompile(`[ァ-ヶー]+[一-龯々]+|[一-龯々]+[ァ-ヶー]+`)

	// Markdown emphasis spans: **x**, *x*, __x__, _x_.
	emphasisPattern = regexp.MustCompile(`\*\*([^*]+)\*\*|\*([^*]+)\*|__([^_]+)__|_([^_]+)_`)
)

const (
	maxListedHeaders = 7
	maxListedBullets = 7
	maxListedTerms   = 10
)

// structureDocument detects headings, bullet lists and important terms in
// document-style text (PDF manuals) and appends a structure summary block.
func structureDocument(text string) Report {
	report := Report{}
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		// A short line followed by a blank line or a line starting with a
		// digit is a heading candidate, unless it ends mid-sentence.
		if trimmed != "" && charLen(trimmed) < 50 &&
			i+1 < len(lines) && nextLineSuggestsHeading(lines[i+1]) &&
			!endsWithSentencePunct(trimmed) {
			report.Headers = append(report.Headers, trimmed)
		}

		if headingPattern.MatchString(line) {
			report.Headers = append(report.Headers, trimmed)
		}

		if bulletPattern.MatchString(line) {
			report.BulletPoints = append(report.BulletPoints, trimmed)
		}
	}

	report.ImportantTerms = collectImportantTerms(text)
	report.EnhancedText = text + documentSummary(report)
	return report
}

func nextLineSuggestsHeading(next string) bool {
	trimmed := strings.TrimSpace(next)
	if trimmed == "" {
		return true
	}
	// unicode.IsDigit covers full-width digits (１２３) alongside ASCII.
	return unicode.IsDigit([]rune(trimmed)[0])
}

func endsWithSentencePunct(s string) bool {
	r := []rune(s)
	switch r[len(r)-1] {
	case ',', '.', '、', '。':
		return true
	}
	return false
}

// collectImportantTerms gathers quoted phrases, Katakana+Kanji compounds
// and markdown-emphasized spans, deduplicated in first-seen order.
func collectImportantTerms(text string) []string {
	var terms []string
	seen := map[string]bool{}
	add := func(term string, minLen int) {
		if term == "" || charLen(term) <= minLen || seen[term] {
			return
		}
		seen[term] = true
		terms = append(terms, term)
	}

	for _, groups := range quotedTermPattern.FindAllStringSubmatch(text, -1) {
		for _, term := range groups[1:] {
			add(term, 1)
		}
	}
	for _, term := range compoundTermPattern.FindAllString(text, -1) {
		add(term, 3)
	}
	for _, groups := range emphasisPattern.FindAllStringSubmatch(text, -1) {
		for _, term := range groups[1:] {
			add(term, 1)
		}
	}
	return terms
}

func documentSummary(report Report) string {
	var b strings.Builder
	b.WriteString("\n\n=== 文書構造の分析 ===\n")

	if len(report.Headers) > 0 {
		b.WriteString("\n【検出された見出し】\n")
		for _, header := range capList(report.Headers, maxListedHeaders) {
			b.WriteString("- " + header + "\n")
		}
	}
	if len(report.BulletPoints) > 0 {
		b.WriteString("\n【検出された箇条書き/手順】\n")
		for _, point := range capList(report.BulletPoints, maxListedBullets) {
			b.WriteString(point + "\n")
		}
	}
	if len(report.ImportantTerms) > 0 {
		b.WriteString("\n【検出された重要用語】\n")
		for _, term := range capList(report.ImportantTerms, maxListedTerms) {
			b.WriteString("- " + term + "\n")
		}
	}
	return b.String()
}

func capList(items []string, max int) []string {
	if len(items) > max {
		return items[:max]
	}
	return items
}
