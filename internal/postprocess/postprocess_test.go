package postprocess

import (
	"strings"
	"testing"

	"github.com/mshibata/chienowa/models"
)

func TestNormalizeQuestion_Terminator(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		suffix string
	}{
		{"english gets half-width mark", "how do I reset my password", "?"},
		{"japanese interrogative gets full-width mark", "パスワードをリセットする方法は何", "？"},
		{"ですか gets full-width mark", "申請は必要ですか", "？"},
		{"existing mark kept", "Is it done?", "?"},
		{"existing full-width mark kept", "どうですか？", "？"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeQuestion(tt.in)
			if !strings.HasSuffix(got, tt.suffix) {
				t.Fatalf("NormalizeQuestion(%q) = %q, want suffix %q", tt.in, got, tt.suffix)
			}
			if strings.HasSuffix(got, "??") || strings.HasSuffix(got, "？？") {
				t.Fatalf("double terminator: %q", got)
			}
		})
	}
}

func TestNormalizeQuestion_UppercasesLeadingLatin(t *testing.T) {
	got := NormalizeQuestion("what is the expense deadline?")
	if !strings.HasPrefix(got, "What") {
		t.Fatalf("expected uppercase start, got %q", got)
	}
}

func TestNormalizeQuestion_TruncatesLongQuestion(t *testing.T) {
	// No ASCII terminal punctuation anywhere, so the first-clause scan
	// finds nothing and the hard truncation applies.
	long := strings.Repeat("あ", 148) + "どう"
	got := NormalizeQuestion(long)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis truncation, got %q", got)
	}
	if len([]rune(got)) != 100 {
		t.Fatalf("expected 100 chars, got %d", len([]rune(got)))
	}

	withClause := strings.Repeat("b", 90) + ". " + strings.Repeat("c", 40)
	got = NormalizeQuestion(withClause)
	if !strings.HasSuffix(got, ".") {
		t.Fatalf("expected cut at first terminal punctuation, got %q", got)
	}
}

func TestNormalizeQuestion_Idempotent(t *testing.T) {
	inputs := []string{
		"how do I reset my password",
		"パスワードをリセットする方法は何",
		strings.Repeat("x", 150),
		"already terminated?",
	}
	for _, in := range inputs {
		once := NormalizeQuestion(in)
		twice := NormalizeQuestion(once)
		if once != twice {
			t.Fatalf("not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}

func TestNormalizeAnswer_StripsAffirmationAndTerminates(t *testing.T) {
	got := NormalizeAnswer("はい、申請が必要です", models.SourcePDF, "")
	if strings.HasPrefix(got, "はい") {
		t.Fatalf("affirmation not stripped: %q", got)
	}
	if !strings.HasSuffix(got, "。") {
		t.Fatalf("expected 。 terminator: %q", got)
	}

	got = NormalizeAnswer("Yes, submit form 12b", models.SourcePDF, "")
	if strings.HasPrefix(got, "Yes") {
		t.Fatalf("affirmation not stripped: %q", got)
	}
	if !strings.HasSuffix(got, ".") {
		t.Fatalf("expected . terminator: %q", got)
	}
}

func TestNormalizeAnswer_SourceReference(t *testing.T) {
	got := NormalizeAnswer("経費は月末までに申請します", models.SourcePDF, "https://example.com/doc")
	if !strings.Contains(got, "元のドキュメント") {
		t.Fatalf("expected document reference: %q", got)
	}

	got = NormalizeAnswer("担当者に連絡します", models.SourceSlack, "https://example.slack.com/x")
	if !strings.Contains(got, "元のSlack会話") {
		t.Fatalf("expected slack reference: %q", got)
	}

	already := "詳細はマニュアルを参照してください。"
	got = NormalizeAnswer(already, models.SourcePDF, "https://example.com/doc")
	if strings.Count(got, "参照") != 1 {
		t.Fatalf("reference duplicated: %q", got)
	}
}

func TestNormalizeAnswer_Idempotent(t *testing.T) {
	inputs := []string{
		"はい、申請が必要です",
		"Submit the expense form",
		"詳細はマニュアルを参照してください。",
	}
	for _, in := range inputs {
		once := NormalizeAnswer(in, models.SourcePDF, "https://example.com")
		twice := NormalizeAnswer(once, models.SourcePDF, "https://example.com")
		if once != twice {
			t.Fatalf("not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}

func TestProcess_DropsEmptyEntries(t *testing.T) {
	faqs := []models.Faq{
		{Question: "  ", Answer: "answer"},
		{Question: "question", Answer: ""},
		{Question: "valid question", Answer: "valid answer"},
	}
	got := Process(faqs, models.SourcePDF, "")
	if len(got) != 1 {
		t.Fatalf("expected 1 surviving faq, got %d", len(got))
	}
}

func TestSimilarity_Bounds(t *testing.T) {
	if s := Similarity("経費精算の方法は?", "経費精算の方法は?"); s != 1.0 {
		t.Fatalf("identical strings: got %f", s)
	}
	if s := Similarity("経費精算の方法は?", "有給休暇の取り方は?"); s > similarityThreshold {
		t.Fatalf("unrelated strings too similar: %f", s)
	}
	if s := Similarity("ab", "ab"); s != 0 {
		t.Fatalf("strings shorter than a gram: got %f", s)
	}
}

func TestDedupe_CollapsesNearDuplicates(t *testing.T) {
	faqs := []models.Faq{
		{Question: "How do I reset my password?", Answer: "short"},
		{Question: "How do I reset my password??", Answer: "a much longer and more detailed answer"},
		{Question: "Where is the cafeteria located?", Answer: "Building B."},
	}
	got := Process(faqs, models.SourcePDF, "")
	if len(got) != 2 {
		t.Fatalf("expected 2 records after dedup, got %d", len(got))
	}
	if !strings.Contains(got[0].Answer, "longer and more detailed") {
		t.Fatalf("longer answer not kept: %q", got[0].Answer)
	}
	if got[1].Question != "Where is the cafeteria located?" {
		t.Fatalf("order not preserved: %+v", got)
	}
}

func TestDedupe_TieResolvesToEarliestMatch(t *testing.T) {
	// The first two questions differ from the third at opposite ends, so
	// the third scores identically (9 of 11 shared grams) against both;
	// the merge must land on the earliest accepted entry every run.
	faqs := []models.Faq{
		{Question: "abcdefghijkm", Answer: "first"},
		{Question: "zbcdefghijkl", Answer: "second"},
		{Question: "abcdefghijkl", Answer: "a considerably longer merged answer"},
	}
	got := dedupe(faqs)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %+v", got)
	}
	if got[0].Question != "abcdefghijkm" || got[0].Answer != "a considerably longer merged answer" {
		t.Fatalf("tie not merged into earliest entry: %+v", got[0])
	}
	if got[1].Question != "zbcdefghijkl" || got[1].Answer != "second" {
		t.Fatalf("later entry disturbed by tie merge: %+v", got[1])
	}
}

func TestDedupe_BelowThresholdStaysDistinct(t *testing.T) {
	faqs := []models.Faq{
		{Question: "What is the wifi password?", Answer: "See IT."},
		{Question: "When does the office open?", Answer: "9am."},
	}
	got := Process(faqs, models.SourcePDF, "")
	if len(got) != 2 {
		t.Fatalf("distinct questions collapsed: %+v", got)
	}
}
