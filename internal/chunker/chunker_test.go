package chunker

import (
	"strings"
	"testing"
)

func TestSplit_SmallPageSingleChunk(t *testing.T) {
	pages := []Page{{PageNum: 3, Text: "short page text"}}
	chunks := Split(pages, 1000)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].PageNum != 3 || chunks[0].Text != "short page text" {
		t.Fatalf("unexpected chunk: %+v", chunks[0])
	}
	if chunks[0].CharCount != len("short page text") {
		t.Fatalf("char count mismatch: %d", chunks[0].CharCount)
	}
}

func TestSplit_TwoParagraphPage(t *testing.T) {
	para1 := strings.Repeat("a", 700)
	para2 := strings.Repeat("b", 500)
	pages := []Page{{PageNum: 1, Text: para1 + "\n\n" + para2}}

	chunks := Split(pages, 1000)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if c.PageNum != 1 {
			t.Fatalf("chunk lost page number: %+v", c)
		}
		if c.CharCount > 1000 {
			t.Fatalf("chunk exceeds max size: %d", c.CharCount)
		}
	}
	if chunks[0].Text != para1 || chunks[1].Text != para2 {
		t.Fatalf("paragraph boundary not respected")
	}
}

func TestSplit_OversizedParagraphWordPacking(t *testing.T) {
	words := make([]string, 300)
	for i := range words {
		words[i] = "word"
	}
	text := strings.Join(words, " ") // 1499 chars, no blank lines
	chunks := Split([]Page{{PageNum: 2, Text: text}}, 100)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	total := 0
	for _, c := range chunks {
		if c.CharCount > 100 {
			t.Fatalf("chunk exceeds max size: %d", c.CharCount)
		}
		total += strings.Count(c.Text, "word")
	}
	if total != 300 {
		t.Fatalf("word coverage lost: got %d of 300", total)
	}
}

func TestSplit_CoverageReconstructsContent(t *testing.T) {
	text := strings.Repeat("alpha beta gamma ", 100) + "\n\n" + strings.Repeat("delta ", 80)
	chunks := Split([]Page{{PageNum: 1, Text: text}}, 200)

	var joined strings.Builder
	for _, c := range chunks {
		joined.WriteString(c.Text)
		joined.WriteString(" ")
	}
	stripped := strings.Join(strings.Fields(text), " ")
	got := strings.Join(strings.Fields(joined.String()), " ")
	if got != stripped {
		t.Fatalf("chunk concatenation does not reconstruct source content")
	}
}

func TestSplit_PagesNeverMerged(t *testing.T) {
	pages := []Page{
		{PageNum: 1, Text: "tiny"},
		{PageNum: 2, Text: "also tiny"},
	}
	chunks := Split(pages, 1000)
	if len(chunks) != 2 {
		t.Fatalf("pages merged: %d chunks", len(chunks))
	}
	if chunks[0].PageNum == chunks[1].PageNum {
		t.Fatalf("page numbers collapsed")
	}
}

func TestSplit_UnsplittableWordKept(t *testing.T) {
	long := strings.Repeat("x", 150)
	chunks := Split([]Page{{PageNum: 1, Text: long + "\n\n" + long}}, 100)
	total := 0
	for _, c := range chunks {
		total += strings.Count(c.Text, "x")
	}
	if total != 300 {
		t.Fatalf("unsplittable word content lost: %d of 300", total)
	}
}
