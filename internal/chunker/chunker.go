// Package chunker splits page-oriented source text into bounded-size
// segments along natural boundaries: paragraphs first, then words. The
// bound is a character count, a heuristic proxy for model input limits,
// not a token count.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxChunkSize bounds a chunk's character count.
const DefaultMaxChunkSize = 1000

// Page is one page of extracted source text.
type Page struct {
	PageNum int
	Text    string
}

// Chunk is a page/paragraph-bounded unit of source text. Chunks never
// span page boundaries.
type Chunk struct {
	PageNum   int
	Text      string
	CharCount int
}

// Split breaks pages into chunks of at most maxSize characters. A page
// that already fits becomes a single chunk; otherwise paragraphs are
// packed greedily into a running buffer, and a single paragraph larger
// than maxSize is re-split on spaces under the same packing rule. A word
// longer than maxSize is emitted as-is: it has no natural split point.
func Split(pages []Page, maxSize int) []Chunk {
	if maxSize <= 0 {
		maxSize = DefaultMaxChunkSize
	}

	var chunks []Chunk
	for _, page := range pages {
		if charLen(page.Text) <= maxSize {
			chunks = append(chunks, newChunk(page.PageNum, page.Text))
			continue
		}
		chunks = append(chunks, splitPage(page, maxSize)...)
	}
	return chunks
}

func splitPage(page Page, maxSize int) []Chunk {
	var chunks []Chunk
	current := ""

	flush := func() {
		if current != "" {
			chunks = append(chunks, newChunk(page.PageNum, current))
			current = ""
		}
	}

	for _, para := range strings.Split(page.Text, "\n\n") {
		if charLen(current)+charLen(para)+2 <= maxSize {
			if current != "" {
				current += "\n\n" + para
			} else {
				current = para
			}
			continue
		}

		flush()

		if charLen(para) <= maxSize {
			current = para
			continue
		}

		// Oversized paragraph: greedy word packing.
		for _, word := range strings.Split(para, " ") {
			if charLen(current)+charLen(word)+1 <= maxSize {
				if current != "" {
					current += " " + word
				} else {
					current = word
				}
			} else {
				flush()
				current = word
			}
		}
	}

	flush()
	return chunks
}

func newChunk(pageNum int, text string) Chunk {
	return Chunk{PageNum: pageNum, Text: text, CharCount: charLen(text)}
}

func charLen(s string) int {
	return utf8.RuneCountInString(s)
}
