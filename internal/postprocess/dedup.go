package postprocess

import "github.com/mshibata/chienowa/models"

// similarityThreshold: question pairs above this 3-gram Jaccard score are
// treated as the same FAQ.
const similarityThreshold = 0.70

const ngramSize = 3

// dedupe removes near-duplicate FAQs, preserving first-seen order. A
// candidate whose question is similar to an already accepted one is
// merged into it, keeping the longer answer. O(n²) over the batch, which
// stays in the tens of entries.
func dedupe(faqs []models.Faq) []models.Faq {
	if len(faqs) == 0 {
		return nil
	}

	var unique []models.Faq

	for _, faq := range faqs {
		// Scan accepted entries in insertion order so equal scores
		// resolve to the earliest match.
		bestIdx := -1
		bestScore := 0.0
		for idx := range unique {
			score := Similarity(faq.Question, unique[idx].Question)
			if score > similarityThreshold && score > bestScore {
				bestScore = score
				bestIdx = idx
			}
		}

		if bestIdx >= 0 {
			if len(faq.Answer) > len(unique[bestIdx].Answer) {
				unique[bestIdx].Answer = faq.Answer
			}
			continue
		}

		unique = append(unique, faq)
	}
	return unique
}

// Similarity computes character 3-gram Jaccard similarity between two
// texts, in [0, 1]. Grams are rune-based so Japanese text compares the
// same way as Latin text.
func Similarity(a, b string) float64 {
	gramsA := ngrams(a)
	gramsB := ngrams(b)

	intersection := 0
	for gram := range gramsA {
		if gramsB[gram] {
			intersection++
		}
	}
	union := len(gramsA) + len(gramsB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func ngrams(s string) map[string]bool {
	runes := []rune(s)
	grams := map[string]bool{}
	for i := 0; i+ngramSize <= len(runes); i++ {
		grams[string(runes[i:i+ngramSize])] = true
	}
	return grams
}
