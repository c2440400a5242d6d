// Package summarizer builds extractive summaries by frequency-scoring
// sentences against the document's own word counts.
package summarizer

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultSentences is the summary length when the caller passes n <= 0.
const DefaultSentences = 3

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Summarizer scores sentences by the summed global frequency of their words.
// It is a pure function of the input text: no stopword filtering and no
// length normalization, so identical input always yields identical output.
type Summarizer struct{}

// NewSummarizer creates a frequency-based extractive summarizer.
func NewSummarizer() *Summarizer {
	return &Summarizer{}
}

// Summarize returns the top-n sentences joined by single spaces. The join is
// in score-rank order, not document order; downstream consumers depend on
// this ordering, so keep it even though reading order may look more natural.
// Ties keep their original encounter order. A sentence repeated verbatim in
// the text is scored cumulatively but appears at most once in the summary.
// No sentences means an empty summary.
func (s *Summarizer) Summarize(text string, n int) string {
	if n <= 0 {
		n = DefaultSentences
	}
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return ""
	}

	freq := make(map[string]int)
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		freq[tok]++
	}

	type scored struct {
		sentence string
		score    int
	}
	var (
		ranked []scored
		seen   = make(map[string]int, len(sentences))
	)
	for _, sent := range sentences {
		total := 0
		for _, tok := range tokenPattern.FindAllString(strings.ToLower(sent), -1) {
			total += freq[tok]
		}
		if i, ok := seen[sent]; ok {
			ranked[i].score += total
			continue
		}
		seen[sent] = len(ranked)
		ranked = append(ranked, scored{sentence: sent, score: total})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if n > len(ranked) {
		n = len(ranked)
	}
	picked := make([]string, n)
	for i := 0; i < n; i++ {
		picked[i] = ranked[i].sentence
	}
	return strings.Join(picked, " ")
}

// SplitSentences cuts text at '.', '!' and '?' boundaries. A trailing segment
// without terminal punctuation still counts as a sentence. Whitespace-only
// segments are dropped.
func SplitSentences(text string) []string {
	var (
		sentences []string
		current   strings.Builder
	)
	flush := func() {
		if sent := strings.TrimSpace(current.String()); sent != "" {
			sentences = append(sentences, sent)
		}
		current.Reset()
	}
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			flush()
		}
	}
	flush()
	return sentences
}
