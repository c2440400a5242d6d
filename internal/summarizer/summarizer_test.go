package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeSingleSentence(t *testing.T) {
	s := NewSummarizer()
	assert.Equal(t, "Only one sentence here.", s.Summarize("Only one sentence here.", 3))
}

func TestSummarizeEmptyText(t *testing.T) {
	s := NewSummarizer()
	assert.Empty(t, s.Summarize("", 3))
	assert.Empty(t, s.Summarize("   \n\t ", 3))
}

func TestSummarizeNAboveSentenceCountKeepsEverything(t *testing.T) {
	s := NewSummarizer()
	text := "One fish. Two fish. Red fish."
	got := s.Summarize(text, 10)
	// Equal scores, so encounter order survives the stable sort.
	assert.Equal(t, "One fish. Two fish. Red fish.", got)
}

func TestSummarizePicksHighestFrequencySentences(t *testing.T) {
	s := NewSummarizer()
	text := "The quick fox jumps. The fox is quick. A dog sleeps."
	got := s.Summarize(text, 2)
	assert.Equal(t, "The quick fox jumps. The fox is quick.", got)
}

func TestSummarizeJoinsInRankOrderNotDocumentOrder(t *testing.T) {
	s := NewSummarizer()
	text := "Cats sleep. Dogs dogs dogs bark dogs."
	got := s.Summarize(text, 2)
	// The second sentence outscores the first, so it leads the summary.
	assert.Equal(t, "Dogs dogs dogs bark dogs. Cats sleep.", got)
}

func TestSummarizeRepeatedSentenceAppearsOnce(t *testing.T) {
	s := NewSummarizer()
	text := "Cats purr. Cats purr. Dogs bark."
	got := s.Summarize(text, 3)
	assert.Equal(t, 1, strings.Count(got, "Cats purr."))
	// The repeated sentence still accumulates both occurrences' scores, so
	// it outranks the unique one.
	assert.Equal(t, "Cats purr. Dogs bark.", got)
}

func TestSummarizeDeterministic(t *testing.T) {
	s := NewSummarizer()
	text := "Alpha beta gamma. Beta gamma delta! Gamma delta epsilon? Delta epsilon zeta."
	first := s.Summarize(text, 2)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, s.Summarize(text, 2))
	}
}

func TestSummarizeDefaultsToThreeSentences(t *testing.T) {
	s := NewSummarizer()
	text := "A a a. B b b. C c c. D d d."
	got := s.Summarize(text, 0)
	assert.Equal(t, "A a a. B b b. C c c.", got)
}

func TestSplitSentences(t *testing.T) {
	sentences := SplitSentences("First one. Second one! Third one? trailing bit")
	assert.Equal(t, []string{"First one.", "Second one!", "Third one?", "trailing bit"}, sentences)
}

func TestSplitSentencesEmpty(t *testing.T) {
	assert.Empty(t, SplitSentences(""))
	assert.Empty(t, SplitSentences("   "))
}
