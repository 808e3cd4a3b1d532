package similarity_test

import (
	"testing"

	"github.com/ethdomperin2018/ai-assist/internal/similarity"
	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tokens := similarity.Tokenize("Research the TOP competitors, in Q3!")

	assert.Contains(t, tokens, "research")
	assert.Contains(t, tokens, "the")
	assert.Contains(t, tokens, "top")
	assert.Contains(t, tokens, "competitors")
	assert.NotContains(t, tokens, "in")
	assert.NotContains(t, tokens, "q3")
	assert.Len(t, tokens, 4)
}

func TestSimilarity_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"Draft a marketing plan", "Marketing plan for the launch"},
		{"research competitors", "competitor research summary"},
		{"", "something here"},
		{"abc def ghi", "ghi jkl"},
	}

	for _, p := range pairs {
		assert.Equal(t, similarity.Similarity(p[0], p[1]), similarity.Similarity(p[1], p[0]), "pair %q", p)
	}
}

func TestSimilarity_Identity(t *testing.T) {
	assert.Equal(t, 1.0, similarity.Similarity("Book flights to Lisbon", "Book flights to Lisbon"))
	assert.Equal(t, 1.0, similarity.Similarity("Book flights", "book, FLIGHTS!"))
}

func TestSimilarity_Empty(t *testing.T) {
	assert.Equal(t, 0.0, similarity.Similarity("", ""))
	assert.Equal(t, 0.0, similarity.Similarity("a an to", "of is"))
}

func TestSimilarity_Partial(t *testing.T) {
	// {plan, trip, japan} vs {plan, trip, korea}: 2 shared of 4
	assert.InDelta(t, 0.5, similarity.Similarity("plan trip japan", "plan trip korea"), 1e-9)
}

func TestContainsKeywords(t *testing.T) {
	assert.True(t, similarity.ContainsKeywords("Final REVIEW of deliverables", "review"))
	assert.True(t, similarity.ContainsKeywords("researching", "research", "gather"))
	assert.False(t, similarity.ContainsKeywords("book a table", "research", "gather"))
	assert.False(t, similarity.ContainsKeywords("anything"))
}
