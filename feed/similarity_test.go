package feed

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords(t *testing.T) {
	got := ExtractKeywords("Hello, World! Go is FUN; #Kubernetes rocks... hello again")
	assert.Equal(t, []string{"hello", "world", "kubernetes", "rocks", "again"}, got)

	assert.Empty(t, ExtractKeywords("a an the of, to."))
	assert.Empty(t, ExtractKeywords(""))
}

func TestExtractKeywordsCappedAtTwenty(t *testing.T) {
	var words []string
	for i := 0; i < 40; i++ {
		words = append(words, fmt.Sprintf("word%02d", i))
	}
	got := ExtractKeywords(strings.Join(words, " "))
	assert.Len(t, got, 20)
	assert.Equal(t, "word00", got[0])
	assert.Equal(t, "word19", got[19])
}

func TestKeywordSimilarityNoHistoryIsNeutral(t *testing.T) {
	p := NewKeywordSimilarity(50).Profile(nil)
	assert.Equal(t, 0.5, p.Score("anything at all here"))
}

func TestKeywordSimilarityAveragesAcrossSample(t *testing.T) {
	p := NewKeywordSimilarity(50).Profile([]string{
		"golang channels everywhere",
		"gardening tomatoes",
	})
	// ключевые слова поста: golang, channels, tips, tricks
	// первый лайк: 2/4, второй: 0/4
	assert.InDelta(t, 0.25, p.Score("golang channels: tips & tricks"), 1e-12)
	assert.Equal(t, 0.0, p.Score("ok no"))
}

func TestKeywordSimilaritySampleBounded(t *testing.T) {
	liked := []string{"golang golang"}
	for i := 0; i < 10; i++ {
		liked = append(liked, "unrelated stuff")
	}
	p := NewKeywordSimilarity(1).Profile(liked)
	assert.Equal(t, 1.0, p.Score("golang"))
}
