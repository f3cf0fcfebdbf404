package feed

import (
	"strings"
	"unicode"
)

const (
	neutralSimilarity = 0.5
	minKeywordLen     = 4
	maxKeywords       = 20
)

// Similarity строит профиль интересов зрителя по его лайкнутым постам.
// Реализацию можно заменить (например, на эмбеддинги), не трогая скоринг
type Similarity interface {
	Profile(likedContents []string) SimilarityProfile
}

type SimilarityProfile interface {
	Score(content string) float64
}

// KeywordSimilarity - пересечение ключевых слов
type KeywordSimilarity struct {
	SampleSize int
}

func NewKeywordSimilarity(sampleSize int) *KeywordSimilarity {
	return &KeywordSimilarity{SampleSize: sampleSize}
}

// ExtractKeywords: нижний регистр, без пунктуации, длина > 3, не больше 20 уникальных слов
func ExtractKeywords(content string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, field := range strings.Fields(strings.ToLower(content)) {
		token := strings.Map(func(r rune) rune {
			if unicode.IsPunct(r) || unicode.IsSymbol(r) {
				return -1
			}
			return r
		}, field)
		if len([]rune(token)) < minKeywordLen {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}

func keywordSet(content string) map[string]struct{} {
	kws := ExtractKeywords(content)
	set := make(map[string]struct{}, len(kws))
	for _, k := range kws {
		set[k] = struct{}{}
	}
	return set
}

func (s *KeywordSimilarity) Profile(likedContents []string) SimilarityProfile {
	if s.SampleSize > 0 && len(likedContents) > s.SampleSize {
		likedContents = likedContents[:s.SampleSize]
	}
	p := &keywordProfile{liked: make([]map[string]struct{}, 0, len(likedContents))}
	for _, c := range likedContents {
		p.liked = append(p.liked, keywordSet(c))
	}
	return p
}

type keywordProfile struct {
	liked []map[string]struct{}
}

// Score - доля ключевых слов поста, встречающихся в лайкнутом посте, усредненная по выборке.
// Без истории лайков - нейтральные 0.5
func (p *keywordProfile) Score(content string) float64 {
	if len(p.liked) == 0 {
		return neutralSimilarity
	}
	postKeywords := ExtractKeywords(content)
	if len(postKeywords) == 0 {
		return 0
	}
	var sum float64
	for _, liked := range p.liked {
		hits := 0
		for _, k := range postKeywords {
			if _, ok := liked[k]; ok {
				hits++
			}
		}
		sum += float64(hits) / float64(len(postKeywords))
	}
	return sum / float64(len(p.liked))
}
