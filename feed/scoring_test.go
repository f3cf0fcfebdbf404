package feed

import (
	"math"
	"testing"
	"time"

	"socialfeed/config"
	"socialfeed/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func emptySignals(viewerID int64) *ViewerSignals {
	return &ViewerSignals{
		ViewerID:     viewerID,
		Following:    map[int64]struct{}{},
		Mutuals:      map[int64]int{},
		Interactions: map[int64]models.Interaction{},
		Profile:      NewKeywordSimilarity(50).Profile(nil),
	}
}

func TestRecencyScore(t *testing.T) {
	assert.Equal(t, 1.0, RecencyScore(t0, t0, 0.1))
	assert.InDelta(t, 0.9048, RecencyScore(t0, t0.Add(time.Hour), 0.1), 1e-4)
	assert.InDelta(t, math.Exp(-2.4), RecencyScore(t0, t0.Add(24*time.Hour), 0.1), 1e-12)
	// пост из будущего не получает оценку выше 1
	assert.Equal(t, 1.0, RecencyScore(t0.Add(time.Hour), t0, 0.1))
}

func TestRecencyStrictlyDecreasing(t *testing.T) {
	now := t0.Add(72 * time.Hour)
	prev := math.Inf(1)
	for age := 0; age <= 72*60; age += 7 {
		score := RecencyScore(now.Add(-time.Duration(age)*time.Minute), now, 0.1)
		require.Less(t, score, prev, "age %d min", age)
		require.GreaterOrEqual(t, score, 0.0)
		prev = score
	}
}

func TestScoreNewerPostRanksHigherOnRecency(t *testing.T) {
	s := NewScorer(config.DefaultWeights())
	older := models.Post{ID: 1, AuthorID: 2, Content: "same body", CreatedAt: t0}
	newer := older
	newer.CreatedAt = t0.Add(30 * time.Minute)

	now := t0.Add(5 * time.Hour)
	a := s.Score(emptySignals(9), older, now)
	b := s.Score(emptySignals(9), newer, now)
	assert.Greater(t, b.RecencyScore, a.RecencyScore)
	assert.Greater(t, b.TotalScore, a.TotalScore)
}

func TestPopularityScore(t *testing.T) {
	c := models.PostCounters{Views: 0, Likes: 5, Comments: 2, Shares: 1}
	assert.InDelta(t, math.Log(13), PopularityScore(c), 1e-12)
	assert.InDelta(t, 2.565, PopularityScore(c), 1e-3)

	assert.Equal(t, 0.0, PopularityScore(models.PostCounters{}))
	// просмотры делят вес вовлеченности
	assert.InDelta(t, math.Log1p(12.0/4), PopularityScore(models.PostCounters{Views: 4, Likes: 5, Comments: 2, Shares: 1}), 1e-12)
}

func TestPopularityNonNegative(t *testing.T) {
	for views := int64(0); views < 5; views++ {
		for likes := int64(0); likes < 5; likes++ {
			for comments := int64(0); comments < 5; comments++ {
				for shares := int64(0); shares < 5; shares++ {
					c := models.PostCounters{Views: views, Likes: likes, Comments: comments, Shares: shares}
					score := PopularityScore(c)
					require.False(t, math.IsNaN(score))
					require.GreaterOrEqual(t, score, 0.0, "%+v", c)
				}
			}
		}
	}
}

func TestEngagementWeightsOrder(t *testing.T) {
	like := EngagementRatio(models.PostCounters{Likes: 1})
	comment := EngagementRatio(models.PostCounters{Comments: 1})
	share := EngagementRatio(models.PostCounters{Shares: 1})
	assert.Less(t, like, comment)
	assert.Less(t, comment, share)
}

func TestProximityScore(t *testing.T) {
	assert.Equal(t, 1.0, ProximityScore(1, 1, false, 0))
	assert.Equal(t, 1.0, ProximityScore(1, 1, true, 50))
	assert.Equal(t, 0.8, ProximityScore(1, 2, true, 3))
	assert.Equal(t, 0.0, ProximityScore(1, 2, false, 0))
	assert.InDelta(t, 0.3, ProximityScore(1, 2, false, 3), 1e-12)
	assert.Equal(t, 0.7, ProximityScore(1, 2, false, 7))
	assert.Equal(t, 0.7, ProximityScore(1, 2, false, 100))
}

func TestInteractionScore(t *testing.T) {
	assert.Equal(t, 0.0, InteractionScore(models.Interaction{}))
	assert.InDelta(t, 0.05, InteractionScore(models.Interaction{Views: 1}), 1e-12)
	assert.InDelta(t, 0.6, InteractionScore(models.Interaction{Likes: 1, Comments: 1, Shares: 1}), 1e-12)
	assert.Equal(t, 1.0, InteractionScore(models.Interaction{Shares: 10}))
}

func TestScoreIsDeterministic(t *testing.T) {
	s := NewScorer(config.DefaultWeights())
	signals := emptySignals(1)
	signals.Following[2] = struct{}{}
	signals.Interactions[10] = models.Interaction{Likes: 1, Views: 3}
	signals.Profile = NewKeywordSimilarity(50).Profile([]string{"distributed caching with redis clusters"})
	post := models.Post{ID: 10, AuthorID: 2, Content: "Redis caching tricks", CreatedAt: t0, LikesCount: 3, ViewsCount: 10}

	first := s.Score(signals, post, t0.Add(3*time.Hour))
	for i := 0; i < 100; i++ {
		require.Equal(t, first, s.Score(signals, post, t0.Add(3*time.Hour)))
	}
}

func TestScoreComposition(t *testing.T) {
	w := config.DefaultWeights()
	s := NewScorer(w)
	signals := emptySignals(1)
	signals.Mutuals[3] = 4
	signals.Interactions[7] = models.Interaction{Comments: 1}
	post := models.Post{ID: 7, AuthorID: 3, Content: "nothing matters", CreatedAt: t0, LikesCount: 2, ViewsCount: 1}
	now := t0.Add(2 * time.Hour)

	got := s.Score(signals, post, now)

	recency := math.Exp(-0.2)
	popularity := math.Log1p(2)
	// без истории лайков сходство нейтральное
	relevance := 0.4*0.2 + 0.3*0.5 + 0.3*0.4
	assert.InDelta(t, recency, got.RecencyScore, 1e-12)
	assert.InDelta(t, popularity, got.PopularityScore, 1e-12)
	assert.InDelta(t, relevance, got.RelevanceScore, 1e-12)
	assert.InDelta(t, 0.5*recency+0.3*popularity+0.2*relevance, got.TotalScore, 1e-12)
}

func TestScoreUsesInjectedWeights(t *testing.T) {
	w := config.WeightsConfig{Recency: 1, DecayRate: 0.1}
	s := NewScorer(w)
	post := models.Post{ID: 1, AuthorID: 1, LikesCount: 100, CreatedAt: t0}
	got := s.Score(emptySignals(1), post, t0.Add(time.Hour))
	assert.InDelta(t, got.RecencyScore, got.TotalScore, 1e-12)
	assert.Equal(t, 0.0, got.RelevanceScore)
}

func TestSortCandidatesTieBreak(t *testing.T) {
	cs := []ScoredCandidate{
		{Post: models.Post{ID: 5, CreatedAt: t0}, TotalScore: 1},
		{Post: models.Post{ID: 3, CreatedAt: t0}, TotalScore: 1},
		{Post: models.Post{ID: 9, CreatedAt: t0.Add(time.Minute)}, TotalScore: 1},
		{Post: models.Post{ID: 1, CreatedAt: t0}, TotalScore: 2},
	}
	SortCandidates(cs)

	var ids []int64
	for _, c := range cs {
		ids = append(ids, c.Post.ID)
	}
	assert.Equal(t, []int64{1, 9, 3, 5}, ids)
}
