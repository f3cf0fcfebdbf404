package feed

import (
	"cmp"
	"math"
	"slices"
	"time"

	"socialfeed/config"
	"socialfeed/models"
)

// Weights - коэффициенты итоговой оценки и релевантности
type Weights = config.WeightsConfig

const (
	selfProximity      = 1.0
	followingProximity = 0.8
	maxMutualProximity = 0.7
	mutualsForMax      = 10.0
	// сырой счет взаимодействий, при котором сигнал насыщается до 1
	interactionSaturation = 10.0
)

// ScoredCandidate - пост с компонентами оценки. Не сохраняется
type ScoredCandidate struct {
	Post            models.Post
	RecencyScore    float64
	PopularityScore float64
	RelevanceScore  float64
	TotalScore      float64
}

// ViewerSignals - заранее загруженные данные о зрителе, нужные для релевантности
type ViewerSignals struct {
	ViewerID     int64
	Following    map[int64]struct{}
	Mutuals      map[int64]int
	Interactions map[int64]models.Interaction
	Profile      SimilarityProfile
}

func (v *ViewerSignals) follows(authorID int64) bool {
	_, ok := v.Following[authorID]
	return ok
}

// Scorer - чистая функция оценки (зритель, пост, now)
type Scorer struct {
	weights Weights
}

func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

func (s *Scorer) Weights() Weights {
	return s.weights
}

func (s *Scorer) Score(v *ViewerSignals, post models.Post, now time.Time) ScoredCandidate {
	recency := RecencyScore(post.CreatedAt, now, s.weights.DecayRate)
	popularity := PopularityScore(post.Counters())
	relevance := s.Relevance(v, post)
	return ScoredCandidate{
		Post:            post,
		RecencyScore:    recency,
		PopularityScore: popularity,
		RelevanceScore:  relevance,
		TotalScore: s.weights.Recency*recency +
			s.weights.Popularity*popularity +
			s.weights.Relevance*relevance,
	}
}

func (s *Scorer) Relevance(v *ViewerSignals, post models.Post) float64 {
	interaction := InteractionScore(v.Interactions[post.ID])
	similarity := neutralSimilarity
	if v.Profile != nil {
		similarity = v.Profile.Score(post.Content)
	}
	proximity := ProximityScore(v.ViewerID, post.AuthorID, v.follows(post.AuthorID), v.Mutuals[post.AuthorID])
	return s.weights.Interaction*interaction +
		s.weights.Similarity*similarity +
		s.weights.Proximity*proximity
}

// RecencyScore = exp(-k * часы с публикации). Посты "из будущего" считаются новыми
func RecencyScore(createdAt, now time.Time, k float64) float64 {
	hours := now.Sub(createdAt).Hours()
	if hours < 0 {
		hours = 0
	}
	return math.Exp(-k * hours)
}

// EngagementRatio = (likes + 2*comments + 3*shares) / max(views, 1)
func EngagementRatio(c models.PostCounters) float64 {
	weighted := float64(nonNegative(c.Likes)) + 2*float64(nonNegative(c.Comments)) + 3*float64(nonNegative(c.Shares))
	views := c.Views
	if views < 1 {
		views = 1
	}
	return weighted / float64(views)
}

func PopularityScore(c models.PostCounters) float64 {
	return math.Log1p(EngagementRatio(c))
}

// InteractionScore - лайки(1) + комментарии(2) + репосты(3) + просмотры(0.5) зрителя, насыщается к 1
func InteractionScore(i models.Interaction) float64 {
	raw := float64(i.Likes) + 2*float64(i.Comments) + 3*float64(i.Shares) + 0.5*float64(i.Views)
	if raw <= 0 {
		return 0
	}
	return math.Min(raw/interactionSaturation, 1)
}

func ProximityScore(viewerID, authorID int64, follows bool, mutuals int) float64 {
	switch {
	case viewerID == authorID:
		return selfProximity
	case follows:
		return followingProximity
	case mutuals <= 0:
		return 0
	default:
		return math.Min(float64(mutuals)/mutualsForMax, maxMutualProximity)
	}
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

// SortCandidates: по убыванию оценки, затем новее, затем меньший id
func SortCandidates(cs []ScoredCandidate) {
	slices.SortStableFunc(cs, func(a, b ScoredCandidate) int {
		if c := cmp.Compare(b.TotalScore, a.TotalScore); c != 0 {
			return c
		}
		if c := b.Post.CreatedAt.Compare(a.Post.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Post.ID, b.Post.ID)
	})
}
