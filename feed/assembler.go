package feed

import (
	"context"
	"slices"
	"sync"
	"time"

	"socialfeed/models"

	"golang.org/x/sync/errgroup"
)

// HomeFeed - лента подписок: посты тех, на кого зритель подписан (accepted), и его собственные
// плюс публичные, ранжированные по итоговой оценке
func (e *Engine) HomeFeed(ctx context.Context, viewerID int64, page, limit int) (*models.FeedPage, error) {
	page, limit = e.Clamp(page, limit)
	return e.cached(ctx, models.FeedHome, HomeKey(viewerID, page, limit), e.homeTTL(), func(ctx context.Context) (*models.FeedPage, error) {
		return e.assembleHome(ctx, viewerID, page, limit)
	})
}

func (e *Engine) assembleHome(ctx context.Context, viewerID int64, page, limit int) (*models.FeedPage, error) {
	var (
		following []int64
		liked     []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := e.graph.AcceptedFollowing(gctx, viewerID)
		following = ids
		return upstream("social_graph.accepted_following", err)
	})
	g.Go(func() error {
		contents, err := e.engagement.RecentLikedContents(gctx, viewerID, e.conf.LikedSampleSize)
		liked = contents
		return upstream("content_store.recent_liked", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	followingSet := toSet(following)
	authors := make([]int64, 0, len(following)+1)
	authors = append(authors, viewerID)
	for _, id := range following {
		if id != viewerID {
			authors = append(authors, id)
		}
	}

	q := CandidateQuery{
		Scope:     ScopeHome,
		AuthorIDs: authors,
		Offset:    (page - 1) * limit,
		Limit:     limit * e.conf.CandidateMultiplier,
	}
	posts, total, err := e.fetchCandidates(ctx, q)
	if err != nil {
		return nil, err
	}

	signals, err := e.viewerSignals(ctx, viewerID, followingSet, liked, posts)
	if err != nil {
		return nil, err
	}

	now := e.now()
	scored := make([]ScoredCandidate, len(posts))
	for i, p := range posts {
		scored[i] = e.scorer.Score(signals, p, now)
	}
	SortCandidates(scored)
	if len(scored) > limit {
		scored = scored[:limit]
	}

	ids := make([]int64, len(scored))
	for i, c := range scored {
		ids[i] = c.Post.ID
	}
	likedIDs := map[int64]bool{}
	if len(ids) > 0 {
		likedIDs, err = e.engagement.LikedPostIDs(ctx, viewerID, ids)
		if err != nil {
			return nil, upstream("content_store.liked_post_ids", err)
		}
	}

	items := make([]models.FeedItem, 0, len(scored))
	for _, c := range scored {
		item := scoredItem(c)
		item.Liked = likedIDs[c.Post.ID]
		items = append(items, item)
	}
	return &models.FeedPage{Items: items, Pagination: newPagination(total, page, limit)}, nil
}

// Trending не зависит от зрителя: публичные посты за окно, по вовлеченности
func (e *Engine) Trending(ctx context.Context, page, limit int) (*models.FeedPage, error) {
	page, limit = e.Clamp(page, limit)
	return e.cached(ctx, models.FeedTrending, TrendingKey(page, limit), e.trendingTTL(), func(ctx context.Context) (*models.FeedPage, error) {
		return e.assembleTrending(ctx, page, limit)
	})
}

func (e *Engine) assembleTrending(ctx context.Context, page, limit int) (*models.FeedPage, error) {
	now := e.now()
	since := now.Add(-time.Duration(e.conf.TrendingWindowHours) * time.Hour)
	q := CandidateQuery{
		Scope:        ScopePublic,
		CreatedAfter: since,
		Order:        OrderEngagement,
		Offset:       (page - 1) * limit,
		Limit:        limit,
	}
	posts, total, err := e.fetchCandidates(ctx, q)
	if err != nil {
		return nil, err
	}

	items := make([]models.FeedItem, 0, len(posts))
	for _, p := range posts {
		if !p.CreatedAt.After(since) || p.Visibility != models.VisibilityPublic {
			continue
		}
		item := postItem(p)
		item.RecencyScore = RecencyScore(p.CreatedAt, now, e.conf.Weights.DecayRate)
		item.PopularityScore = PopularityScore(p.Counters())
		item.Engagement = EngagementRatio(p.Counters())
		items = append(items, item)
	}
	return &models.FeedPage{Items: items, Pagination: newPagination(total, page, limit)}, nil
}

// Explore - публичные посты, которые зритель еще не видел, по свежести.
// Порядок равных по времени постов случайный
func (e *Engine) Explore(ctx context.Context, viewerID int64, interests []string, page, limit int) (*models.FeedPage, error) {
	page, limit = e.Clamp(page, limit)
	interests = NormalizeInterests(interests)
	key := ExploreKey(viewerID, interests, page, limit)
	return e.cached(ctx, models.FeedExplore, key, e.exploreTTL(), func(ctx context.Context) (*models.FeedPage, error) {
		return e.assembleExplore(ctx, viewerID, interests, page, limit)
	})
}

func (e *Engine) assembleExplore(ctx context.Context, viewerID int64, interests []string, page, limit int) (*models.FeedPage, error) {
	q := CandidateQuery{
		Scope:           ScopePublic,
		ExcludeViewedBy: viewerID,
		Interests:       interests,
		Offset:          (page - 1) * limit,
		Limit:           limit,
	}
	posts, total, err := e.fetchCandidates(ctx, q)
	if err != nil {
		return nil, err
	}

	fresh, err := e.dropViewed(ctx, viewerID, posts)
	if err != nil {
		return nil, err
	}
	e.shuffleTies(fresh)

	now := e.now()
	items := make([]models.FeedItem, 0, len(fresh))
	for _, p := range fresh {
		item := postItem(p)
		item.RecencyScore = RecencyScore(p.CreatedAt, now, e.conf.Weights.DecayRate)
		item.PopularityScore = PopularityScore(p.Counters())
		items = append(items, item)
	}
	return &models.FeedPage{Items: items, Pagination: newPagination(total, page, limit)}, nil
}

// dropViewed оставляет публичные посты страницы, которых нет в журнале зрителя
func (e *Engine) dropViewed(ctx context.Context, viewerID int64, posts []models.Post) ([]models.Post, error) {
	drop := make([]bool, len(posts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.conf.MutualLookupConcurrency)
	for i, p := range posts {
		if p.Visibility != models.VisibilityPublic {
			drop[i] = true
			continue
		}
		g.Go(func() error {
			ok, err := e.views.HasViewed(gctx, viewerID, p.ID)
			if err != nil {
				return upstream("view_ledger.has_viewed", err)
			}
			drop[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fresh := make([]models.Post, 0, len(posts))
	for i, p := range posts {
		if !drop[i] {
			fresh = append(fresh, p)
		}
	}
	return fresh, nil
}

// ExplainScore считает оценку одного поста для зрителя по живым счетчикам. Не кешируется
func (e *Engine) ExplainScore(ctx context.Context, viewerID, postID int64) (*ScoredCandidate, error) {
	var (
		post      *models.Post
		counters  models.PostCounters
		following []int64
		liked     []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := e.content.GetPost(gctx, postID)
		post = p
		return upstream("content_store.get_post", err)
	})
	g.Go(func() error {
		c, err := e.content.GetCounters(gctx, postID)
		counters = c
		return upstream("content_store.get_counters", err)
	})
	g.Go(func() error {
		ids, err := e.graph.AcceptedFollowing(gctx, viewerID)
		following = ids
		return upstream("social_graph.accepted_following", err)
	})
	g.Go(func() error {
		contents, err := e.engagement.RecentLikedContents(gctx, viewerID, e.conf.LikedSampleSize)
		liked = contents
		return upstream("content_store.recent_liked", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	followingSet := toSet(following)
	if !homeVisible(*post, viewerID, followingSet) {
		return nil, ErrNotFound
	}

	p := *post
	p.ViewsCount, p.LikesCount, p.CommentsCount, p.SharesCount = counters.Views, counters.Likes, counters.Comments, counters.Shares
	signals, err := e.viewerSignals(ctx, viewerID, followingSet, liked, []models.Post{p})
	if err != nil {
		return nil, err
	}
	scored := e.scorer.Score(signals, p, e.now())
	return &scored, nil
}

// homeVisible - тот же предикат, что у выборки ScopeHome
func homeVisible(p models.Post, viewerID int64, following map[int64]struct{}) bool {
	if !p.IsPublished || p.IsDeleted {
		return false
	}
	switch p.Visibility {
	case models.VisibilityPublic:
		return true
	case models.VisibilityFollowers:
		if p.AuthorID == viewerID {
			return true
		}
		_, ok := following[p.AuthorID]
		return ok
	default:
		return false
	}
}

// fetchCandidates параллельно выбирает страницу кандидатов и общее количество
func (e *Engine) fetchCandidates(ctx context.Context, q CandidateQuery) ([]models.Post, int64, error) {
	var (
		posts []models.Post
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := e.content.QueryCandidates(gctx, q)
		posts = p
		return upstream("content_store.query_candidates", err)
	})
	g.Go(func() error {
		n, err := e.content.CountCandidates(gctx, q)
		total = n
		return upstream("content_store.count_candidates", err)
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// viewerSignals загружает общие связи с авторами и историю взаимодействий по кандидатам
func (e *Engine) viewerSignals(ctx context.Context, viewerID int64, following map[int64]struct{}, liked []string, posts []models.Post) (*ViewerSignals, error) {
	signals := &ViewerSignals{
		ViewerID:     viewerID,
		Following:    following,
		Mutuals:      map[int64]int{},
		Interactions: map[int64]models.Interaction{},
		Profile:      e.similarity.Profile(liked),
	}
	if len(posts) == 0 {
		return signals, nil
	}

	var strangers []int64
	seen := map[int64]struct{}{}
	ids := make([]int64, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
		if p.AuthorID == viewerID {
			continue
		}
		if _, ok := following[p.AuthorID]; ok {
			continue
		}
		if _, ok := seen[p.AuthorID]; ok {
			continue
		}
		seen[p.AuthorID] = struct{}{}
		strangers = append(strangers, p.AuthorID)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		interactions, err := e.engagement.Interactions(gctx, viewerID, ids)
		if err != nil {
			return upstream("content_store.interactions", err)
		}
		mu.Lock()
		signals.Interactions = interactions
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		mg, mctx := errgroup.WithContext(gctx)
		mg.SetLimit(e.conf.MutualLookupConcurrency)
		for _, authorID := range strangers {
			mg.Go(func() error {
				n, err := e.graph.MutualConnectionCount(mctx, viewerID, authorID)
				if err != nil {
					return upstream("social_graph.mutual_connection_count", err)
				}
				mu.Lock()
				signals.Mutuals[authorID] = n
				mu.Unlock()
				return nil
			})
		}
		return mg.Wait()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if signals.Interactions == nil {
		signals.Interactions = map[int64]models.Interaction{}
	}
	return signals, nil
}

// shuffleTies перемешивает посты с одинаковым created_at, сохраняя порядок по свежести
func (e *Engine) shuffleTies(posts []models.Post) {
	slices.SortStableFunc(posts, func(a, b models.Post) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	for start := 0; start < len(posts); {
		end := start + 1
		for end < len(posts) && posts[end].CreatedAt.Equal(posts[start].CreatedAt) {
			end++
		}
		if end-start > 1 {
			group := posts[start:end]
			e.shuffle(len(group), func(i, j int) { group[i], group[j] = group[j], group[i] })
		}
		start = end
	}
}

func postItem(p models.Post) models.FeedItem {
	return models.FeedItem{
		ID:         p.ID,
		AuthorID:   p.AuthorID,
		AuthorName: p.AuthorName,
		Content:    p.Content,
		Hashtags:   p.Tags(),
		Visibility: p.Visibility,
		Counters:   p.Counters(),
		CreatedAt:  p.CreatedAt.UTC(),
	}
}

func scoredItem(c ScoredCandidate) models.FeedItem {
	item := postItem(c.Post)
	item.RecencyScore = c.RecencyScore
	item.PopularityScore = c.PopularityScore
	item.RelevanceScore = c.RelevanceScore
	item.TotalScore = c.TotalScore
	return item
}

func toSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
