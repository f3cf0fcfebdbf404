package feed

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"socialfeed/models"
)

var errBackendDown = errors.New("backend down")

type fakeGraph struct {
	mu        sync.Mutex
	following map[int64][]int64
	mutuals   map[[2]int64]int
	err       error

	followingCalls atomic.Int32
	mutualCalls    atomic.Int32
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{following: map[int64][]int64{}, mutuals: map[[2]int64]int{}}
}

func (g *fakeGraph) follow(follower, following int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.following[follower] = append(g.following[follower], following)
}

func (g *fakeGraph) AcceptedFollowing(_ context.Context, userID int64) ([]int64, error) {
	g.followingCalls.Add(1)
	if g.err != nil {
		return nil, g.err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.following[userID]), nil
}

func (g *fakeGraph) AcceptedFollowers(_ context.Context, userID int64) ([]int64, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []int64
	for follower, list := range g.following {
		if slices.Contains(list, userID) {
			out = append(out, follower)
		}
	}
	return out, nil
}

func (g *fakeGraph) MutualConnectionCount(_ context.Context, a, b int64) (int, error) {
	g.mutualCalls.Add(1)
	if g.err != nil {
		return 0, g.err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mutuals[[2]int64{a, b}], nil
}

type fakeContent struct {
	mu    sync.Mutex
	posts []models.Post
	err   error
	// журнал для ExcludeViewedBy, как подзапрос к post_views
	views *fakeViews
	// имитирует хранилище, которое не умеет фильтровать по времени
	ignoreCreatedAfter bool
	// имитирует хранилище, которое пропускает просмотренные посты
	ignoreViewed bool
	// вызывается внутри QueryCandidates, позволяет тестам задержать сборку
	onQuery func()

	queryCalls atomic.Int32
	countCalls atomic.Int32
}

func (c *fakeContent) add(p models.Post) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p.Visibility == "" {
		p.Visibility = models.VisibilityPublic
	}
	p.IsPublished = true
	c.posts = append(c.posts, p)
}

func (c *fakeContent) setLikes(postID, likes int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.posts {
		if c.posts[i].ID == postID {
			c.posts[i].LikesCount = likes
		}
	}
}

func (c *fakeContent) match(q CandidateQuery, p models.Post) bool {
	if !p.IsPublished || p.IsDeleted {
		return false
	}
	switch q.Scope {
	case ScopePublic:
		if p.Visibility != models.VisibilityPublic {
			return false
		}
	case ScopeHome:
		isAuthor := slices.Contains(q.AuthorIDs, p.AuthorID)
		if !(p.Visibility == models.VisibilityPublic || (p.Visibility == models.VisibilityFollowers && isAuthor)) {
			return false
		}
	}
	if !c.ignoreCreatedAfter && !q.CreatedAfter.IsZero() && !p.CreatedAt.After(q.CreatedAfter) {
		return false
	}
	if slices.Contains(q.ExcludePostIDs, p.ID) {
		return false
	}
	if q.ExcludeViewedBy != 0 && c.views != nil && !c.ignoreViewed && c.views.seen(q.ExcludeViewedBy, p.ID) {
		return false
	}
	if len(q.Interests) > 0 {
		hit := false
		for _, i := range q.Interests {
			if strings.Contains(strings.ToLower(p.Content), i) || slices.Contains(p.Tags(), i) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

func (c *fakeContent) filtered(q CandidateQuery) []models.Post {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.Post
	for _, p := range c.posts {
		if c.match(q, p) {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b models.Post) int {
		if q.Order == OrderEngagement {
			if r := cmp.Compare(EngagementRatio(b.Counters()), EngagementRatio(a.Counters())); r != 0 {
				return r
			}
		}
		if r := b.CreatedAt.Compare(a.CreatedAt); r != 0 {
			return r
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}

func (c *fakeContent) QueryCandidates(_ context.Context, q CandidateQuery) ([]models.Post, error) {
	c.queryCalls.Add(1)
	if c.onQuery != nil {
		c.onQuery()
	}
	if c.err != nil {
		return nil, c.err
	}
	all := c.filtered(q)
	if q.Offset >= len(all) {
		return nil, nil
	}
	all = all[q.Offset:]
	if q.Limit > 0 && len(all) > q.Limit {
		all = all[:q.Limit]
	}
	return all, nil
}

func (c *fakeContent) CountCandidates(_ context.Context, q CandidateQuery) (int64, error) {
	c.countCalls.Add(1)
	if c.err != nil {
		return 0, c.err
	}
	return int64(len(c.filtered(q))), nil
}

func (c *fakeContent) GetPost(_ context.Context, postID int64) (*models.Post, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.posts {
		if p.ID == postID {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (c *fakeContent) GetCounters(ctx context.Context, postID int64) (models.PostCounters, error) {
	p, err := c.GetPost(ctx, postID)
	if err != nil {
		return models.PostCounters{}, err
	}
	return p.Counters(), nil
}

type fakeEngagement struct {
	mu           sync.Mutex
	liked        map[int64][]string
	likedIDs     map[int64]map[int64]bool
	interactions map[int64]map[int64]models.Interaction
	err          error

	likedIDCalls atomic.Int32
}

func newFakeEngagement() *fakeEngagement {
	return &fakeEngagement{
		liked:        map[int64][]string{},
		likedIDs:     map[int64]map[int64]bool{},
		interactions: map[int64]map[int64]models.Interaction{},
	}
}

func (f *fakeEngagement) like(userID, postID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.likedIDs[userID] == nil {
		f.likedIDs[userID] = map[int64]bool{}
	}
	f.likedIDs[userID][postID] = true
}

func (f *fakeEngagement) RecentLikedContents(_ context.Context, userID int64, n int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.liked[userID]
	if len(out) > n {
		out = out[:n]
	}
	return slices.Clone(out), nil
}

func (f *fakeEngagement) LikedPostIDs(_ context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	f.likedIDCalls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[int64]bool{}
	for _, id := range postIDs {
		if f.likedIDs[userID][id] {
			out[id] = true
		}
	}
	return out, nil
}

func (f *fakeEngagement) Interactions(_ context.Context, userID int64, postIDs []int64) (map[int64]models.Interaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[int64]models.Interaction{}
	for _, id := range postIDs {
		if i, ok := f.interactions[userID][id]; ok {
			out[id] = i
		}
	}
	return out, nil
}

type fakeViews struct {
	mu     sync.Mutex
	viewed map[int64]map[int64]bool
	err    error

	hasViewedCalls atomic.Int32
}

func newFakeViews() *fakeViews {
	return &fakeViews{viewed: map[int64]map[int64]bool{}}
}

func (v *fakeViews) seen(userID, postID int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.viewed[userID][postID]
}

func (v *fakeViews) HasViewed(_ context.Context, userID, postID int64) (bool, error) {
	v.hasViewedCalls.Add(1)
	if v.err != nil {
		return false, v.err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.viewed[userID][postID], nil
}

func (v *fakeViews) RecordViews(_ context.Context, userID int64, postIDs []int64) error {
	if v.err != nil {
		return v.err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.viewed[userID] == nil {
		v.viewed[userID] = map[int64]bool{}
	}
	for _, id := range postIDs {
		v.viewed[userID][id] = true
	}
	return nil
}

// memCache - кеш в памяти без собственного TTL: истечение проверяет движок по своим часам
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
	setErr  error
	delErr  error

	setCalls atomic.Int32
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return slices.Clone(v), nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.setCalls.Add(1)
	if m.setErr != nil {
		return m.setErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = slices.Clone(value)
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	if m.delErr != nil {
		return m.delErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *memCache) DeleteByPrefix(_ context.Context, prefix string) error {
	if m.delErr != nil {
		return m.delErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
	return nil
}

func (m *memCache) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for k := range m.entries {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// testClock - управляемые часы
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
