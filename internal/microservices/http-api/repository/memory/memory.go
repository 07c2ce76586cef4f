// Package memory holds in-process implementations of the repository
// interfaces, used for STORE_DRIVER=memory and in service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"bookhub/internal/microservices/http-api/models"
	"bookhub/internal/microservices/http-api/repository"
)

// Clock returns the time stamped on writes.
type Clock func() time.Time

func orNow(now Clock) Clock {
	if now == nil {
		return time.Now
	}
	return now
}

// ============================================
// ACTIVITY RECORDS
// ============================================

type ActivityRepository struct {
	mu      sync.RWMutex
	now     Clock
	records []*models.ActivityRecord // insertion order
}

var _ repository.ActivityRepository = (*ActivityRepository)(nil)

func NewActivityRepository(now Clock) *ActivityRepository {
	return &ActivityRepository{now: orNow(now)}
}

func (r *ActivityRepository) FindByUserAndBook(ctx context.Context, userID, bookID string) (*models.ActivityRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.records {
		if rec.UserID == userID && rec.BookID == bookID {
			return cloneActivity(rec), nil
		}
	}
	return nil, repository.ErrRecordNotFound
}

func (r *ActivityRepository) Create(ctx context.Context, record *models.ActivityRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	ts := r.now()
	record.CreatedAt = ts
	record.UpdatedAt = ts
	r.records = append(r.records, cloneActivity(record))
	return nil
}

func (r *ActivityRepository) Update(ctx context.Context, id string, patch models.ActivityPatch) (*models.ActivityRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.records {
		if rec.ID != id {
			continue
		}
		if patch.Status != nil {
			s := *patch.Status
			rec.Status = &s
		}
		if patch.Rating != nil {
			v := *patch.Rating
			rec.Rating = &v
		}
		rec.UpdatedAt = r.now()
		return cloneActivity(rec), nil
	}
	return nil, repository.ErrRecordNotFound
}

func (r *ActivityRepository) ListByUser(ctx context.Context, userID string, status *models.ReadingStatus) ([]models.ActivityRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.ActivityRecord{}
	for _, rec := range r.records {
		if rec.UserID != userID {
			continue
		}
		if status != nil && (rec.Status == nil || *rec.Status != *status) {
			continue
		}
		out = append(out, *cloneActivity(rec))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *ActivityRepository) ListRatingsForBook(ctx context.Context, bookID string) ([]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ratings := []int{}
	for _, rec := range r.records {
		if rec.BookID == bookID && rec.RatingValue() > 0 {
			ratings = append(ratings, *rec.Rating)
		}
	}
	return ratings, nil
}

func (r *ActivityRepository) CountByStatus(ctx context.Context, userID string, status models.ReadingStatus) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, rec := range r.records {
		if rec.UserID == userID && rec.Status != nil && *rec.Status == status {
			n++
		}
	}
	return n, nil
}

// Len reports how many records are stored.
func (r *ActivityRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

func cloneActivity(rec *models.ActivityRecord) *models.ActivityRecord {
	c := *rec
	if rec.Status != nil {
		s := *rec.Status
		c.Status = &s
	}
	if rec.Rating != nil {
		v := *rec.Rating
		c.Rating = &v
	}
	return &c
}

// ============================================
// FRIEND EDGES
// ============================================

type FriendRepository struct {
	mu     sync.RWMutex
	now    Clock
	edges  []*models.FriendEdge
	byPair map[string]*models.FriendEdge
}

var _ repository.FriendRepository = (*FriendRepository)(nil)

func NewFriendRepository(now Clock) *FriendRepository {
	return &FriendRepository{now: orNow(now), byPair: map[string]*models.FriendEdge{}}
}

func (r *FriendRepository) FindBetween(ctx context.Context, a, b string) (*models.FriendEdge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.byPair[models.PairKey(a, b)]; ok {
		c := *e
		return &c, nil
	}
	return nil, repository.ErrRecordNotFound
}

func (r *FriendRepository) FindByID(ctx context.Context, id string) (*models.FriendEdge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.edges {
		if e.ID == id {
			c := *e
			return &c, nil
		}
	}
	return nil, repository.ErrRecordNotFound
}

func (r *FriendRepository) Create(ctx context.Context, edge *models.FriendEdge) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := models.PairKey(edge.SenderID, edge.ReceiverID)
	if _, exists := r.byPair[key]; exists {
		return repository.ErrDuplicate
	}
	if edge.ID == "" {
		edge.ID = uuid.New().String()
	}
	if edge.Status == "" {
		edge.Status = models.FriendPending
	}
	edge.PairKey = key
	ts := r.now()
	edge.CreatedAt = ts
	edge.UpdatedAt = ts

	stored := *edge
	r.edges = append(r.edges, &stored)
	r.byPair[key] = &stored
	return nil
}

func (r *FriendRepository) UpdateStatus(ctx context.Context, id string, status models.FriendStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.edges {
		if e.ID == id {
			e.Status = status
			e.UpdatedAt = r.now()
			return nil
		}
	}
	return repository.ErrRecordNotFound
}

func (r *FriendRepository) ListAccepted(ctx context.Context, userID string) ([]models.FriendEdge, error) {
	return r.list(func(e *models.FriendEdge) bool {
		return e.Status == models.FriendAccepted && (e.SenderID == userID || e.ReceiverID == userID)
	}), nil
}

func (r *FriendRepository) ListPending(ctx context.Context, userID string, role models.RequestRole) ([]models.FriendEdge, error) {
	return r.list(func(e *models.FriendEdge) bool {
		if e.Status != models.FriendPending {
			return false
		}
		if role == models.RoleSender {
			return e.SenderID == userID
		}
		return e.ReceiverID == userID
	}), nil
}

func (r *FriendRepository) list(match func(*models.FriendEdge) bool) []models.FriendEdge {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.FriendEdge{}
	for _, e := range r.edges {
		if match(e) {
			out = append(out, *e)
		}
	}
	return out
}

// ============================================
// USERS
// ============================================

type UserRepository struct {
	mu    sync.RWMutex
	now   Clock
	users map[string]*models.User
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository(now Clock) *UserRepository {
	return &UserRepository{now: orNow(now), users: map[string]*models.User{}}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, repository.ErrRecordNotFound
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []string, searchTerm string) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	term := strings.ToLower(strings.TrimSpace(searchTerm))
	out := []models.User{}
	for _, id := range ids {
		u, ok := r.users[id]
		if !ok {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(u.Name), term) &&
			!strings.Contains(strings.ToLower(u.Username), term) {
			continue
		}
		out = append(out, *cloneUser(u))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, other := range r.users {
		if id != user.ID && other.Username == user.Username {
			return repository.ErrDuplicate
		}
	}

	ts := r.now()
	existing, ok := r.users[user.ID]
	if !ok {
		stored := cloneUser(user)
		stored.CreatedAt = ts
		stored.UpdatedAt = ts
		r.users[user.ID] = stored
		*user = *cloneUser(stored)
		return nil
	}

	existing.Name = user.Name
	existing.Username = user.Username
	existing.Email = user.Email
	existing.ProfilePic = user.ProfilePic
	existing.Country = user.Country
	existing.UpdatedAt = ts
	*user = *cloneUser(existing)
	return nil
}

func (r *UserRepository) UpdateReadingGoal(ctx context.Context, id string, goal int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrRecordNotFound
	}
	g := goal
	u.ReadingGoal = &g
	u.UpdatedAt = r.now()
	return nil
}

func cloneUser(u *models.User) *models.User {
	c := *u
	if u.ReadingGoal != nil {
		g := *u.ReadingGoal
		c.ReadingGoal = &g
	}
	return &c
}
