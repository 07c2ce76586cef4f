package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"

	"bookhub/internal/catalog"
	"bookhub/internal/microservices/http-api/models"
	"bookhub/internal/microservices/http-api/repository"
	"bookhub/internal/microservices/http-api/repository/memory"
)

// stubCatalog is an in-process catalog.VolumeSource.
type stubCatalog struct {
	mu      sync.Mutex
	volumes map[string]catalog.Volume
	down    bool
}

func newStubCatalog(vols ...catalog.Volume) *stubCatalog {
	c := &stubCatalog{volumes: map[string]catalog.Volume{}}
	for _, v := range vols {
		c.volumes[v.ID] = v
	}
	return c
}

func (c *stubCatalog) SearchVolumes(ctx context.Context, term string, maxResults int) (*catalog.VolumeListResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.down {
		return nil, errors.New("connection refused")
	}
	resp := &catalog.VolumeListResponse{}
	for _, v := range c.volumes {
		resp.Items = append(resp.Items, v)
	}
	return resp, nil
}

func (c *stubCatalog) GetVolume(ctx context.Context, id string) (*catalog.Volume, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.down {
		return nil, errors.New("connection refused")
	}
	v, ok := c.volumes[id]
	if !ok {
		return nil, &catalog.StatusError{StatusCode: http.StatusNotFound}
	}
	return &v, nil
}

func vol(id, title string, avg float64, count int) catalog.Volume {
	return catalog.Volume{ID: id, VolumeInfo: catalog.VolumeInfo{Title: title, AverageRating: avg, RatingsCount: count}}
}

// fixture wires every service over the in-memory store.
type fixture struct {
	catalog  *stubCatalog
	activity *memory.ActivityRepository
	friends  *memory.FriendRepository
	users    *memory.UserRepository

	books      BookService
	activities ActivityService
	feed       FeedService
	friendSvc  FriendService
	userSvc    UserService
}

func newFixture(vols ...catalog.Volume) *fixture {
	clock := tickingClock()
	f := &fixture{
		catalog:  newStubCatalog(vols...),
		activity: memory.NewActivityRepository(clock),
		friends:  memory.NewFriendRepository(clock),
		users:    memory.NewUserRepository(clock),
	}
	log := zerolog.Nop()
	gw := catalog.NewGateway(f.catalog, nil, time.Second, log)
	f.books = NewBookService(gw, NewRatingBlender(f.activity), f.activity, 4, log)
	f.activities = NewActivityService(f.activity, f.books, log)
	f.feed = NewFeedService(f.users, f.friends, f.activities, 4, log)
	f.friendSvc = NewFriendService(f.friends, f.users, log)
	f.userSvc = NewUserService(f.users, f.activity)
	return f
}

func (f *fixture) addUser(id, name string) {
	_ = f.users.Upsert(context.Background(), &models.User{ID: id, Name: name, Username: id})
}

func (f *fixture) befriend(a, b string) {
	ctx := context.Background()
	edge := &models.FriendEdge{SenderID: a, ReceiverID: b}
	_ = f.friends.Create(ctx, edge)
	_ = f.friends.UpdateStatus(ctx, edge.ID, models.FriendAccepted)
}

// tickingClock advances one second per call so update order is deterministic.
func tickingClock() memory.Clock {
	var mu sync.Mutex
	t := time.Unix(1_000, 0)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func statusPtr(s models.ReadingStatus) *models.ReadingStatus { return &s }

// MockActivityRepository mocks the ActivityRepository interface
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) FindByUserAndBook(ctx context.Context, userID, bookID string) (*models.ActivityRecord, error) {
	args := m.Called(ctx, userID, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ActivityRecord), args.Error(1)
}

func (m *MockActivityRepository) Create(ctx context.Context, record *models.ActivityRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockActivityRepository) Update(ctx context.Context, id string, patch models.ActivityPatch) (*models.ActivityRecord, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ActivityRecord), args.Error(1)
}

func (m *MockActivityRepository) ListByUser(ctx context.Context, userID string, status *models.ReadingStatus) ([]models.ActivityRecord, error) {
	args := m.Called(ctx, userID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ActivityRecord), args.Error(1)
}

func (m *MockActivityRepository) ListRatingsForBook(ctx context.Context, bookID string) ([]int, error) {
	args := m.Called(ctx, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockActivityRepository) CountByStatus(ctx context.Context, userID string, status models.ReadingStatus) (int64, error) {
	args := m.Called(ctx, userID, status)
	return args.Get(0).(int64), args.Error(1)
}

var _ repository.ActivityRepository = (*MockActivityRepository)(nil)

// flakyActivity fails ListActivity for the listed users.
type flakyActivity struct {
	ActivityService
	failFor map[string]bool
}

func (f *flakyActivity) ListActivity(ctx context.Context, userID string, status *models.ReadingStatus) ([]models.Book, error) {
	if f.failFor[userID] {
		return nil, errors.New("store timeout")
	}
	return f.ActivityService.ListActivity(ctx, userID, status)
}
