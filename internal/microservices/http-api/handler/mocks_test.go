package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"bookhub/internal/microservices/http-api/middleware"
	"bookhub/internal/microservices/http-api/models"
	"bookhub/internal/microservices/http-api/service"
)

// MockBookService mocks the BookService interface
type MockBookService struct {
	mock.Mock
}

func (m *MockBookService) Search(ctx context.Context, term string, maxResults int) ([]models.Book, error) {
	args := m.Called(ctx, term, maxResults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Book), args.Error(1)
}

func (m *MockBookService) Enrich(ctx context.Context, bookID, viewerID string) (*models.Book, error) {
	args := m.Called(ctx, bookID, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookService) EnrichMany(ctx context.Context, ids []string) []*models.Book {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*models.Book)
}

// MockActivityService mocks the ActivityService interface
type MockActivityService struct {
	mock.Mock
}

func (m *MockActivityService) SetActivity(ctx context.Context, userID, bookID string, status *models.ReadingStatus, rating *int) (*service.SetActivityResult, error) {
	args := m.Called(ctx, userID, bookID, status, rating)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SetActivityResult), args.Error(1)
}

func (m *MockActivityService) ListActivity(ctx context.Context, userID string, status *models.ReadingStatus) ([]models.Book, error) {
	args := m.Called(ctx, userID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Book), args.Error(1)
}

func (m *MockActivityService) Dashboard(ctx context.Context, userID string) []models.Shelf {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Shelf)
}

// MockFriendService mocks the FriendService interface
type MockFriendService struct {
	mock.Mock
}

func (m *MockFriendService) SendRequest(ctx context.Context, senderID, receiverID string) (*models.FriendEdge, error) {
	args := m.Called(ctx, senderID, receiverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FriendEdge), args.Error(1)
}

func (m *MockFriendService) Respond(ctx context.Context, userID, requestID string, status models.FriendStatus) (*models.FriendEdge, error) {
	args := m.Called(ctx, userID, requestID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FriendEdge), args.Error(1)
}

func (m *MockFriendService) ListFriends(ctx context.Context, userID, searchTerm string) ([]models.User, error) {
	args := m.Called(ctx, userID, searchTerm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockFriendService) ListRequests(ctx context.Context, userID string, role models.RequestRole) ([]models.FriendRequest, error) {
	args := m.Called(ctx, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FriendRequest), args.Error(1)
}

func (m *MockFriendService) Relationship(ctx context.Context, userID, otherID string) (*models.FriendEdge, error) {
	args := m.Called(ctx, userID, otherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FriendEdge), args.Error(1)
}

// MockFeedService mocks the FeedService interface
type MockFeedService struct {
	mock.Mock
}

func (m *MockFeedService) BuildFeed(ctx context.Context, userID string) ([]models.FeedEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FeedEntry), args.Error(1)
}

// MockUserService mocks the UserService interface
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UpsertProfile(ctx context.Context, user *models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) SetReadingGoal(ctx context.Context, userID string, goal int) error {
	args := m.Called(ctx, userID, goal)
	return args.Error(0)
}

func (m *MockUserService) ReadingChallenge(ctx context.Context, userID string) (*models.ReadingChallenge, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReadingChallenge), args.Error(1)
}

// setupRouter returns a router where every request is authenticated as userID
// with all scopes.
func setupRouter(userID string) (*gin.Engine, *gin.RouterGroup) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api", func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextScopes, []string{"*"})
		c.Next()
	})
	return r, api
}
