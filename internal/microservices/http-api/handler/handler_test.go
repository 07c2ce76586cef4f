package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bookhub/internal/microservices/http-api/models"
	"bookhub/internal/microservices/http-api/service"
	"bookhub/internal/shared"
)

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestBookHandler_Search(t *testing.T) {
	books := new(MockBookService)
	router, api := setupRouter("u1")
	NewBookHandler(books, new(MockActivityService)).RegisterRoutes(api)

	books.On("Search", mock.Anything, "dune", 5).Return([]models.Book{{ID: "b1", Title: "Dune"}}, nil)
	books.On("Search", mock.Anything, "", 0).Return(nil, shared.Validation("search term is required"))

	w := doJSON(t, router, http.MethodGet, "/api/books/search?q=dune&max=5", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data  []models.Book `json:"data"`
		Total int           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "Dune", resp.Data[0].Title)

	w = doJSON(t, router, http.MethodGet, "/api/books/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION")

	w = doJSON(t, router, http.MethodGet, "/api/books/search?q=dune&max=lots", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	books.AssertExpectations(t)
}

func TestBookHandler_Get_ErrorMapping(t *testing.T) {
	books := new(MockBookService)
	router, api := setupRouter("u1")
	NewBookHandler(books, new(MockActivityService)).RegisterRoutes(api)

	books.On("Enrich", mock.Anything, "missing", "u1").Return(nil, shared.NotFound("book missing not found"))
	books.On("Enrich", mock.Anything, "b1", "u1").Return(nil, shared.Upstream("catalog lookup failed", errors.New("timeout")))
	books.On("Enrich", mock.Anything, "boom", "u1").Return(nil, errors.New("secret internals"))

	w := doJSON(t, router, http.MethodGet, "/api/books/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/books/b1", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/books/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret internals")
}

func TestBookHandler_SetActivity(t *testing.T) {
	activity := new(MockActivityService)
	router, api := setupRouter("u1")
	NewBookHandler(new(MockBookService), activity).RegisterRoutes(api)

	read := models.StatusRead
	record := &models.ActivityRecord{ID: "r1", UserID: "u1", BookID: "b1", Status: &read}
	activity.On("SetActivity", mock.Anything, "u1", "b1", mock.MatchedBy(func(s *models.ReadingStatus) bool {
		return s != nil && *s == models.StatusCurrentlyReading
	}), (*int)(nil)).Return(&service.SetActivityResult{Record: record, Created: true, Message: "activity created"}, nil)

	w := doJSON(t, router, http.MethodPut, "/api/books/b1/activity", map[string]string{"status": "currently-reading"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)

	w = doJSON(t, router, http.MethodPut, "/api/books/b1/activity", map[string]string{"status": "abandoned"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/books/b1/activity", map[string]int{"rating": 7})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	activity.AssertExpectations(t)
}

func TestUserHandler_ListBooks_Visibility(t *testing.T) {
	activity := new(MockActivityService)
	friends := new(MockFriendService)
	router, api := setupRouter("u1")
	NewUserHandler(new(MockUserService), activity, friends).RegisterRoutes(api)

	activity.On("ListActivity", mock.Anything, "u1", (*models.ReadingStatus)(nil)).Return([]models.Book{}, nil)
	activity.On("ListActivity", mock.Anything, "friend", mock.Anything).Return([]models.Book{{ID: "b1"}}, nil)
	friends.On("Relationship", mock.Anything, "u1", "friend").Return(&models.FriendEdge{Status: models.FriendAccepted}, nil)
	friends.On("Relationship", mock.Anything, "u1", "stranger").Return(nil, nil)

	w := doJSON(t, router, http.MethodGet, "/api/users/u1/books", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)

	w = doJSON(t, router, http.MethodGet, "/api/users/friend/books?status=read", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/users/stranger/books", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/users/u1/books?status=someday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	activity.AssertNotCalled(t, "ListActivity", mock.Anything, "stranger", mock.Anything)
}

func TestUserHandler_ReadingGoal(t *testing.T) {
	users := new(MockUserService)
	router, api := setupRouter("u1")
	NewUserHandler(users, new(MockActivityService), new(MockFriendService)).RegisterRoutes(api)

	users.On("SetReadingGoal", mock.Anything, "u1", 24).Return(nil)

	w := doJSON(t, router, http.MethodPut, "/api/me/reading-goal", map[string]int{"goal": 24})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/me/reading-goal", map[string]int{"goal": 1000})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	users.AssertExpectations(t)
}

func TestUserHandler_Dashboard(t *testing.T) {
	activity := new(MockActivityService)
	router, api := setupRouter("u1")
	NewUserHandler(new(MockUserService), activity, new(MockFriendService)).RegisterRoutes(api)

	activity.On("Dashboard", mock.Anything, "u1").Return([]models.Shelf{
		{Status: models.StatusCurrentlyReading, Outcome: shared.OutcomeFailed, Books: []models.Book{}},
	})

	w := doJSON(t, router, http.MethodGet, "/api/me/dashboard", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"outcome":"failed"`)
}

func TestSocialHandler_FeedAndRequests(t *testing.T) {
	feed := new(MockFeedService)
	friends := new(MockFriendService)
	router, api := setupRouter("u1")
	NewSocialHandler(feed, friends).RegisterRoutes(api)

	feed.On("BuildFeed", mock.Anything, "u1").Return([]models.FeedEntry{{UserID: "u2", UserName: "Bob"}}, nil)
	friends.On("SendRequest", mock.Anything, "u1", "u2").Return(&models.FriendEdge{ID: "e1", Status: models.FriendPending}, nil)
	friends.On("SendRequest", mock.Anything, "u1", "u1").Return(nil, shared.Validation("cannot send a friend request to yourself"))
	friends.On("Respond", mock.Anything, "u1", "e9", models.FriendAccepted).Return(nil, shared.Forbidden("only the receiver can respond to a friend request"))
	friends.On("Relationship", mock.Anything, "u1", "u3").Return(nil, nil)

	w := doJSON(t, router, http.MethodGet, "/api/feed", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_name":"Bob"`)

	w = doJSON(t, router, http.MethodPost, "/api/friends/requests", map[string]string{"receiver_id": "u2"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/friends/requests", map[string]string{"receiver_id": "u1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPatch, "/api/friends/requests/e9", map[string]string{"status": "accepted"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodPatch, "/api/friends/requests/e9", map[string]string{"status": "maybe"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/friends/relationship/u3", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"none"`)

	feed.AssertExpectations(t)
	friends.AssertExpectations(t)
}
