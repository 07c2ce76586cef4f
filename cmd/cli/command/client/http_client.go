package client

// http_client.go wraps the bookhub REST API for the CLI.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"bookhub/internal/microservices/http-api/dto"
	"bookhub/internal/microservices/http-api/models"
)

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"error"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.StatusCode)
}

func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: apiURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// do sends body as JSON when non-nil and decodes a 2xx answer into out.
// It returns the response status code.
func (c *HTTPClient) do(method, path string, body, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return resp.StatusCode, apiErr
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// Ping checks the server is up. It needs no token.
func (c *HTTPClient) Ping() error {
	_, err := c.do(http.MethodGet, "/check-conn", nil, nil)
	return err
}

func (c *HTTPClient) SearchBooks(term string, maxResults int) ([]models.Book, error) {
	q := url.Values{"q": {term}}
	if maxResults > 0 {
		q.Set("max", strconv.Itoa(maxResults))
	}
	var result dto.BookListResponse
	if _, err := c.do(http.MethodGet, "/api/books/search?"+q.Encode(), nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (c *HTTPClient) GetBook(id string) (*models.Book, error) {
	var book models.Book
	if _, err := c.do(http.MethodGet, "/api/books/"+url.PathEscape(id), nil, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (c *HTTPClient) SetActivity(bookID string, request *dto.SetActivityRequest) (*dto.ActivityResponse, error) {
	var result dto.ActivityResponse
	if _, err := c.do(http.MethodPut, "/api/books/"+url.PathEscape(bookID)+"/activity", request, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListShelf lists a user's books. An empty status lists every shelf.
func (c *HTTPClient) ListShelf(userID, status string) ([]models.Book, error) {
	path := "/api/users/" + url.PathEscape(userID) + "/books"
	if status != "" {
		path += "?" + url.Values{"status": {status}}.Encode()
	}
	var result dto.BookListResponse
	if _, err := c.do(http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (c *HTTPClient) Dashboard() ([]models.Shelf, error) {
	var result dto.DashboardResponse
	if _, err := c.do(http.MethodGet, "/api/me/dashboard", nil, &result); err != nil {
		return nil, err
	}
	return result.Shelves, nil
}

func (c *HTTPClient) Feed() ([]models.FeedEntry, error) {
	var result dto.FeedResponse
	if _, err := c.do(http.MethodGet, "/api/feed", nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (c *HTTPClient) UpsertProfile(request *dto.UpsertProfileRequest) (*models.User, error) {
	var user models.User
	if _, err := c.do(http.MethodPut, "/api/me", request, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) SetReadingGoal(goal int) error {
	_, err := c.do(http.MethodPut, "/api/me/reading-goal", dto.ReadingGoalRequest{Goal: goal}, nil)
	return err
}

func (c *HTTPClient) Challenge(userID string) (*models.ReadingChallenge, error) {
	var result models.ReadingChallenge
	if _, err := c.do(http.MethodGet, "/api/users/"+url.PathEscape(userID)+"/challenge", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) ListFriends(searchTerm string) ([]models.User, error) {
	path := "/api/friends"
	if searchTerm != "" {
		path += "?" + url.Values{"q": {searchTerm}}.Encode()
	}
	var result struct {
		Data []models.User `json:"data"`
	}
	if _, err := c.do(http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (c *HTTPClient) ListRequests(role string) ([]models.FriendRequest, error) {
	var result struct {
		Data []models.FriendRequest `json:"data"`
	}
	path := "/api/friends/requests?" + url.Values{"type": {role}}.Encode()
	if _, err := c.do(http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// SendFriendRequest returns the edge and whether it was accepted right away
// because the other user had already asked.
func (c *HTTPClient) SendFriendRequest(receiverID string) (*models.FriendEdge, bool, error) {
	var edge models.FriendEdge
	code, err := c.do(http.MethodPost, "/api/friends/requests", dto.SendFriendRequestDTO{ReceiverID: receiverID}, &edge)
	if err != nil {
		return nil, false, err
	}
	return &edge, code == http.StatusOK, nil
}

func (c *HTTPClient) RespondFriendRequest(requestID, status string) (*models.FriendEdge, error) {
	var edge models.FriendEdge
	if _, err := c.do(http.MethodPatch, "/api/friends/requests/"+url.PathEscape(requestID), dto.RespondFriendRequestDTO{Status: status}, &edge); err != nil {
		return nil, err
	}
	return &edge, nil
}
