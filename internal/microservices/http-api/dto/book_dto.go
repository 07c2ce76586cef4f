package dto

import (
	"bookhub/internal/microservices/http-api/models"
)

// BookListResponse wraps a list of books
type BookListResponse struct {
	Data  []models.Book `json:"data"`
	Total int           `json:"total"`
}

func NewBookListResponse(books []models.Book) *BookListResponse {
	if books == nil {
		books = []models.Book{}
	}
	return &BookListResponse{Data: books, Total: len(books)}
}

// SetActivityRequest updates the caller's status and/or rating for a book.
// Status accepts "WantToRead" or its slug "want-to-read".
type SetActivityRequest struct {
	Status *string `json:"status"`
	Rating *int    `json:"rating" binding:"omitempty,min=0,max=5"`
}

// ActivityResponse reports the outcome of an activity write
type ActivityResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Created bool                   `json:"created"`
	Record  *models.ActivityRecord `json:"record"`
}

// DashboardResponse holds the caller's three status shelves
type DashboardResponse struct {
	Shelves []models.Shelf `json:"shelves"`
}

// FeedResponse wraps the composed activity feed
type FeedResponse struct {
	Data []models.FeedEntry `json:"data"`
}
