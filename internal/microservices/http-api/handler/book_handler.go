package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bookhub/internal/identity"
	"bookhub/internal/microservices/http-api/dto"
	"bookhub/internal/microservices/http-api/middleware"
	"bookhub/internal/microservices/http-api/models"
	"bookhub/internal/microservices/http-api/service"
)

type BookHandler struct {
	bookService     service.BookService
	activityService service.ActivityService
}

func NewBookHandler(bookService service.BookService, activityService service.ActivityService) *BookHandler {
	return &BookHandler{bookService: bookService, activityService: activityService}
}

// RegisterRoutes registers book routes under an authenticated group
func (h *BookHandler) RegisterRoutes(router *gin.RouterGroup) {
	books := router.Group("/books")
	{
		books.GET("/search", middleware.RequireScopes(identity.ScopeReadBooks), h.Search)
		books.GET("/:book_id", middleware.RequireScopes(identity.ScopeReadBooks), h.Get)
		books.PUT("/:book_id/activity", middleware.RequireScopes(identity.ScopeWriteBooks), h.SetActivity)
	}
}

// Search queries the catalog
// GET /api/books/search?q=&max=
func (h *BookHandler) Search(c *gin.Context) {
	maxResults := 0
	if raw := c.Query("max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max must be a positive integer"})
			return
		}
		maxResults = n
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	books, err := h.bookService.Search(ctx, c.Query("q"), maxResults)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBookListResponse(books))
}

// Get returns one enriched book with the caller's activity
// GET /api/books/:book_id
func (h *BookHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	book, err := h.bookService.Enrich(ctx, c.Param("book_id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// SetActivity sets the caller's status and/or rating for a book
// PUT /api/books/:book_id/activity
func (h *BookHandler) SetActivity(c *gin.Context) {
	var req dto.SetActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var status *models.ReadingStatus
	if req.Status != nil {
		s, ok := models.ParseStatus(*req.Status)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		status = &s
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	res, err := h.activityService.SetActivity(ctx, middleware.UserID(c), c.Param("book_id"), status, req.Rating)
	if err != nil {
		respondError(c, err)
		return
	}

	code := http.StatusOK
	if res.Created {
		code = http.StatusCreated
	}
	c.JSON(code, dto.ActivityResponse{
		Success: true,
		Message: res.Message,
		Created: res.Created,
		Record:  res.Record,
	})
}
