package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookhub/internal/identity"
	"bookhub/internal/microservices/http-api/dto"
	"bookhub/internal/microservices/http-api/middleware"
	"bookhub/internal/microservices/http-api/models"
	"bookhub/internal/microservices/http-api/service"
	"bookhub/internal/shared"
)

type UserHandler struct {
	userService     service.UserService
	activityService service.ActivityService
	friendService   service.FriendService
}

func NewUserHandler(userService service.UserService, activityService service.ActivityService, friendService service.FriendService) *UserHandler {
	return &UserHandler{
		userService:     userService,
		activityService: activityService,
		friendService:   friendService,
	}
}

// RegisterRoutes registers profile, shelf and challenge routes
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("/:user_id", middleware.RequireScopes(identity.ScopeReadSocial), h.GetProfile)
		users.GET("/:user_id/books", middleware.RequireScopes(identity.ScopeReadBooks), h.ListBooks)
		users.GET("/:user_id/challenge", middleware.RequireScopes(identity.ScopeReadBooks), h.Challenge)
	}

	me := router.Group("/me")
	{
		me.GET("/dashboard", middleware.RequireScopes(identity.ScopeReadBooks), h.Dashboard)
		me.PUT("", middleware.RequireScopes(identity.ScopeWriteSocial), h.UpsertProfile)
		me.PUT("/reading-goal", middleware.RequireScopes(identity.ScopeWriteBooks), h.SetReadingGoal)
	}
}

// GetProfile returns a user's profile
// GET /api/users/:user_id
func (h *UserHandler) GetProfile(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, err := h.userService.GetProfile(ctx, c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListBooks lists a user's shelved books, optionally for one status.
// Only the user and their friends may see them.
// GET /api/users/:user_id/books?status=
func (h *UserHandler) ListBooks(c *gin.Context) {
	var status *models.ReadingStatus
	if raw := c.Query("status"); raw != "" {
		s, ok := models.ParseStatus(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		status = &s
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	ownerID := c.Param("user_id")
	if err := h.ensureCanView(ctx, middleware.UserID(c), ownerID); err != nil {
		respondError(c, err)
		return
	}

	books, err := h.activityService.ListActivity(ctx, ownerID, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBookListResponse(books))
}

// Challenge returns a user's reading challenge progress
// GET /api/users/:user_id/challenge
func (h *UserHandler) Challenge(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	challenge, err := h.userService.ReadingChallenge(ctx, c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, challenge)
}

// Dashboard returns the caller's three status shelves
// GET /api/me/dashboard
func (h *UserHandler) Dashboard(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	shelves := h.activityService.Dashboard(ctx, middleware.UserID(c))
	c.JSON(http.StatusOK, dto.DashboardResponse{Shelves: shelves})
}

// UpsertProfile creates or edits the caller's profile
// PUT /api/me
func (h *UserHandler) UpsertProfile(c *gin.Context) {
	var req dto.UpsertProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, err := h.userService.UpsertProfile(ctx, req.ToModel(middleware.UserID(c)))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// SetReadingGoal sets the caller's reading goal
// PUT /api/me/reading-goal
func (h *UserHandler) SetReadingGoal(c *gin.Context) {
	var req dto.ReadingGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.userService.SetReadingGoal(ctx, middleware.UserID(c), req.Goal); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "reading goal updated", "goal": req.Goal})
}

func (h *UserHandler) ensureCanView(ctx context.Context, viewerID, ownerID string) error {
	if viewerID == ownerID {
		return nil
	}
	edge, err := h.friendService.Relationship(ctx, viewerID, ownerID)
	if err != nil {
		return err
	}
	if edge == nil || edge.Status != models.FriendAccepted {
		return shared.Forbidden("only friends can see this shelf")
	}
	return nil
}
