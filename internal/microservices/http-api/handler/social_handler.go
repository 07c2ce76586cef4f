package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bookhub/internal/identity"
	"bookhub/internal/microservices/http-api/dto"
	"bookhub/internal/microservices/http-api/middleware"
	"bookhub/internal/microservices/http-api/models"
	"bookhub/internal/microservices/http-api/service"
)

// feedTimeout is longer than requestTimeout; a feed fans out per friend.
const feedTimeout = 15 * time.Second

type SocialHandler struct {
	feedService   service.FeedService
	friendService service.FriendService
}

func NewSocialHandler(feedService service.FeedService, friendService service.FriendService) *SocialHandler {
	return &SocialHandler{feedService: feedService, friendService: friendService}
}

// RegisterRoutes registers feed and friend routes
func (h *SocialHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/feed", middleware.RequireScopes(identity.ScopeReadSocial, identity.ScopeReadBooks), h.Feed)

	friends := router.Group("/friends")
	{
		friends.GET("", middleware.RequireScopes(identity.ScopeReadSocial), h.ListFriends)
		friends.GET("/requests", middleware.RequireScopes(identity.ScopeReadSocial), h.ListRequests)
		friends.POST("/requests", middleware.RequireScopes(identity.ScopeWriteSocial), h.SendRequest)
		friends.PATCH("/requests/:request_id", middleware.RequireScopes(identity.ScopeWriteSocial), h.Respond)
		friends.GET("/relationship/:user_id", middleware.RequireScopes(identity.ScopeReadSocial), h.Relationship)
	}
}

// Feed returns the caller's and their friends' recent activity
// GET /api/feed
func (h *SocialHandler) Feed(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), feedTimeout)
	defer cancel()

	feed, err := h.feedService.BuildFeed(ctx, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FeedResponse{Data: feed})
}

// ListFriends lists accepted friends, optionally filtered by name
// GET /api/friends?q=
func (h *SocialHandler) ListFriends(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	friends, err := h.friendService.ListFriends(ctx, middleware.UserID(c), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": friends})
}

// ListRequests lists pending requests the caller received (default) or sent
// GET /api/friends/requests?type=receiver|sender
func (h *SocialHandler) ListRequests(c *gin.Context) {
	role := models.RequestRole(c.DefaultQuery("type", string(models.RoleReceiver)))

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	requests, err := h.friendService.ListRequests(ctx, middleware.UserID(c), role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": requests})
}

// SendRequest sends a friend request
// POST /api/friends/requests
func (h *SocialHandler) SendRequest(c *gin.Context) {
	var req dto.SendFriendRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	edge, err := h.friendService.SendRequest(ctx, middleware.UserID(c), req.ReceiverID)
	if err != nil {
		respondError(c, err)
		return
	}

	code := http.StatusCreated
	if edge.Status == models.FriendAccepted {
		code = http.StatusOK
	}
	c.JSON(code, edge)
}

// Respond accepts or declines a received request
// PATCH /api/friends/requests/:request_id
func (h *SocialHandler) Respond(c *gin.Context) {
	var req dto.RespondFriendRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	edge, err := h.friendService.Respond(ctx, middleware.UserID(c), c.Param("request_id"), models.FriendStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, edge)
}

// Relationship describes the edge between the caller and another user
// GET /api/friends/relationship/:user_id
func (h *SocialHandler) Relationship(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	edge, err := h.friendService.Relationship(ctx, middleware.UserID(c), c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromFriendEdge(edge))
}
