package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"bookhub/internal/microservices/http-api/models"
	"bookhub/internal/microservices/http-api/repository"
	"bookhub/internal/shared"
)

// FriendService manages the friend graph.
type FriendService interface {
	SendRequest(ctx context.Context, senderID, receiverID string) (*models.FriendEdge, error)
	Respond(ctx context.Context, userID, requestID string, status models.FriendStatus) (*models.FriendEdge, error)
	ListFriends(ctx context.Context, userID, searchTerm string) ([]models.User, error)
	ListRequests(ctx context.Context, userID string, role models.RequestRole) ([]models.FriendRequest, error)
	// Relationship returns the edge between two users, or nil if there is none.
	Relationship(ctx context.Context, userID, otherID string) (*models.FriendEdge, error)
}

type friendService struct {
	friendRepo repository.FriendRepository
	userRepo   repository.UserRepository
	logger     zerolog.Logger
}

func NewFriendService(friendRepo repository.FriendRepository, userRepo repository.UserRepository, logger zerolog.Logger) FriendService {
	return &friendService{friendRepo: friendRepo, userRepo: userRepo, logger: logger}
}

// SendRequest creates a pending request. If the receiver already asked the
// sender, that request is accepted instead of creating a second edge.
func (s *friendService) SendRequest(ctx context.Context, senderID, receiverID string) (*models.FriendEdge, error) {
	if senderID == "" || receiverID == "" {
		return nil, shared.Validation("sender and receiver are required")
	}
	if senderID == receiverID {
		return nil, shared.Validation("cannot send a friend request to yourself")
	}

	if _, err := s.userRepo.FindByID(ctx, receiverID); err != nil {
		return nil, storeError("user not found", err)
	}

	existing, err := s.friendRepo.FindBetween(ctx, senderID, receiverID)
	if err != nil && !errors.Is(err, repository.ErrRecordNotFound) {
		return nil, shared.Upstream("failed to look up friend request", err)
	}

	if existing != nil {
		if existing.Status == models.FriendPending && existing.SenderID == receiverID {
			if err := s.friendRepo.UpdateStatus(ctx, existing.ID, models.FriendAccepted); err != nil {
				return nil, storeError("friend request not found", err)
			}
			existing.Status = models.FriendAccepted
			s.logger.Info().Str("request_id", existing.ID).Msg("reverse friend request accepted")
			return existing, nil
		}
		return nil, conflictFor(existing)
	}

	edge := &models.FriendEdge{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.FriendPending,
	}
	if err := s.friendRepo.Create(ctx, edge); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, shared.Conflict("friend request already exists")
		}
		return nil, shared.Upstream("failed to create friend request", err)
	}
	return edge, nil
}

func conflictFor(edge *models.FriendEdge) error {
	switch edge.Status {
	case models.FriendAccepted:
		return shared.Conflict("already friends")
	case models.FriendDeclined:
		return shared.Conflict("friend request was declined")
	}
	return shared.Conflict("friend request already exists")
}

func (s *friendService) Respond(ctx context.Context, userID, requestID string, status models.FriendStatus) (*models.FriendEdge, error) {
	if status != models.FriendAccepted && status != models.FriendDeclined {
		return nil, shared.Validation("status must be accepted or declined")
	}

	edge, err := s.friendRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, storeError("friend request not found", err)
	}
	if edge.ReceiverID != userID {
		return nil, shared.Forbidden("only the receiver can respond to a friend request")
	}
	if edge.Status != models.FriendPending {
		return nil, shared.Conflict("friend request is no longer pending")
	}

	if err := s.friendRepo.UpdateStatus(ctx, edge.ID, status); err != nil {
		return nil, storeError("friend request not found", err)
	}
	edge.Status = status
	return edge, nil
}

func (s *friendService) ListFriends(ctx context.Context, userID, searchTerm string) ([]models.User, error) {
	edges, err := s.friendRepo.ListAccepted(ctx, userID)
	if err != nil {
		return nil, shared.Upstream("failed to list friends", err)
	}

	ids := make([]string, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.Other(userID))
	}

	users, err := s.userRepo.FindByIDs(ctx, ids, searchTerm)
	if err != nil {
		return nil, shared.Upstream("failed to load friend profiles", err)
	}
	return users, nil
}

func (s *friendService) ListRequests(ctx context.Context, userID string, role models.RequestRole) ([]models.FriendRequest, error) {
	if role != models.RoleSender && role != models.RoleReceiver {
		return nil, shared.Validation("type must be sender or receiver")
	}

	edges, err := s.friendRepo.ListPending(ctx, userID, role)
	if err != nil {
		return nil, shared.Upstream("failed to list friend requests", err)
	}

	ids := make([]string, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.Other(userID))
	}
	users, err := s.userRepo.FindByIDs(ctx, ids, "")
	if err != nil {
		return nil, shared.Upstream("failed to load requester profiles", err)
	}
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	requests := make([]models.FriendRequest, 0, len(edges))
	for _, e := range edges {
		other := e.Other(userID)
		user, ok := byID[other]
		if !ok {
			user = models.User{ID: other}
		}
		requests = append(requests, models.FriendRequest{
			ID:        e.ID,
			Status:    e.Status,
			CreatedAt: e.CreatedAt,
			User:      user,
		})
	}
	return requests, nil
}

func (s *friendService) Relationship(ctx context.Context, userID, otherID string) (*models.FriendEdge, error) {
	edge, err := s.friendRepo.FindBetween(ctx, userID, otherID)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, shared.Upstream("failed to look up relationship", err)
	}
	return edge, nil
}
