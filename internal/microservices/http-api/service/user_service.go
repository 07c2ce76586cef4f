package service

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"

	"bookhub/internal/microservices/http-api/models"
	"bookhub/internal/microservices/http-api/repository"
	"bookhub/internal/shared"
)

const (
	MinReadingGoal = 1
	MaxReadingGoal = 999
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

// UserService manages reader profiles and reading goals.
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpsertProfile(ctx context.Context, user *models.User) (*models.User, error)
	SetReadingGoal(ctx context.Context, userID string, goal int) error
	ReadingChallenge(ctx context.Context, userID string) (*models.ReadingChallenge, error)
}

type userService struct {
	userRepo     repository.UserRepository
	activityRepo repository.ActivityRepository
}

func NewUserService(userRepo repository.UserRepository, activityRepo repository.ActivityRepository) UserService {
	return &userService{userRepo: userRepo, activityRepo: activityRepo}
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, storeError("user not found", err)
	}
	return user, nil
}

func (s *userService) UpsertProfile(ctx context.Context, user *models.User) (*models.User, error) {
	user.Name = strings.TrimSpace(user.Name)
	user.Username = strings.TrimSpace(user.Username)
	user.ProfilePic = strings.TrimSpace(user.ProfilePic)

	if user.ID == "" {
		return nil, shared.Validation("user id is required")
	}
	if user.Name == "" {
		return nil, shared.Validation("name is required")
	}
	if !usernamePattern.MatchString(user.Username) {
		return nil, shared.Validation("username must be 3-30 letters, digits or underscores")
	}
	if user.ProfilePic != "" && !isHTTPURL(user.ProfilePic) {
		return nil, shared.Validation("profile picture must be an http(s) URL")
	}

	if err := s.userRepo.Upsert(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, shared.Conflict("username already taken")
		}
		return nil, shared.Upstream("failed to save profile", err)
	}
	return user, nil
}

func (s *userService) SetReadingGoal(ctx context.Context, userID string, goal int) error {
	if goal < MinReadingGoal || goal > MaxReadingGoal {
		return shared.Validation("reading goal must be between 1 and 999")
	}
	if err := s.userRepo.UpdateReadingGoal(ctx, userID, goal); err != nil {
		return storeError("user not found", err)
	}
	return nil
}

// ReadingChallenge counts the user's Read books against their goal. Without
// a goal the percentage is zero.
func (s *userService) ReadingChallenge(ctx context.Context, userID string) (*models.ReadingChallenge, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, storeError("user not found", err)
	}

	read, err := s.activityRepo.CountByStatus(ctx, userID, models.StatusRead)
	if err != nil {
		return nil, shared.Upstream("failed to count read books", err)
	}

	challenge := &models.ReadingChallenge{ReadCount: read}
	if user.ReadingGoal != nil && *user.ReadingGoal > 0 {
		challenge.Goal = *user.ReadingGoal
		percent := int(read * 100 / int64(challenge.Goal))
		if percent > 100 {
			percent = 100
		}
		challenge.Percent = percent
	}
	return challenge, nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
