package repository

import (
	"context"
	"errors"

	"bookhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

var (
	// ErrRecordNotFound is returned by lookups that match nothing.
	ErrRecordNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// ActivityRepository stores per-(user, book) activity records.
type ActivityRepository interface {
	FindByUserAndBook(ctx context.Context, userID, bookID string) (*models.ActivityRecord, error)
	Create(ctx context.Context, record *models.ActivityRecord) error
	// Update applies the non-nil fields of patch and stamps updated_at.
	Update(ctx context.Context, id string, patch models.ActivityPatch) (*models.ActivityRecord, error)
	// ListByUser returns the user's records, most recently updated first.
	ListByUser(ctx context.Context, userID string, status *models.ReadingStatus) ([]models.ActivityRecord, error)
	// ListRatingsForBook returns every rating above zero recorded for the book.
	ListRatingsForBook(ctx context.Context, bookID string) ([]int, error)
	CountByStatus(ctx context.Context, userID string, status models.ReadingStatus) (int64, error)
}

// FriendRepository stores friend edges. One edge exists per unordered pair.
type FriendRepository interface {
	FindBetween(ctx context.Context, a, b string) (*models.FriendEdge, error)
	FindByID(ctx context.Context, id string) (*models.FriendEdge, error)
	Create(ctx context.Context, edge *models.FriendEdge) error
	UpdateStatus(ctx context.Context, id string, status models.FriendStatus) error
	ListAccepted(ctx context.Context, userID string) ([]models.FriendEdge, error)
	ListPending(ctx context.Context, userID string, role models.RequestRole) ([]models.FriendEdge, error)
}

// UserRepository stores reader profiles.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	// FindByIDs returns the users among ids whose name or username contains
	// searchTerm, case-insensitively. An empty searchTerm matches everyone.
	FindByIDs(ctx context.Context, ids []string, searchTerm string) ([]models.User, error)
	Upsert(ctx context.Context, user *models.User) error
	UpdateReadingGoal(ctx context.Context, id string, goal int) error
}

// translate maps gorm errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrRecordNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}
