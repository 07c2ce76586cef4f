package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"bookhub/internal/metrics"
	"bookhub/internal/microservices/http-api/models"
	"bookhub/internal/microservices/http-api/repository"
	"bookhub/internal/shared"
)

// SetActivityResult reports what a SetActivity call did.
type SetActivityResult struct {
	Record  *models.ActivityRecord
	Created bool
	Message string
}

// ActivityService writes and reads users' per-book activity.
type ActivityService interface {
	// SetActivity creates the (user, book) record or updates the supplied
	// fields of the existing one. A positive rating without a status marks
	// the book as read.
	SetActivity(ctx context.Context, userID, bookID string, status *models.ReadingStatus, rating *int) (*SetActivityResult, error)
	// ListActivity returns the user's books, most recently updated first.
	// A store failure is an Upstream error; no activity is an empty slice.
	ListActivity(ctx context.Context, userID string, status *models.ReadingStatus) ([]models.Book, error)
	// Dashboard loads the three status shelves concurrently.
	Dashboard(ctx context.Context, userID string) []models.Shelf
}

type activityService struct {
	activityRepo repository.ActivityRepository
	books        BookService
	logger       zerolog.Logger
}

func NewActivityService(activityRepo repository.ActivityRepository, books BookService, logger zerolog.Logger) ActivityService {
	return &activityService{activityRepo: activityRepo, books: books, logger: logger}
}

// SetActivity is check-then-write. Two concurrent first writes for the same
// pair can both miss the lookup and create two records; writes are user
// initiated and serialized per session, so the last writer wins.
func (s *activityService) SetActivity(ctx context.Context, userID, bookID string, status *models.ReadingStatus, rating *int) (*SetActivityResult, error) {
	bookID = strings.TrimSpace(bookID)
	if userID == "" {
		return nil, shared.Validation("user id is required")
	}
	if bookID == "" {
		return nil, shared.Validation("book id is required")
	}
	if status == nil && rating == nil {
		return nil, shared.Validation("status or rating is required")
	}
	if status != nil && !status.Valid() {
		return nil, shared.Validation("invalid reading status")
	}
	if rating != nil && (*rating < 0 || *rating > 5) {
		return nil, shared.Validation("rating must be between 0 and 5")
	}

	if status == nil && rating != nil && *rating > 0 {
		read := models.StatusRead
		status = &read
	}

	existing, err := s.activityRepo.FindByUserAndBook(ctx, userID, bookID)
	if err != nil && !errors.Is(err, repository.ErrRecordNotFound) {
		return nil, shared.Upstream("failed to look up activity", err)
	}

	if existing == nil {
		record := &models.ActivityRecord{
			UserID: userID,
			BookID: bookID,
			Status: status,
			Rating: rating,
		}
		if err := s.activityRepo.Create(ctx, record); err != nil {
			return nil, shared.Upstream("failed to create activity", err)
		}
		metrics.ActivityUpsertsTotal.WithLabelValues("create").Inc()
		return &SetActivityResult{Record: record, Created: true, Message: "activity created"}, nil
	}

	record, err := s.activityRepo.Update(ctx, existing.ID, models.ActivityPatch{Status: status, Rating: rating})
	if err != nil {
		return nil, shared.Upstream("failed to update activity", err)
	}
	metrics.ActivityUpsertsTotal.WithLabelValues("update").Inc()
	return &SetActivityResult{Record: record, Message: "activity updated"}, nil
}

func (s *activityService) ListActivity(ctx context.Context, userID string, status *models.ReadingStatus) ([]models.Book, error) {
	if status != nil && !status.Valid() {
		return nil, shared.Validation("invalid reading status")
	}

	records, err := s.activityRepo.ListByUser(ctx, userID, status)
	if err != nil {
		return nil, shared.Upstream("failed to list activity", err)
	}

	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.BookID
	}
	enriched := s.books.EnrichMany(ctx, ids)

	books := make([]models.Book, 0, len(records))
	for i, rec := range records {
		book := enriched[i]
		if book == nil {
			s.logger.Warn().Str("user_id", userID).Str("book_id", rec.BookID).Msg("skipping unavailable book in activity list")
			continue
		}
		book.Status = rec.Status
		book.UserRating = intPtr(rec.RatingValue())
		updated := rec.UpdatedAt
		book.UpdatedAt = &updated
		books = append(books, *book)
	}
	return books, nil
}

func (s *activityService) Dashboard(ctx context.Context, userID string) []models.Shelf {
	shelves := make([]models.Shelf, len(models.AllStatuses))

	var g errgroup.Group
	for i, status := range models.AllStatuses {
		i, status := i, status
		g.Go(func() error {
			books, err := s.ListActivity(ctx, userID, &status)
			if err != nil {
				metrics.MaskedFailuresTotal.WithLabelValues("dashboard").Inc()
				s.logger.Warn().Err(err).Str("user_id", userID).Str("status", string(status)).Msg("dashboard shelf failed")
				books = []models.Book{}
			}
			shelves[i] = models.Shelf{Status: status, Outcome: shared.OutcomeOf(len(books), err), Books: books}
			return nil
		})
	}
	_ = g.Wait()

	return shelves
}
