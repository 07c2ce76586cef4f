package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"bookhub/internal/catalog"
	"bookhub/internal/metrics"
	"bookhub/internal/microservices/http-api/models"
	"bookhub/internal/microservices/http-api/repository"
	"bookhub/internal/shared"
)

// BookService composes catalog data, blended ratings and a viewer's activity.
type BookService interface {
	Search(ctx context.Context, term string, maxResults int) ([]models.Book, error)
	// Enrich returns the book with blended ratings. With a non-empty viewerID
	// the viewer's status and rating are attached when they have a record.
	Enrich(ctx context.Context, bookID, viewerID string) (*models.Book, error)
	// EnrichMany is Enrich without a viewer for several ids. The result is
	// index-aligned with ids and holds nil where a book could not be built.
	EnrichMany(ctx context.Context, ids []string) []*models.Book
}

type bookService struct {
	gateway      catalog.Gateway
	blender      RatingBlender
	activityRepo repository.ActivityRepository
	fanout       int
	logger       zerolog.Logger
}

func NewBookService(gateway catalog.Gateway, blender RatingBlender, activityRepo repository.ActivityRepository, fanout int, logger zerolog.Logger) BookService {
	if fanout <= 0 {
		fanout = 1
	}
	return &bookService{
		gateway:      gateway,
		blender:      blender,
		activityRepo: activityRepo,
		fanout:       fanout,
		logger:       logger,
	}
}

func (s *bookService) Search(ctx context.Context, term string, maxResults int) ([]models.Book, error) {
	return s.gateway.Search(ctx, term, maxResults)
}

func (s *bookService) Enrich(ctx context.Context, bookID, viewerID string) (*models.Book, error) {
	book, err := s.gateway.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if err := s.applyBlend(ctx, book); err != nil {
		return nil, err
	}

	if viewerID == "" {
		return book, nil
	}

	record, err := s.activityRepo.FindByUserAndBook(ctx, viewerID, bookID)
	switch {
	case errors.Is(err, repository.ErrRecordNotFound):
		// no activity yet
		return book, nil
	case err != nil:
		return nil, shared.Upstream("failed to load viewer activity", err)
	}

	book.Status = record.Status
	book.UserRating = intPtr(record.RatingValue())
	updated := record.UpdatedAt
	book.UpdatedAt = &updated
	return book, nil
}

func (s *bookService) EnrichMany(ctx context.Context, ids []string) []*models.Book {
	books := s.gateway.GetMany(ctx, ids)

	var g errgroup.Group
	g.SetLimit(s.fanout)
	for i, book := range books {
		i, book := i, book
		if book == nil {
			continue
		}
		g.Go(func() error {
			if err := s.applyBlend(ctx, book); err != nil {
				metrics.MaskedFailuresTotal.WithLabelValues("rating_blend").Inc()
				s.logger.Warn().Err(err).Str("book_id", ids[i]).Msg("skipping book, rating blend failed")
				books[i] = nil
			}
			return nil
		})
	}
	_ = g.Wait()

	return books
}

func (s *bookService) applyBlend(ctx context.Context, book *models.Book) error {
	blend, err := s.blender.Blend(ctx, book.ID, book.AverageRating, book.RatingsCount)
	if err != nil {
		return err
	}
	book.AverageRating = blend.Rating
	book.RatingsCount = blend.Count
	return nil
}
