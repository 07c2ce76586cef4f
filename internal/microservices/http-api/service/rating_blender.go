package service

import (
	"context"

	"bookhub/internal/microservices/http-api/repository"
	"bookhub/internal/shared"
)

// Blend is a blended rating and the number of ratings behind it.
type Blend struct {
	Rating float64 `json:"rating"`
	Count  int     `json:"count"`
}

// RatingBlender merges a catalog's aggregate rating with ratings recorded locally.
type RatingBlender interface {
	Blend(ctx context.Context, bookID string, externalAvg float64, externalCount int) (Blend, error)
}

type ratingBlender struct {
	activityRepo repository.ActivityRepository
}

func NewRatingBlender(activityRepo repository.ActivityRepository) RatingBlender {
	return &ratingBlender{activityRepo: activityRepo}
}

func (b *ratingBlender) Blend(ctx context.Context, bookID string, externalAvg float64, externalCount int) (Blend, error) {
	ratings, err := b.activityRepo.ListRatingsForBook(ctx, bookID)
	if err != nil {
		return Blend{}, shared.Upstream("failed to load local ratings", err)
	}
	return BlendRatings(ratings, externalAvg, externalCount), nil
}

// BlendRatings treats the external aggregate as externalCount samples of
// externalAvg and averages them together with the local ratings. Ratings of
// zero mean "unrated" and are ignored.
func BlendRatings(local []int, externalAvg float64, externalCount int) Blend {
	if externalCount < 0 {
		externalCount = 0
	}

	sum, n := 0, 0
	for _, r := range local {
		if r > 0 {
			sum += r
			n++
		}
	}

	count := n + externalCount
	if count == 0 {
		return Blend{}
	}

	rating := (float64(sum) + externalAvg*float64(externalCount)) / float64(count)
	return Blend{Rating: clampRating(rating), Count: count}
}

func clampRating(r float64) float64 {
	switch {
	case r < 0:
		return 0
	case r > 5:
		return 5
	}
	return r
}
