package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"bookhub/internal/metrics"
	"bookhub/internal/microservices/http-api/models"
	"bookhub/internal/microservices/http-api/repository"
)

// FeedService composes the activity feed of a user and their friends.
type FeedService interface {
	BuildFeed(ctx context.Context, userID string) ([]models.FeedEntry, error)
}

type feedService struct {
	userRepo   repository.UserRepository
	friendRepo repository.FriendRepository
	activity   ActivityService
	fanout     int
	logger     zerolog.Logger
}

func NewFeedService(userRepo repository.UserRepository, friendRepo repository.FriendRepository, activity ActivityService, fanout int, logger zerolog.Logger) FeedService {
	if fanout <= 0 {
		fanout = 1
	}
	return &feedService{
		userRepo:   userRepo,
		friendRepo: friendRepo,
		activity:   activity,
		fanout:     fanout,
		logger:     logger,
	}
}

// BuildFeed returns one entry per user with activity, most recent first.
// A friend whose activity cannot be loaded is left out; failing to resolve
// the user or the friend graph fails the feed.
func (s *feedService) BuildFeed(ctx context.Context, userID string) ([]models.FeedEntry, error) {
	start := time.Now()
	defer func() {
		metrics.FeedBuildSeconds.Observe(time.Since(start).Seconds())
	}()

	self, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, storeError("user not found", err)
	}

	edges, err := s.friendRepo.ListAccepted(ctx, userID)
	if err != nil {
		return nil, storeError("user not found", err)
	}
	friendIDs := make([]string, 0, len(edges))
	for _, e := range edges {
		friendIDs = append(friendIDs, e.Other(userID))
	}

	profiles, err := s.userRepo.FindByIDs(ctx, friendIDs, "")
	if err != nil {
		return nil, storeError("user not found", err)
	}
	byID := make(map[string]models.User, len(profiles)+1)
	for _, p := range profiles {
		byID[p.ID] = p
	}
	byID[self.ID] = *self

	members := append([]string{userID}, friendIDs...)
	entries := make([]models.FeedEntry, len(members))

	var g errgroup.Group
	g.SetLimit(s.fanout)
	for i, memberID := range members {
		i, memberID := i, memberID
		g.Go(func() error {
			profile := byID[memberID]
			entry := models.FeedEntry{
				UserID:         memberID,
				UserName:       profile.Name,
				UserProfilePic: profile.ProfilePic,
				Books:          []models.FeedBook{},
			}

			books, err := s.activity.ListActivity(ctx, memberID, nil)
			if err != nil {
				metrics.MaskedFailuresTotal.WithLabelValues("feed").Inc()
				s.logger.Warn().Err(err).Str("user_id", userID).Str("member_id", memberID).Msg("leaving member out of feed")
				entries[i] = entry
				return nil
			}

			for _, b := range books {
				fb := models.FeedBook{Book: b}
				if b.Status != nil {
					fb.ActivityText = b.Status.ActivityText()
				}
				entry.Books = append(entry.Books, fb)
			}
			entries[i] = entry
			return nil
		})
	}
	_ = g.Wait()

	feed := make([]models.FeedEntry, 0, len(entries))
	for _, e := range entries {
		if len(e.Books) > 0 {
			feed = append(feed, e)
		}
	}
	sortByRecency(feed)
	return feed, nil
}

// sortByRecency orders entries by their first book's update time, newest
// first. Entries without a time go last.
func sortByRecency(feed []models.FeedEntry) {
	sort.SliceStable(feed, func(i, j int) bool {
		ti, okI := feed[i].LatestUpdate()
		tj, okJ := feed[j].LatestUpdate()
		switch {
		case okI && okJ:
			return ti.After(tj)
		case okI:
			return true
		default:
			return false
		}
	})
}
