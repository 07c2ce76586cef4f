package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookhub/internal/microservices/http-api/models"
	"bookhub/internal/shared"
)

func TestBuildFeed_OrdersByMostRecentActivity(t *testing.T) {
	f := newFixture(vol("b1", "Dune", 4, 10), vol("b2", "Emma", 3, 2))
	ctx := context.Background()
	f.addUser("alice", "Alice")
	f.addUser("bob", "Bob")
	f.befriend("bob", "alice")

	// alice acts first, bob later
	_, err := f.activities.SetActivity(ctx, "alice", "b1", statusPtr(models.StatusRead), nil)
	require.NoError(t, err)
	_, err = f.activities.SetActivity(ctx, "bob", "b2", statusPtr(models.StatusCurrentlyReading), nil)
	require.NoError(t, err)

	feed, err := f.feed.BuildFeed(ctx, "alice")

	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, "bob", feed[0].UserID)
	assert.Equal(t, "Bob", feed[0].UserName)
	assert.Equal(t, "is currently reading", feed[0].Books[0].ActivityText)
	assert.Equal(t, "alice", feed[1].UserID)
	assert.Equal(t, "has read", feed[1].Books[0].ActivityText)
}

func TestBuildFeed_DropsFriendsWithoutActivity(t *testing.T) {
	f := newFixture(vol("b1", "Dune", 4, 10))
	ctx := context.Background()
	f.addUser("alice", "Alice")
	f.addUser("bob", "Bob")
	f.addUser("carol", "Carol")
	f.befriend("alice", "bob")
	f.befriend("carol", "alice")

	_, err := f.activities.SetActivity(ctx, "carol", "b1", statusPtr(models.StatusWantToRead), nil)
	require.NoError(t, err)

	feed, err := f.feed.BuildFeed(ctx, "alice")

	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "carol", feed[0].UserID)
	assert.Equal(t, "wants to read", feed[0].Books[0].ActivityText)
}

func TestBuildFeed_IgnoresPendingRequests(t *testing.T) {
	f := newFixture(vol("b1", "Dune", 4, 10))
	ctx := context.Background()
	f.addUser("alice", "Alice")
	f.addUser("mallory", "Mallory")
	_, err := f.friendSvc.SendRequest(ctx, "mallory", "alice")
	require.NoError(t, err)
	_, err = f.activities.SetActivity(ctx, "mallory", "b1", statusPtr(models.StatusRead), nil)
	require.NoError(t, err)

	feed, err := f.feed.BuildFeed(ctx, "alice")

	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestBuildFeed_MasksFailingFriend(t *testing.T) {
	f := newFixture(vol("b1", "Dune", 4, 10))
	ctx := context.Background()
	f.addUser("alice", "Alice")
	f.addUser("bob", "Bob")
	f.addUser("carol", "Carol")
	f.befriend("alice", "bob")
	f.befriend("alice", "carol")
	for _, u := range []string{"alice", "bob", "carol"} {
		_, err := f.activities.SetActivity(ctx, u, "b1", statusPtr(models.StatusRead), nil)
		require.NoError(t, err)
	}

	flaky := &flakyActivity{ActivityService: f.activities, failFor: map[string]bool{"bob": true}}
	feed, err := NewFeedService(f.users, f.friends, flaky, 2, zerolog.Nop()).BuildFeed(ctx, "alice")

	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, "carol", feed[0].UserID)
	assert.Equal(t, "alice", feed[1].UserID)
}

func TestBuildFeed_UnknownUser(t *testing.T) {
	f := newFixture()
	_, err := f.feed.BuildFeed(context.Background(), "ghost")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSortByRecency_EntriesWithoutTimeSortLast(t *testing.T) {
	early, late := time.Unix(100, 0), time.Unix(200, 0)

	feed := []models.FeedEntry{
		{UserID: "none", Books: []models.FeedBook{{Book: models.Book{ID: "x"}}}},
		{UserID: "early", Books: []models.FeedBook{{Book: models.Book{ID: "y", UpdatedAt: &early}}}},
		{UserID: "late", Books: []models.FeedBook{{Book: models.Book{ID: "z", UpdatedAt: &late}}}},
	}
	sortByRecency(feed)

	assert.Equal(t, []string{"late", "early", "none"}, []string{feed[0].UserID, feed[1].UserID, feed[2].UserID})
}
