package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookhub/internal/microservices/http-api/models"
	"bookhub/internal/shared"
)

func TestSendRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.addUser("alice", "Alice")
	f.addUser("bob", "Bob")

	edge, err := f.friendSvc.SendRequest(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, models.FriendPending, edge.Status)

	_, err = f.friendSvc.SendRequest(ctx, "alice", "bob")
	assert.ErrorIs(t, err, shared.ErrConflict)

	_, err = f.friendSvc.SendRequest(ctx, "alice", "alice")
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = f.friendSvc.SendRequest(ctx, "alice", "ghost")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSendRequest_ReverseRequestAccepts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.addUser("alice", "Alice")
	f.addUser("bob", "Bob")

	first, err := f.friendSvc.SendRequest(ctx, "alice", "bob")
	require.NoError(t, err)

	second, err := f.friendSvc.SendRequest(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.FriendAccepted, second.Status)

	friends, err := f.friendSvc.ListFriends(ctx, "alice", "")
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "bob", friends[0].ID)

	_, err = f.friendSvc.SendRequest(ctx, "bob", "alice")
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestRespond(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.addUser("alice", "Alice")
	f.addUser("bob", "Bob")

	edge, err := f.friendSvc.SendRequest(ctx, "alice", "bob")
	require.NoError(t, err)

	_, err = f.friendSvc.Respond(ctx, "alice", edge.ID, models.FriendAccepted)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = f.friendSvc.Respond(ctx, "bob", edge.ID, models.FriendPending)
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = f.friendSvc.Respond(ctx, "bob", "missing", models.FriendAccepted)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	declined, err := f.friendSvc.Respond(ctx, "bob", edge.ID, models.FriendDeclined)
	require.NoError(t, err)
	assert.Equal(t, models.FriendDeclined, declined.Status)

	_, err = f.friendSvc.Respond(ctx, "bob", edge.ID, models.FriendAccepted)
	assert.ErrorIs(t, err, shared.ErrConflict)

	rel, err := f.friendSvc.Relationship(ctx, "bob", "alice")
	require.NoError(t, err)
	require.NotNil(t, rel)
	assert.Equal(t, models.FriendDeclined, rel.Status)
}

func TestListRequestsAndFriends(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.addUser("alice", "Alice")
	f.addUser("bob", "Bob")
	f.addUser("carol", "Carol")
	f.addUser("dave", "Dave")

	_, err := f.friendSvc.SendRequest(ctx, "bob", "alice")
	require.NoError(t, err)
	_, err = f.friendSvc.SendRequest(ctx, "alice", "carol")
	require.NoError(t, err)
	f.befriend("alice", "dave")

	received, err := f.friendSvc.ListRequests(ctx, "alice", models.RoleReceiver)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "Bob", received[0].User.Name)

	sent, err := f.friendSvc.ListRequests(ctx, "alice", models.RoleSender)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "carol", sent[0].User.ID)

	_, err = f.friendSvc.ListRequests(ctx, "alice", "both")
	assert.ErrorIs(t, err, shared.ErrValidation)

	friends, err := f.friendSvc.ListFriends(ctx, "alice", "DAV")
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "dave", friends[0].ID)

	none, err := f.friendSvc.Relationship(ctx, "bob", "carol")
	require.NoError(t, err)
	assert.Nil(t, none)
}
