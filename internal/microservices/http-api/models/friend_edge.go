package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FriendStatus string

const (
	FriendPending  FriendStatus = "pending"
	FriendAccepted FriendStatus = "accepted"
	FriendDeclined FriendStatus = "declined"
)

// RequestRole selects which side of pending requests to list.
type RequestRole string

const (
	RoleSender   RequestRole = "sender"
	RoleReceiver RequestRole = "receiver"
)

// FriendEdge is a friend request. It is directed while pending and symmetric
// once accepted. PairKey is unique, so a pair of users has at most one edge.
type FriendEdge struct {
	ID         string       `gorm:"primaryKey;type:uuid" json:"id"`
	SenderID   string       `gorm:"size:64;not null;index" json:"sender_id"`
	ReceiverID string       `gorm:"size:64;not null;index" json:"receiver_id"`
	Status     FriendStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	PairKey    string       `gorm:"size:130;not null;uniqueIndex" json:"-"`
	CreatedAt  time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (e *FriendEdge) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.PairKey = PairKey(e.SenderID, e.ReceiverID)
	return
}

func (FriendEdge) TableName() string {
	return "friend_edges"
}

// Other returns the user on the other side of the edge from userID.
func (e *FriendEdge) Other(userID string) string {
	if e.SenderID == userID {
		return e.ReceiverID
	}
	return e.SenderID
}

// PairKey is the order-independent key of two user ids.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// FriendRequest is a pending edge seen from one side, with the profile of
// the user on the other side.
type FriendRequest struct {
	ID        string       `json:"id"`
	Status    FriendStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	User      User         `json:"user"`
}
