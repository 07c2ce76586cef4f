package dto

import "bookhub/internal/microservices/http-api/models"

// SendFriendRequestDTO asks another user to become friends
type SendFriendRequestDTO struct {
	ReceiverID string `json:"receiver_id" binding:"required"`
}

// RespondFriendRequestDTO answers a pending request
type RespondFriendRequestDTO struct {
	Status string `json:"status" binding:"required,oneof=accepted declined"`
}

// RelationshipResponse describes the edge between the caller and another user.
// Status is "none" when no edge exists.
type RelationshipResponse struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id,omitempty"`
	SenderID  string `json:"sender_id,omitempty"`
}

func FromFriendEdge(edge *models.FriendEdge) *RelationshipResponse {
	if edge == nil {
		return &RelationshipResponse{Status: "none"}
	}
	return &RelationshipResponse{
		Status:    string(edge.Status),
		RequestID: edge.ID,
		SenderID:  edge.SenderID,
	}
}
