package dto

import "bookhub/internal/microservices/http-api/models"

// UpsertProfileRequest creates or edits the caller's profile
type UpsertProfileRequest struct {
	Name       string `json:"name" binding:"required"`
	Username   string `json:"username" binding:"required"`
	Email      string `json:"email" binding:"omitempty,email"`
	ProfilePic string `json:"profile_pic"`
	Country    string `json:"country"`
}

// ToModel builds the user for the given id
func (r *UpsertProfileRequest) ToModel(userID string) *models.User {
	return &models.User{
		ID:         userID,
		Name:       r.Name,
		Username:   r.Username,
		Email:      r.Email,
		ProfilePic: r.ProfilePic,
		Country:    r.Country,
	}
}

// ReadingGoalRequest sets the yearly reading goal
type ReadingGoalRequest struct {
	Goal int `json:"goal" binding:"required,min=1,max=999"`
}
