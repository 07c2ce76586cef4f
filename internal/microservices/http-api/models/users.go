package models

import (
	"time"
)

// User is a reader profile. The id comes from the identity provider.
type User struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Username    string    `gorm:"uniqueIndex;not null" json:"username"`
	Email       string    `gorm:"index" json:"email"`
	ProfilePic  string    `json:"profile_pic"`
	Country     string    `json:"country"`
	ReadingGoal *int      `json:"reading_goal,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// ReadingChallenge is a user's progress towards their yearly reading goal.
type ReadingChallenge struct {
	Goal      int   `json:"goal"`
	ReadCount int64 `json:"read_count"`
	Percent   int   `json:"percent"`
}
