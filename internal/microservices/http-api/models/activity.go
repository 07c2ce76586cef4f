package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityRecord is a user's state for one book. At most one exists per
// (UserID, BookID); the service checks before writing.
type ActivityRecord struct {
	ID        string         `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string         `gorm:"size:64;not null;index:idx_activity_user_book" json:"user_id"`
	BookID    string         `gorm:"size:64;not null;index:idx_activity_user_book;index" json:"book_id"`
	Status    *ReadingStatus `gorm:"type:text" json:"status"`
	Rating    *int           `gorm:"check:rating >= 0 AND rating <= 5" json:"rating"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime;index" json:"updated_at"`
}

func (a *ActivityRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return
}

func (ActivityRecord) TableName() string {
	return "activity_records"
}

// RatingValue returns the rating with 0 standing for "unrated".
func (a *ActivityRecord) RatingValue() int {
	if a.Rating == nil {
		return 0
	}
	return *a.Rating
}

// ActivityPatch carries the fields of a partial update. Nil fields are left as is.
type ActivityPatch struct {
	Status *ReadingStatus
	Rating *int
}
