package models

import (
	"time"

	"bookhub/internal/shared"
)

// Book is catalog metadata, optionally enriched with blended ratings and one
// user's activity. It is never persisted.
type Book struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Authors       []string       `json:"authors"`
	Description   string         `json:"description"`
	PageCount     int            `json:"page_count"`
	PublishedDate string         `json:"published_date"`
	Categories    []string       `json:"categories"`
	Thumbnail     string         `json:"thumbnail"`
	AverageRating float64        `json:"average_rating"`
	RatingsCount  int            `json:"ratings_count"`
	UserRating    *int           `json:"user_rating,omitempty"`
	Status        *ReadingStatus `json:"status,omitempty"`
	UpdatedAt     *time.Time     `json:"updated_at,omitempty"`
}

// FeedBook is a book as shown in a feed entry.
type FeedBook struct {
	Book
	ActivityText string `json:"activity_text,omitempty"`
}

// FeedEntry is one user's recent activity, most recent book first.
type FeedEntry struct {
	UserID         string     `json:"user_id"`
	UserName       string     `json:"user_name"`
	UserProfilePic string     `json:"user_profile_pic"`
	Books          []FeedBook `json:"books"`
}

// LatestUpdate returns the update time of the entry's first book, if any.
func (e FeedEntry) LatestUpdate() (time.Time, bool) {
	if len(e.Books) == 0 || e.Books[0].UpdatedAt == nil {
		return time.Time{}, false
	}
	return *e.Books[0].UpdatedAt, true
}

// Shelf is one status column of a user's dashboard. Outcome tells an empty
// shelf apart from one that could not be loaded.
type Shelf struct {
	Status  ReadingStatus  `json:"status"`
	Outcome shared.Outcome `json:"outcome"`
	Books   []Book         `json:"books"`
}
