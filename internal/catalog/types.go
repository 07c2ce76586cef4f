package catalog

import (
	"strings"

	"bookhub/internal/microservices/http-api/models"
)

// ============================================
// API RESPONSE STRUCTURES
// ============================================

// VolumeListResponse represents the response from GET /volumes
type VolumeListResponse struct {
	Kind       string   `json:"kind"`
	TotalItems int      `json:"totalItems"`
	Items      []Volume `json:"items"`
}

// Volume represents a single catalog entry
type Volume struct {
	ID         string     `json:"id"`
	VolumeInfo VolumeInfo `json:"volumeInfo"`
}

// VolumeInfo contains the metadata fields the service consumes
type VolumeInfo struct {
	Title         string     `json:"title"`
	Authors       []string   `json:"authors"`
	Description   string     `json:"description"`
	PageCount     int        `json:"pageCount"`
	PublishedDate string     `json:"publishedDate"`
	Categories    []string   `json:"categories"`
	ImageLinks    ImageLinks `json:"imageLinks"`
	AverageRating float64    `json:"averageRating"`
	RatingsCount  int        `json:"ratingsCount"`
}

// ImageLinks holds cover image URLs
type ImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}

// ============================================
// NORMALIZATION
// ============================================

const untitled = "Untitled"

// ToBook normalizes a volume into the internal Book shape.
func (v Volume) ToBook() models.Book {
	info := v.VolumeInfo

	title := info.Title
	if title == "" {
		title = untitled
	}

	return models.Book{
		ID:            v.ID,
		Title:         title,
		Authors:       nonNil(info.Authors),
		Description:   CleanDescription(info.Description),
		PageCount:     info.PageCount,
		PublishedDate: info.PublishedDate,
		Categories:    nonNil(info.Categories),
		Thumbnail:     secureURL(info.ImageLinks.Thumbnail),
		AverageRating: info.AverageRating,
		RatingsCount:  info.RatingsCount,
	}
}

// dedupeKey is the normalized title used to collapse duplicate editions.
func (v Volume) dedupeKey() string {
	return strings.ToLower(strings.TrimSpace(v.VolumeInfo.Title))
}

// secureURL upgrades the catalog's plain-http thumbnail links.
func secureURL(u string) string {
	return strings.Replace(u, "http:", "https:", 1)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
