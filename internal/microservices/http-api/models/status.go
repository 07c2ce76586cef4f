package models

// ReadingStatus is a user's position on a book. Any status may follow any
// other; there is no terminal state.
type ReadingStatus string

const (
	StatusWantToRead       ReadingStatus = "WantToRead"
	StatusCurrentlyReading ReadingStatus = "CurrentlyReading"
	StatusRead             ReadingStatus = "Read"
)

// AllStatuses lists the shelves in dashboard order.
var AllStatuses = []ReadingStatus{StatusCurrentlyReading, StatusRead, StatusWantToRead}

func (s ReadingStatus) Valid() bool {
	switch s {
	case StatusWantToRead, StatusCurrentlyReading, StatusRead:
		return true
	}
	return false
}

// ActivityText is the phrase shown after a user's name in the feed.
func (s ReadingStatus) ActivityText() string {
	switch s {
	case StatusWantToRead:
		return "wants to read"
	case StatusCurrentlyReading:
		return "is currently reading"
	case StatusRead:
		return "has read"
	}
	return ""
}

// Slug is the URL form of the status, e.g. "want-to-read".
func (s ReadingStatus) Slug() string {
	switch s {
	case StatusWantToRead:
		return "want-to-read"
	case StatusCurrentlyReading:
		return "currently-reading"
	case StatusRead:
		return "read"
	}
	return ""
}

// ParseStatus accepts either the canonical value or its URL slug.
func ParseStatus(raw string) (ReadingStatus, bool) {
	switch raw {
	case "want-to-read", string(StatusWantToRead):
		return StatusWantToRead, true
	case "currently-reading", string(StatusCurrentlyReading):
		return StatusCurrentlyReading, true
	case "read", string(StatusRead):
		return StatusRead, true
	}
	return "", false
}
