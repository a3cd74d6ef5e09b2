package models

import "time"

// Profile represents a user account and learning preferences
type Profile struct {
	UserID         string
	Name           string
	Email          string
	PasswordHash   string
	OAuthProvider  string
	OAuthSubject   string
	NativeLanguage string
	TargetLanguage string
	SavedContexts  []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CheckIn records one day of review activity.
// Check-in history is append-only and deduplicated by date: a second
// check-in on the same date increments SessionCount and unions WordIDs.
type CheckIn struct {
	UserID       string
	Date         string // YYYY-MM-DD
	SessionCount int
	WordIDs      []string
}

// ContainsWord reports whether the check-in already references the word
func (c *CheckIn) ContainsWord(wordID string) bool {
	for _, id := range c.WordIDs {
		if id == wordID {
			return true
		}
	}
	return false
}
