package models

import "time"

// Sentence is a user-authored practice sentence with its translation
type Sentence struct {
	Text        string `json:"text"`
	Translation string `json:"translation"`
}

// Word represents a vocabulary word being learned
type Word struct {
	ID           string
	UserID       string
	Text         string
	Phonetic     string
	Learned      bool
	Sentences    []Sentence
	RetryCount   int
	Skipped      bool
	NextReviewAt *time.Time
	ReviewCount  int
	Deleted      bool
	DeletedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasSentences reports whether the word has at least one user-authored sentence
func (w *Word) HasSentences() bool {
	return len(w.Sentences) > 0
}

// Active reports whether the word should appear in active views
func (w *Word) Active() bool {
	return !w.Deleted
}

// WordStats summarizes review progress across a word list
type WordStats struct {
	Total   int
	Learned int
	Due     int
	Deleted int
}
