package models

import "time"

// WordExplanation is the AI-generated explanation cached for a word
type WordExplanation struct {
	UserID           string
	WordID           string
	Definition       string
	Usage            string
	MemoryHook       string
	ExampleSentences []Sentence
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Article is a generated reading passage built from the user's word list
type Article struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	WordIDs   []string
	Deleted   bool
	CreatedAt time.Time
}
