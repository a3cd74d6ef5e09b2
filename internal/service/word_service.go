package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"wordtrail/internal/models"
	"wordtrail/internal/repository"
	"wordtrail/internal/review"
	"wordtrail/internal/state"
	"wordtrail/internal/validation"
)

var ErrWordNotFound = errors.New("word not found")

// WordService handles vocabulary word business logic
type WordService struct {
	wordRepo *repository.WordRepository
	store    *state.Store
}

// NewWordService creates a new word service
func NewWordService(wordRepo *repository.WordRepository, store *state.Store) *WordService {
	return &WordService{wordRepo: wordRepo, store: store}
}

// AddWord creates a new word for the user
func (s *WordService) AddWord(userID, text, phonetic string) (*models.Word, error) {
	if err := validation.ValidateWordText(text); err != nil {
		return nil, err
	}

	now := time.Now()
	word := &models.Word{
		ID:        uuid.New().String(),
		UserID:    userID,
		Text:      text,
		Phonetic:  phonetic,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.wordRepo.Create(word); err != nil {
		return nil, fmt.Errorf("failed to create word: %w", err)
	}

	s.store.UpsertWord(word)
	return word, nil
}

// GetWord returns one of the user's words
func (s *WordService) GetWord(userID, id string) (*models.Word, error) {
	word, err := s.wordRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get word: %w", err)
	}
	if word == nil || word.UserID != userID || word.Deleted {
		return nil, ErrWordNotFound
	}
	return word, nil
}

// ListWords returns the user's active words and refreshes the in-memory
// word list.
func (s *WordService) ListWords(userID string) ([]models.Word, error) {
	words, err := s.wordRepo.ListActive(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list words: %w", err)
	}

	ptrs := make([]*models.Word, len(words))
	for i := range words {
		ptrs[i] = &words[i]
	}
	s.store.SetWords(userID, ptrs)

	return words, nil
}

// SetSentences replaces the user-authored practice sentences of a word
func (s *WordService) SetSentences(userID, id string, sentences []models.Sentence) (*models.Word, error) {
	word, err := s.GetWord(userID, id)
	if err != nil {
		return nil, err
	}

	word.Sentences = sentences
	word.UpdatedAt = time.Now()
	if err := s.wordRepo.Update(word); err != nil {
		return nil, fmt.Errorf("failed to update word: %w", err)
	}

	s.store.UpsertWord(word)
	return word, nil
}

// MarkLearned flags a word as learned and schedules its first review
// for the next day. Already-learned words are left unchanged.
func (s *WordService) MarkLearned(userID, id string) (*models.Word, error) {
	word, err := s.GetWord(userID, id)
	if err != nil {
		return nil, err
	}
	if word.Learned {
		return word, nil
	}

	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	word.Learned = true
	word.NextReviewAt = &next
	word.UpdatedAt = now

	if err := s.wordRepo.Update(word); err != nil {
		return nil, fmt.Errorf("failed to update word: %w", err)
	}

	s.store.UpsertWord(word)
	return word, nil
}

// DeleteWord soft-deletes a word. The row survives for sync and audit;
// it only disappears from active views.
func (s *WordService) DeleteWord(userID, id string) error {
	word, err := s.GetWord(userID, id)
	if err != nil {
		return err
	}

	if err := s.wordRepo.SoftDelete(word.ID, time.Now()); err != nil {
		return fmt.Errorf("failed to delete word: %w", err)
	}

	s.store.RemoveWord(userID, word.ID)
	return nil
}

// Stats summarizes the user's collection
func (s *WordService) Stats(userID string) (*models.WordStats, error) {
	words, err := s.wordRepo.ListActive(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list words: %w", err)
	}

	stats := &models.WordStats{Total: len(words)}
	today := time.Now()
	for i := range words {
		if words[i].Learned {
			stats.Learned++
		}
	}
	stats.Due = len(review.DueWords(words, today))

	all, err := s.wordRepo.ListAll(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list words: %w", err)
	}
	stats.Deleted = len(all) - len(words)

	return stats, nil
}
