package service

import (
	"errors"
	"fmt"
	"time"

	"wordtrail/internal/models"
	"wordtrail/internal/repository"
	"wordtrail/internal/review"
	"wordtrail/internal/state"
)

var ErrNoActiveSession = errors.New("no active review session")

// ReviewService runs review sessions. It is the only code that mutates
// a word's review statistics; sync and the word CRUD paths never touch
// them.
type ReviewService struct {
	wordRepo    *repository.WordRepository
	profileRepo *repository.ProfileRepository
	store       *state.Store
}

// NewReviewService creates a new review service
func NewReviewService(wordRepo *repository.WordRepository, profileRepo *repository.ProfileRepository, store *state.Store) *ReviewService {
	return &ReviewService{wordRepo: wordRepo, profileRepo: profileRepo, store: store}
}

// DueWords returns the words due for review today
func (s *ReviewService) DueWords(userID string) ([]models.Word, error) {
	words, err := s.wordRepo.ListActive(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list words: %w", err)
	}
	return review.DueWords(words, time.Now()), nil
}

// StartSession builds the due queue and opens a session over it
func (s *ReviewService) StartSession(userID string) (*state.ReviewSession, error) {
	due, err := s.DueWords(userID)
	if err != nil {
		return nil, err
	}

	queue := make([]*models.Word, len(due))
	for i := range due {
		queue[i] = &due[i]
	}
	return s.store.StartSession(userID, queue), nil
}

// CompleteReview records a successful review of a word: the next
// review date advances along the interval ladder.
func (s *ReviewService) CompleteReview(userID, wordID string) (*models.Word, error) {
	word, err := s.getReviewableWord(userID, wordID)
	if err != nil {
		return nil, err
	}

	review.Advance(word, time.Now())
	if err := s.wordRepo.Update(word); err != nil {
		return nil, fmt.Errorf("failed to save review result: %w", err)
	}

	s.store.UpsertWord(word)
	s.store.AdvanceSession(userID, wordID, true)
	return word, nil
}

// FailReview records a failed attempt. The retry counter increments
// and the word stays due.
func (s *ReviewService) FailReview(userID, wordID string) (*models.Word, error) {
	word, err := s.getReviewableWord(userID, wordID)
	if err != nil {
		return nil, err
	}

	review.Retry(word, time.Now())
	if err := s.wordRepo.Update(word); err != nil {
		return nil, fmt.Errorf("failed to save review result: %w", err)
	}

	s.store.UpsertWord(word)
	s.store.AdvanceSession(userID, wordID, false)
	return word, nil
}

// SkipReview defers a word to tomorrow
func (s *ReviewService) SkipReview(userID, wordID string) (*models.Word, error) {
	word, err := s.getReviewableWord(userID, wordID)
	if err != nil {
		return nil, err
	}

	review.Skip(word, time.Now())
	if err := s.wordRepo.Update(word); err != nil {
		return nil, fmt.Errorf("failed to save review result: %w", err)
	}

	s.store.UpsertWord(word)
	s.store.AdvanceSession(userID, wordID, true)
	return word, nil
}

// FinishSession closes the active session and records a check-in for
// today. A second session on the same date merges into the existing
// check-in instead of creating a new row.
func (s *ReviewService) FinishSession(userID string) (*models.CheckIn, error) {
	sess := s.store.Session(userID)
	if sess == nil {
		return nil, ErrNoActiveSession
	}
	s.store.EndSession(userID)

	reviewed := append([]string{}, sess.Completed...)
	reviewed = append(reviewed, sess.Failed...)

	checkin, err := s.recordCheckIn(userID, time.Now(), reviewed)
	if err != nil {
		return nil, err
	}
	return checkin, nil
}

// recordCheckIn appends today's activity to the check-in history,
// deduplicating by date.
func (s *ReviewService) recordCheckIn(userID string, now time.Time, wordIDs []string) (*models.CheckIn, error) {
	date := now.Format("2006-01-02")

	checkin, err := s.profileRepo.GetCheckIn(userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get check-in: %w", err)
	}
	if checkin == nil {
		checkin = &models.CheckIn{UserID: userID, Date: date}
	}

	checkin.SessionCount++
	for _, id := range wordIDs {
		if !checkin.ContainsWord(id) {
			checkin.WordIDs = append(checkin.WordIDs, id)
		}
	}

	if err := s.profileRepo.UpsertCheckIn(checkin); err != nil {
		return nil, fmt.Errorf("failed to save check-in: %w", err)
	}
	return checkin, nil
}

// getReviewableWord loads a word and verifies ownership
func (s *ReviewService) getReviewableWord(userID, wordID string) (*models.Word, error) {
	word, err := s.wordRepo.GetByID(wordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get word: %w", err)
	}
	if word == nil || word.UserID != userID || word.Deleted {
		return nil, ErrWordNotFound
	}
	return word, nil
}
