package service

import (
	"errors"
	"testing"
	"time"

	"wordtrail/internal/models"
	"wordtrail/internal/repository"
	"wordtrail/internal/state"
)

func newTestReviewService(t *testing.T) (*ReviewService, *repository.WordRepository, *state.Store) {
	t.Helper()
	db := newTestDB(t)
	store := state.NewStore()
	wordRepo := repository.NewWordRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	return NewReviewService(wordRepo, profileRepo, store), wordRepo, store
}

// dueWord builds a word that satisfies every due-ness condition
func dueWord(id string, daysAgo int) *models.Word {
	next := time.Now().AddDate(0, 0, -daysAgo)
	now := time.Now()
	return &models.Word{
		ID:      id,
		UserID:  "user-1",
		Text:    "word-" + id,
		Learned: true,
		Sentences: []models.Sentence{
			{Text: "Example sentence.", Translation: "例句。"},
		},
		NextReviewAt: &next,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestDueWordsFiltersQueue(t *testing.T) {
	svc, wordRepo, _ := newTestReviewService(t)

	overdue := dueWord("w1", 2)
	notLearned := dueWord("w2", 2)
	notLearned.Learned = false
	noSentences := dueWord("w3", 2)
	noSentences.Sentences = nil

	for _, w := range []*models.Word{overdue, notLearned, noSentences} {
		if err := wordRepo.Create(w); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	due, err := svc.DueWords("user-1")
	if err != nil {
		t.Fatalf("DueWords() error = %v", err)
	}
	if len(due) != 1 || due[0].ID != "w1" {
		t.Errorf("DueWords() = %v, want only w1", due)
	}
}

func TestCompleteReviewAdvancesWord(t *testing.T) {
	svc, wordRepo, _ := newTestReviewService(t)

	word := dueWord("w1", 1)
	if err := wordRepo.Create(word); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := svc.CompleteReview("user-1", "w1")
	if err != nil {
		t.Fatalf("CompleteReview() error = %v", err)
	}
	if updated.ReviewCount != 1 {
		t.Errorf("ReviewCount = %d, want 1", updated.ReviewCount)
	}
	if !updated.NextReviewAt.After(time.Now()) {
		t.Errorf("NextReviewAt = %v, want in the future", updated.NextReviewAt)
	}

	// The change is persisted
	reloaded, err := wordRepo.GetByID("w1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if reloaded.ReviewCount != 1 {
		t.Errorf("persisted ReviewCount = %d, want 1", reloaded.ReviewCount)
	}
}

func TestFailReviewKeepsWordDue(t *testing.T) {
	svc, wordRepo, _ := newTestReviewService(t)

	word := dueWord("w1", 1)
	before := *word.NextReviewAt
	if err := wordRepo.Create(word); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := svc.FailReview("user-1", "w1")
	if err != nil {
		t.Fatalf("FailReview() error = %v", err)
	}
	if updated.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", updated.RetryCount)
	}
	if updated.ReviewCount != 0 {
		t.Errorf("ReviewCount = %d, want 0", updated.ReviewCount)
	}
	if !updated.NextReviewAt.Equal(before) {
		t.Errorf("NextReviewAt moved from %v to %v", before, updated.NextReviewAt)
	}
}

func TestSkipReviewDefersToTomorrow(t *testing.T) {
	svc, wordRepo, _ := newTestReviewService(t)

	word := dueWord("w1", 3)
	if err := wordRepo.Create(word); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := svc.SkipReview("user-1", "w1")
	if err != nil {
		t.Fatalf("SkipReview() error = %v", err)
	}
	if !updated.Skipped {
		t.Error("SkipReview() did not set the skipped flag")
	}

	now := time.Now()
	tomorrow := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	if !updated.NextReviewAt.Equal(tomorrow) {
		t.Errorf("NextReviewAt = %v, want %v", updated.NextReviewAt, tomorrow)
	}
}

func TestFinishSessionRecordsCheckIn(t *testing.T) {
	svc, wordRepo, _ := newTestReviewService(t)

	for _, w := range []*models.Word{dueWord("w1", 1), dueWord("w2", 1)} {
		if err := wordRepo.Create(w); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	if _, err := svc.StartSession("user-1"); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if _, err := svc.CompleteReview("user-1", "w1"); err != nil {
		t.Fatalf("CompleteReview() error = %v", err)
	}
	if _, err := svc.FailReview("user-1", "w2"); err != nil {
		t.Fatalf("FailReview() error = %v", err)
	}

	checkin, err := svc.FinishSession("user-1")
	if err != nil {
		t.Fatalf("FinishSession() error = %v", err)
	}
	if checkin.SessionCount != 1 {
		t.Errorf("SessionCount = %d, want 1", checkin.SessionCount)
	}
	if len(checkin.WordIDs) != 2 {
		t.Errorf("WordIDs = %v, want both reviewed words", checkin.WordIDs)
	}

	// Finishing without a session is an error
	if _, err := svc.FinishSession("user-1"); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("FinishSession() without session error = %v, want ErrNoActiveSession", err)
	}
}

func TestSessionsIndependentAcrossUsers(t *testing.T) {
	svc, wordRepo, store := newTestReviewService(t)

	wa := dueWord("wa", 1)
	wa.UserID = "user-a"
	wb := dueWord("wb", 1)
	wb.UserID = "user-b"
	for _, w := range []*models.Word{wa, wb} {
		if err := wordRepo.Create(w); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	if _, err := svc.StartSession("user-a"); err != nil {
		t.Fatalf("StartSession(user-a) error = %v", err)
	}
	if _, err := svc.StartSession("user-b"); err != nil {
		t.Fatalf("StartSession(user-b) error = %v", err)
	}
	if _, err := svc.CompleteReview("user-b", "wb"); err != nil {
		t.Fatalf("CompleteReview(user-b) error = %v", err)
	}

	// user-b's activity must not leak into user-a's session
	sessA := store.Session("user-a")
	if sessA == nil {
		t.Fatal("Session(user-a) = nil, want active session")
	}
	for _, id := range sessA.Completed {
		if id == "wb" {
			t.Errorf("user-a session completed = %v, contains user-b's word", sessA.Completed)
		}
	}

	// user-a finishing records only user-a's reviews and leaves
	// user-b's session running
	checkinA, err := svc.FinishSession("user-a")
	if err != nil {
		t.Fatalf("FinishSession(user-a) error = %v", err)
	}
	if len(checkinA.WordIDs) != 0 {
		t.Errorf("user-a check-in WordIDs = %v, want empty", checkinA.WordIDs)
	}

	checkinB, err := svc.FinishSession("user-b")
	if err != nil {
		t.Fatalf("FinishSession(user-b) error = %v", err)
	}
	if len(checkinB.WordIDs) != 1 || checkinB.WordIDs[0] != "wb" {
		t.Errorf("user-b check-in WordIDs = %v, want [wb]", checkinB.WordIDs)
	}
}

func TestSecondSessionSameDayMergesCheckIn(t *testing.T) {
	svc, wordRepo, _ := newTestReviewService(t)

	if err := wordRepo.Create(dueWord("w1", 1)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := svc.StartSession("user-1"); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if _, err := svc.CompleteReview("user-1", "w1"); err != nil {
		t.Fatalf("CompleteReview() error = %v", err)
	}
	if _, err := svc.FinishSession("user-1"); err != nil {
		t.Fatalf("FinishSession() error = %v", err)
	}

	// Second session reviews the same word again
	if _, err := svc.StartSession("user-1"); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if _, err := svc.FailReview("user-1", "w1"); err != nil {
		t.Fatalf("FailReview() error = %v", err)
	}
	checkin, err := svc.FinishSession("user-1")
	if err != nil {
		t.Fatalf("FinishSession() error = %v", err)
	}

	if checkin.SessionCount != 2 {
		t.Errorf("SessionCount = %d, want 2", checkin.SessionCount)
	}
	// Word IDs are deduplicated, not appended twice
	if len(checkin.WordIDs) != 1 {
		t.Errorf("WordIDs = %v, want single deduplicated entry", checkin.WordIDs)
	}
}
