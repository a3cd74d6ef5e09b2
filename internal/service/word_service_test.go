package service

import (
	"errors"
	"testing"

	"wordtrail/internal/models"
	"wordtrail/internal/repository"
	"wordtrail/internal/state"
)

func newTestWordService(t *testing.T) (*WordService, *state.Store) {
	t.Helper()
	db := newTestDB(t)
	store := state.NewStore()
	return NewWordService(repository.NewWordRepository(db), store), store
}

func TestAddWord(t *testing.T) {
	svc, store := newTestWordService(t)

	word, err := svc.AddWord("user-1", "serendipity", "/ˌsɛrənˈdɪpɪti/")
	if err != nil {
		t.Fatalf("AddWord() error = %v", err)
	}
	if word.ID == "" {
		t.Error("AddWord() did not assign an ID")
	}
	if word.Learned || word.NextReviewAt != nil {
		t.Error("new word should start unlearned with no review date")
	}
	if len(store.Words("user-1")) != 1 {
		t.Error("AddWord() did not publish the word to the store")
	}

	if _, err := svc.AddWord("user-1", "   ", ""); err == nil {
		t.Error("AddWord() accepted blank text")
	}
}

func TestGetWordChecksOwnership(t *testing.T) {
	svc, _ := newTestWordService(t)

	word, err := svc.AddWord("user-1", "ephemeral", "")
	if err != nil {
		t.Fatalf("AddWord() error = %v", err)
	}

	if _, err := svc.GetWord("user-2", word.ID); !errors.Is(err, ErrWordNotFound) {
		t.Errorf("GetWord() for another user error = %v, want ErrWordNotFound", err)
	}
	if _, err := svc.GetWord("user-1", "missing-id"); !errors.Is(err, ErrWordNotFound) {
		t.Errorf("GetWord() missing error = %v, want ErrWordNotFound", err)
	}
}

func TestMarkLearnedSchedulesFirstReview(t *testing.T) {
	svc, _ := newTestWordService(t)

	word, err := svc.AddWord("user-1", "resilient", "")
	if err != nil {
		t.Fatalf("AddWord() error = %v", err)
	}

	learned, err := svc.MarkLearned("user-1", word.ID)
	if err != nil {
		t.Fatalf("MarkLearned() error = %v", err)
	}
	if !learned.Learned {
		t.Error("MarkLearned() did not set the learned flag")
	}
	if learned.NextReviewAt == nil {
		t.Fatal("MarkLearned() did not schedule the first review")
	}

	// Marking again must not move the schedule
	first := *learned.NextReviewAt
	again, err := svc.MarkLearned("user-1", word.ID)
	if err != nil {
		t.Fatalf("MarkLearned() second call error = %v", err)
	}
	if !again.NextReviewAt.Equal(first) {
		t.Errorf("second MarkLearned() moved NextReviewAt from %v to %v", first, again.NextReviewAt)
	}
}

func TestSetSentences(t *testing.T) {
	svc, _ := newTestWordService(t)

	word, err := svc.AddWord("user-1", "ubiquitous", "")
	if err != nil {
		t.Fatalf("AddWord() error = %v", err)
	}

	sentences := []models.Sentence{
		{Text: "Smartphones are ubiquitous now.", Translation: "智能手机现在无处不在。"},
	}
	updated, err := svc.SetSentences("user-1", word.ID, sentences)
	if err != nil {
		t.Fatalf("SetSentences() error = %v", err)
	}
	if !updated.HasSentences() {
		t.Error("SetSentences() did not store the sentences")
	}

	reloaded, err := svc.GetWord("user-1", word.ID)
	if err != nil {
		t.Fatalf("GetWord() error = %v", err)
	}
	if len(reloaded.Sentences) != 1 || reloaded.Sentences[0].Translation == "" {
		t.Errorf("reloaded sentences = %v, want the stored sentence with translation", reloaded.Sentences)
	}
}

func TestDeleteWordIsSoft(t *testing.T) {
	svc, store := newTestWordService(t)

	word, err := svc.AddWord("user-1", "obsolete", "")
	if err != nil {
		t.Fatalf("AddWord() error = %v", err)
	}

	if err := svc.DeleteWord("user-1", word.ID); err != nil {
		t.Fatalf("DeleteWord() error = %v", err)
	}

	// Gone from active views and the store
	if _, err := svc.GetWord("user-1", word.ID); !errors.Is(err, ErrWordNotFound) {
		t.Errorf("GetWord() after delete error = %v, want ErrWordNotFound", err)
	}
	if len(store.Words("user-1")) != 0 {
		t.Error("DeleteWord() left the word in the store")
	}

	// The row itself survives for sync
	stats, err := svc.Stats("user-1")
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Deleted != 1 {
		t.Errorf("Stats().Deleted = %d, want 1", stats.Deleted)
	}
}
