package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"wordtrail/internal/database"
	"wordtrail/internal/repository"
	"wordtrail/internal/service"
	"wordtrail/internal/state"
)

const testUserID = "user-1"

func newTestWordHandler(t *testing.T) (*WordHandler, *service.WordService) {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	wordService := service.NewWordService(repository.NewWordRepository(db), state.NewStore())
	return NewWordHandler(wordService), wordService
}

func authedRequest(method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := context.WithValue(r.Context(), UserIDContextKey, testUserID)
	return r.WithContext(ctx)
}

func TestCreateWord(t *testing.T) {
	handler, _ := newTestWordHandler(t)

	recorder := httptest.NewRecorder()
	handler.Create(recorder, authedRequest("POST", "/api/words", `{"text":"ephemeral","phonetic":"ɪˈfɛmərəl"}`))

	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var view WordView
	if err := json.Unmarshal(recorder.Body.Bytes(), &view); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if view.Text != "ephemeral" {
		t.Errorf("Text = %q, want %q", view.Text, "ephemeral")
	}
	if view.ID == "" {
		t.Error("expected a generated word ID")
	}
	if view.Learned {
		t.Error("new word should not be learned")
	}
}

func TestCreateWordRejectsEmptyText(t *testing.T) {
	handler, _ := newTestWordHandler(t)

	recorder := httptest.NewRecorder()
	handler.Create(recorder, authedRequest("POST", "/api/words", `{"text":""}`))

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", recorder.Code)
	}
}

func TestGetWordNotFound(t *testing.T) {
	handler, _ := newTestWordHandler(t)

	r := authedRequest("GET", "/api/words/missing", "")
	r.SetPathValue("id", "missing")

	recorder := httptest.NewRecorder()
	handler.Get(recorder, r)

	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", recorder.Code)
	}
}

func TestListWordsExcludesDeleted(t *testing.T) {
	handler, wordService := newTestWordHandler(t)

	kept, err := wordService.AddWord(testUserID, "kept", "")
	if err != nil {
		t.Fatalf("AddWord() error = %v", err)
	}
	dropped, err := wordService.AddWord(testUserID, "dropped", "")
	if err != nil {
		t.Fatalf("AddWord() error = %v", err)
	}
	if err := wordService.DeleteWord(testUserID, dropped.ID); err != nil {
		t.Fatalf("DeleteWord() error = %v", err)
	}

	recorder := httptest.NewRecorder()
	handler.List(recorder, authedRequest("GET", "/api/words", ""))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}

	var views []WordView
	if err := json.Unmarshal(recorder.Body.Bytes(), &views); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 word, got %d", len(views))
	}
	if views[0].ID != kept.ID {
		t.Errorf("listed word = %q, want %q", views[0].ID, kept.ID)
	}
}

func TestDeleteWordReturnsNoContent(t *testing.T) {
	handler, wordService := newTestWordHandler(t)

	word, err := wordService.AddWord(testUserID, "transient", "")
	if err != nil {
		t.Fatalf("AddWord() error = %v", err)
	}

	r := authedRequest("DELETE", "/api/words/"+word.ID, "")
	r.SetPathValue("id", word.ID)

	recorder := httptest.NewRecorder()
	handler.Delete(recorder, r)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", recorder.Code)
	}
}
