package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"wordtrail/internal/models"
	"wordtrail/internal/service"
	"wordtrail/internal/validation"
)

// WordHandler handles the word list
type WordHandler struct {
	wordService *service.WordService
}

// NewWordHandler creates a new word handler
func NewWordHandler(wordService *service.WordService) *WordHandler {
	return &WordHandler{wordService: wordService}
}

type createWordRequest struct {
	Text     string `json:"text"`
	Phonetic string `json:"phonetic"`
}

// Create adds a word to the user's list
func (h *WordHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createWordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	if err := validation.ValidateWordText(req.Text); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	word, err := h.wordService.AddWord(UserIDFromContext(r.Context()), req.Text, req.Phonetic)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to add word", "", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, newWordView(word))
}

// List returns the user's active words
func (h *WordHandler) List(w http.ResponseWriter, r *http.Request) {
	words, err := h.wordService.ListWords(UserIDFromContext(r.Context()))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list words", "", err)
		return
	}
	respondWithJSON(w, http.StatusOK, newWordViews(words))
}

// Get returns a single word
func (h *WordHandler) Get(w http.ResponseWriter, r *http.Request) {
	word, err := h.wordService.GetWord(UserIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		respondWordError(w, "Failed to get word", err)
		return
	}
	respondWithJSON(w, http.StatusOK, newWordView(word))
}

type sentencesRequest struct {
	Sentences []models.Sentence `json:"sentences"`
}

// SetSentences replaces a word's practice sentences
func (h *WordHandler) SetSentences(w http.ResponseWriter, r *http.Request) {
	var req sentencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	word, err := h.wordService.SetSentences(UserIDFromContext(r.Context()), r.PathValue("id"), req.Sentences)
	if err != nil {
		respondWordError(w, "Failed to set sentences", err)
		return
	}
	respondWithJSON(w, http.StatusOK, newWordView(word))
}

// MarkLearned marks a word as learned and schedules its first review
func (h *WordHandler) MarkLearned(w http.ResponseWriter, r *http.Request) {
	word, err := h.wordService.MarkLearned(UserIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		respondWordError(w, "Failed to mark word learned", err)
		return
	}
	respondWithJSON(w, http.StatusOK, newWordView(word))
}

// Delete soft-deletes a word
func (h *WordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.wordService.DeleteWord(UserIDFromContext(r.Context()), r.PathValue("id")); err != nil {
		respondWordError(w, "Failed to delete word", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats summarizes the user's word list
func (h *WordHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.wordService.Stats(UserIDFromContext(r.Context()))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load stats", "", err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatsView{
		Total:   stats.Total,
		Learned: stats.Learned,
		Due:     stats.Due,
		Deleted: stats.Deleted,
	})
}

func respondWordError(w http.ResponseWriter, logMsg string, err error) {
	if errors.Is(err, service.ErrWordNotFound) {
		respondWithError(w, http.StatusNotFound, "Word not found", "", nil)
		return
	}
	respondWithError(w, http.StatusInternalServerError, "Something went wrong, please try again", logMsg, err)
}
