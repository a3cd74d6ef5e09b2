package handlers

import (
	"errors"
	"net/http"

	"wordtrail/internal/service"
)

// ReviewHandler handles the spaced-repetition review flow
type ReviewHandler struct {
	reviewService *service.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// Due returns the words due for review today
func (h *ReviewHandler) Due(w http.ResponseWriter, r *http.Request) {
	due, err := h.reviewService.DueWords(UserIDFromContext(r.Context()))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load due words", "", err)
		return
	}
	respondWithJSON(w, http.StatusOK, newWordViews(due))
}

// StartSession opens a review session over the due queue
func (h *ReviewHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.reviewService.StartSession(UserIDFromContext(r.Context()))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to start session", "", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, newSessionView(sess))
}

// Complete records a successful review of a word
func (h *ReviewHandler) Complete(w http.ResponseWriter, r *http.Request) {
	word, err := h.reviewService.CompleteReview(UserIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		respondReviewError(w, "Failed to complete review", err)
		return
	}
	respondWithJSON(w, http.StatusOK, newWordView(word))
}

// Fail records a failed review; the word stays at its current interval
func (h *ReviewHandler) Fail(w http.ResponseWriter, r *http.Request) {
	word, err := h.reviewService.FailReview(UserIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		respondReviewError(w, "Failed to record review", err)
		return
	}
	respondWithJSON(w, http.StatusOK, newWordView(word))
}

// Skip pushes a word's review to the next calendar day
func (h *ReviewHandler) Skip(w http.ResponseWriter, r *http.Request) {
	word, err := h.reviewService.SkipReview(UserIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		respondReviewError(w, "Failed to skip review", err)
		return
	}
	respondWithJSON(w, http.StatusOK, newWordView(word))
}

// Finish closes the session and records today's check-in
func (h *ReviewHandler) Finish(w http.ResponseWriter, r *http.Request) {
	checkin, err := h.reviewService.FinishSession(UserIDFromContext(r.Context()))
	if err != nil {
		respondReviewError(w, "Failed to finish session", err)
		return
	}
	respondWithJSON(w, http.StatusOK, newCheckInView(checkin))
}

func respondReviewError(w http.ResponseWriter, logMsg string, err error) {
	switch {
	case errors.Is(err, service.ErrWordNotFound):
		respondWithError(w, http.StatusNotFound, "Word not found", "", nil)
	case errors.Is(err, service.ErrNoActiveSession):
		respondWithError(w, http.StatusConflict, "No active review session", "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, "Something went wrong, please try again", logMsg, err)
	}
}
