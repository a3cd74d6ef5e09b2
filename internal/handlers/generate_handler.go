package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"wordtrail/internal/ai"
	"wordtrail/internal/models"
	"wordtrail/internal/repository"
	"wordtrail/internal/service"
)

// GenerateHandler proxies AI generation actions and caches explanations
type GenerateHandler struct {
	client          *ai.Client
	wordService     *service.WordService
	profileService  *service.ProfileService
	explanationRepo *repository.ExplanationRepository
}

// NewGenerateHandler creates a new generation handler. The AI client
// may be nil when no API key is configured; requests then fail with 503.
func NewGenerateHandler(client *ai.Client, wordService *service.WordService, profileService *service.ProfileService, explanationRepo *repository.ExplanationRepository) *GenerateHandler {
	return &GenerateHandler{
		client:          client,
		wordService:     wordService,
		profileService:  profileService,
		explanationRepo: explanationRepo,
	}
}

type generateRequest struct {
	Action   string `json:"action"`
	WordID   string `json:"word_id"`
	Sentence string `json:"sentence"`
	Context  string `json:"context"`
}

type translateResponse struct {
	Translation string `json:"translation"`
}

type sentencesResponse struct {
	Sentences []models.Sentence `json:"sentences"`
}

// Generate dispatches a generation action for a word
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if h.client == nil {
		respondWithError(w, http.StatusServiceUnavailable, "AI generation is not configured", "", nil)
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	userID := UserIDFromContext(r.Context())

	aiReq, ok := h.buildRequest(w, userID, req)
	if !ok {
		return
	}

	switch req.Action {
	case ai.ActionExplain:
		h.explain(w, r, aiReq, req.WordID)
	case ai.ActionSentences:
		sentences, err := h.client.Sentences(r.Context(), aiReq)
		if err != nil {
			respondWithError(w, http.StatusBadGateway, "Generation failed, please try again", "Sentence generation failed", err)
			return
		}
		if sentences == nil {
			sentences = []models.Sentence{}
		}
		respondWithJSON(w, http.StatusOK, sentencesResponse{Sentences: sentences})
	case ai.ActionEvaluate:
		if req.Sentence == "" {
			respondWithError(w, http.StatusBadRequest, "Sentence is required", "", nil)
			return
		}
		evaluation, err := h.client.Evaluate(r.Context(), aiReq, req.Sentence)
		if err != nil {
			respondWithError(w, http.StatusBadGateway, "Evaluation failed, please try again", "Sentence evaluation failed", err)
			return
		}
		respondWithJSON(w, http.StatusOK, evaluation)
	case ai.ActionTranslate:
		if req.Sentence == "" {
			respondWithError(w, http.StatusBadRequest, "Sentence is required", "", nil)
			return
		}
		translation := h.client.Translate(r.Context(), aiReq, req.Sentence)
		respondWithJSON(w, http.StatusOK, translateResponse{Translation: translation})
	default:
		respondWithError(w, http.StatusBadRequest, "Unknown action", "", nil)
	}
}

// Explanation returns the cached explanation for a word
func (h *GenerateHandler) Explanation(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	wordID := r.PathValue("id")

	if _, err := h.wordService.GetWord(userID, wordID); err != nil {
		respondWordError(w, "Failed to get word", err)
		return
	}

	explanation, err := h.explanationRepo.Get(userID, wordID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load explanation", "", err)
		return
	}
	if explanation == nil {
		respondWithError(w, http.StatusNotFound, "No explanation generated yet", "", nil)
		return
	}
	respondWithJSON(w, http.StatusOK, newExplanationView(explanation))
}

func (h *GenerateHandler) explain(w http.ResponseWriter, r *http.Request, aiReq ai.Request, wordID string) {
	explanation, err := h.client.Explain(r.Context(), aiReq)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Generation failed, please try again", "Explanation generation failed", err)
		return
	}

	explanation.WordID = wordID
	now := time.Now()
	explanation.CreatedAt = now
	explanation.UpdatedAt = now
	// Serve the result even when caching fails
	if err := h.explanationRepo.Upsert(explanation); err != nil {
		log.Printf("Failed to cache explanation for word %s: %v", wordID, err)
	}

	respondWithJSON(w, http.StatusOK, newExplanationView(explanation))
}

// buildRequest resolves the word and learner profile for a generation
// call. Responds with an error and returns false when resolution fails.
func (h *GenerateHandler) buildRequest(w http.ResponseWriter, userID string, req generateRequest) (ai.Request, bool) {
	if req.WordID == "" {
		respondWithError(w, http.StatusBadRequest, "word_id is required", "", nil)
		return ai.Request{}, false
	}

	word, err := h.wordService.GetWord(userID, req.WordID)
	if err != nil {
		respondWordError(w, "Failed to get word", err)
		return ai.Request{}, false
	}

	profile, err := h.profileService.GetProfile(userID)
	if err != nil {
		respondProfileError(w, "Failed to get profile", err)
		return ai.Request{}, false
	}

	return ai.Request{
		UserID:  userID,
		Word:    word.Text,
		Profile: service.ProfileSummary(profile),
		Context: req.Context,
	}, true
}
