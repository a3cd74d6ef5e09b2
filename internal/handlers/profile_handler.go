package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"wordtrail/internal/models"
	"wordtrail/internal/repository"
	"wordtrail/internal/service"
)

// ProfileHandler handles the signed-in user's profile, saved contexts,
// check-in history and token usage
type ProfileHandler struct {
	profileService *service.ProfileService
	usageRepo      *repository.UsageRepository
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *service.ProfileService, usageRepo *repository.UsageRepository) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, usageRepo: usageRepo}
}

// Me returns the signed-in user's profile
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileService.GetProfile(UserIDFromContext(r.Context()))
	if err != nil {
		respondProfileError(w, "Failed to get profile", err)
		return
	}
	respondWithJSON(w, http.StatusOK, newProfileView(profile))
}

type languagesRequest struct {
	NativeLanguage string `json:"native_language"`
	TargetLanguage string `json:"target_language"`
}

// UpdateLanguages changes the learning language pair
func (h *ProfileHandler) UpdateLanguages(w http.ResponseWriter, r *http.Request) {
	var req languagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	profile, err := h.profileService.UpdateLanguages(UserIDFromContext(r.Context()), req.NativeLanguage, req.TargetLanguage)
	if err != nil {
		respondProfileError(w, "Failed to update languages", err)
		return
	}
	respondWithJSON(w, http.StatusOK, newProfileView(profile))
}

type contextRequest struct {
	Context string `json:"context"`
}

// SaveContext adds a usage context to the profile
func (h *ProfileHandler) SaveContext(w http.ResponseWriter, r *http.Request) {
	var req contextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	if req.Context == "" {
		respondWithError(w, http.StatusBadRequest, "Context is required", "", nil)
		return
	}

	profile, err := h.profileService.SaveContext(UserIDFromContext(r.Context()), req.Context)
	if err != nil {
		if errors.Is(err, service.ErrContextExists) {
			respondWithError(w, http.StatusConflict, "Context already saved", "", nil)
			return
		}
		respondProfileError(w, "Failed to save context", err)
		return
	}
	respondWithJSON(w, http.StatusOK, newProfileView(profile))
}

// RemoveContext deletes a saved usage context
func (h *ProfileHandler) RemoveContext(w http.ResponseWriter, r *http.Request) {
	var req contextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	profile, err := h.profileService.RemoveContext(UserIDFromContext(r.Context()), req.Context)
	if err != nil {
		respondProfileError(w, "Failed to remove context", err)
		return
	}
	respondWithJSON(w, http.StatusOK, newProfileView(profile))
}

// CheckIns returns the user's review history
func (h *ProfileHandler) CheckIns(w http.ResponseWriter, r *http.Request) {
	checkins, err := h.profileService.CheckInHistory(UserIDFromContext(r.Context()))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load check-ins", "", err)
		return
	}

	views := make([]CheckInView, len(checkins))
	for i := range checkins {
		views[i] = newCheckInView(&checkins[i])
	}
	respondWithJSON(w, http.StatusOK, views)
}

// Usage reports accumulated token consumption and derived cost
func (h *ProfileHandler) Usage(w http.ResponseWriter, r *http.Request) {
	usage, err := h.usageRepo.Get(UserIDFromContext(r.Context()))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load usage", "", err)
		return
	}
	if usage == nil {
		usage = &models.TokenUsage{}
	}

	respondWithJSON(w, http.StatusOK, UsageView{
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		Cost:         usage.Cost(),
	})
}

func respondProfileError(w http.ResponseWriter, logMsg string, err error) {
	if errors.Is(err, service.ErrProfileNotFound) {
		respondWithError(w, http.StatusNotFound, "Profile not found", "", nil)
		return
	}
	respondWithError(w, http.StatusInternalServerError, "Something went wrong, please try again", logMsg, err)
}
