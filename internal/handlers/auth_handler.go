package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"wordtrail/internal/security"
	"wordtrail/internal/service"
	"wordtrail/internal/validation"
)

// AuthHandler handles registration, login and OAuth sign-in
type AuthHandler struct {
	profileService       *service.ProfileService
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
	stateSigner          *security.CSRFGenerator
}

// NewAuthHandler creates a new auth handler. The secret signs the
// OAuth state parameter.
func NewAuthHandler(profileService *service.ProfileService, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL, secret string) *AuthHandler {
	return &AuthHandler{
		profileService:       profileService,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
		stateSigner:          security.NewCSRFGenerator(secret),
	}
}

type registerRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	Name           string `json:"name"`
	NativeLanguage string `json:"native_language"`
	TargetLanguage string `json:"target_language"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account and returns a token
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	result, err := h.profileService.Register(req.Email, req.Password, req.Name, req.NativeLanguage, req.TargetLanguage)
	if err != nil {
		respondAuthError(w, "Registration failed", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, newAuthView(result))
}

// Login authenticates by email and password and returns a token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	result, err := h.profileService.Login(req.Email, req.Password)
	if err != nil {
		respondAuthError(w, "Login failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, newAuthView(result))
}

func newAuthView(result *service.AuthResult) AuthView {
	return AuthView{
		Profile:   newProfileView(result.Profile),
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	}
}

// respondAuthError maps sign-in errors onto HTTP statuses
func respondAuthError(w http.ResponseWriter, logMsg string, err error) {
	var validationErr validation.ValidationError
	switch {
	case errors.As(err, &validationErr):
		respondWithError(w, http.StatusBadRequest, validationErr.Error(), "", nil)
	case errors.Is(err, service.ErrEmailTaken):
		respondWithError(w, http.StatusConflict, "An account with this email already exists", "", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, "Invalid email or password", "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, "Something went wrong, please try again", logMsg, err)
	}
}
