package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"wordtrail/internal/models"
	"wordtrail/internal/repository"
	"wordtrail/internal/security"
	"wordtrail/internal/state"
	"wordtrail/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrContextExists      = errors.New("context already saved")
)

// AuthResult is returned by the sign-in flows
type AuthResult struct {
	Profile   *models.Profile
	Token     string
	ExpiresAt time.Time
}

// ProfileService handles accounts, saved contexts and check-in history
type ProfileService struct {
	profileRepo *repository.ProfileRepository
	tokens      *security.TokenIssuer
	store       *state.Store
}

// NewProfileService creates a new profile service
func NewProfileService(profileRepo *repository.ProfileRepository, tokens *security.TokenIssuer, store *state.Store) *ProfileService {
	return &ProfileService{profileRepo: profileRepo, tokens: tokens, store: store}
}

// Register creates a new account and signs the user in
func (s *ProfileService) Register(email, password, name, nativeLanguage, targetLanguage string) (*AuthResult, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	existing, err := s.profileRepo.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing profile: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if nativeLanguage == "" {
		nativeLanguage = "zh-CN"
	}
	if targetLanguage == "" {
		targetLanguage = "en-US"
	}

	now := time.Now()
	profile := &models.Profile{
		UserID:         uuid.New().String(),
		Name:           name,
		Email:          email,
		PasswordHash:   passwordHash,
		NativeLanguage: nativeLanguage,
		TargetLanguage: targetLanguage,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.profileRepo.Create(profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return s.signIn(profile)
}

// Login authenticates a user by email and password
func (s *ProfileService) Login(email, password string) (*AuthResult, error) {
	profile, err := s.profileRepo.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return nil, ErrInvalidCredentials
	}
	if !security.CheckPassword(password, profile.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.signIn(profile)
}

// OAuthLogin authenticates or creates a profile using an OAuth provider
func (s *ProfileService) OAuthLogin(provider, subject, email, name string) (*AuthResult, error) {
	if provider == "" || subject == "" {
		return nil, errors.New("missing oauth provider information")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing profile: %w", err)
	}

	if profile != nil {
		if profile.OAuthProvider != "" && profile.OAuthProvider != provider {
			return nil, ErrEmailTaken
		}
		if profile.OAuthProvider == "" {
			profile.OAuthProvider = provider
			profile.OAuthSubject = subject
			profile.UpdatedAt = time.Now()
			if err := s.profileRepo.Update(profile); err != nil {
				return nil, fmt.Errorf("failed to link oauth provider: %w", err)
			}
		}
		return s.signIn(profile)
	}

	if name == "" {
		name = strings.Split(email, "@")[0]
	}
	// OAuth-only accounts get an unguessable password hash
	randomHash, err := security.HashPassword(uuid.New().String())
	if err != nil {
		return nil, fmt.Errorf("failed to generate oauth password hash: %w", err)
	}

	now := time.Now()
	profile = &models.Profile{
		UserID:         uuid.New().String(),
		Name:           name,
		Email:          email,
		PasswordHash:   randomHash,
		OAuthProvider:  provider,
		OAuthSubject:   subject,
		NativeLanguage: "zh-CN",
		TargetLanguage: "en-US",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.profileRepo.Create(profile); err != nil {
		return nil, fmt.Errorf("failed to create oauth profile: %w", err)
	}

	return s.signIn(profile)
}

// signIn issues a token and publishes the profile to the store
func (s *ProfileService) signIn(profile *models.Profile) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(profile.UserID, profile.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.store.SetProfile(profile)
	return &AuthResult{Profile: profile, Token: token, ExpiresAt: expiresAt}, nil
}

// GetProfile returns a user's profile
func (s *ProfileService) GetProfile(userID string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// UpdateLanguages changes the language pair the user is learning
func (s *ProfileService) UpdateLanguages(userID, nativeLanguage, targetLanguage string) (*models.Profile, error) {
	profile, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	if nativeLanguage != "" {
		profile.NativeLanguage = nativeLanguage
	}
	if targetLanguage != "" {
		profile.TargetLanguage = targetLanguage
	}
	profile.UpdatedAt = time.Now()

	if err := s.profileRepo.Update(profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	s.store.SetProfile(profile)
	return profile, nil
}

// SaveContext adds a reusable context string to the profile
func (s *ProfileService) SaveContext(userID, context string) (*models.Profile, error) {
	context = strings.TrimSpace(context)
	if context == "" {
		return nil, validation.ValidationError{Field: "context", Message: "context is required"}
	}

	profile, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	for _, existing := range profile.SavedContexts {
		if existing == context {
			return nil, ErrContextExists
		}
	}

	profile.SavedContexts = append(profile.SavedContexts, context)
	profile.UpdatedAt = time.Now()
	if err := s.profileRepo.Update(profile); err != nil {
		return nil, fmt.Errorf("failed to save context: %w", err)
	}
	s.store.SetProfile(profile)
	return profile, nil
}

// RemoveContext deletes a saved context string. Removing a context
// that is not saved is a no-op.
func (s *ProfileService) RemoveContext(userID, context string) (*models.Profile, error) {
	profile, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	kept := profile.SavedContexts[:0]
	for _, existing := range profile.SavedContexts {
		if existing != context {
			kept = append(kept, existing)
		}
	}
	profile.SavedContexts = kept
	profile.UpdatedAt = time.Now()

	if err := s.profileRepo.Update(profile); err != nil {
		return nil, fmt.Errorf("failed to remove context: %w", err)
	}
	s.store.SetProfile(profile)
	return profile, nil
}

// CheckInHistory returns the user's check-ins, most recent first
func (s *ProfileService) CheckInHistory(userID string) ([]models.CheckIn, error) {
	checkins, err := s.profileRepo.ListCheckIns(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}
	return checkins, nil
}

// ProfileSummary renders a short description of the learner for the
// generation prompts.
func ProfileSummary(p *models.Profile) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("native language %s, learning %s", p.NativeLanguage, p.TargetLanguage)
}
