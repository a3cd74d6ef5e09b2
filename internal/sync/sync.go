// Package sync reconciles the local store against the remote store.
//
// All writes in both directions are upserts keyed by primary key; sync
// never deletes rows and never rewrites a table wholesale. Conflict
// resolution is last-write-wins per record: whichever push lands last
// overwrites the remote row for that key. A push refuses to run when
// the local collection is empty, so a cleared local cache can never
// destroy non-empty remote data.
package sync

import (
	"errors"
	"fmt"

	"wordtrail/internal/database"
	"wordtrail/internal/repository"
)

var (
	// ErrNotAuthenticated is returned when sync runs without a signed-in user
	ErrNotAuthenticated = errors.New("sync: not authenticated")

	// ErrEmptyPush is returned when a push would send an empty collection
	ErrEmptyPush = errors.New("sync: refusing to push empty local collection")

	// ErrSyncInFlight is returned when a sync for the same table is already running
	ErrSyncInFlight = errors.New("sync: operation already in flight for this table")
)

// Resource names used by the per-table in-flight guard
const (
	ResourceWords        = "words"
	ResourceProfile      = "profiles"
	ResourceExplanations = "word_explanations"
	ResourceUsage        = "token_usage"
	ResourceArticles     = "articles"
)

// Syncer moves records between the local store and the remote store.
// It is the sole writer to the remote store and the sole component that
// repopulates local state from remote after authentication.
type Syncer struct {
	userID string

	localWords *repository.WordRepository
	localProf  *repository.ProfileRepository
	localExpl  *repository.ExplanationRepository
	localUsage *repository.UsageRepository
	localArt   *repository.ArticleRepository

	remoteWords *repository.WordRepository
	remoteProf  *repository.ProfileRepository
	remoteExpl  *repository.ExplanationRepository
	remoteUsage *repository.UsageRepository
	remoteArt   *repository.ArticleRepository

	guard *guard
}

// New creates a Syncer for a signed-in user over the two stores.
// userID must be non-empty: sync without an authenticated user is a
// configuration error surfaced on every operation.
func New(local, remote *database.DB, userID string) *Syncer {
	return &Syncer{
		userID:      userID,
		localWords:  repository.NewWordRepository(local),
		localProf:   repository.NewProfileRepository(local),
		localExpl:   repository.NewExplanationRepository(local),
		localUsage:  repository.NewUsageRepository(local),
		localArt:    repository.NewArticleRepository(local),
		remoteWords: repository.NewWordRepository(remote),
		remoteProf:  repository.NewProfileRepository(remote),
		remoteExpl:  repository.NewExplanationRepository(remote),
		remoteUsage: repository.NewUsageRepository(remote),
		remoteArt:   repository.NewArticleRepository(remote),
		guard:       newGuard(),
	}
}

// PushWords upserts every local word row (deleted included) to remote.
// A deliberately empty local list is indistinguishable from a wiped
// cache, so the push is refused rather than risking remote data.
func (s *Syncer) PushWords() error {
	if s.userID == "" {
		return ErrNotAuthenticated
	}
	if !s.guard.tryAcquire(ResourceWords) {
		return ErrSyncInFlight
	}
	defer s.guard.release(ResourceWords)

	words, err := s.localWords.ListAll(s.userID)
	if err != nil {
		return fmt.Errorf("failed to load local words: %w", err)
	}
	if len(words) == 0 {
		return ErrEmptyPush
	}

	for i := range words {
		if err := s.remoteWords.Upsert(&words[i]); err != nil {
			return fmt.Errorf("failed to push word %s: %w", words[i].ID, err)
		}
	}
	return nil
}

// FetchWords pulls the full remote word set (active and deleted) into
// the local store. Filtering to active rows happens at read time, never
// here.
func (s *Syncer) FetchWords() error {
	if s.userID == "" {
		return ErrNotAuthenticated
	}
	if !s.guard.tryAcquire(ResourceWords) {
		return ErrSyncInFlight
	}
	defer s.guard.release(ResourceWords)

	words, err := s.remoteWords.ListAll(s.userID)
	if err != nil {
		return fmt.Errorf("failed to load remote words: %w", err)
	}

	for i := range words {
		if err := s.localWords.Upsert(&words[i]); err != nil {
			return fmt.Errorf("failed to store fetched word %s: %w", words[i].ID, err)
		}
	}
	return nil
}

// PushProfile upserts the local profile and check-in history to remote
func (s *Syncer) PushProfile() error {
	if s.userID == "" {
		return ErrNotAuthenticated
	}
	if !s.guard.tryAcquire(ResourceProfile) {
		return ErrSyncInFlight
	}
	defer s.guard.release(ResourceProfile)

	profile, err := s.localProf.GetByUserID(s.userID)
	if err != nil {
		return fmt.Errorf("failed to load local profile: %w", err)
	}
	if profile == nil {
		return ErrEmptyPush
	}

	if err := s.remoteProf.Upsert(profile); err != nil {
		return fmt.Errorf("failed to push profile: %w", err)
	}

	checkins, err := s.localProf.ListCheckIns(s.userID)
	if err != nil {
		return fmt.Errorf("failed to load local check-ins: %w", err)
	}
	for i := range checkins {
		if err := s.remoteProf.UpsertCheckIn(&checkins[i]); err != nil {
			return fmt.Errorf("failed to push check-in %s: %w", checkins[i].Date, err)
		}
	}
	return nil
}

// FetchProfile pulls the remote profile and check-in history into local
func (s *Syncer) FetchProfile() error {
	if s.userID == "" {
		return ErrNotAuthenticated
	}
	if !s.guard.tryAcquire(ResourceProfile) {
		return ErrSyncInFlight
	}
	defer s.guard.release(ResourceProfile)

	profile, err := s.remoteProf.GetByUserID(s.userID)
	if err != nil {
		return fmt.Errorf("failed to load remote profile: %w", err)
	}
	if profile != nil {
		if err := s.localProf.Upsert(profile); err != nil {
			return fmt.Errorf("failed to store fetched profile: %w", err)
		}
	}

	checkins, err := s.remoteProf.ListCheckIns(s.userID)
	if err != nil {
		return fmt.Errorf("failed to load remote check-ins: %w", err)
	}
	for i := range checkins {
		if err := s.localProf.UpsertCheckIn(&checkins[i]); err != nil {
			return fmt.Errorf("failed to store fetched check-in %s: %w", checkins[i].Date, err)
		}
	}
	return nil
}

// PushExplanations upserts every cached explanation to remote
func (s *Syncer) PushExplanations() error {
	if s.userID == "" {
		return ErrNotAuthenticated
	}
	if !s.guard.tryAcquire(ResourceExplanations) {
		return ErrSyncInFlight
	}
	defer s.guard.release(ResourceExplanations)

	explanations, err := s.localExpl.ListAll(s.userID)
	if err != nil {
		return fmt.Errorf("failed to load local explanations: %w", err)
	}
	if len(explanations) == 0 {
		return ErrEmptyPush
	}

	for i := range explanations {
		if err := s.remoteExpl.Upsert(&explanations[i]); err != nil {
			return fmt.Errorf("failed to push explanation for word %s: %w", explanations[i].WordID, err)
		}
	}
	return nil
}

// FetchExplanations pulls every remote explanation into the local store
func (s *Syncer) FetchExplanations() error {
	if s.userID == "" {
		return ErrNotAuthenticated
	}
	if !s.guard.tryAcquire(ResourceExplanations) {
		return ErrSyncInFlight
	}
	defer s.guard.release(ResourceExplanations)

	explanations, err := s.remoteExpl.ListAll(s.userID)
	if err != nil {
		return fmt.Errorf("failed to load remote explanations: %w", err)
	}
	for i := range explanations {
		if err := s.localExpl.Upsert(&explanations[i]); err != nil {
			return fmt.Errorf("failed to store fetched explanation for word %s: %w", explanations[i].WordID, err)
		}
	}
	return nil
}

// PushUsage upserts the token usage accumulator to remote
func (s *Syncer) PushUsage() error {
	if s.userID == "" {
		return ErrNotAuthenticated
	}
	if !s.guard.tryAcquire(ResourceUsage) {
		return ErrSyncInFlight
	}
	defer s.guard.release(ResourceUsage)

	usage, err := s.localUsage.Get(s.userID)
	if err != nil {
		return fmt.Errorf("failed to load local token usage: %w", err)
	}
	if usage.InputTokens == 0 && usage.OutputTokens == 0 {
		return ErrEmptyPush
	}

	if err := s.remoteUsage.Upsert(usage); err != nil {
		return fmt.Errorf("failed to push token usage: %w", err)
	}
	return nil
}

// PushArticles upserts every local article to remote
func (s *Syncer) PushArticles() error {
	if s.userID == "" {
		return ErrNotAuthenticated
	}
	if !s.guard.tryAcquire(ResourceArticles) {
		return ErrSyncInFlight
	}
	defer s.guard.release(ResourceArticles)

	articles, err := s.localArt.ListAll(s.userID)
	if err != nil {
		return fmt.Errorf("failed to load local articles: %w", err)
	}
	if len(articles) == 0 {
		return ErrEmptyPush
	}

	for i := range articles {
		if err := s.remoteArt.Upsert(&articles[i]); err != nil {
			return fmt.Errorf("failed to push article %s: %w", articles[i].ID, err)
		}
	}
	return nil
}

// FetchArticles pulls every remote article into the local store
func (s *Syncer) FetchArticles() error {
	if s.userID == "" {
		return ErrNotAuthenticated
	}
	if !s.guard.tryAcquire(ResourceArticles) {
		return ErrSyncInFlight
	}
	defer s.guard.release(ResourceArticles)

	articles, err := s.remoteArt.ListAll(s.userID)
	if err != nil {
		return fmt.Errorf("failed to load remote articles: %w", err)
	}
	for i := range articles {
		if err := s.localArt.Upsert(&articles[i]); err != nil {
			return fmt.Errorf("failed to store fetched article %s: %w", articles[i].ID, err)
		}
	}
	return nil
}

// PushAll pushes every record type. Empty collections are skipped
// rather than treated as failures; the first real error stops the run.
func (s *Syncer) PushAll() error {
	pushes := []func() error{
		s.PushProfile,
		s.PushWords,
		s.PushExplanations,
		s.PushUsage,
		s.PushArticles,
	}
	for _, push := range pushes {
		if err := push(); err != nil && !errors.Is(err, ErrEmptyPush) {
			return err
		}
	}
	return nil
}

// FetchAll repopulates the local store from remote after authentication
func (s *Syncer) FetchAll() error {
	fetches := []func() error{
		s.FetchProfile,
		s.FetchWords,
		s.FetchExplanations,
		s.FetchArticles,
	}
	for _, fetch := range fetches {
		if err := fetch(); err != nil {
			return err
		}
	}
	return nil
}
