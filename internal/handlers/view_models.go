package handlers

import (
	"time"

	"wordtrail/internal/models"
	"wordtrail/internal/state"
)

// WordView is the JSON shape of a word as returned by the API
type WordView struct {
	ID           string            `json:"id"`
	Text         string            `json:"text"`
	Phonetic     string            `json:"phonetic,omitempty"`
	Learned      bool              `json:"learned"`
	Sentences    []models.Sentence `json:"sentences"`
	RetryCount   int               `json:"retry_count"`
	Skipped      bool              `json:"skipped"`
	NextReviewAt *time.Time        `json:"next_review_at,omitempty"`
	ReviewCount  int               `json:"review_count"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func newWordView(w *models.Word) WordView {
	sentences := w.Sentences
	if sentences == nil {
		sentences = []models.Sentence{}
	}
	return WordView{
		ID:           w.ID,
		Text:         w.Text,
		Phonetic:     w.Phonetic,
		Learned:      w.Learned,
		Sentences:    sentences,
		RetryCount:   w.RetryCount,
		Skipped:      w.Skipped,
		NextReviewAt: w.NextReviewAt,
		ReviewCount:  w.ReviewCount,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
}

func newWordViews(words []models.Word) []WordView {
	views := make([]WordView, len(words))
	for i := range words {
		views[i] = newWordView(&words[i])
	}
	return views
}

// ProfileView is the JSON shape of a profile. The password hash and
// OAuth subject never leave the server.
type ProfileView struct {
	UserID         string   `json:"user_id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	OAuthProvider  string   `json:"oauth_provider,omitempty"`
	NativeLanguage string   `json:"native_language"`
	TargetLanguage string   `json:"target_language"`
	SavedContexts  []string `json:"saved_contexts"`
}

func newProfileView(p *models.Profile) ProfileView {
	contexts := p.SavedContexts
	if contexts == nil {
		contexts = []string{}
	}
	return ProfileView{
		UserID:         p.UserID,
		Name:           p.Name,
		Email:          p.Email,
		OAuthProvider:  p.OAuthProvider,
		NativeLanguage: p.NativeLanguage,
		TargetLanguage: p.TargetLanguage,
		SavedContexts:  contexts,
	}
}

// AuthView is returned by register, login and the OAuth callback
type AuthView struct {
	Profile   ProfileView `json:"profile"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// CheckInView is one day of review history
type CheckInView struct {
	Date         string   `json:"date"`
	SessionCount int      `json:"session_count"`
	WordIDs      []string `json:"word_ids"`
}

func newCheckInView(c *models.CheckIn) CheckInView {
	ids := c.WordIDs
	if ids == nil {
		ids = []string{}
	}
	return CheckInView{Date: c.Date, SessionCount: c.SessionCount, WordIDs: ids}
}

// SessionView describes the active review session
type SessionView struct {
	Current   *WordView `json:"current"`
	Position  int       `json:"position"`
	Remaining int       `json:"remaining"`
	Total     int       `json:"total"`
	Completed []string  `json:"completed"`
	Failed    []string  `json:"failed"`
}

func newSessionView(sess *state.ReviewSession) SessionView {
	view := SessionView{
		Position:  sess.Position,
		Total:     len(sess.Queue),
		Completed: append([]string{}, sess.Completed...),
		Failed:    append([]string{}, sess.Failed...),
	}
	if current := sess.Current(); current != nil {
		wv := newWordView(current)
		view.Current = &wv
	}
	view.Remaining = len(sess.Queue) - sess.Position
	return view
}

// StatsView summarizes the word list
type StatsView struct {
	Total   int `json:"total"`
	Learned int `json:"learned"`
	Due     int `json:"due"`
	Deleted int `json:"deleted"`
}

// UsageView reports accumulated token consumption and derived cost
type UsageView struct {
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	Cost         float64 `json:"cost"`
}

// ExplanationView is the JSON shape of a cached word explanation
type ExplanationView struct {
	WordID           string            `json:"word_id"`
	Definition       string            `json:"definition"`
	Usage            string            `json:"usage"`
	MemoryHook       string            `json:"memory_hook"`
	ExampleSentences []models.Sentence `json:"example_sentences"`
}

func newExplanationView(e *models.WordExplanation) ExplanationView {
	sentences := e.ExampleSentences
	if sentences == nil {
		sentences = []models.Sentence{}
	}
	return ExplanationView{
		WordID:           e.WordID,
		Definition:       e.Definition,
		Usage:            e.Usage,
		MemoryHook:       e.MemoryHook,
		ExampleSentences: sentences,
	}
}

// ArticleView is the JSON shape of a generated reading passage
type ArticleView struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	WordIDs   []string  `json:"word_ids"`
	CreatedAt time.Time `json:"created_at"`
}

func newArticleView(a *models.Article) ArticleView {
	ids := a.WordIDs
	if ids == nil {
		ids = []string{}
	}
	return ArticleView{
		ID:        a.ID,
		Title:     a.Title,
		Content:   a.Content,
		WordIDs:   ids,
		CreatedAt: a.CreatedAt,
	}
}
