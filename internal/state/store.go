// Package state holds the in-memory session state shared by the
// services, keyed by user ID: each user's profile, word list and
// active review session. Mutations go through Store methods, which
// notify topic subscribers after the change is applied.
package state

import (
	"sync"
	"time"

	"wordtrail/internal/models"
)

// Topic identifies a slice of state that can be subscribed to.
type Topic string

const (
	TopicProfile Topic = "profile"
	TopicWords   Topic = "words"
	TopicSession Topic = "session"
)

// ReviewSession tracks one pass over the due queue.
type ReviewSession struct {
	Queue     []*models.Word
	Position  int
	Completed []string // word IDs reviewed successfully
	Failed    []string // word IDs the user retried
	StartedAt time.Time
}

// Current returns the word under review, or nil when the queue is
// exhausted.
func (s *ReviewSession) Current() *models.Word {
	if s == nil || s.Position >= len(s.Queue) {
		return nil
	}
	return s.Queue[s.Position]
}

// Done reports whether every queued word has been handled.
func (s *ReviewSession) Done() bool {
	return s == nil || s.Position >= len(s.Queue)
}

// userState holds one user's slice of the store. Entries are created
// on first write and live for the process lifetime.
type userState struct {
	profile *models.Profile
	words   []*models.Word
	session *ReviewSession
}

// Store is the mutex-guarded state container. All per-user state is
// keyed by user ID so concurrent users never observe each other's
// profile, words or session.
type Store struct {
	mu    sync.RWMutex
	users map[string]*userState

	subs   map[Topic]map[int]func()
	nextID int
}

func NewStore() *Store {
	return &Store{
		users: make(map[string]*userState),
		subs:  make(map[Topic]map[int]func()),
	}
}

// userFor returns the state entry for userID, creating it if needed.
// The caller must hold s.mu for writing.
func (s *Store) userFor(userID string) *userState {
	u, ok := s.users[userID]
	if !ok {
		u = &userState{}
		s.users[userID] = u
	}
	return u
}

// Subscribe registers fn to run after every change to topic. The
// returned function removes the subscription.
func (s *Store) Subscribe(topic Topic, fn func()) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subs[topic] == nil {
		s.subs[topic] = make(map[int]func())
	}
	id := s.nextID
	s.nextID++
	s.subs[topic][id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[topic], id)
	}
}

// notify runs subscriber callbacks outside the lock so a callback can
// safely read the store.
func (s *Store) notify(topic Topic) {
	s.mu.RLock()
	fns := make([]func(), 0, len(s.subs[topic]))
	for _, fn := range s.subs[topic] {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

// Profile returns the user's profile, or nil.
func (s *Store) Profile(userID string) *models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[userID]; ok {
		return u.profile
	}
	return nil
}

// SetProfile stores p under its own UserID.
func (s *Store) SetProfile(p *models.Profile) {
	s.mu.Lock()
	s.userFor(p.UserID).profile = p
	s.mu.Unlock()
	s.notify(TopicProfile)
}

// Words returns a copy of the user's word list slice. The pointed-to
// words are shared; callers must not mutate them directly.
func (s *Store) Words(userID string) []*models.Word {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	out := make([]*models.Word, len(u.words))
	copy(out, u.words)
	return out
}

func (s *Store) SetWords(userID string, words []*models.Word) {
	s.mu.Lock()
	s.userFor(userID).words = words
	s.mu.Unlock()
	s.notify(TopicWords)
}

// UpsertWord replaces the word with the same ID in its owner's list
// or appends it. The owner is taken from w.UserID.
func (s *Store) UpsertWord(w *models.Word) {
	s.mu.Lock()
	u := s.userFor(w.UserID)
	replaced := false
	for i, existing := range u.words {
		if existing.ID == w.ID {
			u.words[i] = w
			replaced = true
			break
		}
	}
	if !replaced {
		u.words = append(u.words, w)
	}
	s.mu.Unlock()
	s.notify(TopicWords)
}

// RemoveWord drops the word with the given ID from the user's
// in-memory list.
func (s *Store) RemoveWord(userID, id string) {
	s.mu.Lock()
	if u, ok := s.users[userID]; ok {
		for i, w := range u.words {
			if w.ID == id {
				u.words = append(u.words[:i], u.words[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()
	s.notify(TopicWords)
}

// Session returns the user's active review session, or nil.
func (s *Store) Session(userID string) *ReviewSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[userID]; ok {
		return u.session
	}
	return nil
}

// StartSession begins a review session for the user over the given
// queue, replacing any session the same user already had.
func (s *Store) StartSession(userID string, queue []*models.Word) *ReviewSession {
	sess := &ReviewSession{Queue: queue, StartedAt: time.Now()}
	s.mu.Lock()
	s.userFor(userID).session = sess
	s.mu.Unlock()
	s.notify(TopicSession)
	return sess
}

// AdvanceSession records the outcome for the current word in the
// user's session and moves to the next one. It returns false when the
// user has no active session or the queue is already exhausted.
func (s *Store) AdvanceSession(userID, wordID string, succeeded bool) bool {
	s.mu.Lock()
	u, ok := s.users[userID]
	if !ok || u.session == nil || u.session.Position >= len(u.session.Queue) {
		s.mu.Unlock()
		return false
	}
	sess := u.session
	if succeeded {
		sess.Completed = append(sess.Completed, wordID)
	} else {
		sess.Failed = append(sess.Failed, wordID)
	}
	sess.Position++
	s.mu.Unlock()
	s.notify(TopicSession)
	return true
}

// EndSession clears the user's active session.
func (s *Store) EndSession(userID string) {
	s.mu.Lock()
	if u, ok := s.users[userID]; ok {
		u.session = nil
	}
	s.mu.Unlock()
	s.notify(TopicSession)
}
