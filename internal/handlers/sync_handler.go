package handlers

import (
	"errors"
	"net/http"
	stdsync "sync"

	"wordtrail/internal/database"
	"wordtrail/internal/sync"
)

// SyncHandler exposes push and fetch for each synced resource. One
// Syncer is kept per user so the in-flight guard spans concurrent
// requests from the same account.
type SyncHandler struct {
	local  *database.DB
	remote *database.DB

	mu stdsync.Mutex
	// syncers grows by one small entry per distinct user and is never
	// evicted for the life of the process. Entries cannot be dropped
	// while a sync is in flight; eviction would need per-entry
	// refcounting for a bounded win, so the map is left to grow.
	syncers map[string]*sync.Syncer
}

// NewSyncHandler creates a new sync handler. Remote may be nil when no
// remote store is configured; requests then fail with 503.
func NewSyncHandler(local, remote *database.DB) *SyncHandler {
	return &SyncHandler{
		local:   local,
		remote:  remote,
		syncers: make(map[string]*sync.Syncer),
	}
}

func (h *SyncHandler) syncerFor(userID string) *sync.Syncer {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s, ok := h.syncers[userID]; ok {
		return s
	}
	s := sync.New(h.local, h.remote, userID)
	h.syncers[userID] = s
	return s
}

type syncResponse struct {
	Resource string `json:"resource"`
	Status   string `json:"status"`
}

// Push uploads a local resource to the remote store
func (h *SyncHandler) Push(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, r.PathValue("resource"), true)
}

// Fetch downloads a resource from the remote store into the local one
func (h *SyncHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, r.PathValue("resource"), false)
}

func (h *SyncHandler) run(w http.ResponseWriter, r *http.Request, resource string, push bool) {
	if h.remote == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Sync is not configured", "", nil)
		return
	}

	syncer := h.syncerFor(UserIDFromContext(r.Context()))

	op, ok := syncOperation(syncer, resource, push)
	if !ok {
		respondWithError(w, http.StatusNotFound, "Unknown sync resource", "", nil)
		return
	}

	if err := op(); err != nil {
		respondSyncError(w, resource, err)
		return
	}
	respondWithJSON(w, http.StatusOK, syncResponse{Resource: resource, Status: "ok"})
}

// syncOperation maps a resource name and direction to a Syncer method.
// Usage is push-only: the remote accumulates counts and never feeds
// them back.
func syncOperation(s *sync.Syncer, resource string, push bool) (func() error, bool) {
	if push {
		switch resource {
		case sync.ResourceWords:
			return s.PushWords, true
		case sync.ResourceProfile:
			return s.PushProfile, true
		case sync.ResourceExplanations:
			return s.PushExplanations, true
		case sync.ResourceUsage:
			return s.PushUsage, true
		case sync.ResourceArticles:
			return s.PushArticles, true
		case "all":
			return s.PushAll, true
		}
		return nil, false
	}

	switch resource {
	case sync.ResourceWords:
		return s.FetchWords, true
	case sync.ResourceProfile:
		return s.FetchProfile, true
	case sync.ResourceExplanations:
		return s.FetchExplanations, true
	case sync.ResourceArticles:
		return s.FetchArticles, true
	case "all":
		return s.FetchAll, true
	}
	return nil, false
}

func respondSyncError(w http.ResponseWriter, resource string, err error) {
	switch {
	case errors.Is(err, sync.ErrNotAuthenticated):
		respondWithError(w, http.StatusUnauthorized, "Authentication required", "", nil)
	case errors.Is(err, sync.ErrEmptyPush):
		respondWithError(w, http.StatusConflict, "Refusing to push an empty collection", "", nil)
	case errors.Is(err, sync.ErrSyncInFlight):
		respondWithError(w, http.StatusConflict, "A sync for this resource is already running", "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, "Sync failed, please try again", "Sync failed for "+resource, err)
	}
}
