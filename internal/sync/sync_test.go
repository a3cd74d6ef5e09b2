package sync

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"wordtrail/internal/config"
	"wordtrail/internal/database"
	"wordtrail/internal/models"
	"wordtrail/internal/repository"
)

const testUser = "user-1"

// newTestStores opens two migrated SQLite databases standing in for the
// local store and the remote store.
func newTestStores(t *testing.T) (*database.DB, *database.DB) {
	t.Helper()
	dir := t.TempDir()

	local, err := database.Initialize(filepath.Join(dir, "local.db"))
	if err != nil {
		t.Fatalf("Failed to initialize local store: %v", err)
	}
	t.Cleanup(func() { local.Close() })

	remote, err := database.InitializeRemote(&config.Config{
		RemoteDBType: "sqlite",
		RemoteDBURL:  filepath.Join(dir, "remote.db"),
	})
	if err != nil {
		t.Fatalf("Failed to initialize remote store: %v", err)
	}
	t.Cleanup(func() { remote.Close() })

	for _, db := range []*database.DB{local, remote} {
		if err := db.RunMigrations("../../migrations"); err != nil {
			t.Fatalf("Failed to run migrations: %v", err)
		}
	}
	return local, remote
}

func testWord(id, text string) *models.Word {
	now := time.Now().Truncate(time.Second)
	return &models.Word{
		ID:     id,
		UserID: testUser,
		Text:   text,
		Sentences: []models.Sentence{
			{Text: "Example with " + text + ".", Translation: "含有该词的例句。"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPushWordsEmptyLocalIsNoOp(t *testing.T) {
	local, remote := newTestStores(t)

	// Seed remote with data the empty push must not disturb
	remoteRepo := repository.NewWordRepository(remote)
	if err := remoteRepo.Upsert(testWord("w1", "resilient")); err != nil {
		t.Fatalf("Failed to seed remote: %v", err)
	}

	s := New(local, remote, testUser)
	err := s.PushWords()
	if !errors.Is(err, ErrEmptyPush) {
		t.Fatalf("PushWords() error = %v, want ErrEmptyPush", err)
	}

	remaining, err := remoteRepo.ListAll(testUser)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(remaining) != 1 || remaining[0].Text != "resilient" {
		t.Errorf("remote words after empty push = %v, want untouched seed row", remaining)
	}
}

func TestPushWordsUpsertsWholesale(t *testing.T) {
	local, remote := newTestStores(t)
	localRepo := repository.NewWordRepository(local)
	remoteRepo := repository.NewWordRepository(remote)

	// Remote already holds an older version of w1
	stale := testWord("w1", "ephemeral")
	stale.Learned = false
	if err := remoteRepo.Upsert(stale); err != nil {
		t.Fatalf("Failed to seed remote: %v", err)
	}

	fresh := testWord("w1", "ephemeral")
	fresh.Learned = true
	fresh.ReviewCount = 2
	if err := localRepo.Create(fresh); err != nil {
		t.Fatalf("Failed to seed local: %v", err)
	}
	if err := localRepo.Create(testWord("w2", "ubiquitous")); err != nil {
		t.Fatalf("Failed to seed local: %v", err)
	}

	s := New(local, remote, testUser)
	if err := s.PushWords(); err != nil {
		t.Fatalf("PushWords() error = %v", err)
	}

	got, err := remoteRepo.GetByID("w1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got == nil || !got.Learned || got.ReviewCount != 2 {
		t.Errorf("remote w1 = %+v, want last-pushed version to win wholesale", got)
	}

	all, err := remoteRepo.ListAll(testUser)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("remote word count = %d, want 2", len(all))
	}
}

func TestPushIncludesSoftDeletedRows(t *testing.T) {
	local, remote := newTestStores(t)
	localRepo := repository.NewWordRepository(local)

	w := testWord("w1", "obsolete")
	if err := localRepo.Create(w); err != nil {
		t.Fatalf("Failed to seed local: %v", err)
	}
	if err := localRepo.SoftDelete("w1", time.Now()); err != nil {
		t.Fatalf("SoftDelete() error = %v", err)
	}

	s := New(local, remote, testUser)
	if err := s.PushWords(); err != nil {
		t.Fatalf("PushWords() error = %v", err)
	}

	// The deleted row crossed the wire; it is only hidden at read time
	remoteRepo := repository.NewWordRepository(remote)
	all, err := remoteRepo.ListAll(testUser)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 1 || !all[0].Deleted {
		t.Fatalf("remote rows = %v, want one soft-deleted row", all)
	}

	active, err := remoteRepo.ListActive(testUser)
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	if len(active) != 0 {
		t.Errorf("ListActive() = %v, want empty", active)
	}
}

func TestFetchWordsRepopulatesLocal(t *testing.T) {
	local, remote := newTestStores(t)
	remoteRepo := repository.NewWordRepository(remote)

	for _, w := range []*models.Word{testWord("w1", "alpha"), testWord("w2", "beta")} {
		if err := remoteRepo.Upsert(w); err != nil {
			t.Fatalf("Failed to seed remote: %v", err)
		}
	}

	s := New(local, remote, testUser)
	if err := s.FetchWords(); err != nil {
		t.Fatalf("FetchWords() error = %v", err)
	}

	localRepo := repository.NewWordRepository(local)
	words, err := localRepo.ListAll(testUser)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("local word count after fetch = %d, want 2", len(words))
	}
	if len(words[0].Sentences) != 1 {
		t.Errorf("fetched word lost its sentences: %+v", words[0])
	}
}

func TestSyncRequiresAuthenticatedUser(t *testing.T) {
	local, remote := newTestStores(t)

	s := New(local, remote, "")
	if err := s.PushWords(); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("PushWords() error = %v, want ErrNotAuthenticated", err)
	}
	if err := s.FetchWords(); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("FetchWords() error = %v, want ErrNotAuthenticated", err)
	}
}

func TestGuardRejectsOverlappingSync(t *testing.T) {
	g := newGuard()

	if !g.tryAcquire(ResourceWords) {
		t.Fatal("first tryAcquire should succeed")
	}
	if g.tryAcquire(ResourceWords) {
		t.Error("second tryAcquire for the same resource should fail")
	}
	if !g.tryAcquire(ResourceProfile) {
		t.Error("tryAcquire for a different resource should succeed")
	}

	g.release(ResourceWords)
	if !g.tryAcquire(ResourceWords) {
		t.Error("tryAcquire after release should succeed")
	}
}

func TestPushProfileAndCheckIns(t *testing.T) {
	local, remote := newTestStores(t)
	localProf := repository.NewProfileRepository(local)

	now := time.Now().Truncate(time.Second)
	profile := &models.Profile{
		UserID:         testUser,
		Name:           "Li Wei",
		Email:          "liwei@example.com",
		NativeLanguage: "zh-CN",
		TargetLanguage: "en-US",
		SavedContexts:  []string{"business travel"},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := localProf.Create(profile); err != nil {
		t.Fatalf("Failed to create profile: %v", err)
	}
	checkin := &models.CheckIn{UserID: testUser, Date: "2026-03-10", SessionCount: 2, WordIDs: []string{"w1"}}
	if err := localProf.UpsertCheckIn(checkin); err != nil {
		t.Fatalf("Failed to create check-in: %v", err)
	}

	s := New(local, remote, testUser)
	if err := s.PushProfile(); err != nil {
		t.Fatalf("PushProfile() error = %v", err)
	}

	remoteProf := repository.NewProfileRepository(remote)
	got, err := remoteProf.GetByUserID(testUser)
	if err != nil {
		t.Fatalf("GetByUserID() error = %v", err)
	}
	if got == nil || got.Email != "liwei@example.com" || len(got.SavedContexts) != 1 {
		t.Errorf("remote profile = %+v, want pushed profile", got)
	}

	checkins, err := remoteProf.ListCheckIns(testUser)
	if err != nil {
		t.Fatalf("ListCheckIns() error = %v", err)
	}
	if len(checkins) != 1 || checkins[0].SessionCount != 2 {
		t.Errorf("remote check-ins = %v, want the pushed check-in", checkins)
	}
}

func TestPushAllSkipsEmptyCollections(t *testing.T) {
	local, remote := newTestStores(t)
	localProf := repository.NewProfileRepository(local)

	now := time.Now().Truncate(time.Second)
	profile := &models.Profile{
		UserID:         testUser,
		Email:          "solo@example.com",
		NativeLanguage: "zh-CN",
		TargetLanguage: "en-US",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := localProf.Create(profile); err != nil {
		t.Fatalf("Failed to create profile: %v", err)
	}

	// Words, explanations, usage and articles are all empty; PushAll
	// must still succeed by skipping them.
	s := New(local, remote, testUser)
	if err := s.PushAll(); err != nil {
		t.Fatalf("PushAll() error = %v", err)
	}

	remoteProf := repository.NewProfileRepository(remote)
	got, err := remoteProf.GetByUserID(testUser)
	if err != nil {
		t.Fatalf("GetByUserID() error = %v", err)
	}
	if got == nil {
		t.Error("profile was not pushed by PushAll")
	}
}
