package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"wordtrail/internal/database"
	"wordtrail/internal/models"
)

// BackupData represents the complete local-store backup structure
type BackupData struct {
	Version      string               `json:"version"`
	ExportedAt   time.Time            `json:"exported_at"`
	Profiles     []ProfileBackup      `json:"profiles"`
	Words        []WordBackup         `json:"words"`
	Explanations []ExplanationBackup  `json:"explanations"`
	Usage        []TokenUsageBackup   `json:"usage"`
	CheckIns     []CheckInBackup      `json:"checkins"`
	Articles     []ArticleBackup      `json:"articles"`
}

// ProfileBackup represents a profile record for backup
type ProfileBackup struct {
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"password_hash"`
	OAuthProvider  string    `json:"oauth_provider"`
	OAuthSubject   string    `json:"oauth_subject"`
	NativeLanguage string    `json:"native_language"`
	TargetLanguage string    `json:"target_language"`
	SavedContexts  []string  `json:"saved_contexts"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// WordBackup represents a word record for backup. Soft-deleted words
// are exported too; a backup is the full set, not the active view.
type WordBackup struct {
	ID           string            `json:"id"`
	UserID       string            `json:"user_id"`
	Text         string            `json:"text"`
	Phonetic     string            `json:"phonetic"`
	Learned      bool              `json:"learned"`
	Sentences    []models.Sentence `json:"sentences"`
	RetryCount   int               `json:"retry_count"`
	Skipped      bool              `json:"skipped"`
	NextReviewAt *time.Time        `json:"next_review_at"`
	ReviewCount  int               `json:"review_count"`
	Deleted      bool              `json:"deleted"`
	DeletedAt    *time.Time        `json:"deleted_at"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// ExplanationBackup represents a word explanation for backup
type ExplanationBackup struct {
	UserID           string            `json:"user_id"`
	WordID           string            `json:"word_id"`
	Definition       string            `json:"definition"`
	Usage            string            `json:"usage"`
	MemoryHook       string            `json:"memory_hook"`
	ExampleSentences []models.Sentence `json:"example_sentences"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// TokenUsageBackup represents accumulated token counters for backup
type TokenUsageBackup struct {
	UserID       string    `json:"user_id"`
	InputTokens  int64     `json:"input_tokens"`
	OutputTokens int64     `json:"output_tokens"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CheckInBackup represents one day of review activity for backup
type CheckInBackup struct {
	UserID       string   `json:"user_id"`
	Date         string   `json:"date"`
	SessionCount int      `json:"session_count"`
	WordIDs      []string `json:"word_ids"`
}

// ArticleBackup represents a reading article for backup
type ArticleBackup struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	WordIDs   []string  `json:"word_ids"`
	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
}

// BackupService handles local store backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the local store to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting local store export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Local store exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter exports the local store as JSON (used for the HTTP
// export endpoint). Rows are ordered by primary key so two exports of
// the same state are identical.
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
	}

	if err := s.exportProfiles(backup); err != nil {
		return fmt.Errorf("failed to export profiles: %w", err)
	}
	if err := s.exportWords(backup); err != nil {
		return fmt.Errorf("failed to export words: %w", err)
	}
	if err := s.exportExplanations(backup); err != nil {
		return fmt.Errorf("failed to export explanations: %w", err)
	}
	if err := s.exportUsage(backup); err != nil {
		return fmt.Errorf("failed to export token usage: %w", err)
	}
	if err := s.exportCheckIns(backup); err != nil {
		return fmt.Errorf("failed to export check-ins: %w", err)
	}
	if err := s.exportArticles(backup); err != nil {
		return fmt.Errorf("failed to export articles: %w", err)
	}

	log.Printf("Exported: %d profiles, %d words, %d explanations, %d usage rows, %d check-ins, %d articles",
		len(backup.Profiles), len(backup.Words), len(backup.Explanations),
		len(backup.Usage), len(backup.CheckIns), len(backup.Articles))

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(backup)
}

// Import restores the local store from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting local store import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores the local store from a backup stream
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	if err := s.importProfiles(backup.Profiles); err != nil {
		return fmt.Errorf("failed to import profiles: %w", err)
	}
	if err := s.importWords(backup.Words); err != nil {
		return fmt.Errorf("failed to import words: %w", err)
	}
	if err := s.importExplanations(backup.Explanations); err != nil {
		return fmt.Errorf("failed to import explanations: %w", err)
	}
	if err := s.importUsage(backup.Usage); err != nil {
		return fmt.Errorf("failed to import token usage: %w", err)
	}
	if err := s.importCheckIns(backup.CheckIns); err != nil {
		return fmt.Errorf("failed to import check-ins: %w", err)
	}
	if err := s.importArticles(backup.Articles); err != nil {
		return fmt.Errorf("failed to import articles: %w", err)
	}

	log.Println("Local store import completed successfully")
	return nil
}

func (s *BackupService) exportProfiles(backup *BackupData) error {
	query := "SELECT user_id, name, email, password_hash, COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''), native_language, target_language, saved_contexts, created_at, updated_at FROM profiles ORDER BY user_id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p ProfileBackup
		var contexts string
		if err := rows.Scan(&p.UserID, &p.Name, &p.Email, &p.PasswordHash, &p.OAuthProvider, &p.OAuthSubject,
			&p.NativeLanguage, &p.TargetLanguage, &contexts, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(contexts), &p.SavedContexts); err != nil {
			return fmt.Errorf("failed to decode saved contexts for %s: %w", p.UserID, err)
		}
		backup.Profiles = append(backup.Profiles, p)
	}
	return rows.Err()
}

func (s *BackupService) exportWords(backup *BackupData) error {
	query := "SELECT id, user_id, text, phonetic, learned, sentences, retry_count, skipped, next_review_at, review_count, deleted, deleted_at, created_at, updated_at FROM words ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var w WordBackup
		var sentences string
		var nextReview, deletedAt sql.NullTime
		if err := rows.Scan(&w.ID, &w.UserID, &w.Text, &w.Phonetic, &w.Learned, &sentences,
			&w.RetryCount, &w.Skipped, &nextReview, &w.ReviewCount,
			&w.Deleted, &deletedAt, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return err
		}
		if nextReview.Valid {
			w.NextReviewAt = &nextReview.Time
		}
		if deletedAt.Valid {
			w.DeletedAt = &deletedAt.Time
		}
		if err := json.Unmarshal([]byte(sentences), &w.Sentences); err != nil {
			return fmt.Errorf("failed to decode sentences for word %s: %w", w.ID, err)
		}
		backup.Words = append(backup.Words, w)
	}
	return rows.Err()
}

func (s *BackupService) exportExplanations(backup *BackupData) error {
	query := "SELECT user_id, word_id, definition, usage_note, memory_hook, example_sentences, created_at, updated_at FROM word_explanations ORDER BY user_id, word_id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var e ExplanationBackup
		var examples string
		if err := rows.Scan(&e.UserID, &e.WordID, &e.Definition, &e.Usage, &e.MemoryHook,
			&examples, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(examples), &e.ExampleSentences); err != nil {
			return fmt.Errorf("failed to decode example sentences for word %s: %w", e.WordID, err)
		}
		backup.Explanations = append(backup.Explanations, e)
	}
	return rows.Err()
}

func (s *BackupService) exportUsage(backup *BackupData) error {
	query := "SELECT user_id, input_tokens, output_tokens, updated_at FROM token_usage ORDER BY user_id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u TokenUsageBackup
		if err := rows.Scan(&u.UserID, &u.InputTokens, &u.OutputTokens, &u.UpdatedAt); err != nil {
			return err
		}
		backup.Usage = append(backup.Usage, u)
	}
	return rows.Err()
}

func (s *BackupService) exportCheckIns(backup *BackupData) error {
	query := "SELECT user_id, date, session_count, word_ids FROM checkins ORDER BY user_id, date"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c CheckInBackup
		var wordIDs string
		if err := rows.Scan(&c.UserID, &c.Date, &c.SessionCount, &wordIDs); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(wordIDs), &c.WordIDs); err != nil {
			return fmt.Errorf("failed to decode word ids for check-in %s: %w", c.Date, err)
		}
		backup.CheckIns = append(backup.CheckIns, c)
	}
	return rows.Err()
}

func (s *BackupService) exportArticles(backup *BackupData) error {
	query := "SELECT id, user_id, title, content, word_ids, deleted, created_at FROM articles ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a ArticleBackup
		var wordIDs string
		if err := rows.Scan(&a.ID, &a.UserID, &a.Title, &a.Content, &wordIDs, &a.Deleted, &a.CreatedAt); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(wordIDs), &a.WordIDs); err != nil {
			return fmt.Errorf("failed to decode word ids for article %s: %w", a.ID, err)
		}
		backup.Articles = append(backup.Articles, a)
	}
	return rows.Err()
}

func (s *BackupService) importProfiles(profiles []ProfileBackup) error {
	log.Printf("Importing %d profiles...", len(profiles))
	for _, p := range profiles {
		contexts, err := json.Marshal(ensureSlice(p.SavedContexts))
		if err != nil {
			return fmt.Errorf("failed to encode saved contexts for %s: %w", p.UserID, err)
		}
		query := "INSERT INTO profiles (user_id, name, email, password_hash, oauth_provider, oauth_subject, native_language, target_language, saved_contexts, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		_, err = s.db.Exec(query, p.UserID, p.Name, p.Email, p.PasswordHash,
			backupNullIfEmpty(p.OAuthProvider), backupNullIfEmpty(p.OAuthSubject),
			p.NativeLanguage, p.TargetLanguage, string(contexts), p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import profile %s: %w", p.UserID, err)
		}
	}
	return nil
}

func (s *BackupService) importWords(words []WordBackup) error {
	log.Printf("Importing %d words...", len(words))
	for _, w := range words {
		sentences, err := json.Marshal(ensureSlice(w.Sentences))
		if err != nil {
			return fmt.Errorf("failed to encode sentences for word %s: %w", w.ID, err)
		}
		query := "INSERT INTO words (id, user_id, text, phonetic, learned, sentences, retry_count, skipped, next_review_at, review_count, deleted, deleted_at, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		_, err = s.db.Exec(query, w.ID, w.UserID, w.Text, w.Phonetic, w.Learned, string(sentences),
			w.RetryCount, w.Skipped, w.NextReviewAt, w.ReviewCount, w.Deleted, w.DeletedAt, w.CreatedAt, w.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import word %s: %w", w.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importExplanations(explanations []ExplanationBackup) error {
	log.Printf("Importing %d explanations...", len(explanations))
	for _, e := range explanations {
		examples, err := json.Marshal(ensureSlice(e.ExampleSentences))
		if err != nil {
			return fmt.Errorf("failed to encode example sentences for word %s: %w", e.WordID, err)
		}
		query := "INSERT INTO word_explanations (user_id, word_id, definition, usage_note, memory_hook, example_sentences, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
		_, err = s.db.Exec(query, e.UserID, e.WordID, e.Definition, e.Usage, e.MemoryHook,
			string(examples), e.CreatedAt, e.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import explanation for word %s: %w", e.WordID, err)
		}
	}
	return nil
}

func (s *BackupService) importUsage(usage []TokenUsageBackup) error {
	log.Printf("Importing %d usage rows...", len(usage))
	for _, u := range usage {
		query := "INSERT INTO token_usage (user_id, input_tokens, output_tokens, updated_at) VALUES (?, ?, ?, ?)"
		_, err := s.db.Exec(query, u.UserID, u.InputTokens, u.OutputTokens, u.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import usage for user %s: %w", u.UserID, err)
		}
	}
	return nil
}

func (s *BackupService) importCheckIns(checkins []CheckInBackup) error {
	log.Printf("Importing %d check-ins...", len(checkins))
	for _, c := range checkins {
		wordIDs, err := json.Marshal(ensureSlice(c.WordIDs))
		if err != nil {
			return fmt.Errorf("failed to encode word ids for check-in %s: %w", c.Date, err)
		}
		query := "INSERT INTO checkins (user_id, date, session_count, word_ids) VALUES (?, ?, ?, ?)"
		_, err = s.db.Exec(query, c.UserID, c.Date, c.SessionCount, string(wordIDs))
		if err != nil {
			return fmt.Errorf("failed to import check-in %s for user %s: %w", c.Date, c.UserID, err)
		}
	}
	return nil
}

func (s *BackupService) importArticles(articles []ArticleBackup) error {
	log.Printf("Importing %d articles...", len(articles))
	for _, a := range articles {
		wordIDs, err := json.Marshal(ensureSlice(a.WordIDs))
		if err != nil {
			return fmt.Errorf("failed to encode word ids for article %s: %w", a.ID, err)
		}
		query := "INSERT INTO articles (id, user_id, title, content, word_ids, deleted, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
		_, err = s.db.Exec(query, a.ID, a.UserID, a.Title, a.Content, string(wordIDs), a.Deleted, a.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import article %s: %w", a.ID, err)
		}
	}
	return nil
}

// ensureSlice keeps null out of the stored JSON so a round trip of an
// empty list stays "[]"
func ensureSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func backupNullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
