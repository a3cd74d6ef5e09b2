package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"wordtrail/internal/database"
	"wordtrail/internal/models"
)

// wordColumns is the canonical column list shared by queries and upserts
const wordColumns = "id, user_id, text, phonetic, learned, sentences, retry_count, skipped, next_review_at, review_count, deleted, deleted_at, created_at, updated_at"

// WordRepository handles word database operations against a local or remote store
type WordRepository struct {
	db *database.DB
}

// NewWordRepository creates a new word repository
func NewWordRepository(db *database.DB) *WordRepository {
	return &WordRepository{db: db}
}

// Create inserts a new word
func (r *WordRepository) Create(word *models.Word) error {
	sentences, err := json.Marshal(word.Sentences)
	if err != nil {
		return fmt.Errorf("failed to encode sentences: %w", err)
	}

	query := `
		INSERT INTO words (` + wordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		word.ID, word.UserID, word.Text, word.Phonetic, word.Learned, string(sentences),
		word.RetryCount, word.Skipped, word.NextReviewAt, word.ReviewCount,
		word.Deleted, word.DeletedAt, word.CreatedAt, word.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create word: %w", err)
	}
	return nil
}

// Upsert inserts or replaces a word wholesale, keyed by id.
// This is the only write operation sync uses: last write wins per record.
func (r *WordRepository) Upsert(word *models.Word) error {
	sentences, err := json.Marshal(word.Sentences)
	if err != nil {
		return fmt.Errorf("failed to encode sentences: %w", err)
	}

	clause := r.db.Dialect.UpsertClause(
		[]string{"id"},
		[]string{"user_id", "text", "phonetic", "learned", "sentences", "retry_count",
			"skipped", "next_review_at", "review_count", "deleted", "deleted_at", "updated_at"},
	)
	query := `
		INSERT INTO words (` + wordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		` + clause
	_, err = r.db.Exec(query,
		word.ID, word.UserID, word.Text, word.Phonetic, word.Learned, string(sentences),
		word.RetryCount, word.Skipped, word.NextReviewAt, word.ReviewCount,
		word.Deleted, word.DeletedAt, word.CreatedAt, word.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert word %s: %w", word.ID, err)
	}
	return nil
}

// GetByID retrieves a word by id
func (r *WordRepository) GetByID(id string) (*models.Word, error) {
	query := "SELECT " + wordColumns + " FROM words WHERE id = ?"
	row := r.db.QueryRow(query, id)
	word, err := scanWord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word %s: %w", id, err)
	}
	return word, nil
}

// ListAll retrieves every word for a user, soft-deleted rows included.
// Sync always works on the full set; "active" is a read-time view.
func (r *WordRepository) ListAll(userID string) ([]models.Word, error) {
	query := "SELECT " + wordColumns + " FROM words WHERE user_id = ? ORDER BY created_at, id"
	return r.queryWords(query, userID)
}

// ListActive retrieves the words for a user excluding soft-deleted rows
func (r *WordRepository) ListActive(userID string) ([]models.Word, error) {
	query := "SELECT " + wordColumns + " FROM words WHERE user_id = ? AND deleted = ? ORDER BY created_at, id"
	return r.queryWords(query, userID, false)
}

// Update persists the mutable fields of a word
func (r *WordRepository) Update(word *models.Word) error {
	sentences, err := json.Marshal(word.Sentences)
	if err != nil {
		return fmt.Errorf("failed to encode sentences: %w", err)
	}

	query := `
		UPDATE words
		SET text = ?, phonetic = ?, learned = ?, sentences = ?, retry_count = ?,
		    skipped = ?, next_review_at = ?, review_count = ?, deleted = ?,
		    deleted_at = ?, updated_at = ?
		WHERE id = ?
	`
	_, err = r.db.Exec(query,
		word.Text, word.Phonetic, word.Learned, string(sentences), word.RetryCount,
		word.Skipped, word.NextReviewAt, word.ReviewCount, word.Deleted,
		word.DeletedAt, word.UpdatedAt, word.ID)
	if err != nil {
		return fmt.Errorf("failed to update word %s: %w", word.ID, err)
	}
	return nil
}

// SoftDelete marks a word deleted without removing the row
func (r *WordRepository) SoftDelete(id string, at time.Time) error {
	query := "UPDATE words SET deleted = ?, deleted_at = ?, updated_at = ? WHERE id = ?"
	_, err := r.db.Exec(query, true, at, at, id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete word %s: %w", id, err)
	}
	return nil
}

// Count returns the number of word rows for a user, deleted included
func (r *WordRepository) Count(userID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM words WHERE user_id = ?", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count words: %w", err)
	}
	return count, nil
}

func (r *WordRepository) queryWords(query string, args ...interface{}) ([]models.Word, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query words: %w", err)
	}
	defer rows.Close()

	var words []models.Word
	for rows.Next() {
		word, err := scanWord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan word: %w", err)
		}
		words = append(words, *word)
	}
	return words, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWord(row rowScanner) (*models.Word, error) {
	var w models.Word
	var sentences string
	var nextReview, deletedAt sql.NullTime

	err := row.Scan(
		&w.ID, &w.UserID, &w.Text, &w.Phonetic, &w.Learned, &sentences,
		&w.RetryCount, &w.Skipped, &nextReview, &w.ReviewCount,
		&w.Deleted, &deletedAt, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if nextReview.Valid {
		w.NextReviewAt = &nextReview.Time
	}
	if deletedAt.Valid {
		w.DeletedAt = &deletedAt.Time
	}
	if err := json.Unmarshal([]byte(sentences), &w.Sentences); err != nil {
		return nil, fmt.Errorf("failed to decode sentences: %w", err)
	}
	return &w, nil
}
