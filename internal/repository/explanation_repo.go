package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"wordtrail/internal/database"
	"wordtrail/internal/models"
)

const explanationColumns = "user_id, word_id, definition, usage_note, memory_hook, example_sentences, created_at, updated_at"

// ExplanationRepository handles cached AI explanation database operations
type ExplanationRepository struct {
	db *database.DB
}

// NewExplanationRepository creates a new explanation repository
func NewExplanationRepository(db *database.DB) *ExplanationRepository {
	return &ExplanationRepository{db: db}
}

// Upsert inserts or replaces an explanation, keyed by (user_id, word_id)
func (r *ExplanationRepository) Upsert(e *models.WordExplanation) error {
	examples, err := json.Marshal(e.ExampleSentences)
	if err != nil {
		return fmt.Errorf("failed to encode example sentences: %w", err)
	}

	clause := r.db.Dialect.UpsertClause(
		[]string{"user_id", "word_id"},
		[]string{"definition", "usage_note", "memory_hook", "example_sentences", "updated_at"},
	)
	query := `
		INSERT INTO word_explanations (` + explanationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		` + clause
	_, err = r.db.Exec(query, e.UserID, e.WordID, e.Definition, e.Usage,
		e.MemoryHook, string(examples), e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert explanation for word %s: %w", e.WordID, err)
	}
	return nil
}

// Get retrieves the cached explanation for a word, nil when absent
func (r *ExplanationRepository) Get(userID, wordID string) (*models.WordExplanation, error) {
	query := "SELECT " + explanationColumns + " FROM word_explanations WHERE user_id = ? AND word_id = ?"

	var e models.WordExplanation
	var examples string
	err := r.db.QueryRow(query, userID, wordID).Scan(
		&e.UserID, &e.WordID, &e.Definition, &e.Usage, &e.MemoryHook,
		&examples, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get explanation: %w", err)
	}
	if err := json.Unmarshal([]byte(examples), &e.ExampleSentences); err != nil {
		return nil, fmt.Errorf("failed to decode example sentences: %w", err)
	}
	return &e, nil
}

// ListAll retrieves every cached explanation for a user
func (r *ExplanationRepository) ListAll(userID string) ([]models.WordExplanation, error) {
	query := "SELECT " + explanationColumns + " FROM word_explanations WHERE user_id = ? ORDER BY word_id"
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query explanations: %w", err)
	}
	defer rows.Close()

	var explanations []models.WordExplanation
	for rows.Next() {
		var e models.WordExplanation
		var examples string
		if err := rows.Scan(&e.UserID, &e.WordID, &e.Definition, &e.Usage,
			&e.MemoryHook, &examples, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan explanation: %w", err)
		}
		if err := json.Unmarshal([]byte(examples), &e.ExampleSentences); err != nil {
			return nil, fmt.Errorf("failed to decode example sentences: %w", err)
		}
		explanations = append(explanations, e)
	}
	return explanations, rows.Err()
}

// Count returns the number of cached explanations for a user
func (r *ExplanationRepository) Count(userID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM word_explanations WHERE user_id = ?", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count explanations: %w", err)
	}
	return count, nil
}
