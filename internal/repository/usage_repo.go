package repository

import (
	"database/sql"
	"fmt"
	"time"

	"wordtrail/internal/database"
	"wordtrail/internal/models"
)

// UsageRepository handles token usage accumulator database operations
type UsageRepository struct {
	db *database.DB
}

// NewUsageRepository creates a new usage repository
func NewUsageRepository(db *database.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// Add accumulates one generation call's token counts for a user.
// Counters are monotonic: the update only ever adds.
func (r *UsageRepository) Add(userID string, inputTokens, outputTokens int64, at time.Time) error {
	clause := r.db.Dialect.UpsertClause([]string{"user_id"}, []string{"updated_at"})

	// The upsert clause alone would overwrite the counters, so the
	// accumulation is written explicitly on top of it.
	query := `
		INSERT INTO token_usage (user_id, input_tokens, output_tokens, updated_at)
		VALUES (?, ?, ?, ?)
		` + clause + `,
		input_tokens = input_tokens + ?,
		output_tokens = output_tokens + ?
	`
	_, err := r.db.Exec(query, userID, inputTokens, outputTokens, at, inputTokens, outputTokens)
	if err != nil {
		return fmt.Errorf("failed to accumulate token usage for %s: %w", userID, err)
	}
	return nil
}

// Get retrieves the usage accumulator for a user; a zero accumulator when absent
func (r *UsageRepository) Get(userID string) (*models.TokenUsage, error) {
	query := "SELECT user_id, input_tokens, output_tokens, updated_at FROM token_usage WHERE user_id = ?"

	var u models.TokenUsage
	err := r.db.QueryRow(query, userID).Scan(&u.UserID, &u.InputTokens, &u.OutputTokens, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return &models.TokenUsage{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token usage: %w", err)
	}
	return &u, nil
}

// Upsert replaces the accumulator wholesale, used only by sync
func (r *UsageRepository) Upsert(u *models.TokenUsage) error {
	clause := r.db.Dialect.UpsertClause(
		[]string{"user_id"},
		[]string{"input_tokens", "output_tokens", "updated_at"},
	)
	query := `
		INSERT INTO token_usage (user_id, input_tokens, output_tokens, updated_at)
		VALUES (?, ?, ?, ?)
		` + clause
	_, err := r.db.Exec(query, u.UserID, u.InputTokens, u.OutputTokens, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert token usage for %s: %w", u.UserID, err)
	}
	return nil
}
