package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"wordtrail/internal/database"
	"wordtrail/internal/models"
)

const articleColumns = "id, user_id, title, content, word_ids, deleted, created_at"

// ArticleRepository handles reading article database operations
type ArticleRepository struct {
	db *database.DB
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(db *database.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// Create inserts a new article
func (r *ArticleRepository) Create(a *models.Article) error {
	wordIDs, err := json.Marshal(a.WordIDs)
	if err != nil {
		return fmt.Errorf("failed to encode article word ids: %w", err)
	}

	query := `
		INSERT INTO articles (` + articleColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query, a.ID, a.UserID, a.Title, a.Content, string(wordIDs), a.Deleted, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create article: %w", err)
	}
	return nil
}

// Upsert inserts or replaces an article wholesale, keyed by id
func (r *ArticleRepository) Upsert(a *models.Article) error {
	wordIDs, err := json.Marshal(a.WordIDs)
	if err != nil {
		return fmt.Errorf("failed to encode article word ids: %w", err)
	}

	clause := r.db.Dialect.UpsertClause(
		[]string{"id"},
		[]string{"user_id", "title", "content", "word_ids", "deleted"},
	)
	query := `
		INSERT INTO articles (` + articleColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		` + clause
	_, err = r.db.Exec(query, a.ID, a.UserID, a.Title, a.Content, string(wordIDs), a.Deleted, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert article %s: %w", a.ID, err)
	}
	return nil
}

// GetByID retrieves an article by id, nil when absent
func (r *ArticleRepository) GetByID(id string) (*models.Article, error) {
	query := "SELECT " + articleColumns + " FROM articles WHERE id = ?"

	var a models.Article
	var wordIDs string
	err := r.db.QueryRow(query, id).Scan(&a.ID, &a.UserID, &a.Title, &a.Content, &wordIDs, &a.Deleted, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(wordIDs), &a.WordIDs); err != nil {
		return nil, fmt.Errorf("failed to decode article word ids: %w", err)
	}
	return &a, nil
}

// ListAll retrieves every article for a user, soft-deleted included
func (r *ArticleRepository) ListAll(userID string) ([]models.Article, error) {
	query := "SELECT " + articleColumns + " FROM articles WHERE user_id = ? ORDER BY created_at, id"
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var articles []models.Article
	for rows.Next() {
		var a models.Article
		var wordIDs string
		if err := rows.Scan(&a.ID, &a.UserID, &a.Title, &a.Content, &wordIDs, &a.Deleted, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		if err := json.Unmarshal([]byte(wordIDs), &a.WordIDs); err != nil {
			return nil, fmt.Errorf("failed to decode article word ids: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// ListActive retrieves a user's articles excluding soft-deleted rows
func (r *ArticleRepository) ListActive(userID string) ([]models.Article, error) {
	all, err := r.ListAll(userID)
	if err != nil {
		return nil, err
	}
	var active []models.Article
	for _, a := range all {
		if !a.Deleted {
			active = append(active, a)
		}
	}
	return active, nil
}

// SoftDelete marks an article deleted without removing the row
func (r *ArticleRepository) SoftDelete(id string) error {
	_, err := r.db.Exec("UPDATE articles SET deleted = ? WHERE id = ?", true, id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete article %s: %w", id, err)
	}
	return nil
}

// Count returns the number of article rows for a user, deleted included
func (r *ArticleRepository) Count(userID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM articles WHERE user_id = ?", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}
