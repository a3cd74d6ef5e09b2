package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"wordtrail/internal/database"
	"wordtrail/internal/models"
)

const profileColumns = "user_id, name, email, password_hash, oauth_provider, oauth_subject, native_language, target_language, saved_contexts, created_at, updated_at"

// ProfileRepository handles profile and check-in database operations
type ProfileRepository struct {
	db *database.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *database.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts a new profile
func (r *ProfileRepository) Create(p *models.Profile) error {
	contexts, err := json.Marshal(p.SavedContexts)
	if err != nil {
		return fmt.Errorf("failed to encode saved contexts: %w", err)
	}

	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		p.UserID, p.Name, p.Email, p.PasswordHash, nullIfEmpty(p.OAuthProvider),
		nullIfEmpty(p.OAuthSubject), p.NativeLanguage, p.TargetLanguage,
		string(contexts), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// Upsert inserts or replaces a profile wholesale, keyed by user id
func (r *ProfileRepository) Upsert(p *models.Profile) error {
	contexts, err := json.Marshal(p.SavedContexts)
	if err != nil {
		return fmt.Errorf("failed to encode saved contexts: %w", err)
	}

	clause := r.db.Dialect.UpsertClause(
		[]string{"user_id"},
		[]string{"name", "email", "password_hash", "oauth_provider", "oauth_subject",
			"native_language", "target_language", "saved_contexts", "updated_at"},
	)
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		` + clause
	_, err = r.db.Exec(query,
		p.UserID, p.Name, p.Email, p.PasswordHash, nullIfEmpty(p.OAuthProvider),
		nullIfEmpty(p.OAuthSubject), p.NativeLanguage, p.TargetLanguage,
		string(contexts), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert profile %s: %w", p.UserID, err)
	}
	return nil
}

// GetByUserID retrieves a profile by user id
func (r *ProfileRepository) GetByUserID(userID string) (*models.Profile, error) {
	query := "SELECT " + profileColumns + " FROM profiles WHERE user_id = ?"
	return r.getOne(query, userID)
}

// GetByEmail retrieves a profile by email address
func (r *ProfileRepository) GetByEmail(email string) (*models.Profile, error) {
	query := "SELECT " + profileColumns + " FROM profiles WHERE email = ?"
	return r.getOne(query, email)
}

// ListAll retrieves every profile, ordered by user id
func (r *ProfileRepository) ListAll() ([]models.Profile, error) {
	query := "SELECT " + profileColumns + " FROM profiles ORDER BY user_id"
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		var p models.Profile
		var provider, subject sql.NullString
		var contexts string
		if err := rows.Scan(&p.UserID, &p.Name, &p.Email, &p.PasswordHash, &provider, &subject,
			&p.NativeLanguage, &p.TargetLanguage, &contexts, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		p.OAuthProvider = provider.String
		p.OAuthSubject = subject.String
		if err := json.Unmarshal([]byte(contexts), &p.SavedContexts); err != nil {
			return nil, fmt.Errorf("failed to decode saved contexts: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *ProfileRepository) getOne(query string, arg interface{}) (*models.Profile, error) {
	var p models.Profile
	var provider, subject sql.NullString
	var contexts string

	err := r.db.QueryRow(query, arg).Scan(
		&p.UserID, &p.Name, &p.Email, &p.PasswordHash, &provider, &subject,
		&p.NativeLanguage, &p.TargetLanguage, &contexts, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	p.OAuthProvider = provider.String
	p.OAuthSubject = subject.String
	if err := json.Unmarshal([]byte(contexts), &p.SavedContexts); err != nil {
		return nil, fmt.Errorf("failed to decode saved contexts: %w", err)
	}
	return &p, nil
}

// Update persists the mutable fields of a profile
func (r *ProfileRepository) Update(p *models.Profile) error {
	contexts, err := json.Marshal(p.SavedContexts)
	if err != nil {
		return fmt.Errorf("failed to encode saved contexts: %w", err)
	}

	query := `
		UPDATE profiles
		SET name = ?, email = ?, password_hash = ?, oauth_provider = ?,
		    oauth_subject = ?, native_language = ?, target_language = ?,
		    saved_contexts = ?, updated_at = ?
		WHERE user_id = ?
	`
	_, err = r.db.Exec(query, p.Name, p.Email, p.PasswordHash,
		nullIfEmpty(p.OAuthProvider), nullIfEmpty(p.OAuthSubject),
		p.NativeLanguage, p.TargetLanguage, string(contexts), p.UpdatedAt, p.UserID)
	if err != nil {
		return fmt.Errorf("failed to update profile %s: %w", p.UserID, err)
	}
	return nil
}

// GetCheckIn retrieves the check-in for a user on a given date
func (r *ProfileRepository) GetCheckIn(userID, date string) (*models.CheckIn, error) {
	query := "SELECT user_id, date, session_count, word_ids FROM checkins WHERE user_id = ? AND date = ?"

	var c models.CheckIn
	var wordIDs string
	err := r.db.QueryRow(query, userID, date).Scan(&c.UserID, &c.Date, &c.SessionCount, &wordIDs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get check-in: %w", err)
	}
	if err := json.Unmarshal([]byte(wordIDs), &c.WordIDs); err != nil {
		return nil, fmt.Errorf("failed to decode check-in word ids: %w", err)
	}
	return &c, nil
}

// UpsertCheckIn inserts or replaces the check-in row for (user, date)
func (r *ProfileRepository) UpsertCheckIn(c *models.CheckIn) error {
	wordIDs, err := json.Marshal(c.WordIDs)
	if err != nil {
		return fmt.Errorf("failed to encode check-in word ids: %w", err)
	}

	clause := r.db.Dialect.UpsertClause(
		[]string{"user_id", "date"},
		[]string{"session_count", "word_ids"},
	)
	query := `
		INSERT INTO checkins (user_id, date, session_count, word_ids)
		VALUES (?, ?, ?, ?)
		` + clause
	_, err = r.db.Exec(query, c.UserID, c.Date, c.SessionCount, string(wordIDs))
	if err != nil {
		return fmt.Errorf("failed to upsert check-in %s/%s: %w", c.UserID, c.Date, err)
	}
	return nil
}

// ListCheckIns retrieves a user's full check-in history, oldest first
func (r *ProfileRepository) ListCheckIns(userID string) ([]models.CheckIn, error) {
	query := "SELECT user_id, date, session_count, word_ids FROM checkins WHERE user_id = ? ORDER BY date"
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query check-ins: %w", err)
	}
	defer rows.Close()

	var checkins []models.CheckIn
	for rows.Next() {
		var c models.CheckIn
		var wordIDs string
		if err := rows.Scan(&c.UserID, &c.Date, &c.SessionCount, &wordIDs); err != nil {
			return nil, fmt.Errorf("failed to scan check-in: %w", err)
		}
		if err := json.Unmarshal([]byte(wordIDs), &c.WordIDs); err != nil {
			return nil, fmt.Errorf("failed to decode check-in word ids: %w", err)
		}
		checkins = append(checkins, c)
	}
	return checkins, rows.Err()
}

// Touch bumps a profile's updated_at, used after sub-record changes
func (r *ProfileRepository) Touch(userID string, at time.Time) error {
	_, err := r.db.Exec("UPDATE profiles SET updated_at = ? WHERE user_id = ?", at, userID)
	return err
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
