// Package cache implements a bounded blob cache for generated audio,
// backed by the local store. Eviction is FIFO by creation time: when an
// insert would exceed capacity, the oldest-created entries are removed
// until the incoming entry fits. A last-accessed timestamp is maintained
// on reads but is deliberately not used by eviction.
package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"wordtrail/internal/database"
)

// ErrEntryTooLarge is returned when a single entry exceeds the cache capacity
var ErrEntryTooLarge = errors.New("cache: entry larger than capacity")

// AudioCache is a bounded blob cache over the audio_cache table
type AudioCache struct {
	db       *database.DB
	capacity int64
}

// NewAudioCache creates an audio cache with the given byte capacity
func NewAudioCache(db *database.DB, capacity int64) *AudioCache {
	return &AudioCache{db: db, capacity: capacity}
}

// Capacity returns the configured byte capacity
func (c *AudioCache) Capacity() int64 {
	return c.capacity
}

// Size returns the total bytes currently stored
func (c *AudioCache) Size() (int64, error) {
	var total sql.NullInt64
	err := c.db.QueryRow("SELECT SUM(size) FROM audio_cache").Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to read cache size: %w", err)
	}
	return total.Int64, nil
}

// Get retrieves a cached blob and bumps its last-accessed timestamp.
// Returns nil with no error on a cache miss.
func (c *AudioCache) Get(key string) ([]byte, error) {
	var data []byte
	err := c.db.QueryRow("SELECT data FROM audio_cache WHERE key = ?", key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry %s: %w", key, err)
	}

	_, err = c.db.Exec("UPDATE audio_cache SET last_accessed_at = ? WHERE key = ?", time.Now(), key)
	if err != nil {
		return nil, fmt.Errorf("failed to touch cache entry %s: %w", key, err)
	}
	return data, nil
}

// Put stores a blob, evicting oldest-created entries first until it fits.
// Re-putting an existing key replaces the entry and keeps its slot.
func (c *AudioCache) Put(key string, data []byte) error {
	size := int64(len(data))
	if size > c.capacity {
		return ErrEntryTooLarge
	}

	// Replacing an existing key frees its bytes before the fit check
	if _, err := c.db.Exec("DELETE FROM audio_cache WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to clear cache entry %s: %w", key, err)
	}

	if err := c.evictUntilFits(size); err != nil {
		return err
	}

	now := time.Now()
	query := "INSERT INTO audio_cache (key, data, size, created_at, last_accessed_at) VALUES (?, ?, ?, ?, ?)"
	if _, err := c.db.Exec(query, key, data, size, now, now); err != nil {
		return fmt.Errorf("failed to insert cache entry %s: %w", key, err)
	}
	return nil
}

// Delete removes a single entry; absent keys are not an error
func (c *AudioCache) Delete(key string) error {
	if _, err := c.db.Exec("DELETE FROM audio_cache WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete cache entry %s: %w", key, err)
	}
	return nil
}

// Keys returns all cached keys ordered by creation time, oldest first
func (c *AudioCache) Keys() ([]string, error) {
	rows, err := c.db.Query("SELECT key FROM audio_cache ORDER BY created_at, key")
	if err != nil {
		return nil, fmt.Errorf("failed to list cache keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan cache key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// evictUntilFits removes oldest-created entries until incoming bytes fit
func (c *AudioCache) evictUntilFits(incoming int64) error {
	total, err := c.Size()
	if err != nil {
		return err
	}

	for total+incoming > c.capacity {
		var key string
		var size int64
		err := c.db.QueryRow(
			"SELECT key, size FROM audio_cache ORDER BY created_at, key LIMIT 1").Scan(&key, &size)
		if err == sql.ErrNoRows {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to pick eviction candidate: %w", err)
		}

		if _, err := c.db.Exec("DELETE FROM audio_cache WHERE key = ?", key); err != nil {
			return fmt.Errorf("failed to evict cache entry %s: %w", key, err)
		}
		total -= size
	}
	return nil
}
