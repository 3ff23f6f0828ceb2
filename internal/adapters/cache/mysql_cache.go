package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/autou/mail-triage/internal/core"
	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// MySQLCache is a MySQL implementation of the CacheRepository interface
type MySQLCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMySQLCache creates a new MySQL cache
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS triage_cache (
			content_hash VARCHAR(64) PRIMARY KEY,
			category VARCHAR(32),
			confidence DOUBLE,
			suggested_response TEXT,
			model_used VARCHAR(32),
			classified_at TIMESTAMP,
			expires_at TIMESTAMP,
			INDEX idx_expires_at (expires_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	cache := &MySQLCache{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background cleanup
	go cache.startCleanupTask()

	return cache, nil
}

// Get retrieves a cached result for a content hash
func (c *MySQLCache) Get(key string) (*core.ClassificationResult, bool) {
	var category, response, modelUsed string
	var confidence float64
	var classifiedAt string

	err := c.db.QueryRow(`
		SELECT category, confidence, suggested_response, model_used, classified_at
		FROM triage_cache
		WHERE content_hash = ? AND expires_at > NOW()
	`, key).Scan(&category, &confidence, &response, &modelUsed, &classifiedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false
		}
		c.logger.Error("Failed to query cache", zap.Error(err), zap.String("key", key))
		return nil, false
	}

	timestamp, err := time.Parse("2006-01-02 15:04:05", classifiedAt)
	if err != nil {
		c.logger.Error("Failed to parse classified_at timestamp", zap.Error(err))
		return nil, false
	}

	result := &core.ClassificationResult{
		Category:          core.Category(category),
		Confidence:        confidence,
		SuggestedResponse: response,
		ModelUsed:         modelUsed,
		Timestamp:         timestamp,
	}

	return result, true
}

// Set stores a result under a content hash
func (c *MySQLCache) Set(key string, result *core.ClassificationResult, ttl time.Duration) {
	expiresAt := time.Now().Add(ttl)

	_, err := c.db.Exec(`
		REPLACE INTO triage_cache
			(content_hash, category, confidence, suggested_response, model_used, classified_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, key, string(result.Category), result.Confidence, result.SuggestedResponse,
		result.ModelUsed, result.Timestamp.Format("2006-01-02 15:04:05"), expiresAt.Format("2006-01-02 15:04:05"))

	if err != nil {
		c.logger.Error("Failed to insert cache entry", zap.Error(err), zap.String("key", key))
	}
}

// Delete removes a cache entry
func (c *MySQLCache) Delete(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, `
		DELETE FROM triage_cache
		WHERE content_hash = ?
	`, key)

	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}

	return nil
}

// Cleanup removes expired entries
func (c *MySQLCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM triage_cache
		WHERE expires_at <= NOW()
	`)

	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (c *MySQLCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the database connection
func (c *MySQLCache) Stop() {
	close(c.stopCh)
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close MySQL database", zap.Error(err))
	}
}
