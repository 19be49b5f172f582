package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"reposter/internal/models"
	"reposter/internal/security"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS forward_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source_channel TEXT NOT NULL,
	dest_channel TEXT NOT NULL,
	message_id INTEGER NOT NULL,
	album_size INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	forwarded_at TIMESTAMP NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_forward_history_forwarded_at
	ON forward_history(forwarded_at);
`

// Database is the forward-history store: one row per publish attempt.
type Database struct {
	db        *sql.DB
	encryptor *encryptor
}

func New(dbPath string) (*Database, error) {
	if err := security.ValidateFilePath(dbPath); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	encryptor, err := NewEncryptor()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize encryptor: %w", err)
	}

	return &Database{db: db, encryptor: encryptor}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// RecordForward inserts one publish attempt. Channel identifiers are
// encrypted at rest when encryption is enabled.
func (d *Database) RecordForward(ctx context.Context, record *models.ForwardRecord) error {
	source, err := d.encryptor.EncryptIfEnabled(record.SourceChannel)
	if err != nil {
		return fmt.Errorf("failed to encrypt source channel: %w", err)
	}
	dest, err := d.encryptor.EncryptIfEnabled(record.DestChannel)
	if err != nil {
		return fmt.Errorf("failed to encrypt destination channel: %w", err)
	}

	return retryableDBOperation(ctx, func() error {
		_, err := d.db.ExecContext(ctx, insertForwardRecordQuery,
			source,
			dest,
			record.MessageID,
			record.AlbumSize,
			record.Status,
			record.ForwardedAt,
		)
		return err
	}, "record forward")
}

// GetRecentForwards returns the most recent publish attempts, newest first.
func (d *Database) GetRecentForwards(ctx context.Context, limit int) ([]models.ForwardRecord, error) {
	rows, err := d.db.QueryContext(ctx, selectRecentForwardsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query forward history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []models.ForwardRecord
	for rows.Next() {
		var rec models.ForwardRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.SourceChannel,
			&rec.DestChannel,
			&rec.MessageID,
			&rec.AlbumSize,
			&rec.Status,
			&rec.ForwardedAt,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan forward record: %w", err)
		}

		if rec.SourceChannel, err = d.encryptor.DecryptIfEnabled(rec.SourceChannel); err != nil {
			return nil, fmt.Errorf("failed to decrypt source channel: %w", err)
		}
		if rec.DestChannel, err = d.encryptor.DecryptIfEnabled(rec.DestChannel); err != nil {
			return nil, fmt.Errorf("failed to decrypt destination channel: %w", err)
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

// CleanupOldRecords deletes history rows older than the retention window.
func (d *Database) CleanupOldRecords(ctx context.Context, retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	return retryableDBOperation(ctx, func() error {
		_, err := d.db.ExecContext(ctx, deleteOldForwardsQuery, cutoff)
		return err
	}, "cleanup old records")
}
