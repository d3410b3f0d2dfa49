// Package audit stores a local log of panel actions (logins, record
// changes, imports) in SQLite.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/foxzi/leadboard/internal/metrics"
)

// Actions
const (
	ActionLogin    = "login"
	ActionSignup   = "signup"
	ActionLogout   = "logout"
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionDelete   = "delete"
	ActionImport   = "import"
	ActionExport   = "export"
	ActionSync     = "sync"
	ActionCheck    = "check"
	ActionCampaign = "campaign"
)

const migration = `
CREATE TABLE IF NOT EXISTS audit_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_email TEXT,
    action TEXT NOT NULL,
    entity_type TEXT,
    entity_id TEXT,
    details JSON,
    ip_address TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_audit_log_user ON audit_log(user_email);
CREATE INDEX IF NOT EXISTS idx_audit_log_created ON audit_log(created_at);
`

// Entry is one audit log row
type Entry struct {
	ID         int64
	UserEmail  string
	Action     string
	EntityType string
	EntityID   string
	Details    map[string]any
	IPAddress  string
	CreatedAt  time.Time
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	UserEmail  string
	Action     string
	EntityType string
	Limit      int
	Offset     int
}

// Store is the SQLite-backed audit log
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// Open opens (creating if needed) the audit database at path and applies the schema
func Open(path string, logger *slog.Logger) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(migration); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit migration failed: %w", err)
	}

	return &Store{db: db, logger: logger, now: time.Now}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Log inserts an entry
func (s *Store) Log(ctx context.Context, e *Entry) error {
	e.CreatedAt = s.now().UTC()

	var details any
	if len(e.Details) > 0 {
		b, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("failed to encode audit details: %w", err)
		}
		details = string(b)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (user_email, action, entity_type, entity_id, details, ip_address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.UserEmail, e.Action, e.EntityType, e.EntityID, details, e.IPAddress, e.CreatedAt,
	)
	if err != nil {
		return err
	}
	e.ID, _ = res.LastInsertId()
	return nil
}

// Record logs an entry and only reports failures through the logger and metrics.
// Audit problems never fail the user's action.
func (s *Store) Record(ctx context.Context, e *Entry) {
	if s == nil {
		return
	}
	if err := s.Log(ctx, e); err != nil {
		metrics.IncAuditWriteFailure()
		s.logger.Warn("failed to write audit entry",
			"action", e.Action,
			"entity_type", e.EntityType,
			"error", err,
		)
	}
}

// List returns entries matching filter, newest first, and the total match count
func (s *Store) List(ctx context.Context, filter Filter) ([]Entry, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if filter.UserEmail != "" {
		where += " AND user_email = ?"
		args = append(args, filter.UserEmail)
	}
	if filter.Action != "" {
		where += " AND action = ?"
		args = append(args, filter.Action)
	}
	if filter.EntityType != "" {
		where += " AND entity_type = ?"
		args = append(args, filter.EntityType)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_log"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, COALESCE(user_email, ''), action, COALESCE(entity_type, ''),
			COALESCE(entity_id, ''), COALESCE(details, ''), COALESCE(ip_address, ''), created_at
		FROM audit_log` + where + " ORDER BY created_at DESC, id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var details string
		if err := rows.Scan(&e.ID, &e.UserEmail, &e.Action, &e.EntityType, &e.EntityID, &details, &e.IPAddress, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		if details != "" {
			if err := json.Unmarshal([]byte(details), &e.Details); err != nil {
				s.logger.Debug("unreadable audit details", "id", e.ID, "error", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

// Cleanup deletes entries older than before and returns how many were removed
func (s *Store) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM audit_log WHERE created_at < ?", before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountBefore returns how many entries are older than before
func (s *Store) CountBefore(ctx context.Context, before time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_log WHERE created_at < ?", before.UTC()).Scan(&n)
	return n, err
}

// DetailString renders details as compact JSON for display
func (e Entry) DetailString() string {
	if len(e.Details) == 0 {
		return ""
	}
	b, _ := json.Marshal(e.Details)
	return string(b)
}
