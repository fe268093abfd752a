package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tazhate/calendarskill/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

// Setting keys for CalDAV parameters provisioned at runtime
const (
	SettingCalDAVURL      = "caldav.url"
	SettingCalDAVUsername = "caldav.username"
	SettingCalDAVPassword = "caldav.password"
)

type Storage struct {
	db *sql.DB
}

func New(dbPath string) (*Storage, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS reminders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			message TEXT NOT NULL,
			trigger_at DATETIME NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reminders_trigger_at ON reminders(trigger_at)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS oauth_tokens (
			account TEXT PRIMARY KEY,
			token TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			// Ignore "duplicate column" errors for ALTER TABLE
			if !strings.Contains(err.Error(), "duplicate column") {
				return fmt.Errorf("exec migration: %w", err)
			}
		}
	}
	return nil
}

// === Reminders ===

// CreateReminder persists a local reminder. Trigger times are stored in UTC
// at second precision so they compare as text.
func (s *Storage) CreateReminder(r *domain.Reminder) error {
	res, err := s.db.Exec(
		`INSERT INTO reminders (message, trigger_at) VALUES (?, ?)`,
		r.Message, r.TriggerAt.UTC().Truncate(time.Second),
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	r.ID = id
	r.Source = domain.ReminderLocal
	r.CreatedAt = time.Now()
	return nil
}

func (s *Storage) ListReminders() ([]*domain.Reminder, error) {
	return s.queryReminders(`SELECT id, message, trigger_at, created_at FROM reminders ORDER BY trigger_at ASC`)
}

func (s *Storage) ListDueReminders(now time.Time) ([]*domain.Reminder, error) {
	return s.queryReminders(
		`SELECT id, message, trigger_at, created_at FROM reminders WHERE trigger_at <= ? ORDER BY trigger_at ASC`,
		now.UTC().Truncate(time.Second),
	)
}

func (s *Storage) queryReminders(query string, args ...any) ([]*domain.Reminder, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*domain.Reminder
	for rows.Next() {
		r := &domain.Reminder{Source: domain.ReminderLocal}
		if err := rows.Scan(&r.ID, &r.Message, &r.TriggerAt, &r.CreatedAt); err != nil {
			return nil, err
		}
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}

func (s *Storage) DeleteReminder(id int64) error {
	_, err := s.db.Exec(`DELETE FROM reminders WHERE id = ?`, id)
	return err
}

// === Settings ===

// GetSetting returns "" for a key that was never set
func (s *Storage) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (s *Storage) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// === OAuth tokens ===

// Token returns the serialized token of account, nil when none is stored
func (s *Storage) Token(account string) ([]byte, error) {
	var token string
	err := s.db.QueryRow(`SELECT token FROM oauth_tokens WHERE account = ?`, account).Scan(&token)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(token), nil
}

func (s *Storage) SaveToken(account string, data []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO oauth_tokens (account, token, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(account) DO UPDATE SET token = excluded.token, updated_at = excluded.updated_at`,
		account, string(data), time.Now().UTC(),
	)
	return err
}
