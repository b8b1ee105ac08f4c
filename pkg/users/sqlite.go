package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aretw0/wayfinder/pkg/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id       INTEGER PRIMARY KEY,
    name     TEXT NOT NULL,
    modality TEXT NOT NULL,
    lang     TEXT NOT NULL DEFAULT 'en',
    level    INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// SQLiteStore implements ports.UserStore on SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and runs migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) List(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, modality, lang, level FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *SQLiteStore) Find(ctx context.Context, id int) (domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, modality, lang, level FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, fmt.Errorf("%w: %d", domain.ErrUserNotFound, id)
	}
	return u, err
}

func (s *SQLiteStore) Append(ctx context.Context, u domain.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, modality, lang, level) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Name, string(u.Modality), u.Lang, u.Level)
	if err != nil {
		return fmt.Errorf("insert user %d: %w", u.ID, err)
	}
	return nil
}

func (s *SQLiteStore) NextID(ctx context.Context) (int, error) {
	var next int
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id) + 1, 0) FROM users`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next user id: %w", err)
	}
	return next, nil
}

func scanUser(scanner interface{ Scan(...any) error }) (domain.User, error) {
	var u domain.User
	var modality string
	if err := scanner.Scan(&u.ID, &u.Name, &modality, &u.Lang, &u.Level); err != nil {
		return domain.User{}, err
	}
	m, err := domain.ParseModality(modality)
	if err != nil {
		return domain.User{}, fmt.Errorf("user %d: %w", u.ID, err)
	}
	u.Modality = m
	return u, nil
}
