package users

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// FileStore implements ports.UserStore on a flat text file.
// The whole file is rewritten atomically on Append.
type FileStore struct {
	Path string

	mu sync.Mutex
}

// NewFileStore creates a store backed by path. The file is created on first Append.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// List reads every user from the file. A missing file is an empty store.
func (s *FileStore) List(ctx context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Find returns the user with the given ID.
func (s *FileStore) Find(ctx context.Context, id int) (domain.User, error) {
	users, err := s.List(ctx)
	if err != nil {
		return domain.User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("%w: %d", domain.ErrUserNotFound, id)
}

// NextID returns one past the highest stored ID.
func (s *FileStore) NextID(ctx context.Context) (int, error) {
	users, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	return nextID(users), nil
}

// Append adds the user and rewrites the file.
func (s *FileStore) Append(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.read()
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.ID == user.ID {
			return fmt.Errorf("user %d already registered", user.ID)
		}
	}
	return s.write(append(users, user))
}

func (s *FileStore) read() ([]domain.User, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open users file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// write replaces the file through a synced temporary file in the same directory.
func (s *FileStore) write(users []domain.User) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure users directory: %w", err)
	}

	var buf bytes.Buffer
	for _, u := range users {
		buf.WriteString(Format(u))
		buf.WriteByte('\n')
	}

	tmp, err := os.CreateTemp(dir, "tmp-users-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write users: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to fsync users: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		return fmt.Errorf("failed to replace users file: %w", err)
	}
	return nil
}

// Parse reads users in the flat list format. Blank lines are skipped.
func Parse(r io.Reader) ([]domain.User, error) {
	var users []domain.User
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		u, err := ParseLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		users = append(users, u)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	return users, nil
}

// ParseLine parses "id, name, modality, lang[, level]".
func ParseLine(text string) (domain.User, error) {
	fields := strings.Split(text, ",")
	if len(fields) != 4 && len(fields) != 5 {
		return domain.User{}, fmt.Errorf("expected 4 or 5 fields, got %d", len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return domain.User{}, fmt.Errorf("invalid id %q", fields[0])
	}
	modality, err := domain.ParseModality(fields[2])
	if err != nil {
		return domain.User{}, err
	}
	u := domain.User{ID: id, Name: fields[1], Modality: modality, Lang: fields[3]}
	if len(fields) == 5 {
		if u.Level, err = strconv.Atoi(fields[4]); err != nil {
			return domain.User{}, fmt.Errorf("invalid level %q", fields[4])
		}
	}
	return u, nil
}

// Format renders a user as one line. The level column is written only when set.
func Format(u domain.User) string {
	if u.Level == 0 {
		return u.String()
	}
	return fmt.Sprintf("%s, %d", u.String(), u.Level)
}

func nextID(users []domain.User) int {
	next := 0
	for _, u := range users {
		if u.ID >= next {
			next = u.ID + 1
		}
	}
	return next
}
