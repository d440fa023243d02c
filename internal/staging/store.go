// Package staging holds assembled documents between submission and commit.
//
// Each staged document lives in its own file named after a random UUID, so
// concurrent sessions never share state. The staging directory is separate
// from the knowledge base.
package staging

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/reinforcer/internal/apperr"
	"github.com/starford/reinforcer/internal/storage"
)

const ext = ".md"

// Store is the staging area.
type Store struct {
	fs     storage.Provider
	now    func() time.Time
	logger *slog.Logger
}

// NewStore creates a Store on top of fs.
func NewStore(fs storage.Provider, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{fs: fs, now: time.Now, logger: logger}
}

// Stage persists data verbatim under a fresh identifier.
func (s *Store) Stage(data []byte) (string, error) {
	id := uuid.NewString()
	if err := s.fs.Write(id+ext, data); err != nil {
		return "", fmt.Errorf("staging: stage: %w", err)
	}
	s.logger.Debug("staging: staged", slog.String("id", id), slog.Int("bytes", len(data)))
	return id, nil
}

// Read returns the staged document for id.
func (s *Store) Read(id string) ([]byte, error) {
	name, err := fileName(id)
	if err != nil {
		return nil, err
	}
	data, err := s.fs.Read(name)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("staging: read %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("staging: read: %w", err)
	}
	return data, nil
}

// Replace overwrites an existing staged document.
func (s *Store) Replace(id string, data []byte) error {
	name, err := fileName(id)
	if err != nil {
		return err
	}
	ok, err := s.fs.Exists(name)
	if err != nil {
		return fmt.Errorf("staging: replace: %w", err)
	}
	if !ok {
		return fmt.Errorf("staging: replace %s: %w", id, apperr.ErrNotFound)
	}
	if err := s.fs.Write(name, data); err != nil {
		return fmt.Errorf("staging: replace: %w", err)
	}
	return nil
}

// Discard removes a staged document. A missing id reports apperr.ErrNotFound
// and leaves the store untouched.
func (s *Store) Discard(id string) error {
	name, err := fileName(id)
	if err != nil {
		return err
	}
	err = s.fs.Delete(name)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("staging: discard %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("staging: discard: %w", err)
	}
	return nil
}

// IDs lists the identifiers currently staged.
func (s *Store) IDs() ([]string, error) {
	files, err := s.fs.List("", ext)
	if err != nil {
		return nil, fmt.Errorf("staging: list: %w", err)
	}
	ids := make([]string, 0, len(files))
	for _, f := range files {
		id := strings.TrimSuffix(f.Path, ext)
		if _, err := uuid.Parse(id); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Sweep removes staged documents last written more than ttl ago and returns
// how many were removed. A non-positive ttl disables sweeping.
func (s *Store) Sweep(ttl time.Duration) (int, error) {
	if ttl <= 0 {
		return 0, nil
	}
	files, err := s.fs.List("", ext)
	if err != nil {
		return 0, fmt.Errorf("staging: sweep: %w", err)
	}
	cutoff := s.now().Add(-ttl)
	removed := 0
	for _, f := range files {
		if strings.Contains(f.Path, "/") || !f.UpdatedAt.Before(cutoff) {
			continue
		}
		if err := s.fs.Delete(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("staging: sweep delete failed", slog.String("path", f.Path), slog.String("error", err.Error()))
			continue
		}
		removed++
	}
	if removed > 0 {
		s.logger.Info("staging: swept abandoned documents", slog.Int("count", removed))
	}
	return removed, nil
}

// fileName maps an id to its file. Anything that is not a UUID cannot name a
// staged document.
func fileName(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("staging: id %q: %w", id, apperr.ErrNotFound)
	}
	return u.String() + ext, nil
}
