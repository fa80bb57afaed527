// Package outstore keeps generated artifacts on disk until they are
// downloaded once or expire.
package outstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store writes artifacts into a scratch directory under unique names and
// evicts the ones nobody downloads. The directory is an explicit
// configuration value, not process-global state.
type Store struct {
	dir string
	ttl time.Duration
	log *slog.Logger

	mu      sync.Mutex
	created map[string]time.Time
}

func New(dir string, ttl time.Duration, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Store{
		dir:     dir,
		ttl:     ttl,
		log:     log,
		created: make(map[string]time.Time),
	}, nil
}

// Put writes data under "<prefix>_<base>_<id><ext>" and returns the name.
func (s *Store) Put(prefix, base, ext string, data []byte) (string, error) {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	name := fmt.Sprintf("%s_%s_%s%s", prefix, base, id, ext)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact %s: %w", name, err)
	}
	s.mu.Lock()
	s.created[name] = time.Now()
	s.mu.Unlock()
	return name, nil
}

// Resolve maps an artifact name back to its path, rejecting anything that
// is not a plain name of a stored file.
func (s *Store) Resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("artifact %s: %w", name, err)
	}
	return path, nil
}

// Remove deletes an artifact, typically right after it has been served.
func (s *Store) Remove(name string) {
	s.mu.Lock()
	delete(s.created, name)
	s.mu.Unlock()
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		s.log.Warn("artifact cleanup failed", "name", name, "error", err)
	}
}

// Sweep evicts artifacts older than the TTL.
func (s *Store) Sweep() {
	now := time.Now()
	s.mu.Lock()
	var stale []string
	for name, at := range s.created {
		if now.Sub(at) > s.ttl {
			stale = append(stale, name)
			delete(s.created, name)
		}
	}
	s.mu.Unlock()

	for _, name := range stale {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			s.log.Warn("stale artifact cleanup failed", "name", name, "error", err)
		} else {
			s.log.Info("evicted stale artifact", "name", name)
		}
	}
}

// Start launches periodic sweeping until ctx is cancelled.
func (s *Store) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}
