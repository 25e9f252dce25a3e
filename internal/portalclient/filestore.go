package portalclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"planportal/internal/session"
)

// FileStore persists the session pair as JSON, for command-line use.
type FileStore struct {
	Path string

	mu sync.Mutex
}

var _ session.Store = (*FileStore)(nil)

func NewFileStore(path string) *FileStore { return &FileStore{Path: path} }

func (f *FileStore) Current() (session.Pair, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return session.Pair{}, false
	}
	var p session.Pair
	if json.Unmarshal(b, &p) != nil {
		return session.Pair{}, false
	}
	return p, !p.Empty()
}

// Set writes p with owner-only permissions; an empty pair removes the file.
func (f *FileStore) Set(_ context.Context, p session.Pair) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.Empty() {
		if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, b, 0o600)
}
