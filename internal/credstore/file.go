package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const defaultFileName = "credentials.json"

// FileStore keeps the pair in a single JSON document. Writes go to a
// temporary file that is renamed over the target, so readers never observe a
// half-written pair.
type FileStore struct {
	path string
	mu   sync.Mutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store backed by path. An empty path resolves to
// credentials.json in the user's config directory under "hostel-portal".
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		path = filepath.Join(dir, "hostel-portal", defaultFileName)
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

// Read implements Store.
func (s *FileStore) Read(_ context.Context) (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil, ErrNotFound
	}
	if err != nil {
		return "", nil, fmt.Errorf("read credentials: %w", err)
	}

	var doc map[string]string
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	token, user := doc[KeyToken], doc[KeyUser]
	if token == "" || user == "" {
		return "", nil, ErrNotFound
	}
	return token, []byte(user), nil
}

// Write implements Store.
func (s *FileStore) Write(_ context.Context, token string, user []byte) error {
	if err := validPair(token, user); err != nil {
		return err
	}
	payload, err := json.Marshal(map[string]string{
		KeyToken: token,
		KeyUser:  string(user),
	})
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".credentials-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace credentials: %w", err)
	}
	return nil
}

// Clear implements Store.
func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}
