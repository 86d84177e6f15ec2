package artifact

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"meeting-secretary/internal/logger"
)

// Stage suffixes distinguish artifacts of the same source within the
// cache directory.
const (
	StageRaw     = ""
	StageCleaned = "_cleaned"
)

// Store manages intermediate media artifacts in a single cache
// directory. Keys are content-derived, so repeated delivery of the same
// source reuses the same slot and concurrent runs for distinct sources
// never collide.
type Store struct {
	dir    string
	logger logger.Logger
}

func NewStore(dir string, log logger.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache directory %s: %w", dir, err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve cache directory: %w", err)
	}
	return &Store{dir: abs, logger: log}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Key derives the storage key for a source identifier.
func (s *Store) Key(id string) string {
	sum := md5.Sum([]byte(id))
	return hex.EncodeToString(sum[:])
}

// Path returns the artifact location for a key, stage suffix and
// extension (without dot).
func (s *Store) Path(key, stage, ext string) string {
	return filepath.Join(s.dir, key+stage+"."+ext)
}

// Put streams r into the slot for (key, stage, ext), replacing any
// previous content, and returns the artifact path.
func (s *Store) Put(key, stage, ext string, r io.Reader) (string, error) {
	path := s.Path(key, stage, ext)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create artifact %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write artifact %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close artifact %s: %w", path, err)
	}

	return path, nil
}
