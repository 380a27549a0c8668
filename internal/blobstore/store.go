package blobstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"instalabel/internal/util"
)

// Store is a disk-backed object store for committed order screenshots.
// Object paths are slash-separated and namespaced by user.
type Store struct {
	root string
}

func New(root string) *Store {
	return &Store{root: root}
}

// ObjectPath builds a collision-resistant storage path for one screenshot:
// the owning user, the current timestamp and the sanitized original name.
func ObjectPath(userID, filename string) string {
	return fmt.Sprintf("%s/%d_%s", util.SanitizeFilename(userID), time.Now().UnixMilli(), util.SanitizeFilename(filename))
}

func (s *Store) Upload(path string, blob []byte) error {
	local, err := s.localPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		return err
	}
	return os.WriteFile(local, blob, 0o644)
}

func (s *Store) Read(path string) ([]byte, error) {
	local, err := s.localPath(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(local)
}

func (s *Store) localPath(path string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") {
		return "", fmt.Errorf("invalid object path: %q", path)
	}
	return filepath.Join(s.root, cleaned), nil
}
