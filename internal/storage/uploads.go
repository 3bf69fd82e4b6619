package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UploadStore writes uploaded files to a local directory. Stored names are
// derived from the client filename but always carry a uuid so concurrent
// uploads of the same file never collide.
type UploadStore struct {
	dir    string
	logger *zap.Logger
}

// NewUploadStore ensures the upload directory exists.
func NewUploadStore(dir string, logger *zap.Logger) (*UploadStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &UploadStore{dir: dir, logger: logger}, nil
}

// Save streams the upload to disk under a unique name and returns that name.
func (s *UploadStore) Save(clientName string, r io.Reader) (string, error) {
	name := uniqueName(clientName)

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		return "", fmt.Errorf("write upload: %w", err)
	}
	return name, nil
}

// Remove deletes a stored file. Failure is logged, never surfaced: losing
// an orphaned thumbnail must not fail the request that replaced it.
func (s *UploadStore) Remove(name string) {
	if name == "" {
		return
	}
	if err := os.Remove(filepath.Join(s.dir, filepath.Base(name))); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove upload", zap.String("file", name), zap.Error(err))
	}
}

// Path returns the on-disk location for a stored name.
func (s *UploadStore) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

// uniqueName keeps the client's extension and stem but inserts a uuid.
// filepath.Base strips any path components a hostile client sends.
func uniqueName(clientName string) string {
	base := filepath.Base(strings.TrimSpace(clientName))
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" || stem == "." {
		stem = "upload"
	}
	return stem + "_" + uuid.NewString() + ext
}
