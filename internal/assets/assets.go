// Package assets manages the image files attached to property listings.
// Files live in a single upload directory and are addressed by a reference
// of the form /uploads/<name>, which is also the public retrieval path.
package assets

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RefPrefix is the public path prefix assets are served under.
const RefPrefix = "/uploads/"

// Manager stores, replaces, and deletes property images
type Manager struct {
	dir string
	log *zap.SugaredLogger
}

// NewManager creates the upload directory if needed and returns a manager
func NewManager(dir string, log *zap.SugaredLogger) (*Manager, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Manager{dir: dir, log: log}, nil
}

// Dir returns the directory assets are stored in
func (m *Manager) Dir() string {
	return m.dir
}

// Store persists the bytes under a collision-resistant name derived from a
// random component plus the original extension. A write failure is fatal to
// the enclosing operation.
func (m *Manager) Store(src io.Reader, originalName string) (string, error) {
	name := uuid.New().String() + filepath.Ext(originalName)

	dst, err := os.Create(filepath.Join(m.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create asset file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write asset file: %w", err)
	}

	return RefPrefix + name, nil
}

// Replace stores the new asset, then best-effort deletes the old one. A
// crash between the two steps can leak the old file; that is leaked storage,
// not a correctness problem for the property record.
func (m *Manager) Replace(oldRef string, src io.Reader, originalName string) (string, error) {
	ref, err := m.Store(src, originalName)
	if err != nil {
		return "", err
	}
	if oldRef != "" {
		m.Delete(oldRef)
	}
	return ref, nil
}

// Delete removes the file behind a reference. Deletion is idempotent: a
// missing file is not an error, and any failure is swallowed.
func (m *Manager) Delete(ref string) {
	if ref == "" {
		return
	}
	// Only the basename is trusted; refs never address outside the dir
	name := path.Base(ref)
	if err := os.Remove(filepath.Join(m.dir, name)); err != nil && !os.IsNotExist(err) {
		m.log.Debugw("asset delete failed", "ref", ref, "error", err)
	}
}
