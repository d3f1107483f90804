package filesystem

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vertextoedge/httpfetch/internal/port"
)

// Suffix appended to the destination path while a transfer is running.
const partialSuffix = ".partial"

// Manager handles local filesystem operations for downloads. Each
// attempt writes to a partial file next to the destination and promotes
// it only after verification.
type Manager struct{}

// Ensure Manager implements port.FileSystem
var _ port.FileSystem = (*Manager)(nil)

// NewManager creates a new filesystem manager
func NewManager() *Manager {
	return &Manager{}
}

// PartialPath returns the scratch path used while downloading destPath.
func PartialPath(destPath string) string {
	return destPath + partialSuffix
}

// CreateTemp creates or truncates the partial file for destPath,
// creating parent directories as needed. Truncation guarantees a prior
// failed attempt leaves nothing behind in the new attempt's output.
func (m *Manager) CreateTemp(destPath string) (port.TempFile, error) {
	if dir := filepath.Dir(destPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create parent dir: %w", err)
		}
	}

	f, err := os.Create(PartialPath(destPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create partial file: %w", err)
	}
	return f, nil
}

// Promote moves a finished partial file onto the destination path.
func (m *Manager) Promote(tempPath, destPath string) error {
	if err := os.Rename(tempPath, destPath); err != nil {
		return fmt.Errorf("failed to promote partial file: %w", err)
	}
	return nil
}

// Delete removes a file, ignoring files that do not exist.
func (m *Manager) Delete(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Exists checks if a file exists at path
func (m *Manager) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Size returns the size of a file in bytes
func (m *Manager) Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
