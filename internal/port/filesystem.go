package port

import "io"

// TempFile is an open scratch file owned by one transfer attempt.
type TempFile interface {
	io.WriteCloser

	// Name returns the path of the temp file on disk.
	Name() string
}

// FileSystem defines the local filesystem operations used by the
// transfer engine.
type FileSystem interface {
	// CreateTemp creates (or truncates) the scratch file for destPath,
	// creating parent directories as needed.
	CreateTemp(destPath string) (TempFile, error)

	// Promote moves the finished temp file onto the destination path.
	Promote(tempPath, destPath string) error

	// Delete removes a file, ignoring files that do not exist.
	Delete(path string) error

	// Exists checks whether a file exists at path.
	Exists(path string) bool

	// Size returns the size of a file in bytes.
	Size(path string) (int64, error)
}
