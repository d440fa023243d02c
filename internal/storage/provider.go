// Package storage defines the file-system abstraction used by the knowledge
// base, the staging area and the search index.
package storage

import "github.com/starford/reinforcer/internal/models"

// Provider is the interface for rooted file operations. All paths are
// relative to the provider root.
type Provider interface {
	// List returns metadata for every file under dir with the given suffix.
	// Hidden entries (leading ".") are skipped.
	List(dir, suffix string) ([]models.FileInfo, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path with content.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Exists reports whether a regular file exists at path.
	Exists(path string) (bool, error)
	// Root returns the absolute root directory.
	Root() string
}
