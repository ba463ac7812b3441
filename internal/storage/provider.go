// Package storage defines the repository file-system abstraction.
package storage

// Provider is the interface for repository file operations. All paths are
// relative to the repository root.
type Provider interface {
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path with content.
	Write(path string, content []byte) error
}
