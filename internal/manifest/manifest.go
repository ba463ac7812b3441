// Package manifest defines the release manifest document and its JSON codec.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/jera/internal/apperr"
	"github.com/starford/jera/internal/storage"
)

var versionRe = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// Manifest is the versioned document consumed by downstream update clients.
// It tracks the content hash of every published data file, a three-part
// semantic version, and the release notes of the last update.
type Manifest struct {
	Version string               `json:"version"`
	Notes   string               `json:"notes"`
	Files   map[string]FileEntry `json:"files"`
}

// FileEntry records the stored content hash of one published data file.
type FileEntry struct {
	Sha string `json:"sha"`
}

// Validate checks the version grammar and the presence of the files map.
func (m *Manifest) Validate() error {
	return validation.ValidateStruct(m,
		validation.Field(&m.Version, validation.Required, validation.Match(versionRe)),
		validation.Field(&m.Files, validation.NotNil),
	)
}

// Sha returns the stored digest for the logical name, or "" when the name
// is not present. An empty digest never matches a computed one, so absent
// entries always count as changed.
func (m *Manifest) Sha(name string) string {
	return m.Files[name].Sha
}

// SetSha records a digest for the logical name.
func (m *Manifest) SetSha(name, sha string) {
	if m.Files == nil {
		m.Files = make(map[string]FileEntry)
	}
	m.Files[name] = FileEntry{Sha: sha}
}

// Decode parses a manifest document and validates it.
func Decode(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: decode: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("manifest: invalid: %w", err)
	}
	return &m, nil
}

// Encode serializes the manifest with the published two-space indent and a
// trailing newline.
func (m *Manifest) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("manifest: encode: %w", err)
	}
	return append(data, '\n'), nil
}

// Load reads and decodes the manifest at path. A missing file maps to
// apperr.ErrManifestMissing.
func Load(store storage.Provider, path string) (*Manifest, error) {
	data, err := store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", apperr.ErrManifestMissing, path)
		}
		return nil, err
	}
	return Decode(data)
}

// Save encodes the manifest and atomically replaces the file at path.
func (m *Manifest) Save(store storage.Provider, path string) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}
	return store.Write(path, data)
}
