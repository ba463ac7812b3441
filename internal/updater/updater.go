// Package updater implements the release manifest update: it hashes the
// tracked data files, compares them to the digests stored in the manifest,
// and on any difference rewrites the manifest with fresh digests, the
// triggering commit message as notes, and a bumped patch version.
package updater

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/starford/jera/internal/checksum"
	"github.com/starford/jera/internal/manifest"
	"github.com/starford/jera/internal/storage"
	"github.com/starford/jera/internal/version"
)

// Updater coordinates storage, hashing, and manifest mutation.
type Updater struct {
	store        storage.Provider
	logger       *slog.Logger
	manifestPath string
	files        map[string]string // logical name -> path relative to repo root
}

// New creates an Updater. files maps logical names (rules, replacements,
// dictionary) to data file paths relative to the repository root.
func New(store storage.Provider, logger *slog.Logger, manifestPath string, files map[string]string) *Updater {
	return &Updater{
		store:        store,
		logger:       logger,
		manifestPath: manifestPath,
		files:        files,
	}
}

// Result describes the outcome of one update run.
type Result struct {
	Updated    bool
	OldVersion version.Version
	NewVersion version.Version
	Changed    []string // logical names whose digest differed, sorted
}

// scan loads the manifest, hashes every tracked file, and returns the fresh
// digests plus the sorted set of logical names whose digest differs from the
// stored one. A read failure on any tracked file is fatal.
func (u *Updater) scan() (*manifest.Manifest, map[string]string, []string, error) {
	m, err := manifest.Load(u.store, u.manifestPath)
	if err != nil {
		return nil, nil, nil, err
	}

	digests := make(map[string]string, len(u.files))
	var changed []string
	for name, path := range u.files {
		data, err := u.store.Read(path)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("updater: hash %s: %w", name, err)
		}
		digests[name] = checksum.Sum(data)
		if digests[name] != m.Sha(name) {
			changed = append(changed, name)
		}
	}
	sort.Strings(changed)
	return m, digests, changed, nil
}

// Update runs the full contract: no write when every digest matches;
// otherwise digests, notes, and patch version are replaced in one atomic
// manifest write. The tracked data files are never written.
func (u *Updater) Update(_ context.Context, message string) (*Result, error) {
	m, digests, changed, err := u.scan()
	if err != nil {
		return nil, err
	}

	old, err := version.Parse(m.Version)
	if err != nil {
		return nil, fmt.Errorf("updater: %w", err)
	}

	if len(changed) == 0 {
		u.logger.Info("manifest up to date", slog.String("version", m.Version))
		return &Result{OldVersion: old, NewVersion: old}, nil
	}

	next := old.BumpPatch()
	for name, sha := range digests {
		m.SetSha(name, sha)
	}
	m.Notes = message
	m.Version = next.String()

	if err := m.Save(u.store, u.manifestPath); err != nil {
		return nil, err
	}

	u.logger.Info("manifest updated",
		slog.String("old_version", old.String()),
		slog.String("new_version", next.String()),
		slog.Any("changed", changed))

	return &Result{
		Updated:    true,
		OldVersion: old,
		NewVersion: next,
		Changed:    changed,
	}, nil
}

// Preview reports what Update would change without writing anything.
func (u *Updater) Preview(_ context.Context) (*Result, error) {
	m, _, changed, err := u.scan()
	if err != nil {
		return nil, err
	}
	old, err := version.Parse(m.Version)
	if err != nil {
		return nil, fmt.Errorf("updater: %w", err)
	}
	res := &Result{OldVersion: old, NewVersion: old, Changed: changed}
	if len(changed) > 0 {
		res.Updated = true
		res.NewVersion = old.BumpPatch()
	}
	return res, nil
}

// Verify returns the sorted logical names whose stored digest is stale.
// It never writes.
func (u *Updater) Verify(_ context.Context) ([]string, error) {
	_, _, changed, err := u.scan()
	if err != nil {
		return nil, err
	}
	return changed, nil
}
