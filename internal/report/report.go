// Package report cross-checks the replacements database against the mod
// database: a replacement entry is obsolete once the original mod supports a
// strictly higher game version than its suggested replacement. The check is
// read-only; nothing is rewritten.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/starford/jera/internal/storage"
)

// replacementEntry is one record in replacements.json, keyed by the original
// mod's Steam Workshop ID.
type replacementEntry struct {
	ModName            string `json:"ModName"`
	ReplacementSteamID string `json:"ReplacementSteamId"`
	ReplacementName    string `json:"ReplacementName"`
}

type replacementsFile struct {
	Mods map[string]replacementEntry `json:"mods"`
}

// modDetails is the slice of db.json we need: the game versions a mod
// supports.
type modDetails struct {
	Versions []string `json:"versions"`
}

// databaseFile mirrors db.json: package ID -> Steam Workshop ID -> details.
type databaseFile struct {
	Mods map[string]map[string]modDetails `json:"mods"`
}

// Obsolete describes one replacement entry that has fallen behind.
type Obsolete struct {
	SteamID            string
	Name               string
	OriginalVersion    string
	ReplacementVersion string
}

// Checker loads the two data files and reports obsolete replacement entries.
type Checker struct {
	store            storage.Provider
	logger           *slog.Logger
	replacementsPath string
	databasePath     string
}

// New creates a Checker over the replacements file and the mod database,
// both relative to the repository root.
func New(store storage.Provider, logger *slog.Logger, replacementsPath, databasePath string) *Checker {
	return &Checker{
		store:            store,
		logger:           logger,
		replacementsPath: replacementsPath,
		databasePath:     databasePath,
	}
}

// Check returns the replacement entries whose original mod supports a
// strictly higher version than the replacement, in map iteration order of
// the replacements file. Entries that cannot be compared (missing
// replacement ID, either side absent from the database) are kept and logged.
func (c *Checker) Check(_ context.Context) ([]Obsolete, error) {
	replacements, err := c.loadReplacements()
	if err != nil {
		return nil, err
	}
	lookup, err := c.loadLookup()
	if err != nil {
		return nil, err
	}

	var obsolete []Obsolete
	for steamID, entry := range replacements.Mods {
		if entry.ReplacementSteamID == "" {
			c.logger.Warn("replacement entry has no replacement ID, keeping",
				slog.String("steam_id", steamID),
				slog.String("name", entry.ModName))
			continue
		}

		original, ok := lookup[steamID]
		if !ok {
			c.logger.Warn("original mod not in database, keeping",
				slog.String("steam_id", steamID),
				slog.String("name", entry.ModName))
			continue
		}
		replacement, ok := lookup[entry.ReplacementSteamID]
		if !ok {
			c.logger.Warn("replacement mod not in database, keeping",
				slog.String("steam_id", steamID),
				slog.String("replacement_steam_id", entry.ReplacementSteamID),
				slog.String("replacement_name", entry.ReplacementName))
			continue
		}

		originalMax := maxVersionKey(original.Versions)
		replacementMax := maxVersionKey(replacement.Versions)
		if compareKeys(originalMax, replacementMax) > 0 {
			obsolete = append(obsolete, Obsolete{
				SteamID:            steamID,
				Name:               entry.ModName,
				OriginalVersion:    keyString(originalMax),
				ReplacementVersion: keyString(replacementMax),
			})
		}
	}
	return obsolete, nil
}

func (c *Checker) loadReplacements() (*replacementsFile, error) {
	data, err := c.store.Read(c.replacementsPath)
	if err != nil {
		return nil, fmt.Errorf("report: read %s: %w", c.replacementsPath, err)
	}
	var f replacementsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("report: parse %s: %w", c.replacementsPath, err)
	}
	return &f, nil
}

// loadLookup flattens db.json into a map keyed by Steam Workshop ID, since
// replacement entries reference mods by that ID rather than by package ID.
func (c *Checker) loadLookup() (map[string]modDetails, error) {
	data, err := c.store.Read(c.databasePath)
	if err != nil {
		return nil, fmt.Errorf("report: read %s: %w", c.databasePath, err)
	}
	var db databaseFile
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("report: parse %s: %w", c.databasePath, err)
	}

	lookup := make(map[string]modDetails)
	for _, entries := range db.Mods {
		for steamID, details := range entries {
			lookup[steamID] = details
		}
	}
	return lookup, nil
}

// versionKey converts a version string like "1.5.2" into its numeric
// components for comparison. Stray characters are stripped first, and any
// string that still fails to parse maps to the lowest key so it never beats
// a real version.
func versionKey(s string) []int {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return []int{0}
	}

	parts := strings.Split(cleaned, ".")
	key := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return []int{0}
		}
		key[i] = n
	}
	return key
}

// maxVersionKey returns the highest key among versions, or the lowest key
// when the list is empty.
func maxVersionKey(versions []string) []int {
	max := []int{0}
	for _, v := range versions {
		if key := versionKey(v); compareKeys(key, max) > 0 {
			max = key
		}
	}
	return max
}

// compareKeys orders keys component-wise; when one is a prefix of the other
// the shorter key is lower, so "1.5" < "1.5.1".
func compareKeys(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

func keyString(key []int) string {
	parts := make([]string, len(key))
	for i, n := range key {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}
