// Package history reads commit metadata from the data repository using
// go-git (pure Go, no git binary dependency).
package history

import (
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
)

// HeadMessage returns the full commit message of HEAD in the repository at
// or above dir, with trailing whitespace trimmed. It fails when dir is not
// inside a git repository or the repository has no commits yet.
func HeadMessage(dir string) (string, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("history: open repository at %s: %w", dir, err)
	}

	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("history: resolve HEAD: %w", err)
	}
	c, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return "", fmt.Errorf("history: read HEAD commit: %w", err)
	}
	return strings.TrimSpace(c.Message), nil
}
