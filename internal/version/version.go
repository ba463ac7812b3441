// Package version implements strict major.minor.patch version handling
// for the release manifest.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a three-component semantic version. Only the patch component
// is ever auto-incremented by this tool.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Parse parses s as "major.minor.patch" with non-negative decimal integer
// components. Anything else (wrong arity, empty or non-numeric components,
// signs, leading "v") is rejected.
func Parse(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("version: %q must have exactly three components", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := parseComponent(p)
		if err != nil {
			return Version{}, fmt.Errorf("version: %q: %w", s, err)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

func parseComponent(p string) (int, error) {
	if p == "" {
		return 0, fmt.Errorf("empty component")
	}
	for _, r := range p {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("component %q is not a decimal integer", p)
		}
	}
	n, err := strconv.Atoi(p)
	if err != nil {
		return 0, fmt.Errorf("component %q: %w", p, err)
	}
	return n, nil
}

// BumpPatch returns a copy with the patch component incremented by one.
func (v Version) BumpPatch() Version {
	v.Patch++
	return v
}

// String serializes the version back to "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}
