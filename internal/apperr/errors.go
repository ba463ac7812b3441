package apperr

import "errors"

var (
	ErrManifestMissing = errors.New("manifest missing")
	ErrStale           = errors.New("manifest stale")
	ErrObsolete        = errors.New("obsolete replacements")
	ErrNotFound        = errors.New("not found")
)
