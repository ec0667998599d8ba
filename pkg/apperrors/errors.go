package apperrors

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicate       = errors.New("record already exists")
	ErrCacheMissing    = errors.New("cache file not found")
	ErrUnresolvedRef   = errors.New("unresolved temp reference")
	ErrMissingUpstream = errors.New("required upstream resource missing")
	ErrUnderProduced   = errors.New("generator returned fewer records than requested")
)
