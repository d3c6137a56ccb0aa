package ratelimit

import "errors"

var (
	ErrStoreUnavailable = errors.New("ratelimit: counter store unavailable")
	ErrEmptyKey         = errors.New("ratelimit: empty key")
	ErrInvalidWindow    = errors.New("ratelimit: window must be positive")
	ErrInvalidLimit     = errors.New("ratelimit: limit must be positive")
	ErrClosed           = errors.New("ratelimit: store closed")
)
