package health

import "errors"

var (
	// ErrCheckFailed is wrapped by store checks that fail.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout marks a check that did not finish before the probe timeout.
	ErrCheckTimeout = errors.New("health: check timeout")
)
