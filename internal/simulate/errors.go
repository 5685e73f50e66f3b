package simulate

import "errors"

// Sentinel errors for season generation.
var (
	ErrInvalidConfig = errors.New("invalid simulation config")
	ErrWrite         = errors.New("write season failed")
)
