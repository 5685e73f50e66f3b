package partition

import "errors"

// ErrInvalidSize is returned for roster or team sizes that cannot be split.
var ErrInvalidSize = errors.New("invalid partition size")
