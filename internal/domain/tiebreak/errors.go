package tiebreak

import "errors"

// Sentinel errors for tie breaking.
var (
	ErrInvalidGameNumber = errors.New("invalid game number")
	ErrNoTies            = errors.New("nothing to break")
)
