package search

import "errors"

// Sentinel errors for search input validation.
var (
	ErrTooFewPlayers  = errors.New("not enough players for two teams")
	ErrTooManyPlayers = errors.New("too many players to search")
	ErrNegativeRank   = errors.New("negative rank")
	ErrBadPosition    = errors.New("invalid player position")
)
