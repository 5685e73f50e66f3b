package service

import (
	"errors"
)

// Sentinel errors returned by Service.
var (
	ErrNoPlayers      = errors.New("no online players")
	ErrNoHistory      = errors.New("no history path configured")
	ErrInvalidRequest = errors.New("invalid request")
)
