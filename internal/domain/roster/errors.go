package roster

import (
	"errors"
	"fmt"
)

// ErrUnknownOrder is returned for an unrecognized position order.
var ErrUnknownOrder = errors.New("unknown roster order")

// UnknownPlayerError reports an online player missing from the history.
type UnknownPlayerError struct {
	Name string
}

func (e *UnknownPlayerError) Error() string {
	return fmt.Sprintf("unknown player: %q", e.Name)
}

// DuplicateNameError reports a name listed twice in the online list.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("player names were not unique: %q", e.Name)
}
