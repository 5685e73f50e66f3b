package history

import (
	"errors"
	"fmt"
)

// Sentinel errors for history ingestion.
var (
	ErrEmptyHistory      = errors.New("history has no header row")
	ErrUnsupportedFormat = errors.New("unsupported history format")
	ErrRead              = errors.New("read history failed")
)

// InvalidResultTokenError reports a cell that is neither a win nor a loss.
type InvalidResultTokenError struct {
	Row    int    // 1-based spreadsheet row
	Column int    // cell index within the row, date column is 0
	Cell   string // spreadsheet address, e.g. "C5"
	Player string
	Token  string
}

func (e *InvalidResultTokenError) Error() string {
	return fmt.Sprintf("bad data: row=%d column=%d cell=%s player=%s data=%q",
		e.Row, e.Column, e.Cell, e.Player, e.Token)
}

// DuplicateColumnError reports a player name that heads two columns.
type DuplicateColumnError struct {
	Name   string
	First  string
	Second string
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("duplicate player column %q at %s and %s", e.Name, e.First, e.Second)
}
