// Package tiebreak picks one of several equally balanced splits in a way
// every player can reproduce: the seed is today's date followed by the game
// number, and the draw uses MT19937 exactly as CPython's random module does.
package tiebreak

import (
	"fmt"
	"math/big"
	"strings"
	"time"
)

// DateLayout is the date part of a seed.
const DateLayout = "20060102"

// Selection is the outcome of a tie break.
type Selection struct {
	// Seed is the decimal seed string, e.g. "202009251".
	Seed string
	// Index is the zero-based position within the tied set.
	Index int
	// Ties is the size of the tied set the index was drawn from.
	Ties int
}

// Seed concatenates date (YYYYMMDD) and gameNumber. gameNumber may be empty
// but otherwise must be ASCII digits.
func Seed(date time.Time, gameNumber string) (string, error) {
	gameNumber = strings.TrimSpace(gameNumber)
	for _, c := range gameNumber {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("%w: %q", ErrInvalidGameNumber, gameNumber)
		}
	}
	return date.Format(DateLayout) + gameNumber, nil
}

// Pick draws an index in [0, ties) seeded from date and gameNumber.
// The same inputs always give the same index. With a single tie no draw is
// made and the index is 0.
func Pick(date time.Time, gameNumber string, ties int) (Selection, error) {
	if ties < 1 {
		return Selection{}, fmt.Errorf("%w: %d", ErrNoTies, ties)
	}
	seed, err := Seed(date, gameNumber)
	if err != nil {
		return Selection{}, err
	}
	sel := Selection{Seed: seed, Ties: ties}
	if ties == 1 {
		return sel, nil
	}
	n, ok := new(big.Int).SetString(seed, 10)
	if !ok {
		return Selection{}, fmt.Errorf("%w: %q", ErrInvalidGameNumber, gameNumber)
	}
	sel.Index = newMT19937(n).below(ties)
	return sel, nil
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		if now != nil {
			b.now = now
		}
	}
}

// WithLocation sets the time zone that decides the calendar date.
func WithLocation(loc *time.Location) Option {
	return func(b *Breaker) {
		if loc != nil {
			b.loc = loc
		}
	}
}

// Breaker picks among ties using the current date.
type Breaker struct {
	now func() time.Time
	loc *time.Location
}

// New creates a Breaker using the local clock and time zone.
func New(opts ...Option) *Breaker {
	b := &Breaker{now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Today returns the current date in the configured location.
func (b *Breaker) Today() time.Time {
	return b.now().In(b.loc)
}

// Break picks one of ties for today's game gameNumber.
func (b *Breaker) Break(gameNumber string, ties int) (Selection, error) {
	return Pick(b.Today(), gameNumber, ties)
}
