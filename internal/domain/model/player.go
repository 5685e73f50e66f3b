// Package model contains domain models passed between layers.
package model

import "fmt"

// BaselineRank is the rank every player starts from before any result.
const BaselineRank = 1

// Result is a single recorded game outcome for a player.
type Result uint8

const (
	Win Result = iota + 1
	Loss
)

func (r Result) String() string {
	switch r {
	case Win:
		return "W"
	case Loss:
		return "L"
	default:
		return "?"
	}
}

// Player is an active player with a running win/loss rank.
// Name and Position are fixed at construction; only the counters move.
type Player struct {
	name     string
	position int

	Rank   int
	Wins   int
	Losses int
}

// NewPlayer creates a player at the baseline rank. Position is the 0-based
// slot the player occupies in every partition.
func NewPlayer(name string, position int) Player {
	return Player{name: name, position: position, Rank: BaselineRank}
}

func (p Player) Name() string  { return p.name }
func (p Player) Position() int { return p.position }

// Games returns the number of recorded games.
func (p Player) Games() int { return p.Wins + p.Losses }

// Win records a win.
func (p *Player) Win() {
	p.Wins++
	p.Rank++
}

// Lose records a loss. Rank never drops below zero.
func (p *Player) Lose() {
	p.Losses++
	if p.Rank > 0 {
		p.Rank--
	}
}

// Record applies r to the player.
func (p *Player) Record(r Result) {
	switch r {
	case Win:
		p.Win()
	case Loss:
		p.Lose()
	}
}

// WinPercent returns the truncated win percentage, 0 when no games were played.
func (p Player) WinPercent() int {
	if p.Games() == 0 {
		return 0
	}
	return 100 * p.Wins / p.Games()
}

// Description renders "name: [rank] wins/games  (pct%)".
func (p Player) Description() string {
	return fmt.Sprintf("%s: [%d] %d/%d %6s", p.name, p.Rank, p.Wins, p.Games(), fmt.Sprintf("(%d%%)", p.WinPercent()))
}

func (p Player) String() string { return p.name }
