// Package search runs the balanced-split search: every partition is scored
// as it is produced and offered to a top-K selector.
package search

import (
	"context"
	"fmt"

	"github.com/okian/teamsplit/internal/domain/model"
	"github.com/okian/teamsplit/internal/domain/partition"
	"github.com/okian/teamsplit/internal/domain/scoring"
	"github.com/okian/teamsplit/internal/domain/topk"
)

const (
	// MinPlayers is the smallest roster that can be split into two teams.
	MinPlayers = 2
	// MaxPlayers bounds the roster; 24 players already mean 1,352,078 splits.
	MaxPlayers = 24

	// cancelCheckEvery is how many partitions are scored between context checks.
	cancelCheckEvery = 4096
)

// Result is the outcome of one search.
type Result struct {
	// Canonical is the starting split the enumeration grew from.
	Canonical model.Partition
	// Best holds up to topk.Capacity partitions, lowest score first.
	Best []model.ScoredPartition
	// BestScore is Best[0].Score.
	BestScore int
	// Ties counts retained partitions sharing BestScore.
	Ties int
	// Combinations is the number of partitions scored.
	Combinations int
}

// Tied returns the partitions sharing the best score, in retained order.
func (r Result) Tied() []model.ScoredPartition {
	return r.Best[:r.Ties]
}

// Run searches all splits of len(ranks) players with k on team 1. It stops
// with ctx.Err() when ctx is done.
func Run(ctx context.Context, ranks []int, k int) (Result, error) {
	n := len(ranks)
	if n < MinPlayers {
		return Result{}, fmt.Errorf("%w: %d players", ErrTooFewPlayers, n)
	}
	if n > MaxPlayers {
		return Result{}, fmt.Errorf("%w: %d players, at most %d", ErrTooManyPlayers, n, MaxPlayers)
	}
	for i, r := range ranks {
		if r < 0 {
			return Result{}, fmt.Errorf("%w: position %d has rank %d", ErrNegativeRank, i, r)
		}
	}
	seq, err := partition.Enumerate(n, k)
	if err != nil {
		return Result{}, err
	}
	canonical, err := partition.Canonical(n, k)
	if err != nil {
		return Result{}, err
	}

	scorer := scoring.FromRanks(ranks)
	best := topk.New()
	total := 0
	for p := range seq {
		if total%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}
		total++
		best.Offer(model.ScoredPartition{Score: scorer.Score(p), Partition: p})
	}

	score, _ := best.BestScore()
	return Result{
		Canonical:    canonical,
		Best:         best.Entries(),
		BestScore:    score,
		Ties:         best.CountTiedAtBest(),
		Combinations: total,
	}, nil
}

// RunPlayers searches with the canonical team size for the given roster.
func RunPlayers(ctx context.Context, players []model.Player) (Result, error) {
	ranks := make([]int, len(players))
	taken := make([]bool, len(players))
	for _, p := range players {
		if p.Position() < 0 || p.Position() >= len(players) {
			return Result{}, fmt.Errorf("%w: %s at %d", ErrBadPosition, p.Name(), p.Position())
		}
		if taken[p.Position()] {
			return Result{}, fmt.Errorf("%w: %s shares position %d", ErrBadPosition, p.Name(), p.Position())
		}
		taken[p.Position()] = true
		ranks[p.Position()] = p.Rank
	}
	return Run(ctx, ranks, partition.CanonicalSize(len(players)))
}
