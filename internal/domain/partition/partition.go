// Package partition enumerates every way to split a roster into two
// fixed-size teams with position 0 anchored on team 1.
package partition

import (
	"fmt"
	"iter"

	"github.com/okian/teamsplit/internal/domain/model"
)

// CanonicalSize returns the team-1 size used for a roster of n players:
// floor(n/2), so odd rosters put the extra player on team 2.
func CanonicalSize(n int) int {
	return n / 2
}

// Canonical returns the starting split: positions 0..k-1 on team 1, the rest
// on team 2.
func Canonical(n, k int) (model.Partition, error) {
	if err := validate(n, k); err != nil {
		return model.Partition{}, err
	}
	labels := make([]model.Team, n)
	for i := range labels {
		if i < k {
			labels[i] = model.Team1
		} else {
			labels[i] = model.Team2
		}
	}
	return model.NewPartition(labels...), nil
}

// Count returns C(n-1, k-1), the number of partitions Enumerate yields.
func Count(n, k int) int {
	if validate(n, k) != nil {
		return 0
	}
	r := k - 1
	m := n - 1
	if r > m-r {
		r = m - r
	}
	c := 1
	for i := 1; i <= r; i++ {
		c = c * (m - r + i) / i
	}
	return c
}

// Enumerate returns the partitions of n positions with k on team 1.
//
// The canonical split comes first. Then, walking positions left to right
// from 1, each team-1 position is swapped with the nearest team-2 position
// after it and the walk continues on the new snapshot. Every size-k subset
// containing position 0 appears exactly once, and the order is stable, which
// the tie break depends on.
func Enumerate(n, k int) (iter.Seq[model.Partition], error) {
	start, err := Canonical(n, k)
	if err != nil {
		return nil, err
	}
	return func(yield func(model.Partition) bool) {
		if !yield(start) {
			return
		}
		walk(start, 1, yield)
	}, nil
}

// walk returns false once the consumer has stopped.
func walk(p model.Partition, start int, yield func(model.Partition) bool) bool {
	n := p.Len()
	if start >= n-1 {
		return true
	}
	if !walk(p, start+1, yield) {
		return false
	}
	if p.At(start) != model.Team1 {
		return true
	}
	t := nextTeam2(p, start+1)
	if t < 0 {
		return true
	}
	next := p.Swap(start, t)
	if !yield(next) {
		return false
	}
	return walk(next, start+1, yield)
}

func nextTeam2(p model.Partition, from int) int {
	for t := from; t < p.Len(); t++ {
		if p.At(t) == model.Team2 {
			return t
		}
	}
	return -1
}

func validate(n, k int) error {
	if n < 1 {
		return fmt.Errorf("%w: roster size %d", ErrInvalidSize, n)
	}
	if k < 1 || k > n {
		return fmt.Errorf("%w: team size %d for roster of %d", ErrInvalidSize, k, n)
	}
	return nil
}
