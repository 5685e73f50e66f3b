// Package scoring computes how unevenly a partition splits player ranks.
package scoring

import "github.com/okian/teamsplit/internal/domain/model"

// Scorer computes an imbalance score for a partition. Lower is better.
type Scorer interface {
	Score(p model.Partition) int
}

// Imbalance returns |sum(rank on team 1) - sum(rank on team 2)|.
// ranks is indexed by roster position and must be at least as long as p.
// Positions labeled with neither team count for no side.
func Imbalance(p model.Partition, ranks []int) int {
	diff := 0
	for i := 0; i < p.Len(); i++ {
		switch p.At(i) {
		case model.Team1:
			diff += ranks[i]
		case model.Team2:
			diff -= ranks[i]
		}
	}
	if diff < 0 {
		return -diff
	}
	return diff
}

// RankScorer scores partitions against a fixed set of player ranks.
type RankScorer struct {
	ranks []int
}

// NewRankScorer captures the ranks of players in position order.
func NewRankScorer(players []model.Player) *RankScorer {
	ranks := make([]int, len(players))
	for _, p := range players {
		ranks[p.Position()] = p.Rank
	}
	return &RankScorer{ranks: ranks}
}

// FromRanks builds a scorer directly from position-ordered ranks.
func FromRanks(ranks []int) *RankScorer {
	return &RankScorer{ranks: append([]int(nil), ranks...)}
}

// Score implements Scorer.
func (s *RankScorer) Score(p model.Partition) int {
	return Imbalance(p, s.ranks)
}

// Ranks returns a copy of the captured ranks.
func (s *RankScorer) Ranks() []int {
	return append([]int(nil), s.ranks...)
}
