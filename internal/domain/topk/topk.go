// Package topk keeps the lowest-scoring partitions seen during a search.
package topk

import "github.com/okian/teamsplit/internal/domain/model"

// Capacity is the number of partitions a Selector retains.
const Capacity = 10

// Selector holds up to Capacity scored partitions sorted ascending by score.
// Among equal scores the earliest offered stays ahead.
type Selector struct {
	entries []model.ScoredPartition
}

// New returns an empty selector.
func New() *Selector {
	return &Selector{entries: make([]model.ScoredPartition, 0, Capacity)}
}

// Offer inserts sp ahead of the first retained entry with a strictly higher
// score. When full, the last entry falls off; an entry that beats nothing in
// a full list is dropped. It reports whether sp was retained.
func (s *Selector) Offer(sp model.ScoredPartition) bool {
	i := len(s.entries)
	for j, e := range s.entries {
		if sp.Score < e.Score {
			i = j
			break
		}
	}
	if i >= Capacity {
		return false
	}
	if len(s.entries) < Capacity {
		s.entries = append(s.entries, model.ScoredPartition{})
	}
	copy(s.entries[i+1:], s.entries[i:len(s.entries)-1])
	s.entries[i] = sp
	return true
}

// Len returns the number of retained entries.
func (s *Selector) Len() int { return len(s.entries) }

// Entries returns a copy of the retained list, best first.
func (s *Selector) Entries() []model.ScoredPartition {
	return append([]model.ScoredPartition(nil), s.entries...)
}

// BestScore returns the lowest retained score; ok is false when empty.
func (s *Selector) BestScore() (score int, ok bool) {
	if len(s.entries) == 0 {
		return 0, false
	}
	return s.entries[0].Score, true
}

// CountTiedAtBest returns how many retained entries share the best score.
func (s *Selector) CountTiedAtBest() int {
	best, ok := s.BestScore()
	if !ok {
		return 0
	}
	n := 0
	for _, e := range s.entries {
		if e.Score == best {
			n++
		}
	}
	return n
}

// Tied returns the retained entries sharing the best score, in retained order.
func (s *Selector) Tied() []model.ScoredPartition {
	return append([]model.ScoredPartition(nil), s.entries[:s.CountTiedAtBest()]...)
}
