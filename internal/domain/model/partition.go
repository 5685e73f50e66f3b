package model

import (
	"strconv"
	"strings"
)

// Team labels a side of a partition.
type Team uint8

const (
	Team1 Team = 1
	Team2 Team = 2
)

// Other returns the opposing team.
func (t Team) Other() Team {
	if t == Team1 {
		return Team2
	}
	return Team1
}

// Partition assigns one team label per roster position. It is a value:
// nothing hands out its backing slice, so a produced partition never changes.
type Partition struct {
	labels []Team
}

// NewPartition copies labels into a new partition.
func NewPartition(labels ...Team) Partition {
	return Partition{labels: append([]Team(nil), labels...)}
}

// Len returns the number of positions.
func (p Partition) Len() int { return len(p.labels) }

// At returns the team at position i.
func (p Partition) At(i int) Team { return p.labels[i] }

// Labels returns a copy of the label sequence.
func (p Partition) Labels() []Team { return append([]Team(nil), p.labels...) }

// Count returns how many positions are labeled t.
func (p Partition) Count(t Team) int {
	n := 0
	for _, l := range p.labels {
		if l == t {
			n++
		}
	}
	return n
}

// Members returns the positions labeled t in ascending order.
func (p Partition) Members(t Team) []int {
	out := make([]int, 0, len(p.labels))
	for i, l := range p.labels {
		if l == t {
			out = append(out, i)
		}
	}
	return out
}

// Swap returns a copy of p with positions i and j exchanged.
func (p Partition) Swap(i, j int) Partition {
	labels := p.Labels()
	labels[i], labels[j] = labels[j], labels[i]
	return Partition{labels: labels}
}

// Mirror returns p with every label flipped.
func (p Partition) Mirror() Partition {
	labels := make([]Team, len(p.labels))
	for i, l := range p.labels {
		labels[i] = l.Other()
	}
	return Partition{labels: labels}
}

// Equal reports whether both partitions carry the same labels.
func (p Partition) Equal(o Partition) bool {
	if len(p.labels) != len(o.labels) {
		return false
	}
	for i := range p.labels {
		if p.labels[i] != o.labels[i] {
			return false
		}
	}
	return true
}

// Key returns a compact string form, e.g. "1212".
func (p Partition) Key() string {
	var b strings.Builder
	b.Grow(len(p.labels))
	for _, l := range p.labels {
		b.WriteByte('0' + byte(l))
	}
	return b.String()
}

// String renders the partition as "[1, 2, 1, 2]".
func (p Partition) String() string {
	parts := make([]string, len(p.labels))
	for i, l := range p.labels {
		parts[i] = strconv.Itoa(int(l))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ScoredPartition pairs a partition with its imbalance score.
type ScoredPartition struct {
	Score     int
	Partition Partition
}
