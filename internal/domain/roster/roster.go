// Package roster turns the online player list and their match history into
// position-indexed players with ranks.
package roster

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/teamsplit/internal/domain/model"
)

// Order decides which player gets which position.
type Order string

const (
	// OrderHistory numbers players by their spreadsheet column.
	OrderHistory Order = "history"
	// OrderOnline numbers players as they appear in the online list.
	OrderOnline Order = "online"
)

// ParseOrder validates an order name; empty means OrderHistory.
func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(strings.TrimSpace(s))) {
	case "", OrderHistory:
		return OrderHistory, nil
	case OrderOnline:
		return OrderOnline, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOrder, s)
	}
}

// History is the per-player result record Build replays.
type History interface {
	// Results returns a player's results in the order they were played.
	Results(name string) ([]model.Result, bool)
	// Names lists every known player in source order.
	Names() []string
}

// Option configures Build.
type Option func(*builder)

// WithOrder selects how positions are assigned.
func WithOrder(o Order) Option {
	return func(b *builder) {
		if o != "" {
			b.order = o
		}
	}
}

type builder struct {
	order Order
}

// SplitOnline splits a comma-separated online list. Surrounding spaces are
// dropped; empty entries are kept so they surface as unknown players.
func SplitOnline(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// Build returns one Player per active name with Position 0..N-1. Each rank
// is the replay of that player's results in row order.
//
// An active name without a history column fails with *UnknownPlayerError;
// a repeated active name fails with *DuplicateNameError.
func Build(active []string, hist History, opts ...Option) ([]model.Player, error) {
	b := &builder{order: OrderHistory}
	for _, opt := range opts {
		opt(b)
	}

	for _, name := range active {
		if _, ok := hist.Results(name); !ok {
			return nil, &UnknownPlayerError{Name: name}
		}
	}
	seen := make(map[string]struct{}, len(active))
	for _, name := range active {
		if _, dup := seen[name]; dup {
			return nil, &DuplicateNameError{Name: name}
		}
		seen[name] = struct{}{}
	}

	names := active
	if b.order == OrderHistory {
		names = make([]string, 0, len(active))
		for _, name := range hist.Names() {
			if _, ok := seen[name]; ok {
				names = append(names, name)
			}
		}
	}

	players := make([]model.Player, len(names))
	for pos, name := range names {
		results, _ := hist.Results(name)
		p := model.NewPlayer(name, pos)
		for _, r := range results {
			p.Record(r)
		}
		players[pos] = p
	}
	return players, nil
}

// Ranks returns ranks indexed by position.
func Ranks(players []model.Player) []int {
	out := make([]int, len(players))
	for _, p := range players {
		out[p.Position()] = p.Rank
	}
	return out
}

// ByRank returns a copy sorted by rank descending; equal ranks keep
// position order.
func ByRank(players []model.Player) []model.Player {
	out := append([]model.Player(nil), players...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank > out[j].Rank })
	return out
}
