// Package report renders proposals as the plain-text summary players read
// before a game.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	service "github.com/okian/teamsplit/internal/app"
	"github.com/okian/teamsplit/internal/domain/topk"
)

// Option configures a Writer.
type Option func(*Writer)

// WithLimit caps the number of best splits printed.
func WithLimit(n int) Option {
	return func(w *Writer) {
		if n > 0 && n <= topk.Capacity {
			w.limit = n
		}
	}
}

// WithPlain prints the best splits as one line each instead of a table.
func WithPlain(plain bool) Option {
	return func(w *Writer) {
		w.plain = plain
	}
}

// Writer renders reports.
type Writer struct {
	limit int
	plain bool
}

// New creates a Writer.
func New(opts ...Option) *Writer {
	w := &Writer{limit: topk.Capacity}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Players writes one description line per player.
func (w *Writer) Players(out io.Writer, players []service.PlayerView) error {
	ew := &errWriter{w: out}
	ew.println("All players:")
	for _, p := range players {
		ew.println(p.Description)
	}
	return ew.err
}

// Proposal writes the full proposal report.
func (w *Writer) Proposal(out io.Writer, p service.Proposal) error {
	if err := w.Players(out, p.Players); err != nil {
		return err
	}

	ew := &errWriter{w: out}
	ew.println("")
	ew.printf("canonical: %s\n", labels(p.Canonical.Labels))
	ew.printf("combinations: %d\n", p.Combinations)
	ew.println("")

	best := p.Best
	if len(best) > w.limit {
		best = best[:w.limit]
	}
	if w.plain {
		for i, s := range best {
			ew.printf("%2d    %s\n", i, Game(s))
		}
	} else {
		ew.println(w.table(out, best, p))
	}

	ew.printf("best diff: %d\n", p.BestScore)
	ew.printf("ties for best game: %d\n", p.Ties)
	if p.Ties > 1 {
		ew.printf("seed: %s\n", p.Seed)
		ew.printf("use index: %d\n", p.Index)
	}
	ew.printf("proposed: %s\n", Game(p.Selected))
	return ew.err
}

func (w *Writer) table(out io.Writer, best []service.Split, p service.Proposal) string {
	r := lipgloss.NewRenderer(out)
	header := r.NewStyle().Bold(true).Padding(0, 1)
	cell := r.NewStyle().Padding(0, 1)
	picked := cell.Bold(true)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.NewStyle()).
		Headers("#", "Team 1", "Team 2", "Diff").
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case row == p.Index:
				return picked
			default:
				return cell
			}
		})
	for i, s := range best {
		idx := strconv.Itoa(i)
		if i == p.Index {
			idx += "*"
		}
		t.Row(idx, strings.Join(s.Team1, ","), strings.Join(s.Team2, ","), strconv.Itoa(s.Score))
	}
	return t.Render()
}

// Game formats a split as "a,b vs. c,d -> diff".
func Game(s service.Split) string {
	return fmt.Sprintf("%s vs. %s -> %d", strings.Join(s.Team1, ","), strings.Join(s.Team2, ","), s.Score)
}

// labels turns "1122" into "[1, 1, 2, 2]".
func labels(key string) string {
	parts := strings.Split(key, "")
	return "[" + strings.Join(parts, ", ") + "]"
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *errWriter) println(s string) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintln(e.w, s)
}
