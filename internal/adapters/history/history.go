// Package history reads the match-history spreadsheet: a header row of
// player names (column 0 holds dates) followed by one row per game with a
// win or loss marker under each player who took part.
package history

import (
	"strings"

	"github.com/okian/teamsplit/internal/domain/model"
	"github.com/xuri/excelize/v2"
)

// Default markers used by the spreadsheet.
const (
	DefaultWinMarker  = "W"
	DefaultLossMarker = "L"
	DefaultEndMarker  = "End data"
)

// Column is one player's column and the results recorded in it, in row order.
type Column struct {
	Name string
	// Index is the 0-based cell index within a row; the date column is 0.
	Index   int
	Results []model.Result
}

// Wins counts recorded wins.
func (c Column) Wins() int { return c.count(model.Win) }

// Losses counts recorded losses.
func (c Column) Losses() int { return c.count(model.Loss) }

func (c Column) count(r model.Result) int {
	n := 0
	for _, x := range c.Results {
		if x == r {
			n++
		}
	}
	return n
}

// History is the parsed spreadsheet, restricted to tracked columns.
type History struct {
	columns []Column
	byName  map[string]int
	// Rows is the number of data rows consumed (header and end marker excluded).
	Rows int
}

// Columns returns the tracked columns in spreadsheet order.
func (h *History) Columns() []Column {
	return append([]Column(nil), h.columns...)
}

// Lookup finds a player's column by name.
func (h *History) Lookup(name string) (Column, bool) {
	i, ok := h.byName[name]
	if !ok {
		return Column{}, false
	}
	return h.columns[i], true
}

// Results returns a player's results in row order.
func (h *History) Results(name string) ([]model.Result, bool) {
	c, ok := h.Lookup(name)
	return c.Results, ok
}

// Names returns tracked player names in spreadsheet order.
func (h *History) Names() []string {
	out := make([]string, len(h.columns))
	for i, c := range h.columns {
		out[i] = c.Name
	}
	return out
}

// Option configures parsing.
type Option func(*parser)

// WithPlayers restricts parsing to the named columns. Cells in other columns
// are not validated.
func WithPlayers(names ...string) Option {
	return func(p *parser) {
		if len(names) == 0 {
			return
		}
		p.only = make(map[string]struct{}, len(names))
		for _, n := range names {
			p.only[strings.TrimSpace(n)] = struct{}{}
		}
	}
}

// WithMarkers overrides the win and loss cell markers.
func WithMarkers(win, loss string) Option {
	return func(p *parser) {
		if win != "" && loss != "" && win != loss {
			p.win, p.loss = win, loss
		}
	}
}

// WithEndMarker overrides the first-cell value that ends the data rows.
func WithEndMarker(end string) Option {
	return func(p *parser) {
		if end != "" {
			p.end = end
		}
	}
}

// WithSheet selects the worksheet for spreadsheet files. Empty means the
// first sheet.
func WithSheet(sheet string) Option {
	return func(p *parser) {
		p.sheet = sheet
	}
}

type parser struct {
	only  map[string]struct{}
	win   string
	loss  string
	end   string
	sheet string

	h     *History
	byIdx map[int]int
}

func newParser(opts []Option) *parser {
	p := &parser{
		win:  DefaultWinMarker,
		loss: DefaultLossMarker,
		end:  DefaultEndMarker,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *parser) tracked(name string) bool {
	if p.only == nil {
		return true
	}
	_, ok := p.only[name]
	return ok
}

// header reads the first spreadsheet row.
func (p *parser) header(cells []string) error {
	p.h = &History{byName: make(map[string]int)}
	p.byIdx = make(map[int]int)
	for i := 1; i < len(cells); i++ {
		name := strings.TrimSpace(cells[i])
		if name == "" || !p.tracked(name) {
			continue
		}
		if prev, dup := p.h.byName[name]; dup {
			return &DuplicateColumnError{
				Name:   name,
				First:  cellName(p.h.columns[prev].Index, 1),
				Second: cellName(i, 1),
			}
		}
		p.byIdx[i] = len(p.h.columns)
		p.h.byName[name] = len(p.h.columns)
		p.h.columns = append(p.h.columns, Column{Name: name, Index: i})
	}
	return nil
}

// row consumes a data row; row is the 1-based spreadsheet row number.
// It reports done when the end marker is reached.
func (p *parser) row(row int, cells []string) (done bool, err error) {
	if len(cells) > 0 && cells[0] == p.end {
		return true, nil
	}
	for i := 1; i < len(cells); i++ {
		ci, ok := p.byIdx[i]
		if !ok {
			continue
		}
		token := strings.TrimSpace(cells[i])
		switch token {
		case "":
			continue
		case p.win:
			p.h.columns[ci].Results = append(p.h.columns[ci].Results, model.Win)
		case p.loss:
			p.h.columns[ci].Results = append(p.h.columns[ci].Results, model.Loss)
		default:
			return false, &InvalidResultTokenError{
				Row:    row,
				Column: i,
				Cell:   cellName(i, row),
				Player: p.h.columns[ci].Name,
				Token:  token,
			}
		}
	}
	p.h.Rows++
	return false, nil
}

// Parse builds a History from already-split rows.
func Parse(rows [][]string, opts ...Option) (*History, error) {
	p := newParser(opts)
	return p.parse(rows)
}

func (p *parser) parse(rows [][]string) (*History, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyHistory
	}
	if err := p.header(rows[0]); err != nil {
		return nil, err
	}
	for i, cells := range rows[1:] {
		done, err := p.row(i+2, cells)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}
	return p.h, nil
}

// cellName converts a 0-based cell index and 1-based row into "B7" form.
func cellName(index, row int) string {
	name, err := excelize.CoordinatesToCellName(index+1, row)
	if err != nil {
		return ""
	}
	return name
}
