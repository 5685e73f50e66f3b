// Package simulate generates synthetic season histories in the same sheet
// layout the history reader consumes. Each player carries a hidden skill;
// every game the attending players are split at random and the stronger
// side is more likely to win.
package simulate

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/xuri/excelize/v2"

	"github.com/okian/teamsplit/internal/adapters/history"
)

// Defaults for Config.
const (
	DefaultPlayers    = 12
	DefaultGames      = 20
	DefaultAttendance = 0.8
	DateLayout        = "2006-01-02"
	gameInterval      = 7 * 24 * time.Hour
	nameAttempts      = 50
)

// Config describes a season to generate.
type Config struct {
	Players    int       // roster size
	Games      int       // number of played games
	Attendance float64   // probability a player shows up to a game
	Seed       uint64    // 0 picks a random seed
	Start      time.Time // date of the first game; zero means one game per week ending today
	Sheet      string    // worksheet name for XLSX output
}

func (c *Config) defaults() {
	if c.Players == 0 {
		c.Players = DefaultPlayers
	}
	if c.Games == 0 {
		c.Games = DefaultGames
	}
	if c.Attendance == 0 {
		c.Attendance = DefaultAttendance
	}
	if c.Start.IsZero() {
		c.Start = time.Now().Add(-time.Duration(c.Games) * gameInterval)
	}
}

func (c Config) validate() error {
	switch {
	case c.Players < 2:
		return fmt.Errorf("%w: need at least 2 players, got %d", ErrInvalidConfig, c.Players)
	case c.Games < 0:
		return fmt.Errorf("%w: negative games %d", ErrInvalidConfig, c.Games)
	case c.Attendance <= 0 || c.Attendance > 1:
		return fmt.Errorf("%w: attendance %.2f outside (0, 1]", ErrInvalidConfig, c.Attendance)
	}
	return nil
}

// Season is a generated history: a header row, one row per game and the
// end marker.
type Season struct {
	Names  []string
	Skills []float64
	Rows   [][]string
	sheet  string
}

// Generate builds a season.
func Generate(cfg Config) (Season, error) {
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return Season{}, err
	}
	f := gofakeit.New(cfg.Seed)

	s := Season{
		Names:  names(f, cfg.Players),
		Skills: make([]float64, cfg.Players),
		sheet:  cfg.Sheet,
	}
	for i := range s.Skills {
		s.Skills[i] = f.Float64Range(0, 1)
	}

	s.Rows = append(s.Rows, append([]string{"Date"}, s.Names...))
	for g := 0; g < cfg.Games; g++ {
		date := cfg.Start.Add(time.Duration(g) * gameInterval).Format(DateLayout)
		s.Rows = append(s.Rows, s.play(f, date, cfg.Attendance))
	}
	s.Rows = append(s.Rows, []string{history.DefaultEndMarker})
	return s, nil
}

// play returns one game row.
func (s Season) play(f *gofakeit.Faker, date string, attendance float64) []string {
	present := make([]int, 0, len(s.Names))
	for i := range s.Names {
		if f.Float64() < attendance {
			present = append(present, i)
		}
	}
	if len(present) < 2 {
		present = []int{0, 1}
	}
	f.ShuffleInts(present)

	half := len(present) / 2
	team1, team2 := present[:half], present[half:]
	p1 := 0.5 + (s.strength(team1)-s.strength(team2))/2
	win1 := f.Float64() < p1

	row := make([]string, len(s.Names)+1)
	row[0] = date
	for _, i := range team1 {
		row[i+1] = result(win1)
	}
	for _, i := range team2 {
		row[i+1] = result(!win1)
	}
	return row
}

// strength is the mean skill of a team.
func (s Season) strength(team []int) float64 {
	total := 0.0
	for _, i := range team {
		total += s.Skills[i]
	}
	return total / float64(len(team))
}

func result(won bool) string {
	if won {
		return history.DefaultWinMarker
	}
	return history.DefaultLossMarker
}

func names(f *gofakeit.Faker, n int) []string {
	out := make([]string, 0, n)
	seen := make(map[string]struct{}, n)
	for len(out) < n {
		name := f.FirstName()
		for try := 0; try < nameAttempts; try++ {
			if _, dup := seen[name]; !dup {
				break
			}
			name = f.FirstName()
		}
		if _, dup := seen[name]; dup {
			name += strconv.Itoa(len(out))
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// WriteCSV writes the season as CSV.
func (s Season) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(s.Rows); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// WriteXLSX writes the season as a single-sheet workbook.
func (s Season) WriteXLSX(w io.Writer) error {
	wb := excelize.NewFile()
	defer func() { _ = wb.Close() }()

	sheet := wb.GetSheetName(0)
	if s.sheet != "" && s.sheet != sheet {
		if err := wb.SetSheetName(sheet, s.sheet); err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}
		sheet = s.sheet
	}
	for r, row := range s.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}
		values := make([]any, len(row))
		for i, v := range row {
			values[i] = v
		}
		if err := wb.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}
	}
	if _, err := wb.WriteTo(w); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// Save writes the season to path, choosing the format by extension.
func Save(ctx context.Context, path string, s Season) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var write func(io.Writer) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt", "":
		write = s.WriteCSV
	case ".xlsx", ".xlsm":
		write = s.WriteXLSX
	default:
		return fmt.Errorf("%w: %s", history.ErrUnsupportedFormat, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}
