package simulate_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/okian/teamsplit/internal/adapters/history"
	"github.com/okian/teamsplit/internal/simulate"
	. "github.com/smartystreets/goconvey/convey"
)

func config() simulate.Config {
	return simulate.Config{
		Players: 10,
		Games:   8,
		Seed:    42,
		Start:   time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestGenerate(t *testing.T) {
	Convey("Given a seeded config", t, func() {
		s, err := simulate.Generate(config())
		So(err, ShouldBeNil)

		Convey("Then the layout matches a results sheet", func() {
			So(s.Names, ShouldHaveLength, 10)
			So(s.Rows, ShouldHaveLength, 1+8+1)
			So(s.Rows[0][0], ShouldEqual, "Date")
			So(s.Rows[0][1:], ShouldResemble, s.Names)
			So(s.Rows[1][0], ShouldEqual, "2026-01-05")
			So(s.Rows[2][0], ShouldEqual, "2026-01-12")
			So(s.Rows[len(s.Rows)-1], ShouldResemble, []string{history.DefaultEndMarker})
		})

		Convey("Then names are unique", func() {
			seen := map[string]bool{}
			for _, n := range s.Names {
				So(seen[n], ShouldBeFalse)
				seen[n] = true
			}
		})

		Convey("Then every game has a winner and a loser", func() {
			for _, row := range s.Rows[1 : len(s.Rows)-1] {
				wins, losses := 0, 0
				for _, cell := range row[1:] {
					switch cell {
					case "W":
						wins++
					case "L":
						losses++
					}
				}
				So(wins, ShouldBeGreaterThan, 0)
				So(losses, ShouldBeGreaterThan, 0)
				diff := wins - losses
				So(diff, ShouldBeBetweenOrEqual, -1, 1)
			}
		})

		Convey("Then the same seed gives the same season", func() {
			again, err := simulate.Generate(config())
			So(err, ShouldBeNil)
			So(cmp.Diff(s.Rows, again.Rows), ShouldBeEmpty)
		})
	})

	Convey("Invalid configs are rejected", t, func() {
		for _, cfg := range []simulate.Config{
			{Players: 1},
			{Games: -1},
			{Attendance: 1.5},
		} {
			_, err := simulate.Generate(cfg)
			So(errors.Is(err, simulate.ErrInvalidConfig), ShouldBeTrue)
		}
	})
}

func TestWriteAndReadBack(t *testing.T) {
	ctx := context.Background()

	Convey("Given a generated season", t, func() {
		s, err := simulate.Generate(config())
		So(err, ShouldBeNil)

		Convey("When written as CSV", func() {
			var buf bytes.Buffer
			So(s.WriteCSV(&buf), ShouldBeNil)

			Convey("Then the history reader accepts it", func() {
				h, err := history.ReadCSV(ctx, &buf)
				So(err, ShouldBeNil)
				So(h.Names(), ShouldResemble, s.Names)
				So(h.Rows, ShouldEqual, 8)
			})
		})

		Convey("When written as XLSX on a named sheet", func() {
			cfg := config()
			cfg.Sheet = "Season"
			s, err := simulate.Generate(cfg)
			So(err, ShouldBeNil)

			var buf bytes.Buffer
			So(s.WriteXLSX(&buf), ShouldBeNil)

			Convey("Then the history reader accepts it", func() {
				h, err := history.ReadXLSX(ctx, &buf, history.WithSheet("Season"))
				So(err, ShouldBeNil)
				So(h.Names(), ShouldResemble, s.Names)
			})
		})

		Convey("When saved by extension", func() {
			dir := t.TempDir()
			for _, name := range []string{"season.csv", "season.xlsx"} {
				path := filepath.Join(dir, name)
				So(simulate.Save(ctx, path, s), ShouldBeNil)

				h, err := history.Load(ctx, path)
				So(err, ShouldBeNil)
				So(len(h.Columns()), ShouldEqual, 10)
			}

			err := simulate.Save(ctx, filepath.Join(dir, "season.ods"), s)
			So(errors.Is(err, history.ErrUnsupportedFormat), ShouldBeTrue)
		})
	})
}
