package model_test

import (
	"testing"

	"github.com/okian/teamsplit/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPlayer(t *testing.T) {
	Convey("Given a new player", t, func() {
		p := model.NewPlayer("alice", 2)

		Convey("Then it starts at the baseline", func() {
			So(p.Name(), ShouldEqual, "alice")
			So(p.Position(), ShouldEqual, 2)
			So(p.Rank, ShouldEqual, model.BaselineRank)
			So(p.Games(), ShouldEqual, 0)
			So(p.WinPercent(), ShouldEqual, 0)
		})

		Convey("When results are recorded", func() {
			p.Record(model.Win)
			p.Record(model.Win)
			p.Record(model.Loss)

			Convey("Then rank and counters follow", func() {
				So(p.Rank, ShouldEqual, 2)
				So(p.Wins, ShouldEqual, 2)
				So(p.Losses, ShouldEqual, 1)
				So(p.WinPercent(), ShouldEqual, 66)
				So(p.Description(), ShouldEqual, "alice: [2] 2/3  (66%)")
			})
		})

		Convey("When losses exceed the rank", func() {
			p.Lose()
			p.Lose()
			p.Lose()

			Convey("Then rank is clamped at zero", func() {
				So(p.Rank, ShouldEqual, 0)
				So(p.Losses, ShouldEqual, 3)
			})

			Convey("And a following win climbs from zero", func() {
				p.Win()
				So(p.Rank, ShouldEqual, 1)
			})
		})
	})
}

func TestResultString(t *testing.T) {
	Convey("Results render as spreadsheet markers", t, func() {
		So(model.Win.String(), ShouldEqual, "W")
		So(model.Loss.String(), ShouldEqual, "L")
		So(model.Result(0).String(), ShouldEqual, "?")
	})
}

func TestPartition(t *testing.T) {
	Convey("Given a partition", t, func() {
		labels := []model.Team{model.Team1, model.Team2, model.Team1, model.Team2}
		p := model.NewPartition(labels...)

		Convey("Then it does not alias the input", func() {
			labels[0] = model.Team2
			So(p.At(0), ShouldEqual, model.Team1)
		})

		Convey("Then Labels returns a copy", func() {
			l := p.Labels()
			l[1] = model.Team1
			So(p.At(1), ShouldEqual, model.Team2)
		})

		Convey("Then members and counts are reported", func() {
			So(p.Len(), ShouldEqual, 4)
			So(p.Count(model.Team1), ShouldEqual, 2)
			So(p.Members(model.Team1), ShouldResemble, []int{0, 2})
			So(p.Members(model.Team2), ShouldResemble, []int{1, 3})
		})

		Convey("When swapping", func() {
			q := p.Swap(1, 2)

			Convey("Then a new partition is returned", func() {
				So(q.Key(), ShouldEqual, "1122")
				So(p.Key(), ShouldEqual, "1212")
				So(q.Equal(p), ShouldBeFalse)
			})
		})

		Convey("When mirroring", func() {
			m := p.Mirror()
			So(m.String(), ShouldEqual, "[2, 1, 2, 1]")
			So(m.Mirror().Equal(p), ShouldBeTrue)
		})

		Convey("Then partitions of different length differ", func() {
			So(p.Equal(model.NewPartition(model.Team1)), ShouldBeFalse)
		})
	})
}
