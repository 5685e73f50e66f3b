package scoring_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/okian/teamsplit/internal/domain/model"
	"github.com/okian/teamsplit/internal/domain/partition"
	"github.com/okian/teamsplit/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func split(labels ...model.Team) model.Partition { return model.NewPartition(labels...) }

const (
	t1 = model.Team1
	t2 = model.Team2
)

func TestImbalance(t *testing.T) {
	Convey("Given ranks 3,1,2,2", t, func() {
		ranks := []int{3, 1, 2, 2}

		Convey("Then each split scores the absolute rank difference", func() {
			So(scoring.Imbalance(split(t1, t1, t2, t2), ranks), ShouldEqual, 0)
			So(scoring.Imbalance(split(t1, t2, t1, t2), ranks), ShouldEqual, 2)
			So(scoring.Imbalance(split(t1, t2, t2, t1), ranks), ShouldEqual, 2)
		})
	})

	Convey("Given two players", t, func() {
		Convey("Then the score is their rank difference", func() {
			So(scoring.Imbalance(split(t1, t2), []int{1, 5}), ShouldEqual, 4)
			So(scoring.Imbalance(split(t1, t2), []int{5, 1}), ShouldEqual, 4)
		})
	})

	Convey("Given zero ranks", t, func() {
		So(scoring.Imbalance(split(t1, t2, t2), []int{0, 0, 0}), ShouldEqual, 0)
	})

	Convey("Given labels outside the two teams", t, func() {
		ranks := []int{4, 1, 2}

		Convey("Then those positions count for neither side", func() {
			So(func() { scoring.Imbalance(split(t1, model.Team(3), t2), ranks) }, ShouldNotPanic)
			So(scoring.Imbalance(split(t1, model.Team(3), t2), ranks), ShouldEqual, 2)
			So(scoring.Imbalance(split(t1, model.Team(0), t2), ranks), ShouldEqual, 2)
		})
	})
}

func TestImbalanceSymmetry(t *testing.T) {
	Convey("Given random rosters", t, func() {
		f := gofakeit.New(7)

		for round := 0; round < 25; round++ {
			n := f.IntRange(2, 10)
			ranks := make([]int, n)
			for i := range ranks {
				ranks[i] = f.IntRange(0, 12)
			}

			seq, err := partition.Enumerate(n, partition.CanonicalSize(n))
			So(err, ShouldBeNil)

			symmetric := true
			for p := range seq {
				s := scoring.Imbalance(p, ranks)
				if s < 0 || s != scoring.Imbalance(p.Mirror(), ranks) {
					symmetric = false
				}
			}
			So(symmetric, ShouldBeTrue)
		}
	})
}

func TestRankScorer(t *testing.T) {
	Convey("Given players constructed with explicit positions", t, func() {
		a := model.NewPlayer("a", 1)
		a.Win()
		a.Win() // rank 3
		b := model.NewPlayer("b", 0) // rank 1

		s := scoring.NewRankScorer([]model.Player{a, b})

		Convey("Then ranks are stored by position, not slice order", func() {
			So(s.Ranks(), ShouldResemble, []int{1, 3})
			So(s.Score(split(t1, t2)), ShouldEqual, 2)
		})

		Convey("Then it satisfies Scorer", func() {
			var sc scoring.Scorer = s
			So(sc.Score(split(t2, t1)), ShouldEqual, 2)
		})
	})

	Convey("FromRanks copies its input", t, func() {
		r := []int{4, 4}
		s := scoring.FromRanks(r)
		r[0] = 0
		So(s.Score(split(t1, t2)), ShouldEqual, 0)
	})
}
