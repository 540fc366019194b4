package model_test

import (
	"errors"
	"math"
	"testing"
	"time"

	model "github.com/okian/tipoff/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func day(s string) time.Time {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestGameRecord(t *testing.T) {
	convey.Convey("Given game records", t, func() {
		convey.Convey("When exactly one side won", func() {
			g := model.GameRecord{HomeResult: model.Win, AwayResult: model.Loss}
			convey.So(g.Decisive(), convey.ShouldBeTrue)
		})

		convey.Convey("When both or neither side won", func() {
			both := model.GameRecord{HomeResult: model.Win, AwayResult: model.Win}
			neither := model.GameRecord{HomeResult: model.Loss, AwayResult: model.Loss}
			blank := model.GameRecord{HomeResult: model.ParseResult(""), AwayResult: model.Win}
			convey.So(both.Decisive(), convey.ShouldBeFalse)
			convey.So(neither.Decisive(), convey.ShouldBeFalse)
			convey.So(blank.Decisive(), convey.ShouldBeFalse)
		})

		convey.Convey("When parsing results", func() {
			convey.So(model.ParseResult(" w "), convey.ShouldEqual, model.Win)
			convey.So(model.ParseResult("l"), convey.ShouldEqual, model.Loss)
			convey.So(model.ParseResult("T").Valid(), convey.ShouldBeFalse)
		})

		convey.Convey("When describing a game", func() {
			g := model.GameRecord{Date: day("2020-10-20"), HomeTeam: "BOS", AwayTeam: "MIA"}
			convey.So(g.Describe(), convey.ShouldEqual, "2020-10-20 MIA@BOS")
		})
	})
}

func TestJoinCodeAndDates(t *testing.T) {
	convey.Convey("Given a date and two teams", t, func() {
		d := day("2008-01-05")

		convey.Convey("Then the join code is away, home, compact date", func() {
			convey.So(model.JoinCode("LAL", "BOS", d), convey.ShouldEqual, "LALBOS20080105")
		})

		convey.Convey("Then malformed dates are rejected", func() {
			_, err := model.ParseDate("05/01/2008")
			convey.So(errors.Is(err, model.ErrBadDate), convey.ShouldBeTrue)
		})
	})
}

func TestSpreadDirectionAgrees(t *testing.T) {
	convey.Convey("Given a realized margin and a market line", t, func() {
		convey.Convey("When the line is absent", func() {
			convey.So(model.SpreadDirectionAgrees(-4, nil), convey.ShouldBeNil)
			convey.So(model.SpreadDirectionAgrees(-4, model.Float(math.NaN())), convey.ShouldBeNil)
		})

		convey.Convey("When signs agree", func() {
			got := model.SpreadDirectionAgrees(-4, model.Float(-5.5))
			convey.So(got, convey.ShouldNotBeNil)
			convey.So(*got, convey.ShouldBeTrue)
		})

		convey.Convey("When signs differ", func() {
			got := model.SpreadDirectionAgrees(3, model.Float(-5.5))
			convey.So(*got, convey.ShouldBeFalse)
		})

		convey.Convey("When the line is a pick'em and the margin is not zero", func() {
			got := model.SpreadDirectionAgrees(3, model.Float(0))
			convey.So(*got, convey.ShouldBeFalse)
		})
	})
}

func TestSortChronological(t *testing.T) {
	convey.Convey("Given games out of date order with a same-day pair", t, func() {
		in := []model.GameRecord{
			{Seq: 0, Date: day("2020-01-03"), HomeTeam: "C"},
			{Seq: 1, Date: day("2020-01-01"), HomeTeam: "A"},
			{Seq: 2, Date: day("2020-01-02"), HomeTeam: "B1"},
			{Seq: 3, Date: day("2020-01-02"), HomeTeam: "B2"},
		}

		out := model.SortChronological(in)

		convey.Convey("Then dates ascend and same-day games keep arrival order", func() {
			got := []string{out[0].HomeTeam, out[1].HomeTeam, out[2].HomeTeam, out[3].HomeTeam}
			convey.So(got, convey.ShouldResemble, []string{"A", "B1", "B2", "C"})
		})

		convey.Convey("Then the input is untouched", func() {
			convey.So(in[0].HomeTeam, convey.ShouldEqual, "C")
		})
	})
}

func TestStatSet(t *testing.T) {
	convey.Convey("Given stat names", t, func() {
		convey.Convey("When using the default set", func() {
			s := model.DefaultStatSet()
			convey.So(s.Len(), convey.ShouldEqual, 20)
			i, ok := s.Index("PTS")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(s.Name(i), convey.ShouldEqual, "PTS")
		})

		convey.Convey("When names are duplicated or blank", func() {
			_, err := model.NewStatSet([]string{"PTS", "PTS"})
			convey.So(errors.Is(err, model.ErrInvalidStatSet), convey.ShouldBeTrue)
			_, err = model.NewStatSet([]string{"PTS", " "})
			convey.So(errors.Is(err, model.ErrInvalidStatSet), convey.ShouldBeTrue)
			_, err = model.NewStatSet(nil)
			convey.So(errors.Is(err, model.ErrInvalidStatSet), convey.ShouldBeTrue)
		})

		convey.Convey("When deriving column labels", func() {
			convey.So(model.HomeColumn("AST"), convey.ShouldEqual, "AST_HOME")
			convey.So(model.AwayRAColumn("AST"), convey.ShouldEqual, "AST_AWAY_RA")
			convey.So(model.HomeRAColumn("AST"), convey.ShouldEqual, "AST_HOME_RA")
			convey.So(model.AwayColumn("AST"), convey.ShouldEqual, "AST_AWAY")
		})

		convey.Convey("When mutating the names copy", func() {
			s := model.DefaultStatSet()
			names := s.Names()
			names[0] = "X"
			convey.So(s.Name(0), convey.ShouldEqual, "MIN")
		})
	})
}
