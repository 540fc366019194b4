package csvio_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/okian/tipoff/internal/adapters/csvio"
	"github.com/okian/tipoff/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func statSet() model.StatSet {
	s, _ := model.NewStatSet([]string{"PTS", "AST"})
	return s
}

const statsCSV = `AwayTeam,HomeTeam,Date,InnerJoinCode,WL_AWAY,PTS_AWAY,AST_AWAY,WL_HOME,PTS_HOME,AST_HOME
NJN,BOS,2010-11-02,,L,90,20,W,101,25
LAL,SEA,2007-10-31,LALOKC20071031,W,110,,L,100,18
`

func TestReadGames(t *testing.T) {
	Convey("Given a box-score table with a relocated team and a missing cell", t, func() {
		games, err := csvio.ReadGames(strings.NewReader(statsCSV), statSet())
		So(err, ShouldBeNil)
		So(len(games), ShouldEqual, 2)

		Convey("Then codes are canonical and the join code is derived when absent", func() {
			So(games[0].AwayTeam, ShouldEqual, "BKN")
			So(games[0].JoinCode, ShouldEqual, "BKNBOS20101102")
			So(games[1].HomeTeam, ShouldEqual, "OKC")
			So(games[1].JoinCode, ShouldEqual, "LALOKC20071031")
		})

		Convey("Then results, scores and stats are aligned to the statistic set", func() {
			g := games[0]
			So(g.Date.Equal(time.Date(2010, 11, 2, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)
			So(g.HomeResult, ShouldEqual, model.Win)
			So(g.AwayResult, ShouldEqual, model.Loss)
			So(g.HomeScore, ShouldEqual, 101)
			So(g.AwayScore, ShouldEqual, 90)
			So(g.HomeStats, ShouldResemble, []float64{101, 25})
			So(g.AwayStats, ShouldResemble, []float64{90, 20})
			So(g.HomeSpread, ShouldBeNil)
		})

		Convey("Then an empty stat cell is a missing measurement", func() {
			So(math.IsNaN(games[1].AwayStats[1]), ShouldBeTrue)
		})

		Convey("Then Seq keeps the row order", func() {
			So(games[0].Seq, ShouldEqual, 0)
			So(games[1].Seq, ShouldEqual, 1)
		})
	})

	Convey("Given a table missing a statistic column", t, func() {
		in := "AwayTeam,HomeTeam,Date,WL_AWAY,PTS_AWAY,WL_HOME,PTS_HOME\nA,B,2020-01-01,L,1,W,2\n"
		_, err := csvio.ReadGames(strings.NewReader(in), statSet())
		So(errors.Is(err, csvio.ErrMissingColumn), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "AST_HOME")
	})

	Convey("Given a malformed row", t, func() {
		in := strings.Replace(statsCSV, "2010-11-02", "11/02/2010", 1)
		_, err := csvio.ReadGames(strings.NewReader(in), statSet())
		So(errors.Is(err, csvio.ErrBadRow), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "line 2")
	})

	Convey("Given strict team checking", t, func() {
		in := strings.Replace(statsCSV, "NJN", "XYZ", 1)
		_, err := csvio.ReadGames(strings.NewReader(in), statSet(), csvio.WithStrictTeams(true))
		So(errors.Is(err, csvio.ErrUnknownTeam), ShouldBeTrue)
	})
}

func TestReadLines(t *testing.T) {
	Convey("Given a line table keyed by join code", t, func() {
		in := "Date,HomeTeam,AwayTeam,HomeSpread,InnerJoinCode\n" +
			"2010-11-02,BOS,BKN,-7.5,BKNBOS20101102\n" +
			"2010-11-03,MIA,ORL,pk,ORLMIA20101103\n" +
			"2010-11-04,DEN,UTA,,UTADEN20101104\n" +
			"2010-11-05,DAL,SAS,-700,SASDAL20101105\n"
		lines, dropped, err := csvio.ReadLines(strings.NewReader(in))

		Convey("Then spreads are parsed and implausible ones dropped", func() {
			So(err, ShouldBeNil)
			So(dropped, ShouldEqual, 2)
			So(len(lines), ShouldEqual, 2)
			So(lines[0].JoinCode, ShouldEqual, "BKNBOS20101102")
			So(lines[0].HomeSpread, ShouldEqual, -7.5)
			So(lines[1].HomeSpread, ShouldEqual, 0)
		})
	})

	Convey("Given a line table with city names and no join code", t, func() {
		in := "Date,HomeTeam,AwayTeam,HomeSpread\n2008-01-04,GoldenState,Seattle,-3\n"
		lines, _, err := csvio.ReadLines(strings.NewReader(in))

		Convey("Then the join code is built from canonical codes", func() {
			So(err, ShouldBeNil)
			So(lines[0].JoinCode, ShouldEqual, "OKCGSW20080104")
		})
	})

	Convey("Given a line table with an unknown city", t, func() {
		in := "Date,HomeTeam,AwayTeam,HomeSpread\n2008-01-04,Gotham,Seattle,-3\n"
		_, _, err := csvio.ReadLines(strings.NewReader(in))
		So(errors.Is(err, csvio.ErrUnknownTeam), ShouldBeTrue)
	})

	Convey("Given a non-numeric spread", t, func() {
		in := "InnerJoinCode,HomeSpread\nAB20200101,seven\n"
		_, _, err := csvio.ReadLines(strings.NewReader(in))
		So(errors.Is(err, csvio.ErrBadRow), ShouldBeTrue)
	})
}

func TestWriter(t *testing.T) {
	Convey("Given a writer over two statistics", t, func() {
		var buf bytes.Buffer
		w := csvio.NewWriter(&buf, statSet())
		agree := false

		row := model.EnrichedGameRecord{
			Date:                       time.Date(2020, 12, 22, 0, 0, 0, 0, time.UTC),
			HomeTeam:                   "BOS",
			AwayTeam:                   "LAL",
			HomeResult:                 model.Win,
			AwayResult:                 model.Loss,
			HomeScore:                  110,
			AwayScore:                  100,
			HomeSpread:                 model.Float(2.5),
			EloHome:                    1507.5,
			EloAway:                    1492.25,
			HomeRA:                     []*float64{model.Float(101.5), nil},
			AwayRA:                     []*float64{nil, model.Float(20)},
			HomeSpreadActual:           -10,
			HomeSpreadCorrectDirection: &agree,
		}

		Convey("When a row is written and flushed", func() {
			So(w.Write(context.Background(), row), ShouldBeNil)
			So(w.Flush(), ShouldBeNil)

			records, err := csv.NewReader(&buf).ReadAll()
			So(err, ShouldBeNil)

			Convey("Then the header lists context, Elo, margin, features and label", func() {
				So(records[0], ShouldResemble, []string{
					"Date", "HomeTeam", "AwayTeam", "WL_HOME", "WL_AWAY", "HomeSpread",
					"PTS_HOME", "PTS_AWAY", "ELO_HOME", "ELO_AWAY", "HomeSpreadActual",
					"PTS_AWAY_RA", "PTS_HOME_RA", "AST_AWAY_RA", "AST_HOME_RA",
					"HomeSpreadCorrectDirection",
				})
			})

			Convey("Then absent values are empty cells", func() {
				So(records[1], ShouldResemble, []string{
					"2020-12-22", "BOS", "LAL", "W", "L", "2.5",
					"110", "100", "1507.5", "1492.25", "-10",
					"", "101.5", "20", "",
					"0",
				})
				So(w.Rows(), ShouldEqual, 1)
			})
		})

		Convey("When nothing is written", func() {
			So(w.Flush(), ShouldBeNil)

			Convey("Then the table still has a header", func() {
				So(strings.HasPrefix(buf.String(), "Date,HomeTeam"), ShouldBeTrue)
			})
		})

		Convey("When a row has the wrong width", func() {
			row.HomeRA = nil
			err := w.Write(context.Background(), row)
			So(errors.Is(err, csvio.ErrBadRow), ShouldBeTrue)
		})
	})
}
