package app_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/okian/tipoff/internal/app"
	"github.com/okian/tipoff/internal/domain/elo"
	"github.com/okian/tipoff/internal/domain/model"
	"github.com/okian/tipoff/internal/domain/rolling"
	"github.com/okian/tipoff/internal/domain/season"
	"github.com/okian/tipoff/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const eps = 1e-9

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func twoStats() model.StatSet {
	s, err := model.NewStatSet([]string{"PTS", "AST"})
	if err != nil {
		panic(err)
	}
	return s
}

// played builds a decisive game; the home side wins when homePts > awayPts.
func played(date time.Time, home, away string, homePts, awayPts float64) model.GameRecord {
	hr, ar := model.Win, model.Loss
	if awayPts > homePts {
		hr, ar = model.Loss, model.Win
	}
	return model.GameRecord{
		Date:       date,
		HomeTeam:   home,
		AwayTeam:   away,
		HomeResult: hr,
		AwayResult: ar,
		HomeScore:  homePts,
		AwayScore:  awayPts,
		HomeStats:  []float64{homePts, homePts / 10},
		AwayStats:  []float64{awayPts, awayPts / 10},
		JoinCode:   model.JoinCode(away, home, date),
	}
}

func newAssembler(opts ...app.Option) *app.Assembler {
	base := []app.Option{app.WithStats(twoStats()), app.WithLogger(logger.Nop())}
	a, err := app.New(append(base, opts...)...)
	if err != nil {
		panic(err)
	}
	return a
}

func TestAssembler_New(t *testing.T) {
	Convey("Given assembler construction", t, func() {
		Convey("When weights do not sum to one", func() {
			_, err := app.New(app.WithWeights([]float64{0.5, 0.4}), app.WithLogger(logger.Nop()))
			So(errors.Is(err, rolling.ErrInvalidWeights), ShouldBeTrue)
		})

		Convey("When the Elo constants are invalid", func() {
			_, err := app.New(app.WithElo(elo.WithK(0)), app.WithLogger(logger.Nop()))
			So(errors.Is(err, elo.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When the cutoff does not exist", func() {
			_, err := app.New(app.WithCutoff(season.Cutoff{Month: time.February, Day: 30}), app.WithLogger(logger.Nop()))
			So(errors.Is(err, season.ErrInvalidCutoff), ShouldBeTrue)
		})

		Convey("When using defaults", func() {
			a, err := app.New(app.WithLogger(logger.Nop()), app.WithRunID("run-1"))
			So(err, ShouldBeNil)
			So(a.Weights(), ShouldResemble, []float64{0.4, 0.3, 0.2, 0.1})
			So(a.Stats().Len(), ShouldEqual, len(model.DefaultStatNames))
			So(a.RunID(), ShouldEqual, "run-1")
		})

		Convey("When no run id is given", func() {
			a := newAssembler()
			So(a.RunID(), ShouldNotBeEmpty)
			So(newAssembler().RunID(), ShouldNotEqual, a.RunID())
		})
	})
}

func TestAssembler_SingleWeightScenario(t *testing.T) {
	Convey("Given W=1, HA=100, K=20 and two teams at 1500", t, func() {
		ctx := context.Background()
		a := newAssembler(app.WithWeights([]float64{1}))

		Convey("When A beats B at home", func() {
			g1 := played(day(2020, 12, 22), "A", "B", 110, 100)
			r1, err := a.Step(ctx, g1)
			So(err, ShouldBeNil)

			Convey("Then no rolling feature exists yet", func() {
				for i := range r1.HomeRA {
					So(r1.HomeRA[i], ShouldBeNil)
					So(r1.AwayRA[i], ShouldBeNil)
				}
				So(r1.EloHome, ShouldEqual, 1500)
				So(r1.EloAway, ShouldEqual, 1500)
			})

			Convey("Then A gains exactly what B loses", func() {
				ra := a.Ratings()
				So(ra["A"], ShouldBeGreaterThan, 1500)
				So(ra["B"], ShouldBeLessThan, 1500)
				So(math.Abs(ra["A"]-1500), ShouldAlmostEqual, math.Abs(ra["B"]-1500), eps)
			})

			Convey("When B hosts A next", func() {
				after := a.Ratings()
				g2 := played(day(2020, 12, 24), "B", "A", 95, 105)
				r2, err := a.Step(ctx, g2)
				So(err, ShouldBeNil)

				Convey("Then each side's feature equals its single prior value exactly", func() {
					So(*r2.AwayRA[0], ShouldEqual, 110)
					So(*r2.AwayRA[1], ShouldEqual, 11)
					So(*r2.HomeRA[0], ShouldEqual, 100)
				})

				Convey("Then the Elo inputs are the post-game-1 ratings", func() {
					So(r2.EloHome, ShouldEqual, after["B"])
					So(r2.EloAway, ShouldEqual, after["A"])
				})

				Convey("Then rows are indexed in input order", func() {
					So(r1.Index, ShouldEqual, 0)
					So(r2.Index, ShouldEqual, 1)
					So(a.Processed(), ShouldEqual, 2)
				})
			})
		})
	})
}

func TestAssembler_NoLeakage(t *testing.T) {
	Convey("Given two streams that differ only in the last game's outcome", t, func() {
		ctx := context.Background()
		prefix := []model.GameRecord{
			played(day(2021, 1, 1), "A", "B", 100, 90),
			played(day(2021, 1, 2), "B", "A", 101, 99),
		}
		lastWin := played(day(2021, 1, 3), "A", "B", 120, 80)
		lastLoss := played(day(2021, 1, 3), "A", "B", 70, 130)

		rowsWin, err := newAssembler(app.WithWeights([]float64{0.5, 0.5})).Run(ctx, append(append([]model.GameRecord(nil), prefix...), lastWin))
		So(err, ShouldBeNil)
		rowsLoss, err := newAssembler(app.WithWeights([]float64{0.5, 0.5})).Run(ctx, append(append([]model.GameRecord(nil), prefix...), lastLoss))
		So(err, ShouldBeNil)

		Convey("Then the last row's features are identical", func() {
			w, l := rowsWin[2], rowsLoss[2]
			So(w.EloHome, ShouldEqual, l.EloHome)
			So(w.EloAway, ShouldEqual, l.EloAway)
			So(*w.HomeRA[0], ShouldEqual, *l.HomeRA[0])
			So(*w.AwayRA[1], ShouldEqual, *l.AwayRA[1])
			So(*w.HomeRA[0], ShouldAlmostEqual, 0.5*99+0.5*100, eps)
		})

		Convey("Then only the realized margin differs", func() {
			So(rowsWin[2].HomeSpreadActual, ShouldEqual, -40)
			So(rowsLoss[2].HomeSpreadActual, ShouldEqual, 60)
		})
	})
}

func TestAssembler_SeasonBoundary(t *testing.T) {
	Convey("Given the default October 15 cutoff", t, func() {
		ctx := context.Background()

		Convey("When 2020-10-14 is followed by 2020-10-20", func() {
			a := newAssembler()
			_, err := a.Step(ctx, played(day(2020, 10, 14), "A", "B", 100, 90))
			So(err, ShouldBeNil)
			before := a.Ratings()
			row, err := a.Step(ctx, played(day(2020, 10, 20), "A", "B", 100, 90))
			So(err, ShouldBeNil)

			Convey("Then one regression toward 1505 is applied before reading ratings", func() {
				So(a.Regressions(), ShouldEqual, 1)
				So(row.EloHome, ShouldAlmostEqual, before["A"]*0.75+1505*0.25, eps)
				So(row.EloAway, ShouldAlmostEqual, before["B"]*0.75+1505*0.25, eps)
			})
		})

		Convey("When 2020-10-20 is followed by 2020-10-25", func() {
			a := newAssembler()
			_, _ = a.Step(ctx, played(day(2020, 10, 20), "A", "B", 100, 90))
			_, _ = a.Step(ctx, played(day(2020, 10, 25), "A", "B", 100, 90))
			So(a.Regressions(), ShouldEqual, 0)
		})

		Convey("When several games share the first date of the new season", func() {
			a := newAssembler()
			games := []model.GameRecord{
				played(day(2020, 10, 1), "A", "B", 100, 90),
				played(day(2020, 10, 15), "A", "B", 100, 90),
				played(day(2020, 10, 15), "C", "D", 100, 90),
				played(day(2020, 10, 15), "E", "F", 100, 90),
			}
			_, err := a.Run(ctx, games)
			So(err, ShouldBeNil)
			So(a.Regressions(), ShouldEqual, 1)
		})

		Convey("When a whole season passes", func() {
			a := newAssembler()
			games := []model.GameRecord{
				played(day(2019, 12, 1), "A", "B", 100, 90),
				played(day(2020, 3, 1), "A", "B", 100, 90),
				played(day(2020, 10, 20), "A", "B", 100, 90),
				played(day(2021, 2, 1), "A", "B", 100, 90),
				played(day(2021, 10, 16), "A", "B", 100, 90),
			}
			_, err := a.Run(ctx, games)
			So(err, ShouldBeNil)
			So(a.Regressions(), ShouldEqual, 2)
		})
	})
}

func TestAssembler_OrderingViolation(t *testing.T) {
	Convey("Given a stream with a record dated before its predecessor", t, func() {
		ctx := context.Background()
		a := newAssembler()
		games := []model.GameRecord{
			played(day(2021, 1, 5), "A", "B", 100, 90),
			played(day(2021, 1, 3), "C", "D", 100, 90),
			played(day(2021, 1, 7), "A", "B", 100, 90),
		}

		rows, err := a.Run(ctx, games)

		Convey("Then the pass aborts with a diagnostic naming the record", func() {
			So(errors.Is(err, app.ErrOrderingViolation), ShouldBeTrue)
			var v *app.OrderingViolation
			So(errors.As(err, &v), ShouldBeTrue)
			So(v.Index, ShouldEqual, 1)
			So(v.HomeTeam, ShouldEqual, "C")
			So(v.Previous.Equal(day(2021, 1, 5)), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "2021-01-03")
			So(len(rows), ShouldEqual, 1)
		})
	})
}

func TestAssembler_UnknownOutcome(t *testing.T) {
	Convey("Given a record without exactly one win and one loss", t, func() {
		ctx := context.Background()
		tie := played(day(2021, 1, 2), "A", "B", 100, 100)
		tie.HomeResult, tie.AwayResult = model.Win, model.Win
		games := []model.GameRecord{
			played(day(2021, 1, 1), "A", "B", 100, 90),
			tie,
			played(day(2021, 1, 3), "A", "B", 100, 90),
		}

		Convey("When the default policy applies", func() {
			a := newAssembler()
			_, err := a.Run(ctx, games)

			Convey("Then the pass aborts with a record error", func() {
				So(errors.Is(err, app.ErrUnknownOutcome), ShouldBeTrue)
				So(errors.Is(err, elo.ErrUnknownOutcome), ShouldBeTrue)
				var re *app.RecordError
				So(errors.As(err, &re), ShouldBeTrue)
				So(re.Index, ShouldEqual, 1)
				So(a.Processed(), ShouldEqual, 1)
			})
		})

		Convey("When unknown outcomes are skipped", func() {
			a := newAssembler(app.WithSkipUnknownOutcomes(true))
			rows, err := a.Run(ctx, games)

			Convey("Then the record is dropped without touching any state", func() {
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 2)
				So(a.Skipped(), ShouldEqual, 1)

				clean, _ := newAssembler().Run(ctx, []model.GameRecord{games[0], games[2]})
				So(rows[1].EloHome, ShouldEqual, clean[1].EloHome)
				So(rows[1].Index, ShouldEqual, 1)
			})
		})

		Convey("When stepping the record directly under the skip policy", func() {
			a := newAssembler(app.WithSkipUnknownOutcomes(true))
			_, err := a.Step(ctx, tie)
			So(errors.Is(err, app.ErrSkipped), ShouldBeTrue)
			So(errors.Is(err, app.ErrUnknownOutcome), ShouldBeTrue)
			So(len(a.Ratings()), ShouldEqual, 0)
		})
	})

	Convey("Given a record whose stat vector is too short", t, func() {
		g := played(day(2021, 1, 1), "A", "B", 100, 90)
		g.AwayStats = g.AwayStats[:1]
		a := newAssembler(app.WithSkipUnknownOutcomes(true))
		_, err := a.Step(context.Background(), g)
		So(errors.Is(err, app.ErrStatCount), ShouldBeTrue)
		So(len(a.Ratings()), ShouldEqual, 0)
	})
}

func TestAssembler_MissingInputs(t *testing.T) {
	Convey("Given a game with no market line and a missing measurement", t, func() {
		ctx := context.Background()
		a := newAssembler(app.WithWeights([]float64{1}))
		g1 := played(day(2021, 1, 1), "A", "B", 100, 90)
		g1.HomeStats[1] = math.NaN()
		g2 := played(day(2021, 1, 2), "A", "B", 100, 90)
		g2.HomeSpread = model.Float(-4)

		rows, err := a.Run(ctx, []model.GameRecord{g1, g2})
		So(err, ShouldBeNil)

		Convey("Then the direction label is absent without a line", func() {
			So(rows[0].HomeSpread, ShouldBeNil)
			So(rows[0].HomeSpreadCorrectDirection, ShouldBeNil)
		})

		Convey("Then the label compares signs when the line exists", func() {
			So(rows[1].HomeSpreadActual, ShouldEqual, -10)
			So(*rows[1].HomeSpreadCorrectDirection, ShouldBeTrue)
		})

		Convey("Then a missing measurement yields an absent feature, not zero", func() {
			So(*rows[1].HomeRA[0], ShouldEqual, 100)
			So(rows[1].HomeRA[1], ShouldBeNil)
		})

		Convey("Then the caller's record is not aliased", func() {
			*rows[1].HomeSpread = 99
			So(*g2.HomeSpread, ShouldEqual, -4)
		})
	})
}

func TestAssembler_Determinism(t *testing.T) {
	Convey("Given the same stream run twice", t, func() {
		ctx := context.Background()
		var games []model.GameRecord
		teams := []string{"A", "B", "C", "D"}
		for i := 0; i < 40; i++ {
			h, w := teams[i%4], teams[(i+1)%4]
			games = append(games, played(day(2020, 9, 1).AddDate(0, 0, i*3), h, w, float64(90+i%13), float64(95+i%7)))
		}

		r1, err1 := newAssembler(app.WithRunID("x")).Run(ctx, games)
		r2, err2 := newAssembler(app.WithRunID("x")).Run(ctx, games)

		Convey("Then the outputs are identical", func() {
			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)
			So(r1, ShouldResemble, r2)
		})
	})
}

func TestAssembler_SameDayTieBreak(t *testing.T) {
	Convey("Given two same-day games involving the same team", t, func() {
		ctx := context.Background()
		d := day(2021, 1, 1)
		first := played(d, "A", "B", 100, 90)
		first.Seq = 0
		second := played(d, "C", "A", 80, 120)
		second.Seq = 1

		Convey("When sorted chronologically", func() {
			sorted := model.SortChronological([]model.GameRecord{second, first})
			So(sorted[0].Seq, ShouldEqual, 0)

			rows, err := newAssembler(app.WithWeights([]float64{1})).Run(ctx, sorted)
			So(err, ShouldBeNil)

			Convey("Then arrival order decides which game sees the other", func() {
				So(rows[0].HomeRA[0], ShouldBeNil)
				So(*rows[1].AwayRA[0], ShouldEqual, 100)
			})
		})
	})
}
