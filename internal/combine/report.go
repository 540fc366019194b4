package combine

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/okian/tipoff/internal/adapters/mq/worker"
	"github.com/okian/tipoff/internal/domain/model"
	"github.com/okian/tipoff/internal/domain/types"
)

func printStandings(out io.Writer, entries []types.Entry) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(out, "Elo standings")
	fmt.Fprintln(tw, "RANK\tTEAM\tRATING\t")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%.1f\t\n", e.Rank, e.Team, e.Rating)
	}
	_ = tw.Flush()
}

func printSweep(out io.Writer, results []worker.Result, stats model.StatSet) {
	pts, ok := stats.Index(model.PointsStat)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(out, "Weight sweep")
	fmt.Fprintln(tw, "WEIGHTS\tROWS\tCOMPLETE\tPTS_HIT_RATE\tLEADER\tERROR")
	for i := range results {
		r := &results[i]
		rate := "-"
		if ok {
			if v, n := marginHitRate(r.Rows, pts); n > 0 {
				rate = fmt.Sprintf("%.3f", v)
			}
		}
		leader := "-"
		if len(r.Standings) > 0 {
			leader = r.Standings[0].Team
		}
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\n",
			formatWeights(r.Weights), len(r.Rows), r.Complete, rate, leader, errText)
	}
	_ = tw.Flush()
}

// marginHitRate scores a weighting by how often the rolling points margin
// (away minus home) has the same sign as the realized margin. Rows without
// both averages or with a tied prediction are not counted.
func marginHitRate(rows []model.EnrichedGameRecord, pts int) (float64, int) {
	hits, n := 0, 0
	for i := range rows {
		h, a := rows[i].HomeRA[pts], rows[i].AwayRA[pts]
		if h == nil || a == nil {
			continue
		}
		predicted := *a - *h
		if predicted == 0 || rows[i].HomeSpreadActual == 0 {
			continue
		}
		n++
		if math.Signbit(predicted) == math.Signbit(rows[i].HomeSpreadActual) {
			hits++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return float64(hits) / float64(n), n
}

func formatWeights(w []float64) string {
	parts := make([]string, len(w))
	for i, v := range w {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return strings.Join(parts, " ")
}
