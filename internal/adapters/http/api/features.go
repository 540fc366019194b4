package api

import (
	"net/http"

	"github.com/okian/tipoff/internal/domain/model"
)

// FeaturesHandler handles POST /features.
type FeaturesHandler struct {
	server *Server
}

// featureRow is the JSON shape of one enriched game. Absent features are null.
type featureRow struct {
	Index                      int                 `json:"index"`
	Date                       string              `json:"date"`
	HomeTeam                   string              `json:"home_team"`
	AwayTeam                   string              `json:"away_team"`
	HomeResult                 string              `json:"home_result"`
	AwayResult                 string              `json:"away_result"`
	HomeScore                  float64             `json:"home_score"`
	AwayScore                  float64             `json:"away_score"`
	JoinCode                   string              `json:"join_code"`
	HomeSpread                 *float64            `json:"home_spread"`
	EloHome                    float64             `json:"elo_home"`
	EloAway                    float64             `json:"elo_away"`
	HomeRA                     map[string]*float64 `json:"home_ra"`
	AwayRA                     map[string]*float64 `json:"away_ra"`
	HomeSpreadActual           float64             `json:"home_spread_actual"`
	HomeSpreadCorrectDirection *bool               `json:"home_spread_correct_direction"`
}

type featuresResponse struct {
	RunID       string       `json:"run_id"`
	Weights     []float64    `json:"weights"`
	Stats       []string     `json:"stats"`
	Skipped     int          `json:"skipped"`
	Regressions int          `json:"regressions"`
	Rows        []featureRow `json:"rows"`
}

// HandlePostFeatures runs one pass over the posted games and returns the
// enriched rows in input order.
func (h *FeaturesHandler) HandlePostFeatures(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_features"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	p, err := h.server.runPass(op, w, r)
	if err != nil {
		writeKindError(w, err)
		return
	}

	names := p.stats.Names()
	resp := featuresResponse{
		RunID:       p.assembler.RunID(),
		Weights:     p.assembler.Weights(),
		Stats:       names,
		Skipped:     p.assembler.Skipped(),
		Regressions: p.assembler.Regressions(),
		Rows:        make([]featureRow, len(p.rows)),
	}
	for i := range p.rows {
		resp.Rows[i] = toFeatureRow(&p.rows[i], names)
	}
	writeJSON(w, http.StatusOK, resp)
}

func toFeatureRow(r *model.EnrichedGameRecord, names []string) featureRow {
	out := featureRow{
		Index:                      r.Index,
		Date:                       r.Date.Format(model.DateLayout),
		HomeTeam:                   r.HomeTeam,
		AwayTeam:                   r.AwayTeam,
		HomeResult:                 string(r.HomeResult),
		AwayResult:                 string(r.AwayResult),
		HomeScore:                  r.HomeScore,
		AwayScore:                  r.AwayScore,
		JoinCode:                   r.JoinCode,
		HomeSpread:                 r.HomeSpread,
		EloHome:                    r.EloHome,
		EloAway:                    r.EloAway,
		HomeRA:                     make(map[string]*float64, len(names)),
		AwayRA:                     make(map[string]*float64, len(names)),
		HomeSpreadActual:           r.HomeSpreadActual,
		HomeSpreadCorrectDirection: r.HomeSpreadCorrectDirection,
	}
	for i, name := range names {
		out.HomeRA[name] = r.HomeRA[i]
		out.AwayRA[name] = r.AwayRA[i]
	}
	return out
}
