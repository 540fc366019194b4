package api

import (
	"net/http"

	"github.com/okian/tipoff/internal/config"
	"github.com/okian/tipoff/internal/domain/model"
)

// ConfigHandler handles GET /config.
type ConfigHandler struct {
	cfg *config.Config
}

type configResponse struct {
	RollingWeights      []float64 `json:"rolling_weights"`
	Stats               []string  `json:"stats"`
	EloMean             float64   `json:"elo_mean"`
	EloK                float64   `json:"elo_k"`
	EloHomeAdvantage    float64   `json:"elo_home_advantage"`
	EloRegressionMean   float64   `json:"elo_regression_mean"`
	EloRegressionWeight float64   `json:"elo_regression_weight"`
	SeasonCutoff        string    `json:"season_cutoff"`
	SkipUnknownOutcomes bool      `json:"skip_unknown_outcomes"`
	MaxRequestGames     int       `json:"max_request_games"`
}

// HandleGetConfig returns the engine settings every request pass starts from.
func (h *ConfigHandler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_config"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	cutoff, err := h.cfg.Cutoff()
	if err != nil {
		writeKindError(w, WrapKind(op, ErrInvalidSetup, err))
		return
	}
	writeJSON(w, http.StatusOK, configResponse{
		RollingWeights:      h.cfg.RollingWeights,
		Stats:               model.DefaultStatSet().Names(),
		EloMean:             h.cfg.EloMean,
		EloK:                h.cfg.EloK,
		EloHomeAdvantage:    h.cfg.EloHomeAdvantage,
		EloRegressionMean:   h.cfg.EloRegressionMean,
		EloRegressionWeight: h.cfg.EloRegressionWeight,
		SeasonCutoff:        cutoff.String(),
		SkipUnknownOutcomes: h.cfg.SkipUnknownOutcomes,
		MaxRequestGames:     h.cfg.MaxRequestGames,
	})
}
