package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/tipoff/internal/adapters/repository"
	"github.com/okian/tipoff/internal/domain/teams"
	"github.com/okian/tipoff/internal/domain/types"
)

// StandingsHandler handles POST /standings.
type StandingsHandler struct {
	server *Server
}

type standingsResponse struct {
	RunID       string        `json:"run_id"`
	Regressions int           `json:"regressions"`
	Teams       int           `json:"teams"`
	Standings   []types.Entry `json:"standings"`
}

// HandlePostStandings runs one pass and returns the final Elo table.
// Query parameters: limit=N keeps the top N (0 or absent keeps all);
// team=CODE returns that team's entry alone.
func (h *StandingsHandler) HandlePostStandings(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_standings"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeKindError(w, NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}

	p, err := h.server.runPass(op, w, r)
	if err != nil {
		writeKindError(w, err)
		return
	}

	store := repository.NewStandings()
	if err := store.Replace(r.Context(), p.assembler.Ratings()); err != nil {
		writeKindError(w, Wrap(op, err))
		return
	}
	count := store.Count(r.Context())
	resp := standingsResponse{
		RunID:       p.assembler.RunID(),
		Regressions: p.assembler.Regressions(),
		Teams:       count,
	}

	if team := r.URL.Query().Get("team"); team != "" {
		entry, err := store.Rank(r.Context(), teams.Canonical(team))
		if errors.Is(err, repository.ErrNotFound) {
			writeKindError(w, WrapKind(op, ErrNotFound, err))
			return
		}
		if err != nil {
			writeKindError(w, Wrap(op, err))
			return
		}
		resp.Standings = []types.Entry{entry}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	if resp.Standings, err = store.TopN(r.Context(), limit); err != nil {
		writeKindError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
