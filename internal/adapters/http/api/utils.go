package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/okian/tipoff/internal/domain/model"
	"github.com/okian/tipoff/internal/domain/teams"
)

// passRequest is the body of POST /features and POST /standings. Games must
// be in chronological order.
type passRequest struct {
	Weights []float64     `json:"weights,omitempty" validate:"omitempty,min=1,dive,gte=0,lte=1"`
	Stats   []string      `json:"stats,omitempty" validate:"omitempty,dive,required"`
	Games   []gameRequest `json:"games" validate:"required,min=1,dive"`
}

// gameRequest is one finished game. Stat maps are keyed by statistic name;
// a missing or null entry is a missing measurement.
type gameRequest struct {
	Date       string              `json:"date" validate:"required,datetime=2006-01-02"`
	HomeTeam   string              `json:"home_team" validate:"required"`
	AwayTeam   string              `json:"away_team" validate:"required"`
	HomeResult string              `json:"home_result"`
	AwayResult string              `json:"away_result"`
	HomeScore  *float64            `json:"home_score" validate:"required"`
	AwayScore  *float64            `json:"away_score" validate:"required"`
	HomeSpread *float64            `json:"home_spread,omitempty"`
	HomeStats  map[string]*float64 `json:"home_stats,omitempty"`
	AwayStats  map[string]*float64 `json:"away_stats,omitempty"`
}

func (s *Server) decode(op string, w http.ResponseWriter, r *http.Request) (*passRequest, error) {
	var req passRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, WrapKind(op, ErrTooLarge, err)
		}
		return nil, WrapKind(op, ErrBadRequest, err)
	}
	if err := s.validate.Struct(&req); err != nil {
		return nil, WrapKind(op, ErrBadRequest, describeValidation(err))
	}
	if len(req.Games) > s.cfg.MaxRequestGames {
		return nil, WrapKind(op, ErrTooLarge,
			fmt.Errorf("%d games exceeds the limit of %d", len(req.Games), s.cfg.MaxRequestGames))
	}
	return &req, nil
}

// describeValidation flattens validator errors into one message naming the
// offending fields.
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Errorf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return errors.Join(msgs...)
}

func (req *passRequest) statSet() (model.StatSet, error) {
	if len(req.Stats) == 0 {
		return model.DefaultStatSet(), nil
	}
	return model.NewStatSet(req.Stats)
}

// records converts the request games in order. Seq is the request position.
func (req *passRequest) records(stats model.StatSet) ([]model.GameRecord, error) {
	out := make([]model.GameRecord, len(req.Games))
	for i := range req.Games {
		g, err := req.Games[i].record(stats)
		if err != nil {
			return nil, fmt.Errorf("games[%d]: %w", i, err)
		}
		g.Seq = i
		out[i] = g
	}
	return out, nil
}

func (gr *gameRequest) record(stats model.StatSet) (model.GameRecord, error) {
	date, err := model.ParseDate(gr.Date)
	if err != nil {
		return model.GameRecord{}, err
	}
	g := model.GameRecord{
		Date:       date,
		HomeTeam:   teams.Canonical(gr.HomeTeam),
		AwayTeam:   teams.Canonical(gr.AwayTeam),
		HomeResult: model.ParseResult(gr.HomeResult),
		AwayResult: model.ParseResult(gr.AwayResult),
		HomeScore:  *gr.HomeScore,
		AwayScore:  *gr.AwayScore,
	}
	g.JoinCode = model.JoinCode(g.AwayTeam, g.HomeTeam, g.Date)
	if gr.HomeSpread != nil {
		g.HomeSpread = model.Float(*gr.HomeSpread)
	}
	if g.HomeStats, err = statVector(stats, gr.HomeStats); err != nil {
		return model.GameRecord{}, fmt.Errorf("home_stats: %w", err)
	}
	if g.AwayStats, err = statVector(stats, gr.AwayStats); err != nil {
		return model.GameRecord{}, fmt.Errorf("away_stats: %w", err)
	}
	return g, nil
}

// statVector aligns a stat map with the set. Unknown names are rejected so
// typos do not silently become missing measurements.
func statVector(stats model.StatSet, values map[string]*float64) ([]float64, error) {
	out := make([]float64, stats.Len())
	for i := range out {
		out[i] = math.NaN()
	}
	var unknown []string
	for name, v := range values {
		i, ok := stats.Index(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		if v != nil {
			out[i] = *v
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown statistics %v", unknown)
	}
	return out, nil
}
