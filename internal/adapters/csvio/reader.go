// Package csvio reads box-score and betting-line tables and writes the
// combined feature table.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/okian/tipoff/internal/domain/market"
	"github.com/okian/tipoff/internal/domain/model"
	"github.com/okian/tipoff/internal/domain/teams"
)

// Column names shared by the input tables.
const (
	ColDate       = "Date"
	ColHomeTeam   = "HomeTeam"
	ColAwayTeam   = "AwayTeam"
	ColJoinCode   = "InnerJoinCode"
	ColHomeSpread = "HomeSpread"
	ColWLHome     = "WL_HOME"
	ColWLAway     = "WL_AWAY"
)

type header map[string]int

func readHeader(r *csv.Reader) (header, error) {
	cols, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	h := make(header, len(cols))
	for i, c := range cols {
		h[strings.TrimSpace(strings.TrimPrefix(c, "\ufeff"))] = i
	}
	return h, nil
}

func (h header) require(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if _, ok := h[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

func (h header) get(record []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// ReadGames reads the box-score table. Every statistic in stats needs a
// <stat>_HOME and <stat>_AWAY column; scores come from PTS_HOME/PTS_AWAY.
// Empty statistic cells become NaN. Team codes are canonicalized and Seq
// records the row order.
func ReadGames(r io.Reader, stats model.StatSet, opts ...ReadOption) ([]model.GameRecord, error) {
	cfg := newReadConfig(opts)
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	h, err := readHeader(reader)
	if err != nil {
		return nil, err
	}
	required := []string{ColDate, ColHomeTeam, ColAwayTeam, ColWLHome, ColWLAway,
		model.HomeColumn(model.PointsStat), model.AwayColumn(model.PointsStat)}
	for _, name := range stats.Names() {
		required = append(required, model.HomeColumn(name), model.AwayColumn(name))
	}
	if err := h.require(required...); err != nil {
		return nil, err
	}

	var games []model.GameRecord
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		g, err := parseGame(h, record, stats, cfg)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		g.Seq = len(games)
		games = append(games, g)
	}
	return games, nil
}

func parseGame(h header, record []string, stats model.StatSet, cfg readConfig) (model.GameRecord, error) {
	var g model.GameRecord
	var err error

	if g.Date, err = model.ParseDate(h.get(record, ColDate)); err != nil {
		return g, fmt.Errorf("%w: %w", ErrBadRow, err)
	}
	if g.HomeTeam, err = teamCode(h.get(record, ColHomeTeam), cfg); err != nil {
		return g, err
	}
	if g.AwayTeam, err = teamCode(h.get(record, ColAwayTeam), cfg); err != nil {
		return g, err
	}
	g.HomeResult = model.ParseResult(h.get(record, ColWLHome))
	g.AwayResult = model.ParseResult(h.get(record, ColWLAway))

	if g.HomeScore, err = parseFloat(h.get(record, model.HomeColumn(model.PointsStat))); err != nil || math.IsNaN(g.HomeScore) {
		return g, fmt.Errorf("%w: home score %q", ErrBadRow, h.get(record, model.HomeColumn(model.PointsStat)))
	}
	if g.AwayScore, err = parseFloat(h.get(record, model.AwayColumn(model.PointsStat))); err != nil || math.IsNaN(g.AwayScore) {
		return g, fmt.Errorf("%w: away score %q", ErrBadRow, h.get(record, model.AwayColumn(model.PointsStat)))
	}

	g.HomeStats = make([]float64, stats.Len())
	g.AwayStats = make([]float64, stats.Len())
	for i, name := range stats.Names() {
		if g.HomeStats[i], err = parseFloat(h.get(record, model.HomeColumn(name))); err != nil {
			return g, fmt.Errorf("%w: %s: %w", ErrBadRow, model.HomeColumn(name), err)
		}
		if g.AwayStats[i], err = parseFloat(h.get(record, model.AwayColumn(name))); err != nil {
			return g, fmt.Errorf("%w: %s: %w", ErrBadRow, model.AwayColumn(name), err)
		}
	}

	g.JoinCode = h.get(record, ColJoinCode)
	if g.JoinCode == "" {
		g.JoinCode = model.JoinCode(g.AwayTeam, g.HomeTeam, g.Date)
	}
	if raw := h.get(record, ColHomeSpread); raw != "" {
		v, ok, err := parseSpread(raw, cfg.maxSpread)
		if err != nil {
			return g, err
		}
		if ok {
			g.HomeSpread = model.Float(v)
		}
	}
	return g, nil
}

// ReadLines reads the betting-line table. Rows carry either InnerJoinCode
// or Date/HomeTeam/AwayTeam; team columns may hold codes or city names.
// "pk" means a zero spread. Empty or implausible spreads are dropped and
// counted in the second return value.
func ReadLines(r io.Reader, opts ...ReadOption) ([]market.Line, int, error) {
	cfg := newReadConfig(opts)
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	h, err := readHeader(reader)
	if err != nil {
		return nil, 0, err
	}
	if err := h.require(ColHomeSpread); err != nil {
		return nil, 0, err
	}
	_, hasCode := h[ColJoinCode]
	if !hasCode {
		if err := h.require(ColDate, ColHomeTeam, ColAwayTeam); err != nil {
			return nil, 0, fmt.Errorf("need %s or date and teams: %w", ColJoinCode, err)
		}
	}

	var (
		lines   []market.Line
		dropped int
	)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, dropped, fmt.Errorf("failed to read record: %w", err)
		}

		spread, ok, err := parseSpread(h.get(record, ColHomeSpread), cfg.maxSpread)
		if err != nil {
			return nil, dropped, fmt.Errorf("line %d: %w", line, err)
		}
		if !ok {
			dropped++
			continue
		}

		code := h.get(record, ColJoinCode)
		if code == "" {
			if code, err = lineJoinCode(h, record); err != nil {
				return nil, dropped, fmt.Errorf("line %d: %w", line, err)
			}
		}
		lines = append(lines, market.Line{JoinCode: code, HomeSpread: spread})
	}
	return lines, dropped, nil
}

func lineJoinCode(h header, record []string) (string, error) {
	d, err := model.ParseDate(h.get(record, ColDate))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBadRow, err)
	}
	home, err := teams.Lookup(h.get(record, ColHomeTeam))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnknownTeam, err)
	}
	away, err := teams.Lookup(h.get(record, ColAwayTeam))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnknownTeam, err)
	}
	return model.JoinCode(away, home, d), nil
}

// parseSpread parses a spread exactly and reports false for empty or
// out-of-range values.
func parseSpread(raw string, limit float64) (float64, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false, nil
	}
	if strings.EqualFold(raw, "pk") {
		return 0, true, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%w: spread %q", ErrBadRow, raw)
	}
	if d.Abs().GreaterThanOrEqual(decimal.NewFromFloat(limit)) {
		return 0, false, nil
	}
	v, _ := d.Float64()
	return v, true, nil
}

func teamCode(raw string, cfg readConfig) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("%w: empty team", ErrBadRow)
	}
	code := teams.Canonical(raw)
	if cfg.strictTeams && !teams.Known(code) {
		return "", fmt.Errorf("%w: %s", ErrUnknownTeam, raw)
	}
	return code, nil
}

func parseFloat(raw string) (float64, error) {
	if raw == "" || strings.EqualFold(raw, "nan") {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	return v, nil
}
