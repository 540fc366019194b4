package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/okian/tipoff/internal/domain/model"
	"github.com/okian/tipoff/pkg/logger"
	"github.com/okian/tipoff/pkg/metrics"

	_ "modernc.org/sqlite"
)

// fixedColumns precede the per-statistic RA columns in feature_rows.
var fixedColumns = []string{ //nolint:gochecknoglobals // table schema
	"run_id",
	"game_index",
	"date",
	"home_team",
	"away_team",
	"home_result",
	"away_result",
	"join_code",
	"home_score",
	"away_score",
	"home_spread",
	"elo_home",
	"elo_away",
	"home_spread_actual",
	"home_spread_correct_direction",
}

// SQLiteStore persists enriched rows in a single feature_rows table keyed by
// (run_id, game_index). Absent features are stored as NULL.
//
// Write buffers rows and flushes them in one transaction per batch, so the
// store can sit directly behind an assembler as its sink.
type SQLiteStore struct {
	db        *sql.DB
	stats     []string
	raCols    []string
	insertSQL string
	batchSize int
	logger    logger.Logger

	mu      sync.Mutex
	pending []model.EnrichedGameRecord
	closed  bool
}

// OpenSQLite opens (or creates) the database at path with one home and one
// away RA column per statistic.
func OpenSQLite(ctx context.Context, path string, stats []string, opts ...Option) (*SQLiteStore, error) {
	if len(stats) == 0 {
		return nil, fmt.Errorf("%w: no statistics", ErrInvalidRow)
	}
	raCols := make([]string, 0, 2*len(stats))
	for _, st := range stats {
		if !validIdent(st) {
			return nil, fmt.Errorf("%w: statistic %q is not a valid column name", ErrInvalidRow, st)
		}
		raCols = append(raCols, strings.ToLower(model.HomeRAColumn(st)), strings.ToLower(model.AwayRAColumn(st)))
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{
		db:        db,
		stats:     append([]string(nil), stats...),
		raCols:    raCols,
		batchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("sqlite-store")
	}

	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	cols := append(append([]string(nil), fixedColumns...), raCols...)
	s.insertSQL = fmt.Sprintf(
		`INSERT OR REPLACE INTO feature_rows (%s) VALUES (%s)`,
		strings.Join(cols, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "),
	)

	s.logger.Info(ctx, "feature store opened",
		logger.String("path", path),
		logger.Int("ra_columns", len(raCols)),
	)
	return s, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	var b strings.Builder
	b.WriteString(`CREATE TABLE IF NOT EXISTS feature_rows (
		run_id                         TEXT    NOT NULL,
		game_index                     INTEGER NOT NULL,
		date                           TEXT    NOT NULL,
		home_team                      TEXT    NOT NULL,
		away_team                      TEXT    NOT NULL,
		home_result                    TEXT,
		away_result                    TEXT,
		join_code                      TEXT,
		home_score                     REAL,
		away_score                     REAL,
		home_spread                    REAL,
		elo_home                       REAL    NOT NULL,
		elo_away                       REAL    NOT NULL,
		home_spread_actual             REAL,
		home_spread_correct_direction  INTEGER`)
	for _, c := range s.raCols {
		b.WriteString(",\n\t\t")
		b.WriteString(c)
		b.WriteString(" REAL")
	}
	b.WriteString(",\n\t\tPRIMARY KEY (run_id, game_index)\n\t)")

	for _, stmt := range []string{
		b.String(),
		`CREATE INDEX IF NOT EXISTS idx_feature_rows_date ON feature_rows(date)`,
	} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	// Older databases may lack columns for newly tracked statistics.
	have, err := s.columns(ctx)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	for _, c := range s.raCols {
		if _, ok := have[c]; ok {
			continue
		}
		if _, err := s.db.ExecContext(ctx, `ALTER TABLE feature_rows ADD COLUMN `+c+` REAL`); err != nil {
			return fmt.Errorf("init schema: add column %s: %w", c, err)
		}
	}
	return nil
}

// columns returns the lower-cased column names of feature_rows.
func (s *SQLiteStore) columns(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM pragma_table_info('feature_rows')`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out[strings.ToLower(name)] = struct{}{}
	}
	return out, rows.Err()
}

// Write buffers row and flushes once a batch is full.
func (s *SQLiteStore) Write(ctx context.Context, row model.EnrichedGameRecord) error { //nolint:gocritic // hugeParam: sink contract passes rows by value
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.pending = append(s.pending, row)
	if len(s.pending) < s.batchSize {
		return nil
	}
	return s.flushLocked(ctx)
}

// Save writes rows immediately, one transaction per batch.
func (s *SQLiteStore) Save(ctx context.Context, rows []model.EnrichedGameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	for start := 0; start < len(rows); start += s.batchSize {
		end := min(start+s.batchSize, len(rows))
		if err := s.insertBatch(ctx, rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes any buffered rows.
func (s *SQLiteStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked(ctx)
}

func (s *SQLiteStore) flushLocked(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}
	if err := s.insertBatch(ctx, s.pending); err != nil {
		return err
	}
	s.pending = s.pending[:0]
	return nil
}

func (s *SQLiteStore) insertBatch(ctx context.Context, rows []model.EnrichedGameRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, s.insertSQL)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range rows {
		args, err := s.args(&rows[i])
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = tx.Rollback()
			metrics.RecordErrorByComponent("sqlite_store", "insert")
			return fmt.Errorf("insert row %d of run %s: %w", rows[i].Index, rows[i].RunID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		metrics.RecordErrorByComponent("sqlite_store", "commit")
		return fmt.Errorf("commit: %w", err)
	}
	metrics.RecordRowsPersisted(len(rows))
	return nil
}

func (s *SQLiteStore) args(r *model.EnrichedGameRecord) ([]any, error) {
	if len(r.HomeRA) != len(s.stats) || len(r.AwayRA) != len(s.stats) {
		return nil, fmt.Errorf("%w: row %d has %d/%d RA values for %d statistics",
			ErrInvalidRow, r.Index, len(r.HomeRA), len(r.AwayRA), len(s.stats))
	}
	args := make([]any, 0, len(fixedColumns)+len(s.raCols))
	args = append(args,
		r.RunID,
		r.Index,
		r.Date.Format(model.DateLayout),
		r.HomeTeam,
		r.AwayTeam,
		string(r.HomeResult),
		string(r.AwayResult),
		r.JoinCode,
		r.HomeScore,
		r.AwayScore,
		nullFloat(r.HomeSpread),
		r.EloHome,
		r.EloAway,
		r.HomeSpreadActual,
		nullBool(r.HomeSpreadCorrectDirection),
	)
	for i := range s.stats {
		args = append(args, nullFloat(r.HomeRA[i]), nullFloat(r.AwayRA[i]))
	}
	return args, nil
}

// Count returns the number of stored rows for runID.
func (s *SQLiteStore) Count(ctx context.Context, runID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feature_rows WHERE run_id = ?`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return n, nil
}

// Load reads back a run's rows in game order.
func (s *SQLiteStore) Load(ctx context.Context, runID string) ([]model.EnrichedGameRecord, error) {
	cols := append(append([]string(nil), fixedColumns...), s.raCols...)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+strings.Join(cols, ", ")+` FROM feature_rows WHERE run_id = ? ORDER BY game_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	var out []model.EnrichedGameRecord
	for rows.Next() {
		var (
			r                  model.EnrichedGameRecord
			date, hr, ar, code string
			spread             sql.NullFloat64
			dir                sql.NullInt64
			ra                 = make([]sql.NullFloat64, len(s.raCols))
		)
		dest := []any{
			&r.RunID, &r.Index, &date, &r.HomeTeam, &r.AwayTeam, &hr, &ar, &code,
			&r.HomeScore, &r.AwayScore, &spread, &r.EloHome, &r.EloAway,
			&r.HomeSpreadActual, &dir,
		}
		for i := range ra {
			dest = append(dest, &ra[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if r.Date, err = model.ParseDate(date); err != nil {
			return nil, err
		}
		r.HomeResult, r.AwayResult, r.JoinCode = model.Result(hr), model.Result(ar), code
		if spread.Valid {
			r.HomeSpread = model.Float(spread.Float64)
		}
		if dir.Valid {
			agree := dir.Int64 != 0
			r.HomeSpreadCorrectDirection = &agree
		}
		r.HomeRA = make([]*float64, len(s.stats))
		r.AwayRA = make([]*float64, len(s.stats))
		for i := range s.stats {
			if v := ra[2*i]; v.Valid {
				r.HomeRA[i] = model.Float(v.Float64)
			}
			if v := ra[2*i+1]; v.Valid {
				r.AwayRA[i] = model.Float(v.Float64)
			}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// Close flushes buffered rows and closes the database.
func (s *SQLiteStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	flushErr := s.flushLocked(ctx)
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close sqlite: %w", err)
	}
	return flushErr
}

func nullFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullBool(p *bool) any {
	if p == nil {
		return nil
	}
	if *p {
		return 1
	}
	return 0
}

func validIdent(s string) bool {
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}
