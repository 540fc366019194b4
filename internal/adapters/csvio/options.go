package csvio

// ReadOption applies a configuration option to the readers.
type ReadOption func(*readConfig)

type readConfig struct {
	strictTeams bool
	maxSpread   float64
}

// MaxAbsSpread bounds plausible market spreads; lines at or past it are
// scraping artifacts and dropped.
const MaxAbsSpread = 30

func newReadConfig(opts []ReadOption) readConfig {
	cfg := readConfig{maxSpread: MaxAbsSpread}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithStrictTeams rejects team codes outside the current franchise universe.
func WithStrictTeams(strict bool) ReadOption {
	return func(c *readConfig) {
		c.strictTeams = strict
	}
}

// WithMaxSpread overrides MaxAbsSpread.
func WithMaxSpread(limit float64) ReadOption {
	return func(c *readConfig) {
		if limit > 0 {
			c.maxSpread = limit
		}
	}
}
