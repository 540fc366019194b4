package elo

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithMean sets the rating every team starts from.
func WithMean(mean float64) Option {
	return func(e *Engine) {
		e.mean = mean
	}
}

// WithK sets the update step size.
func WithK(k float64) Option {
	return func(e *Engine) {
		e.k = k
	}
}

// WithHomeAdvantage sets the bonus added to the home rating when computing
// win probabilities. It is never stored.
func WithHomeAdvantage(points float64) Option {
	return func(e *Engine) {
		e.homeAdv = points
	}
}

// WithRegression sets the season regression target and pull weight.
func WithRegression(mean, weight float64) Option {
	return func(e *Engine) {
		e.regMean = mean
		e.regWeight = weight
	}
}

// WithTeams seeds a known team universe at the mean rating.
func WithTeams(teams ...string) Option {
	return func(e *Engine) {
		e.seed = append(e.seed, teams...)
	}
}
