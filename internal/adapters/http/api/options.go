package api

import "github.com/okian/tipoff/pkg/logger"

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger for the server and the passes it runs.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
