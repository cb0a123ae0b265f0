package registry

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithLearning makes Observe register unmatched banners as new unknown players.
func WithLearning(enabled bool) Option {
	return func(r *Registry) {
		r.learn = enabled
	}
}

// WithUnknownPrefix sets the name prefix of learned players.
func WithUnknownPrefix(prefix string) Option {
	return func(r *Registry) {
		if prefix != "" {
			r.unknownPrefix = prefix
		}
	}
}
