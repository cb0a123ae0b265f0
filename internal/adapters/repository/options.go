package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithKeepFingerprints keeps the banner fingerprint of every stored analysis.
// Without it fingerprints are dropped on Record to bound memory on large albums.
func WithKeepFingerprints(keep bool) Option {
	return func(s *MemoryStore) {
		s.keepFingerprints = keep
	}
}
