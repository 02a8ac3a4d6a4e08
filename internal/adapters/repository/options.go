package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithCapacity sets the number of reports retained per vessel. Values below
// two are ignored: anomaly evaluation needs a (current, previous) pair.
func WithCapacity(capacity int) Option {
	return func(s *MemoryStore) {
		if capacity >= 2 {
			s.capacity = capacity
		}
	}
}
