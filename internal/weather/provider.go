package weather

import (
	"context"
)

// Source abstracts the remote origin of a series document (HTTP endpoint, S3 bucket).
type Source interface {
	Name() string
	Fetch(ctx context.Context, series SeriesName) ([]Sample, error)
}

// Store is the contract the persistent stores (bbolt, postgres) and the
// in-memory store must satisfy. Implementations report failures as *StoreError.
type Store interface {
	// IsEmpty reports whether the series collection holds no samples.
	IsEmpty(ctx context.Context, series SeriesName) (bool, error)
	// SaveSamples writes all samples keyed by label in a single transaction.
	// Existing labels are overwritten.
	SaveSamples(ctx context.Context, series SeriesName, samples []Sample) error
	// Samples returns every stored sample of the series ordered by label.
	Samples(ctx context.Context, series SeriesName) ([]Sample, error)
	Close() error
}
