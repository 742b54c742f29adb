package store

import (
	"context"
	"fmt"

	"github.com/i474232898/weather-archive/internal/weather"
)

// Supported drivers.
const (
	DriverBolt     = "bolt"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Options selects and configures a store implementation.
type Options struct {
	Driver      string
	Path        string // bolt database file
	PostgresDSN string
}

// Open returns the store selected by opts.Driver.
func Open(ctx context.Context, opts Options) (weather.Store, error) {
	switch opts.Driver {
	case DriverBolt, "":
		s, err := OpenBolt(opts.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverPostgres:
		s, err := OpenPostgres(ctx, opts.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, &weather.StoreError{Op: "open", Err: fmt.Errorf("unknown store driver %q", opts.Driver)}
	}
}
