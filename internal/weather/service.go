package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
	"golang.org/x/sync/singleflight"
)

const defaultFetchTimeout = 30 * time.Second

// Service is the read-through cache in front of the remote series source.
// A series is fetched at most once and served from the local store afterwards.
type Service struct {
	store        Store
	source       Source
	fetchTimeout time.Duration

	// flights guards population per series name.
	flights singleflight.Group
}

// Option customizes a Service.
type Option func(*Service)

// WithFetchTimeout bounds a single fetch-and-save cycle.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// NewService creates a new Service.
func NewService(store Store, source Source, opts ...Option) *Service {
	s := &Service{
		store:        store,
		source:       source,
		fetchTimeout: defaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetSeries returns the samples of series whose year lies within rng, in the
// store's label order. The series is populated from the remote source first
// if the local collection is empty.
func (s *Service) GetSeries(ctx context.Context, series SeriesName, rng YearRange) ([]Sample, error) {
	if _, err := ParseSeriesName(string(series)); err != nil {
		return nil, err
	}
	if rng.Start > rng.End {
		return []Sample{}, nil
	}

	if err := s.Populate(ctx, series); err != nil {
		return nil, err
	}

	samples, err := s.store.Samples(ctx, series)
	if err != nil {
		return nil, err
	}
	return FilterRange(samples, rng), nil
}

// Aggregate returns the per-year means of series within rng.
func (s *Service) Aggregate(ctx context.Context, series SeriesName, rng YearRange) ([]AggregatedPoint, error) {
	samples, err := s.GetSeries(ctx, series, rng)
	if err != nil {
		return nil, err
	}
	return AverageByYear(samples, rng), nil
}

// Populate makes sure the local collection of series holds data. Concurrent
// callers for the same series share a single fetch-and-save cycle; a caller
// whose context ends stops waiting but does not abort the shared cycle.
func (s *Service) Populate(ctx context.Context, series SeriesName) error {
	if _, err := ParseSeriesName(string(series)); err != nil {
		return err
	}

	empty, err := s.store.IsEmpty(ctx, series)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	ch := s.flights.DoChan(string(series), func() (interface{}, error) {
		return nil, s.populate(context.WithoutCancel(ctx), series)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) populate(parent context.Context, series SeriesName) error {
	ctx, cancel := context.WithTimeout(parent, s.fetchTimeout)
	defer cancel()

	// A flight that finished just before this one started has already
	// filled the collection.
	empty, err := s.store.IsEmpty(ctx, series)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	if s.source == nil {
		return &FetchError{Series: series, Source: "<none>", Err: fmt.Errorf("no remote source configured")}
	}

	logger := log.WithFields(log.Fields{"series": series, "source": s.source.Name()})
	logger.Debug("local collection empty; fetching series")

	started := time.Now()
	samples, err := s.source.Fetch(ctx, series)
	if err != nil {
		logger.WithError(err).Error("series fetch failed")
		return err
	}
	if len(samples) == 0 {
		logger.Warn("remote document holds no samples; collection stays empty")
		return nil
	}

	if err := s.store.SaveSamples(ctx, series, samples); err != nil {
		logger.WithError(err).Error("saving series failed")
		return err
	}

	logger.WithFields(log.Fields{
		"samples":  len(samples),
		"duration": time.Since(started).Round(time.Millisecond),
	}).Info("series populated")
	return nil
}
