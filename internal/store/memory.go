package store

import (
	"context"
	"sort"
	"sync"

	"github.com/i474232898/weather-archive/internal/weather"
)

// MemoryStore is a concurrency-safe in-memory implementation of weather.Store.
// Its contents do not survive the process.
type MemoryStore struct {
	mu sync.RWMutex

	// key: series name, value: sample values by label
	data map[weather.SeriesName]map[string]float64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[weather.SeriesName]map[string]float64),
	}
}

func (s *MemoryStore) IsEmpty(_ context.Context, series weather.SeriesName) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data[series]) == 0, nil
}

// SaveSamples stores all samples under one lock, so readers never observe
// a partially written series.
func (s *MemoryStore) SaveSamples(_ context.Context, series weather.SeriesName, samples []weather.Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.data[series]
	if !ok {
		coll = make(map[string]float64, len(samples))
		s.data[series] = coll
	}
	for _, sm := range samples {
		coll[sm.Label] = sm.Value
	}
	return nil
}

// Samples returns the series ordered by label.
func (s *MemoryStore) Samples(_ context.Context, series weather.SeriesName) ([]weather.Sample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll := s.data[series]
	labels := make([]string, 0, len(coll))
	for l := range coll {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	result := make([]weather.Sample, 0, len(labels))
	for _, l := range labels {
		result = append(result, weather.Sample{Label: l, Value: coll[l]})
	}
	return result, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
