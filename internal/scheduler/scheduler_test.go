package scheduler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/i474232898/weather-archive/internal/weather"
)

type fakePopulator struct {
	mu    sync.Mutex
	calls []weather.SeriesName
	err   error
}

func (f *fakePopulator) Populate(ctx context.Context, series weather.SeriesName) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("populate called without deadline")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, series)
	return f.err
}

func (f *fakePopulator) seen() []weather.SeriesName {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]weather.SeriesName(nil), f.calls...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestWarmPopulatesEverySeries(t *testing.T) {
	p := &fakePopulator{}
	s := New(weather.AllSeries(), time.Hour, time.Second, p)

	s.Warm()
	assert.Equal(t, []weather.SeriesName{weather.SeriesPrecipitation, weather.SeriesTemperature}, p.seen())
}

func TestWarmToleratesFailures(t *testing.T) {
	p := &fakePopulator{err: errors.New("remote down")}
	s := New(weather.AllSeries(), time.Hour, 0, p)

	s.Warm()
	assert.Len(t, p.seen(), 2)
}

func TestStartDisabled(t *testing.T) {
	p := &fakePopulator{}
	s := New(weather.AllSeries(), 0, time.Second, p)

	assert.NoError(t, s.Start())
	s.Stop()
	assert.Empty(t, p.seen())
}

func TestStartRunsImmediately(t *testing.T) {
	p := &fakePopulator{}
	s := New([]weather.SeriesName{weather.SeriesTemperature}, time.Hour, time.Second, p)

	assert.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return len(p.seen()) == 1 }, 2*time.Second, 10*time.Millisecond)
}
