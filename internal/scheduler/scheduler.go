package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-archive/internal/weather"
)

// Populator is the part of weather.Service the warm-up job needs.
type Populator interface {
	Populate(ctx context.Context, series weather.SeriesName) error
}

// Scheduler periodically makes sure every configured series is cached, so a
// failed first population is retried without waiting for a user request.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Populator
	series    []weather.SeriesName
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler. timeout bounds each series population and
// defaults to one minute.
func New(series []weather.SeriesName, interval, timeout time.Duration, service Populator) *Scheduler {
	if timeout <= 0 {
		timeout = time.Minute
	}
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		series:    series,
		interval:  interval,
		timeout:   timeout,
	}
}

// Start schedules the warm-up job, runs it once immediately and starts the
// underlying scheduler. A non-positive interval disables the job.
func (s *Scheduler) Start() error {
	if len(s.series) == 0 || s.interval <= 0 {
		log.Info("scheduler: warm-up disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(s.Warm)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Warm populates every series concurrently and waits for all of them.
func (s *Scheduler) Warm() {
	log.Debug("scheduler: running warm-up job")

	var wg sync.WaitGroup
	for _, name := range s.series {
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			defer cancel()

			if err := s.service.Populate(ctx, name); err != nil {
				log.WithError(err).WithField("series", name).Warn("scheduler: warm-up failed")
			}
		}()
	}
	wg.Wait()
	log.Debug("scheduler: completed warm-up job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
