package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/i474232898/weather-archive/internal/config"
	"github.com/i474232898/weather-archive/internal/store"
	"github.com/i474232898/weather-archive/internal/weather"
	"github.com/i474232898/weather-archive/internal/weather/sources"
)

// openService wires the configured source and store into a weather.Service.
// The caller closes the returned store.
func openService(ctx context.Context, cfg *config.AppConfig) (*weather.Service, weather.Store, error) {
	src, err := newSource(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	st, err := store.Open(ctx, store.Options{
		Driver:      cfg.StoreDriver,
		Path:        cfg.StorePath,
		PostgresDSN: cfg.PostgresDSN,
	})
	if err != nil {
		return nil, nil, err
	}

	return weather.NewService(st, src, weather.WithFetchTimeout(cfg.FetchTimeout)), st, nil
}

func newSource(ctx context.Context, cfg *config.AppConfig) (weather.Source, error) {
	switch cfg.DataSource {
	case "s3":
		client, err := sources.NewS3Client(ctx, cfg.S3Region, cfg.S3Endpoint)
		if err != nil {
			return nil, err
		}
		return sources.NewS3Source(client, cfg.S3Bucket, cfg.S3Prefix), nil
	case "http":
		// Shared HTTP client for outbound document fetches.
		httpClient := &http.Client{
			Timeout: cfg.HTTPTimeout,
		}
		return sources.NewHTTPSource(httpClient, cfg.DataBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.DataSource)
	}
}
