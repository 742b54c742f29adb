package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"

	"github.com/i474232898/weather-archive/internal/weather"
)

// maxDocumentSize caps the body read from the remote endpoint.
const maxDocumentSize = 64 << 20

// HTTPSource implements the weather.Source interface for a static file host
// serving one JSON document per series at {baseURL}/{series}.json.
type HTTPSource struct {
	baseURL string
	client  *resilientClient
}

// HTTPOption customizes an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithBackoff overrides the retry schedule.
func WithBackoff(b BackoffConfig) HTTPOption {
	return func(p *HTTPSource) { p.client.backoff = b }
}

func NewHTTPSource(client *http.Client, baseURL string, opts ...HTTPOption) *HTTPSource {
	p := &HTTPSource{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  newResilientClient("series-http", client),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *HTTPSource) Name() string {
	return "http"
}

// URL returns the document location of series.
func (p *HTTPSource) URL(series weather.SeriesName) string {
	return fmt.Sprintf("%s/%s.json", p.baseURL, url.PathEscape(string(series)))
}

func (p *HTTPSource) Fetch(ctx context.Context, series weather.SeriesName) ([]weather.Sample, error) {
	u := p.URL(series)

	resp, err := p.client.get(ctx, u, http.Header{"Accept": {"application/json"}})
	if err != nil {
		return nil, &weather.FetchError{Series: series, Source: u, StatusCode: statusCode(err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, &weather.FetchError{Series: series, Source: u, Err: fmt.Errorf("read body: %w", err)}
	}

	samples, err := ParseDocument(body)
	if err != nil {
		return nil, &weather.FetchError{Series: series, Source: u, Err: err}
	}

	log.WithFields(log.Fields{
		"series":  series,
		"url":     u,
		"size":    humanize.Bytes(uint64(len(body))),
		"samples": len(samples),
	}).Debug("fetched series document")
	return samples, nil
}
