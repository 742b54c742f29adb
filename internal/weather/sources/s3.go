package sources

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/apex/log"
	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dustin/go-humanize"

	"github.com/i474232898/weather-archive/internal/weather"
)

// ObjectGetter is the subset of the S3 client used by S3Source.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source implements the weather.Source interface for series documents
// stored as s3://{bucket}/{prefix}{series}.json.
type S3Source struct {
	client ObjectGetter
	bucket string
	prefix string
}

func NewS3Source(client ObjectGetter, bucket, prefix string) *S3Source {
	return &S3Source{client: client, bucket: bucket, prefix: prefix}
}

// NewS3Client builds an S3 client from the default AWS config chain. A
// non-empty endpoint switches to path-style addressing against that endpoint
// (MinIO, localstack).
func NewS3Client(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func (p *S3Source) Name() string {
	return "s3"
}

// Key returns the object key of series.
func (p *S3Source) Key(series weather.SeriesName) string {
	return p.prefix + string(series) + ".json"
}

func (p *S3Source) Fetch(ctx context.Context, series weather.SeriesName) ([]weather.Sample, error) {
	key := p.Key(series)
	loc := fmt.Sprintf("s3://%s/%s", p.bucket, key)

	out, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		fe := &weather.FetchError{Series: series, Source: loc, Err: err}
		var re *awshttp.ResponseError
		if errors.As(err, &re) {
			fe.StatusCode = re.HTTPStatusCode()
		}
		return nil, fe
	}
	defer out.Body.Close()

	body, err := io.ReadAll(io.LimitReader(out.Body, maxDocumentSize))
	if err != nil {
		return nil, &weather.FetchError{Series: series, Source: loc, Err: fmt.Errorf("read body: %w", err)}
	}

	samples, err := ParseDocument(body)
	if err != nil {
		return nil, &weather.FetchError{Series: series, Source: loc, Err: err}
	}

	log.WithFields(log.Fields{
		"series":  series,
		"object":  loc,
		"size":    humanize.Bytes(uint64(len(body))),
		"samples": len(samples),
	}).Debug("fetched series document")
	return samples, nil
}
