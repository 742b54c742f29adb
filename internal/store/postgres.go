package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/apex/log"
	_ "github.com/lib/pq"

	"github.com/i474232898/weather-archive/internal/weather"
)

// insertBatchSize keeps each INSERT well below the 65535 parameter limit.
const insertBatchSize = 1000

const createTable = `CREATE TABLE IF NOT EXISTS weather_samples (
	series TEXT NOT NULL,
	label  TEXT NOT NULL,
	value  DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (series, label)
)`

// PostgresStore keeps all series in one table keyed by (series, label).
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects using dsn and creates the samples table if needed.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, &weather.StoreError{Op: "open", Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &weather.StoreError{Op: "open", Err: err}
	}
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		db.Close()
		return nil, &weather.StoreError{Op: "migrate", Err: err}
	}
	log.Debug("postgres store opened")
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) IsEmpty(ctx context.Context, series weather.SeriesName) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM weather_samples WHERE series = $1)`, string(series)).Scan(&exists)
	if err != nil {
		return false, &weather.StoreError{Op: "read", Series: series, Err: err}
	}
	return !exists, nil
}

// SaveSamples upserts all samples in one transaction.
func (s *PostgresStore) SaveSamples(ctx context.Context, series weather.SeriesName, samples []weather.Sample) error {
	samples = dedupeLast(samples)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &weather.StoreError{Op: "write", Series: series, Err: err}
	}
	defer tx.Rollback() //nolint:errcheck

	for start := 0; start < len(samples); start += insertBatchSize {
		end := min(start+insertBatchSize, len(samples))
		batch := samples[start:end]

		args := make([]interface{}, 0, len(batch)*3)
		for _, sm := range batch {
			args = append(args, string(series), sm.Label, sm.Value)
		}
		if _, err := tx.ExecContext(ctx, upsertStatement(len(batch)), args...); err != nil {
			return &weather.StoreError{Op: "write", Series: series, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &weather.StoreError{Op: "write", Series: series, Err: err}
	}
	return nil
}

func (s *PostgresStore) Samples(ctx context.Context, series weather.SeriesName) ([]weather.Sample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT label, value FROM weather_samples WHERE series = $1 ORDER BY label COLLATE "C"`, string(series))
	if err != nil {
		return nil, &weather.StoreError{Op: "read", Series: series, Err: err}
	}
	defer rows.Close()

	var result []weather.Sample
	for rows.Next() {
		var sm weather.Sample
		if err := rows.Scan(&sm.Label, &sm.Value); err != nil {
			return nil, &weather.StoreError{Op: "read", Series: series, Err: err}
		}
		result = append(result, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, &weather.StoreError{Op: "read", Series: series, Err: err}
	}
	return result, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// upsertStatement builds a multi-row upsert for n (series, label, value) rows.
func upsertStatement(n int) string {
	valueStrings := make([]string, 0, n)
	for i := 0; i < n; i++ {
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d)", i*3+1, i*3+2, i*3+3))
	}
	return fmt.Sprintf(
		"INSERT INTO weather_samples (series, label, value) VALUES %s "+
			"ON CONFLICT (series, label) DO UPDATE SET value = EXCLUDED.value",
		strings.Join(valueStrings, ","))
}

// dedupeLast keeps the last sample of every label; a single upsert may not
// touch the same row twice.
func dedupeLast(samples []weather.Sample) []weather.Sample {
	last := make(map[string]int, len(samples))
	for i, sm := range samples {
		last[sm.Label] = i
	}
	if len(last) == len(samples) {
		return samples
	}
	result := make([]weather.Sample, 0, len(last))
	for i, sm := range samples {
		if last[sm.Label] == i {
			result = append(result, sm)
		}
	}
	return result
}
