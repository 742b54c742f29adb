package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/apex/log"
	bolt "go.etcd.io/bbolt"

	"github.com/i474232898/weather-archive/internal/weather"
)

// SchemaVersion is the layout version written to the meta bucket.
const SchemaVersion = 1

var (
	metaBucket = []byte("meta")
	versionKey = []byte("schema_version")
)

// BoltStore persists each series in its own bbolt bucket keyed by label.
// bbolt iterates keys in byte order, which is the store's natural order.
type BoltStore struct {
	db   *bolt.DB
	path string
}

// OpenBolt opens (creating if absent) the database file at path and makes
// sure every series bucket exists. Creation is idempotent.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, &weather.StoreError{Op: "open", Err: fmt.Errorf("%s: %w", path, err)}
	}
	if err := db.Update(migrate); err != nil {
		db.Close()
		return nil, &weather.StoreError{Op: "migrate", Err: err}
	}
	log.WithField("path", path).Debug("bolt store opened")
	return &BoltStore{db: db, path: path}, nil
}

func migrate(tx *bolt.Tx) error {
	meta, err := tx.CreateBucketIfNotExists(metaBucket)
	if err != nil {
		return err
	}
	if raw := meta.Get(versionKey); raw != nil {
		v, err := strconv.Atoi(string(raw))
		if err != nil {
			return fmt.Errorf("corrupt schema version %q", raw)
		}
		if v > SchemaVersion {
			return fmt.Errorf("schema version %d is newer than supported %d", v, SchemaVersion)
		}
	}
	for _, series := range weather.AllSeries() {
		if _, err := tx.CreateBucketIfNotExists([]byte(series)); err != nil {
			return err
		}
	}
	return meta.Put(versionKey, []byte(strconv.Itoa(SchemaVersion)))
}

func (s *BoltStore) IsEmpty(ctx context.Context, series weather.SeriesName) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, &weather.StoreError{Op: "read", Series: series, Err: err}
	}
	empty := true
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(series))
		if b == nil {
			return nil
		}
		k, _ := b.Cursor().First()
		empty = k == nil
		return nil
	})
	if err != nil {
		return false, &weather.StoreError{Op: "read", Series: series, Err: err}
	}
	return empty, nil
}

// SaveSamples writes all samples in one transaction.
func (s *BoltStore) SaveSamples(ctx context.Context, series weather.SeriesName, samples []weather.Sample) error {
	if err := ctx.Err(); err != nil {
		return &weather.StoreError{Op: "write", Series: series, Err: err}
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(series))
		if err != nil {
			return err
		}
		for _, sm := range samples {
			v, err := json.Marshal(sm)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(sm.Label), v); err != nil {
				return fmt.Errorf("put %q: %w", sm.Label, err)
			}
		}
		return nil
	})
	if err != nil {
		return &weather.StoreError{Op: "write", Series: series, Err: err}
	}
	return nil
}

func (s *BoltStore) Samples(ctx context.Context, series weather.SeriesName) ([]weather.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, &weather.StoreError{Op: "read", Series: series, Err: err}
	}
	var result []weather.Sample
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(series))
		if b == nil {
			return nil
		}
		result = make([]weather.Sample, 0, b.Stats().KeyN)
		return b.ForEach(func(k, v []byte) error {
			var sm weather.Sample
			if err := json.Unmarshal(v, &sm); err != nil {
				return fmt.Errorf("decode %q: %w", k, err)
			}
			result = append(result, sm)
			return nil
		})
	})
	if err != nil {
		return nil, &weather.StoreError{Op: "read", Series: series, Err: err}
	}
	return result, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
