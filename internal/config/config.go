package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/apex/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/weather-archive/internal/weather"
)

type AppConfig struct {
	Port     string
	LogLevel string

	// Remote source of the series documents.
	DataSource  string // "http" or "s3"
	DataBaseURL string
	S3Bucket    string
	S3Prefix    string
	S3Region    string
	S3Endpoint  string

	// Local persistent store.
	StoreDriver string // "bolt", "postgres" or "memory"
	StorePath   string
	PostgresDSN string

	HTTPTimeout  time.Duration
	FetchTimeout time.Duration

	// WarmInterval controls how often the warm-up job checks that both
	// series are cached (0 = disabled).
	WarmInterval time.Duration

	ChartWidth  int
	ChartHeight int

	DefaultRange weather.YearRange
}

// lookup resolves a key from the environment first, then from the optional
// YAML config file.
type lookup struct {
	file map[string]string
}

// Load reads configuration from .env, the environment and the YAML file named
// by WEATHER_CONFIG, with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded: %v", err)
	}

	lk := lookup{}
	if path := os.Getenv("WEATHER_CONFIG"); path != "" {
		file, err := readFile(path)
		if err != nil {
			return nil, err
		}
		lk.file = file
	}

	cfg := &AppConfig{
		Port:        lk.getDefault("PORT", "8080"),
		LogLevel:    lk.getDefault("LOG_LEVEL", "info"),
		DataSource:  lk.getDefault("DATA_SOURCE", "http"),
		DataBaseURL: lk.getDefault("DATA_BASE_URL", "http://localhost:8000/data"),
		S3Bucket:    lk.get("S3_BUCKET"),
		S3Prefix:    lk.get("S3_PREFIX"),
		S3Region:    lk.get("S3_REGION"),
		S3Endpoint:  lk.get("S3_ENDPOINT"),
		StoreDriver: lk.getDefault("STORE_DRIVER", "bolt"),
		StorePath:   lk.getDefault("STORE_PATH", "weather.db"),
		PostgresDSN: lk.get("POSTGRES_DSN"),
		ChartWidth:  lk.getInt("CHART_WIDTH", 800),
		ChartHeight: lk.getInt("CHART_HEIGHT", 450),
		DefaultRange: weather.YearRange{
			Start: lk.getInt("DEFAULT_START_YEAR", 1881),
			End:   lk.getInt("DEFAULT_END_YEAR", 2006),
		},
	}

	var err error
	if cfg.HTTPTimeout, err = lk.getDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = lk.getDuration("FETCH_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.WarmInterval, err = lk.getDuration("WARM_INTERVAL", "1h"); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) validate() error {
	switch c.DataSource {
	case "http":
		if c.DataBaseURL == "" {
			return fmt.Errorf("DATA_BASE_URL is required for the http data source")
		}
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 data source")
		}
	default:
		return fmt.Errorf("invalid DATA_SOURCE %q", c.DataSource)
	}
	if c.StoreDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required for the postgres store")
	}
	if c.ChartWidth <= 0 || c.ChartHeight <= 0 {
		return fmt.Errorf("invalid chart size %dx%d", c.ChartWidth, c.ChartHeight)
	}
	if err := c.DefaultRange.Validate(); err != nil {
		return fmt.Errorf("invalid default range: %w", err)
	}
	return nil
}

// readFile parses a flat YAML mapping of config keys to scalar values.
func readFile(path string) (map[string]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var raw map[string]interface{}
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	values := make(map[string]string, len(raw))
	for k, v := range raw {
		switch v.(type) {
		case map[string]interface{}, []interface{}:
			return nil, fmt.Errorf("config file %s: key %s must be a scalar", path, k)
		case nil:
			continue
		}
		values[k] = fmt.Sprint(v)
	}
	return values, nil
}

func (l lookup) get(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return l.file[key]
}

func (l lookup) getDefault(key, def string) string {
	if v := l.get(key); v != "" {
		return v
	}
	return def
}

func (l lookup) getInt(key string, def int) int {
	if v := l.get(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
		log.Warnf("ignoring invalid %s=%q", key, v)
	}
	return def
}

func (l lookup) getDuration(key, def string) (time.Duration, error) {
	s := l.getDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
