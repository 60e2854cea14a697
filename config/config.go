package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ZenRows   ZenRowsConfig
	Postgres  PostgresConfig
	Archive   ArchiveConfig
	Scheduler SchedulerConfig
	DBPath    string
	LogsDir   string
	Searches  map[string]*SearchConfig
}

type ZenRowsConfig struct {
	APIKey          string
	APIURL          string
	MaxRetries      int
	PhoneMaxRetries int
	BackoffFactor   float64
	MinDelay        time.Duration
	MaxDelay        time.Duration
}

type PostgresConfig struct {
	URL string
}

type ArchiveConfig struct {
	DataDir       string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3AccessKeyID string
	S3SecretKey   string
}

type SchedulerConfig struct {
	Cron string
}

// SearchConfig describes one listings search page to extract leads from.
type SearchConfig struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	URL          string `yaml:"url"`
	BaseURL      string `yaml:"base_url"`      // for absolutizing relative listing links
	ProxyCountry string `yaml:"proxy_country"` // two-letter code passed to the renderer
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ZenRows: ZenRowsConfig{
			APIKey:          os.Getenv("ZENROWS_API_KEY"),
			APIURL:          getEnv("ZENROWS_API_URL", "https://api.zenrows.com/v1/"),
			MaxRetries:      getEnvInt("SCRAPER_MAX_RETRIES", 3),
			PhoneMaxRetries: getEnvInt("SCRAPER_PHONE_MAX_RETRIES", 2),
			BackoffFactor:   getEnvFloat("SCRAPER_BACKOFF_FACTOR", 1.5),
			MinDelay:        getEnvSeconds("SCRAPER_MIN_DELAY", 2*time.Second),
			MaxDelay:        getEnvSeconds("SCRAPER_MAX_DELAY", 5*time.Second),
		},
		Postgres: PostgresConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Archive: ArchiveConfig{
			DataDir:       getEnv("SCRAPER_DATA_DIR", "data"),
			S3Bucket:      os.Getenv("ARCHIVE_S3_BUCKET"),
			S3Region:      getEnv("ARCHIVE_S3_REGION", "us-east-1"),
			S3Endpoint:    os.Getenv("ARCHIVE_S3_ENDPOINT"),
			S3AccessKeyID: os.Getenv("ARCHIVE_S3_ACCESS_KEY_ID"),
			S3SecretKey:   os.Getenv("ARCHIVE_S3_SECRET_ACCESS_KEY"),
		},
		Scheduler: SchedulerConfig{
			Cron: getEnv("SCRAPE_CRON", "0 8 * * *"),
		},
		DBPath:   getEnv("DB_PATH", "scraper.db"),
		LogsDir:  getEnv("SCRAPER_LOGS_DIR", "logs"),
		Searches: make(map[string]*SearchConfig),
	}

	if err := cfg.loadSearchConfigs(); err != nil {
		return nil, err
	}

	return cfg, cfg.validate()
}

func (c *Config) loadSearchConfigs() error {
	configDir := "config/searches"
	entries, err := os.ReadDir(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		path := filepath.Join(configDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var search SearchConfig
		if err := yaml.Unmarshal(data, &search); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}

		c.Searches[search.ID] = &search
	}

	return nil
}

// validate covers the invariants the pipeline must never start without.
func (c *Config) validate() error {
	if c.ZenRows.APIKey == "" {
		return fmt.Errorf("ZENROWS_API_KEY is required")
	}
	if c.Postgres.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if len(c.Searches) == 0 {
		return fmt.Errorf("no search configs found under config/searches")
	}
	if c.ZenRows.MaxRetries < 1 {
		return fmt.Errorf("SCRAPER_MAX_RETRIES must be at least 1")
	}
	if c.ZenRows.MinDelay > c.ZenRows.MaxDelay {
		return fmt.Errorf("SCRAPER_MIN_DELAY must not exceed SCRAPER_MAX_DELAY")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvSeconds(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return time.Duration(f * float64(time.Second))
		}
	}
	return defaultVal
}
