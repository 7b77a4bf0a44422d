package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultSpreadsheetID = "1wqSvxBuea9N56UKMvNWuvTPgVCLt2a6OtgqBNm7w4VI"

// Data sources the server can read from.
const (
	SourceSheets    = "sheets"
	SourceFirestore = "firestore"
)

// Config holds the settings shared by the server and the CLI.
type Config struct {
	Env      string
	Port     string
	LogLevel string

	Sheets    SheetsConfig
	Store     StoreConfig
	Cache     CacheConfig
	Firestore FirestoreConfig

	DataSource    string
	Timezone      string
	TrendingCount int
	ResolveImages bool
}

// SheetsConfig locates the spreadsheet and the credentials used to read it.
type SheetsConfig struct {
	SpreadsheetID      string
	OrganizationsRange string
	FlyersRange        string
	CredentialsFile    string
	TokenKey           string
}

// StoreConfig selects where the OAuth token is kept. A non-empty GCSBucket
// takes precedence over Dir.
type StoreConfig struct {
	Dir       string
	GCSBucket string
}

// CacheConfig controls the on-disk range cache. A zero TTL disables it.
type CacheConfig struct {
	Dir string
	TTL time.Duration
}

// FirestoreConfig names the project and collections of the Firestore mirror.
type FirestoreConfig struct {
	ProjectID     string
	Organizations string
	Flyers        string
}

// Load loads configuration from environment variables. In development a .env
// file in the working directory is loaded first when present.
func Load() (Config, error) {
	if getEnv("APP_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	ttl, err := getEnvDuration("CACHE_TTL", 0)
	if err != nil {
		return Config{}, err
	}
	trending, err := getEnvInt("TRENDING_COUNT", 2)
	if err != nil {
		return Config{}, err
	}
	resolve, err := getEnvBool("RESOLVE_IMAGES", false)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Env:      getEnv("APP_ENV", "development"),
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Sheets: SheetsConfig{
			SpreadsheetID:      getEnv("SPREADSHEET_ID", defaultSpreadsheetID),
			OrganizationsRange: getEnv("ORGANIZATIONS_RANGE", "Organizations!A2:D"),
			FlyersRange:        getEnv("FLYERS_RANGE", "Flyers!A2:H"),
			CredentialsFile:    getEnv("CREDENTIALS_FILE", "credentials.json"),
			TokenKey:           getEnv("TOKEN_KEY", "token"),
		},
		Store: StoreConfig{
			Dir:       getEnv("STORE_DIR", "disk"),
			GCSBucket: getEnv("GCS_BUCKET", ""),
		},
		Cache: CacheConfig{
			Dir: getEnv("CACHE_DIR", "cache"),
			TTL: ttl,
		},
		Firestore: FirestoreConfig{
			ProjectID:     getEnv("GCP_PROJECT_ID", ""),
			Organizations: getEnv("FIRESTORE_ORGANIZATIONS", "organizations"),
			Flyers:        getEnv("FIRESTORE_FLYERS", "flyers"),
		},
		DataSource:    getEnv("DATA_SOURCE", SourceSheets),
		Timezone:      getEnv("TIMEZONE", ""),
		TrendingCount: trending,
		ResolveImages: resolve,
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DataSource {
	case SourceSheets:
	case SourceFirestore:
		if c.Firestore.ProjectID == "" {
			return fmt.Errorf("GCP_PROJECT_ID is required when DATA_SOURCE=%s", SourceFirestore)
		}
	default:
		return fmt.Errorf("unknown DATA_SOURCE %q", c.DataSource)
	}
	if c.Sheets.SpreadsheetID == "" {
		return fmt.Errorf("SPREADSHEET_ID is required")
	}
	if c.TrendingCount < 1 {
		return fmt.Errorf("TRENDING_COUNT must be positive, got %d", c.TrendingCount)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location returns the time zone spreadsheet dates are interpreted in.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Enabled reports whether sheet ranges are cached on disk.
func (c CacheConfig) Enabled() bool {
	return c.TTL > 0
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}
