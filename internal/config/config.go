package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gospc/domain/spc"
	"gospc/internal/errors"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Data     DataConfig
	Features FeatureConfig
	Cache    CacheConfig
	LogLevel string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig holds the drill-session store settings. An empty URL
// disables persistence.
type DatabaseConfig struct {
	Driver string
	URL    string
}

// Enabled reports whether a session store is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// DataConfig describes the analysed dataset
type DataConfig struct {
	File          string
	Sheet         string
	Outcome       string
	Factors       []string
	FactorLabels  map[string]string
	Limits        spc.SpecLimits
	RootLabel     string
	Watch         bool
	WatchDebounce time.Duration
}

// FeatureConfig holds optional collaborators
type FeatureConfig struct {
	EnableURLSync bool
}

// CacheConfig sizes the analysis memo
type CacheConfig struct {
	MemoSize int
}

// LoadDotEnv loads .env files into the environment. Missing files are ignored;
// variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return errors.Wrapf(err, "failed to load %s", p)
		}
	}
	return nil
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:   *loadServerConfig(),
		Database: *loadDatabaseConfig(),
		Features: FeatureConfig{EnableURLSync: getEnvBoolOrDefault("ENABLE_URL_SYNC", true)},
		Cache:    CacheConfig{MemoSize: getEnvIntOrDefault("MEMO_CACHE_SIZE", 128)},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	dataConfig, err := loadDataConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load data configuration")
	}
	config.Data = *dataConfig

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Driver: strings.ToLower(getEnvOrDefault("DB_DRIVER", "sqlite")),
		URL:    os.Getenv("DATABASE_URL"),
	}
}

func loadDataConfig() (*DataConfig, error) {
	usl, err := getEnvOptionalFloat("USL")
	if err != nil {
		return nil, err
	}
	lsl, err := getEnvOptionalFloat("LSL")
	if err != nil {
		return nil, err
	}
	target, err := getEnvOptionalFloat("TARGET")
	if err != nil {
		return nil, err
	}
	labels, err := ParseFactorLabels(os.Getenv("FACTOR_LABELS"))
	if err != nil {
		return nil, err
	}

	return &DataConfig{
		File:          getEnvOrDefault("DATA_FILE", ""),
		Sheet:         getEnvOrDefault("DATA_SHEET", ""),
		Outcome:       getEnvOrDefault("OUTCOME", ""),
		Factors:       SplitList(os.Getenv("FACTORS")),
		FactorLabels:  labels,
		Limits:        spc.SpecLimits{USL: usl, LSL: lsl, Target: target},
		RootLabel:     getEnvOrDefault("ROOT_LABEL", "All Data"),
		Watch:         getEnvBoolOrDefault("WATCH_DATA_FILE", false),
		WatchDebounce: getEnvDurationOrDefault("WATCH_DEBOUNCE", 250*time.Millisecond),
	}, nil
}

func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case "postgres", "sqlite":
	default:
		return errors.ConfigInvalid("DB_DRIVER must be postgres or sqlite")
	}
	if config.Cache.MemoSize <= 0 {
		return errors.ConfigInvalid("MEMO_CACHE_SIZE must be positive")
	}
	limits := config.Data.Limits
	if limits.USL != nil && limits.LSL != nil && *limits.USL <= *limits.LSL {
		return errors.ConfigInvalid("USL must be greater than LSL")
	}
	return nil
}

// SplitList parses a comma separated list, dropping blanks
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseFactorLabels parses "Machine=Filler,Shift=Crew" into display aliases
func ParseFactorLabels(s string) (map[string]string, error) {
	labels := make(map[string]string)
	for _, pair := range SplitList(s) {
		factor, alias, ok := strings.Cut(pair, "=")
		factor, alias = strings.TrimSpace(factor), strings.TrimSpace(alias)
		if !ok || factor == "" || alias == "" {
			return nil, errors.ConfigInvalid("FACTOR_LABELS entries must look like factor=alias")
		}
		labels[factor] = alias
	}
	return labels, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvOptionalFloat(key string) (*float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, errors.ConfigInvalid(key + " must be a number")
	}
	return &f, nil
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
