package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendCSV      = "csv"
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`
	DBSource      string `mapstructure:"DB_SOURCE"`

	StationsBackend string `mapstructure:"STATIONS_BACKEND"`
	StationsCSVPath string `mapstructure:"STATIONS_CSV_PATH"`
	StationsTable   string `mapstructure:"STATIONS_TABLE"`

	LedgerBackend string `mapstructure:"LEDGER_BACKEND"`
	LedgerPath    string `mapstructure:"LEDGER_PATH"`
	ReportsTable  string `mapstructure:"REPORTS_TABLE"`

	BBoxEnabled bool    `mapstructure:"BBOX_ENABLED"`
	BBoxMinLat  float64 `mapstructure:"BBOX_MIN_LAT"`
	BBoxMaxLat  float64 `mapstructure:"BBOX_MAX_LAT"`
	BBoxMinLon  float64 `mapstructure:"BBOX_MIN_LON"`
	BBoxMaxLon  float64 `mapstructure:"BBOX_MAX_LON"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	GinMode   string `mapstructure:"GIN_MODE"`
}

var defaults = map[string]any{
	"SERVER_ADDRESS":    "0.0.0.0:8080",
	"DB_SOURCE":         "",
	"STATIONS_BACKEND":  BackendCSV,
	"STATIONS_CSV_PATH": "data/Ladesaeulenregister.csv",
	"STATIONS_TABLE":    "charging_stations",
	"LEDGER_BACKEND":    BackendFile,
	"LEDGER_PATH":       "data/malfunctions.json",
	"REPORTS_TABLE":     "malfunction_reports",
	"BBOX_ENABLED":      false,
	"BBOX_MIN_LAT":      52.3,
	"BBOX_MAX_LAT":      52.7,
	"BBOX_MIN_LON":      13.0,
	"BBOX_MAX_LON":      13.8,
	"LOG_LEVEL":         "info",
	"LOG_FORMAT":        "console",
	"GIN_MODE":          "release",
}

// LoadConfig reads configuration from app.env in path, overridden by environment
// variables. A .env.local file in the working directory is loaded into the environment
// first. A missing app.env is not an error.
func LoadConfig(path string) (config Config, err error) {
	_ = godotenv.Load(".env.local")

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("config: failed to read config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("config: failed to decode config: %w", err)
	}

	if err = config.validate(); err != nil {
		return config, err
	}
	return config, nil
}

func (c Config) validate() error {
	switch c.StationsBackend {
	case BackendCSV, BackendPostgres:
	default:
		return fmt.Errorf("config: unknown STATIONS_BACKEND %q", c.StationsBackend)
	}
	switch c.LedgerBackend {
	case BackendFile, BackendPostgres:
	default:
		return fmt.Errorf("config: unknown LEDGER_BACKEND %q", c.LedgerBackend)
	}
	if (c.StationsBackend == BackendPostgres || c.LedgerBackend == BackendPostgres) && c.DBSource == "" {
		return fmt.Errorf("config: DB_SOURCE is required for the postgres backend")
	}
	if c.BBoxEnabled && (c.BBoxMinLat > c.BBoxMaxLat || c.BBoxMinLon > c.BBoxMaxLon) {
		return fmt.Errorf("config: bounding box minimum exceeds maximum")
	}
	return nil
}

// NeedsDatabase reports whether any backend is Postgres.
func (c Config) NeedsDatabase() bool {
	return c.StationsBackend == BackendPostgres || c.LedgerBackend == BackendPostgres
}
