package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	ListenAddr string
	LogLevel   string

	// Storage
	DatabasePath string
	MaxOpenConns int
	MaxIdleConns int
	ConnMaxLife  time.Duration

	// Triage
	BlacklistThreshold int
	DefaultRadiusKm    float64
	PrankKeywordFile   string

	// Azure collaborators (validated lazily, per call)
	MapsKey            string
	TranslatorKey      string
	TranslatorEndpoint string
	TranslatorRegion   string
	TextAnalyticsKey   string
	TextAnalyticsHost  string

	// Optional GeoIP city database for client-IP location hints
	GeoIPCityDB string
}

// Load reads configuration from environment variables and .env file (if present).
// godotenv.Load will not override variables already set in the environment.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{
		ListenAddr:         getenv("SAFECHILD_LISTEN", ":8085"),
		LogLevel:           strings.ToLower(getenv("LOG_LEVEL", "info")),
		DatabasePath:       getenv("SAFECHILD_DB_PATH", "reports.db"),
		MaxOpenConns:       getenvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:       getenvInt("DB_MAX_IDLE_CONNS", 10),
		ConnMaxLife:        time.Duration(getenvInt("DB_CONN_MAX_LIFE_MINUTES", 30)) * time.Minute,
		BlacklistThreshold: getenvInt("BLACKLIST_THRESHOLD", 3),
		DefaultRadiusKm:    getenvFloat("GEOFILTER_RADIUS_KM", 50),
		PrankKeywordFile:   os.Getenv("PRANK_KEYWORD_FILE"),
		MapsKey:            os.Getenv("AZURE_MAPS_KEY"),
		TranslatorKey:      os.Getenv("AZURE_TRANSLATOR_KEY"),
		TranslatorEndpoint: strings.TrimRight(os.Getenv("AZURE_TRANSLATOR_ENDPOINT"), "/"),
		TranslatorRegion:   os.Getenv("AZURE_TRANSLATOR_REGION"),
		TextAnalyticsKey:   os.Getenv("AZURE_TEXT_ANALYTICS_KEY"),
		TextAnalyticsHost:  strings.TrimRight(os.Getenv("AZURE_TEXT_ANALYTICS_ENDPOINT"), "/"),
		GeoIPCityDB:        os.Getenv("GEOIP_CITY_DB"),
	}

	if cfg.BlacklistThreshold < 1 {
		cfg.BlacklistThreshold = 1
	}
	if cfg.DefaultRadiusKm <= 0 {
		cfg.DefaultRadiusKm = 50
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
