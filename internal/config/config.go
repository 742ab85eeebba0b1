package config

import (
	"errors"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	LogLevel string
	APIAddr  string
	APIToken string

	DBType      string
	DBDSN       string
	FileSamples string
	FileState   string

	GarminBaseURL  string
	GarminEmail    string
	GarminPassword string

	// Static defaults used when no settings row exists yet.
	TargetSleepHours float64
	StatsWindowDays  int
}

var (
	cfg  *Config
	once sync.Once
)

func Load() *Config {
	once.Do(func() {
		_ = godotenv.Load()
		cfg = &Config{
			Env:              getEnv("APP_ENV", "development"),
			LogLevel:         getEnv("LOG_LEVEL", "info"),
			APIAddr:          getEnv("API_ADDR", ":8000"),
			APIToken:         getEnv("API_TOKEN", ""),
			DBType:           getEnv("STORAGE_BACKEND", "file"),
			DBDSN:            getEnv("POSTGRES_DSN", ""),
			FileSamples:      getEnv("SAMPLES_FILE", "data/sleep_samples.json"),
			FileState:        getEnv("STATE_FILE", "data/app_state.json"),
			GarminBaseURL:    getEnv("GARMIN_BASE_URL", "https://connect.garmin.com"),
			GarminEmail:      getEnv("GARMIN_EMAIL", ""),
			GarminPassword:   getEnv("GARMIN_PASSWORD", ""),
			TargetSleepHours: getEnvFloat("TARGET_SLEEP_HOURS", 8.0),
			StatsWindowDays:  getEnvInt("STATS_WINDOW_DAYS", 7),
		}
		if err := cfg.Validate(); err != nil {
			panic("Invalid config: " + err.Error())
		}
	})
	return cfg
}

func (c *Config) Validate() error {
	if c.DBType == "postgres" && c.DBDSN == "" {
		return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
	}
	if c.DBType == "file" && (c.FileSamples == "" || c.FileState == "") {
		return errors.New("File storage requires SAMPLES_FILE and STATE_FILE to be set")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if c.TargetSleepHours <= 0 {
		return errors.New("TARGET_SLEEP_HOURS must be positive")
	}
	if c.StatsWindowDays < 1 {
		return errors.New("STATS_WINDOW_DAYS must be at least 1")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
