package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"pickem-app-go/logging"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Logging  LoggingConfig  `json:"logging"`
	Auth     AuthConfig     `json:"auth"`
	Season   SeasonConfig   `json:"season"`
	Feeds    FeedConfig     `json:"feeds"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string `json:"port"`
	Host        string `json:"host"`
	Environment string `json:"environment"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string        `json:"host"`
	Port     string        `json:"port"`
	Username string        `json:"username"`
	Password string        `json:"password"`
	Database string        `json:"database"`
	Timeout  time.Duration `json:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level       string `json:"level"`
	Prefix      string `json:"prefix"`
	EnableColor bool   `json:"enable_color"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret       string `json:"jwt_secret"`
	DefaultPassword string `json:"default_password"`
}

// SeasonConfig holds the season calendar and the picker roster.
// The roster is configuration: pickers are never created at runtime.
type SeasonConfig struct {
	Year           int       `json:"year"`
	Start          time.Time `json:"start"`
	Weeks          int       `json:"weeks"`
	LegacyWeek     int       `json:"legacy_week"`
	Pickers        []string  `json:"pickers"`
	BlazinPicker   string    `json:"blazin_picker"`
	Stake          float64   `json:"stake"`
	IsDevelopment  bool      `json:"is_development"`
	PollingEnabled bool      `json:"polling_enabled"`
}

// FeedConfig holds external feed endpoints, relays, and cache policy
type FeedConfig struct {
	ScheduleURL   string        `json:"schedule_url"`
	OddsURL       string        `json:"odds_url"`
	LiveURL       string        `json:"live_url"`
	SheetURL      string        `json:"sheet_url"` // per-week export, %d is the week number
	ArchivePath   string        `json:"archive_path"`
	LegacyPath    string        `json:"legacy_path"` // exported legacy pick blob, migrated once
	Relays        []string      `json:"relays"` // url templates, %s is the escaped target url
	Bookmakers    []string      `json:"bookmakers"`
	FetchTimeout  time.Duration `json:"fetch_timeout"`
	ScheduleTTL   time.Duration `json:"schedule_ttl"`
	OddsTTL       time.Duration `json:"odds_ttl"`
	PollInterval  time.Duration `json:"poll_interval"`
	MinBodyLength int           `json:"min_body_length"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Don't treat missing .env as an error
		logging.Warnf("Could not load .env file: %v", err)
	}

	environment := getEnv("ENVIRONMENT", "development")
	isDevelopment := strings.ToLower(environment) == "development"

	seasonStart, err := time.Parse("2006-01-02", getEnv("SEASON_START", "2025-09-04"))
	if err != nil {
		return nil, fmt.Errorf("invalid SEASON_START: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			Environment: environment,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "27017"),
			Username: getEnv("DB_USERNAME", "pickem"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "pickem_app"),
			Timeout:  getDurationEnv("DB_TIMEOUT", 10*time.Second),
		},
		Logging: LoggingConfig{
			Level:       getEnv("LOG_LEVEL", "debug"),
			Prefix:      getEnv("LOG_PREFIX", "pickem-app"),
			EnableColor: getBoolEnv("LOG_COLOR", true),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			DefaultPassword: getEnv("DEFAULT_PASSWORD", "pickem"),
		},
		Season: SeasonConfig{
			Year:           getIntEnv("CURRENT_SEASON", 2025),
			Start:          seasonStart,
			Weeks:          getIntEnv("SEASON_WEEKS", 18),
			LegacyWeek:     getIntEnv("LEGACY_WEEK", 1),
			Pickers:        getListEnv("PICKERS", []string{"Stephen", "Trevor", "Paul", "Kyle", "Dan"}),
			BlazinPicker:   getEnv("BLAZIN_PICKER", "Vince"),
			Stake:          getFloatEnv("STAKE", 20),
			IsDevelopment:  isDevelopment,
			PollingEnabled: getBoolEnv("LIVE_POLLING_ENABLED", true),
		},
		Feeds: FeedConfig{
			ScheduleURL:   getEnv("SCHEDULE_URL", "https://site.api.espn.com/apis/site/v2/sports/football/nfl/scoreboard"),
			OddsURL:       getEnv("ODDS_URL", ""),
			LiveURL:       getEnv("LIVE_URL", "https://site.api.espn.com/apis/site/v2/sports/football/nfl/scoreboard"),
			SheetURL:      getEnv("SHEET_URL", ""),
			ArchivePath:   getEnv("ARCHIVE_PATH", "./data/history.json"),
			LegacyPath:    getEnv("LEGACY_PICKS_PATH", ""),
			Relays:        getListEnv("FETCH_RELAYS", nil),
			Bookmakers:    getListEnv("BOOKMAKERS", []string{"draftkings", "fanduel", "bovada"}),
			FetchTimeout:  getDurationEnv("FETCH_TIMEOUT", 10*time.Second),
			ScheduleTTL:   getDurationEnv("SCHEDULE_TTL", 6*time.Hour),
			OddsTTL:       getDurationEnv("ODDS_TTL", 24*time.Hour),
			PollInterval:  getDurationEnv("LIVE_POLL_INTERVAL", time.Minute),
			MinBodyLength: getIntEnv("FETCH_MIN_BODY", 64),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration for required fields and sensible values
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("database port is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.Auth.JWTSecret == "your-secret-key-change-in-production" && !c.Season.IsDevelopment {
		return fmt.Errorf("JWT secret must be changed in production")
	}

	if c.Season.Year < 2020 || c.Season.Year > 2035 {
		return fmt.Errorf("current season must be between 2020 and 2035, got: %d", c.Season.Year)
	}
	if c.Season.Weeks < 1 {
		return fmt.Errorf("season must have at least one week, got: %d", c.Season.Weeks)
	}
	if c.Season.LegacyWeek < 1 || c.Season.LegacyWeek > c.Season.Weeks {
		return fmt.Errorf("legacy week %d outside week range 1..%d", c.Season.LegacyWeek, c.Season.Weeks)
	}
	if len(c.Season.Pickers) == 0 {
		return fmt.Errorf("picker roster is required")
	}
	if c.Season.Stake <= 0 {
		return fmt.Errorf("stake must be positive, got: %v", c.Season.Stake)
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

// LogConfiguration logs the current configuration (without sensitive data)
func (c *Config) LogConfiguration() {
	logging.Info("=== Application Configuration ===")
	logging.Infof("Server: %s (Environment: %s)", c.GetServerAddress(), c.Server.Environment)
	logging.Infof("Database: %s:%s/%s (Username: %s, Auth: %t)",
		c.Database.Host, c.Database.Port, c.Database.Database,
		c.Database.Username, c.Database.Password != "")
	logging.Infof("Season: %d, start=%s, weeks=%d, legacy week=%d",
		c.Season.Year, c.Season.Start.Format("2006-01-02"), c.Season.Weeks, c.Season.LegacyWeek)
	logging.Infof("Roster: %s (+%s blazin-only), stake=$%.2f",
		strings.Join(c.Season.Pickers, ", "), c.Season.BlazinPicker, c.Season.Stake)
	logging.Infof("Feeds: schedule TTL=%v, odds TTL=%v, poll=%v, %d relay(s)",
		c.Feeds.ScheduleTTL, c.Feeds.OddsTTL, c.Feeds.PollInterval, len(c.Feeds.Relays))
	logging.Info("================================")
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
