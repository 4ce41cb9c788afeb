package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"clubauction/database"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken    string
	GuildID         string
	BotOwnerID      int64  // Discord ID allowed to run owner-only commands
	ReportChannelID string // Channel for weekly reports and fallback notifications

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Auction configuration
	AuctionTimeLimit          time.Duration // Countdown after the last bid before a round finalizes
	MinIncrementPercent       int64         // Minimum percent increase per new bid
	LeavePenaltyPercent       int64         // Charged to group funds when a member leaves
	DuelistMissPenaltyPercent int64         // Charged to the owning group when a duelist misses a match

	// Background jobs
	MarketDriftInterval  time.Duration
	MarketValueFloor     int64
	WeeklyReportInterval time.Duration

	// Dashboard configuration
	DashboardEnabled bool
	DashboardAddr    string

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated); empty disables the mirror

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsOwner reports whether the Discord ID belongs to the configured bot owner
func (c *Config) IsOwner(discordID int64) bool {
	return c.BotOwnerID != 0 && c.BotOwnerID == discordID
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// A missing .env file is fine; real deployments use the process environment
	_ = godotenv.Load()

	config := &Config{
		// Discord
		DiscordToken:    os.Getenv("DISCORD_TOKEN"),
		GuildID:         os.Getenv("GUILD_ID"),
		ReportChannelID: os.Getenv("REPORT_CHANNEL_ID"),

		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// Auction settings with defaults
		AuctionTimeLimit:          30 * time.Second,
		MinIncrementPercent:       5,
		LeavePenaltyPercent:       10,
		DuelistMissPenaltyPercent: 15,

		// Background jobs
		MarketDriftInterval:  time.Hour,
		MarketValueFloor:     100,
		WeeklyReportInterval: 7 * 24 * time.Hour,

		// Dashboard
		DashboardEnabled: os.Getenv("DASHBOARD_ENABLED") == "true",
		DashboardAddr:    getEnvWithDefault("DASHBOARD_ADDR", ":8000"),

		// NATS
		NATSServers: os.Getenv("NATS_SERVERS"),

		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
		Environment: os.Getenv("ENVIRONMENT"),
	}

	if ownerID := os.Getenv("BOT_OWNER_ID"); ownerID != "" {
		parsed, err := strconv.ParseInt(strings.TrimSpace(ownerID), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("BOT_OWNER_ID must be a Discord ID: %w", err)
		}
		config.BotOwnerID = parsed
	}

	// Override defaults if environment variables are set
	if seconds := os.Getenv("AUCTION_TIME_LIMIT_SECONDS"); seconds != "" {
		if parsed, err := strconv.Atoi(seconds); err == nil && parsed > 0 {
			config.AuctionTimeLimit = time.Duration(parsed) * time.Second
		}
	}
	overrideInt64(&config.MinIncrementPercent, "MIN_INCREMENT_PERCENT")
	overrideInt64(&config.LeavePenaltyPercent, "LEAVE_PENALTY_PERCENT")
	overrideInt64(&config.DuelistMissPenaltyPercent, "DUELIST_MISS_PENALTY_PERCENT")
	overrideInt64(&config.MarketValueFloor, "MARKET_VALUE_FLOOR")
	overrideDuration(&config.MarketDriftInterval, "MARKET_DRIFT_INTERVAL")
	overrideDuration(&config.WeeklyReportInterval, "WEEKLY_REPORT_INTERVAL")

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	for name, pct := range map[string]int64{
		"MIN_INCREMENT_PERCENT":        c.MinIncrementPercent,
		"LEAVE_PENALTY_PERCENT":        c.LeavePenaltyPercent,
		"DUELIST_MISS_PENALTY_PERCENT": c.DuelistMissPenaltyPercent,
	} {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("%s must be between 0 and 100, got %d", name, pct)
		}
	}
	return nil
}

func overrideInt64(target *int64, key string) {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			*target = parsed
		}
	}
}

func overrideDuration(target *time.Duration, key string) {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
			*target = parsed
		}
	}
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:               "test",
		DiscordToken:              "test-token",
		BotOwnerID:                999999,
		AuctionTimeLimit:          30 * time.Second,
		MinIncrementPercent:       5,
		LeavePenaltyPercent:       10,
		DuelistMissPenaltyPercent: 15,
		MarketDriftInterval:       time.Hour,
		MarketValueFloor:          100,
		WeeklyReportInterval:      7 * 24 * time.Hour,
		DashboardAddr:             ":8000",
		LogLevel:                  "info",
	}
}
