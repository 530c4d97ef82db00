package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Oracle  OracleConfig
	JWT     JWTConfig
	Booking BookingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// JWTConfig holds JWT authentication configuration
type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// BookingConfig holds the booking-core tunables: background job cadence
// and the intake policy knobs.
type BookingConfig struct {
	// AdvanceInterval is how often contracts are swept for due
	// CONFIRMED->ACTIVE and ACTIVE->COMPLETED transitions.
	AdvanceInterval time.Duration
	// ExpiryInterval is how often stale PENDING rent requests are swept.
	ExpiryInterval time.Duration
	// ExpiryAge is how long a PENDING rent request may sit unreviewed
	// before it is auto-rejected.
	ExpiryAge time.Duration
	// MinLeadTime is the minimum gap between intake and the requested
	// start date.
	MinLeadTime time.Duration
	// MaxRentalDays caps the length of a public rent request.
	MaxRentalDays int
	// DedupeWindow is the lookback for duplicate intake suppression.
	DedupeWindow time.Duration
	// BatchSize bounds background sweep statements.
	BatchSize int
	// EndingSoonDays is the horizon for the ending-soon report.
	EndingSoonDays int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Oracle: OracleConfig{
			Host:         getEnv("ORACLE_HOST", "localhost"),
			Port:         getEnv("ORACLE_PORT", "1521"),
			Service:      getEnv("ORACLE_SERVICE", "FREEPDB1"),
			User:         getEnv("ORACLE_USER", ""),
			Password:     getEnv("ORACLE_PASSWORD", ""),
			MaxOpenConns: getEnvInt("ORACLE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("ORACLE_MAX_IDLE_CONNS", 5),
			WalletPath:   getEnv("ORACLE_WALLET_PATH", ""),
			TNSAlias:     getEnv("ORACLE_TNS_ALIAS", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Expiry: getEnvDuration("JWT_EXPIRY", 24*time.Hour),
		},
		Booking: BookingConfig{
			AdvanceInterval: getEnvDuration("BOOKING_ADVANCE_INTERVAL", time.Hour),
			ExpiryInterval:  getEnvDuration("BOOKING_EXPIRY_INTERVAL", time.Hour),
			ExpiryAge:       getEnvDuration("BOOKING_EXPIRY_AGE", 7*24*time.Hour),
			MinLeadTime:     getEnvDuration("BOOKING_MIN_LEAD_TIME", 24*time.Hour),
			MaxRentalDays:   getEnvInt("BOOKING_MAX_RENTAL_DAYS", 90),
			DedupeWindow:    getEnvDuration("BOOKING_DEDUPE_WINDOW", time.Hour),
			BatchSize:       getEnvInt("BOOKING_BATCH_SIZE", 500),
			EndingSoonDays:  getEnvInt("BOOKING_ENDING_SOON_DAYS", 3),
		},
	}

	if cfg.Oracle.User == "" || cfg.Oracle.Password == "" {
		return nil, fmt.Errorf("ORACLE_USER and ORACLE_PASSWORD are required")
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
