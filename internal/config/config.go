package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Attendance AttendanceConfig
	Payroll    PayrollConfig
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxConns        int32
	MinConns        int32
	MigrationsTable string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port               int
	Env                string
	LogLevel           string
	Timezone           string
	CORSAllowedOrigins []string

	location *time.Location
}

// AttendanceConfig holds scan token and reconciliation settings
type AttendanceConfig struct {
	TokenPastTolerance   time.Duration
	TokenFutureTolerance time.Duration
	ReconcileEnabled     bool
	ReconcileInterval    time.Duration
	ReconcileHour        int
}

// PayrollConfig holds payroll calculation constants
type PayrollConfig struct {
	StandardWorkDays  int
	HoursPerDay       int
	AdvanceLimitRatio decimal.Decimal
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	} else if err != nil {
		slog.Debug("No .env file found, reading configuration from environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            dbPort,
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		Name:            getEnv("DB_NAME", "hris_timekeeping"),
		SSLMode:         getEnv("DB_SSL_MODE", "disable"),
		MaxConns:        int32(maxConns),
		MinConns:        int32(minConns),
		MigrationsTable: getEnv("MIGRATIONS_TABLE", "schema_migrations"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:               appPort,
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Timezone:           getEnv("APP_TIMEZONE", "Asia/Ho_Chi_Minh"),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	config.App.location, err = time.LoadLocation(config.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Attendance configuration
	pastTolerance, err := time.ParseDuration(getEnv("SCAN_TOKEN_PAST_TOLERANCE", "120s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCAN_TOKEN_PAST_TOLERANCE: %w", err)
	}
	futureTolerance, err := time.ParseDuration(getEnv("SCAN_TOKEN_FUTURE_TOLERANCE", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCAN_TOKEN_FUTURE_TOLERANCE: %w", err)
	}
	reconcileInterval, err := time.ParseDuration(getEnv("RECONCILE_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_INTERVAL: %w", err)
	}
	reconcileHour, err := strconv.Atoi(getEnv("RECONCILE_HOUR", "23"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_HOUR: %w", err)
	}
	reconcileEnabled, err := strconv.ParseBool(getEnv("RECONCILE_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_ENABLED: %w", err)
	}

	config.Attendance = AttendanceConfig{
		TokenPastTolerance:   pastTolerance,
		TokenFutureTolerance: futureTolerance,
		ReconcileEnabled:     reconcileEnabled,
		ReconcileInterval:    reconcileInterval,
		ReconcileHour:        reconcileHour,
	}

	// Payroll configuration
	workDays, err := strconv.Atoi(getEnv("PAYROLL_STANDARD_WORK_DAYS", "26"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_STANDARD_WORK_DAYS: %w", err)
	}
	hoursPerDay, err := strconv.Atoi(getEnv("PAYROLL_HOURS_PER_DAY", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_HOURS_PER_DAY: %w", err)
	}
	limitRatio, err := decimal.NewFromString(getEnv("PAYROLL_ADVANCE_LIMIT_RATIO", "0.3"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_ADVANCE_LIMIT_RATIO: %w", err)
	}

	config.Payroll = PayrollConfig{
		StandardWorkDays:  workDays,
		HoursPerDay:       hoursPerDay,
		AdvanceLimitRatio: limitRatio,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Attendance.ReconcileHour < 0 || c.Attendance.ReconcileHour > 23 {
		return fmt.Errorf("RECONCILE_HOUR must be between 0 and 23")
	}
	if c.Attendance.ReconcileInterval <= 0 {
		return fmt.Errorf("RECONCILE_INTERVAL must be positive")
	}
	if c.Payroll.StandardWorkDays <= 0 || c.Payroll.HoursPerDay <= 0 {
		return fmt.Errorf("PAYROLL_STANDARD_WORK_DAYS and PAYROLL_HOURS_PER_DAY must be positive")
	}
	if c.Payroll.AdvanceLimitRatio.IsNegative() || c.Payroll.AdvanceLimitRatio.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("PAYROLL_ADVANCE_LIMIT_RATIO must be between 0 and 1")
	}
	return nil
}

// Location returns the canonical time zone used for every work-date computation.
func (c *Config) Location() *time.Location {
	if c.App.location == nil {
		return time.UTC
	}
	return c.App.location
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string, fallback string) []string {
	value := getEnv(env, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
