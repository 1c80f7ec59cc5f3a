package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Payroll  PayrollConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
	// StatementTimeout caps any single statement on pooled connections.
	StatementTimeout time.Duration
}

// JWTConfig holds the secret used to verify operator bearer tokens
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	Timezone    string
	FrontendURL string
	// SeedDefaults inserts the default schedule catalog and statutory tables on startup.
	SeedDefaults bool
}

// PayrollConfig holds the batch computation knobs
type PayrollConfig struct {
	// Concurrency bounds the number of employees computed in parallel.
	Concurrency int
	// EmployeeTimeout applies to a single employee's entry computation.
	EmployeeTimeout time.Duration
	// AnnualWorkDays converts a monthly basic salary into a daily rate.
	AnnualWorkDays int
	HoursPerDay    int
	// DTRJobInterval is how often the nightly DTR job wakes up.
	DTRJobInterval time.Duration
	// PunchWindow widens the scheduled shift when collecting punches for a day.
	PunchWindow time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded, using process environment", "error", err)
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

	statementTimeout, err := time.ParseDuration(getEnv("DB_STATEMENT_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_STATEMENT_TIMEOUT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:             getEnv("DB_HOST", "localhost"),
		Port:             dbPort,
		User:             getEnv("DB_USER", "postgres"),
		Password:         getEnv("DB_PASSWORD", ""),
		Name:             getEnv("DB_NAME", "payroll_engine"),
		SSLMode:          getEnv("DB_SSL_MODE", "disable"),
		MaxConns:         int32(maxConns),
		MinConns:         int32(minConns),
		StatementTimeout: statementTimeout,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Timezone:    getEnv("APP_TIMEZONE", "Asia/Manila"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}
	seedDefaults, err := strconv.ParseBool(getEnv("SEED_DEFAULTS", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid SEED_DEFAULTS: %w", err)
	}
	config.App.SeedDefaults = seedDefaults

	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	// Payroll configuration
	concurrency, err := strconv.Atoi(getEnv("PAYROLL_CONCURRENCY", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_CONCURRENCY: %w", err)
	}
	employeeTimeout, err := time.ParseDuration(getEnv("PAYROLL_EMPLOYEE_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_EMPLOYEE_TIMEOUT: %w", err)
	}
	annualWorkDays, err := strconv.Atoi(getEnv("PAYROLL_ANNUAL_WORK_DAYS", "261"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_ANNUAL_WORK_DAYS: %w", err)
	}
	hoursPerDay, err := strconv.Atoi(getEnv("PAYROLL_HOURS_PER_DAY", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_HOURS_PER_DAY: %w", err)
	}
	dtrInterval, err := time.ParseDuration(getEnv("DTR_JOB_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid DTR_JOB_INTERVAL: %w", err)
	}
	punchWindow, err := time.ParseDuration(getEnv("PAYROLL_PUNCH_WINDOW", "4h"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_PUNCH_WINDOW: %w", err)
	}

	config.Payroll = PayrollConfig{
		Concurrency:     concurrency,
		EmployeeTimeout: employeeTimeout,
		AnnualWorkDays:  annualWorkDays,
		HoursPerDay:     hoursPerDay,
		DTRJobInterval:  dtrInterval,
		PunchWindow:     punchWindow,
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
	if c.Payroll.Concurrency <= 0 {
		return fmt.Errorf("PAYROLL_CONCURRENCY must be positive")
	}
	if c.Payroll.AnnualWorkDays <= 0 || c.Payroll.HoursPerDay <= 0 {
		return fmt.Errorf("PAYROLL_ANNUAL_WORK_DAYS and PAYROLL_HOURS_PER_DAY must be positive")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	return nil
}

// Location returns the business time zone used for schedule wall-clock times.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
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
