package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	AccessSecret string
}

type BurnConfig struct {
	DefaultHourlyRate float64
	MonthlyHours      float64
	StandardFTEHours  float64
}

type PortfolioConfig struct {
	Workers int
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Burn        BurnConfig
	Portfolio   PortfolioConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 7090)
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("BURN_DEFAULT_HOURLY_RATE", 150.0)
	v.SetDefault("BURN_MONTHLY_HOURS", 174.0)
	v.SetDefault("BURN_STANDARD_FTE_HOURS", 1912.0)
	v.SetDefault("PORTFOLIO_WORKERS", 8)

	_ = v.ReadInConfig()

	lifetime, err := time.ParseDuration(v.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host:           v.GetString("HTTP_HOST"),
			Port:           v.GetInt("HTTP_PORT"),
			AllowedOrigins: parseList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: lifetime,
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Burn: BurnConfig{
			DefaultHourlyRate: v.GetFloat64("BURN_DEFAULT_HOURLY_RATE"),
			MonthlyHours:      v.GetFloat64("BURN_MONTHLY_HOURS"),
			StandardFTEHours:  v.GetFloat64("BURN_STANDARD_FTE_HOURS"),
		},
		Portfolio: PortfolioConfig{
			Workers: v.GetInt("PORTFOLIO_WORKERS"),
		},
	}

	if len(cfg.HTTP.AllowedOrigins) == 0 {
		cfg.HTTP.AllowedOrigins = []string{"*"}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Burn.DefaultHourlyRate <= 0 {
		return fmt.Errorf("BURN_DEFAULT_HOURLY_RATE must be positive")
	}
	if cfg.Burn.MonthlyHours <= 0 {
		return fmt.Errorf("BURN_MONTHLY_HOURS must be positive")
	}
	if cfg.Burn.StandardFTEHours <= 0 || cfg.Burn.StandardFTEHours > 2080 {
		return fmt.Errorf("BURN_STANDARD_FTE_HOURS must be in (0, 2080]")
	}
	if cfg.Portfolio.Workers <= 0 {
		return fmt.Errorf("PORTFOLIO_WORKERS must be positive")
	}
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
