package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"opsboard/pkg/logger"
)

const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"

	dotenvFilename = ".env"
	configFileEnv  = "OPSBOARD_CONFIG"
)

type Config struct {
	HTTPPort    string          `mapstructure:"http_port"`
	Env         string          `mapstructure:"env"`
	DataBackend string          `mapstructure:"data_backend"`
	SQLitePath  string          `mapstructure:"sqlite_path"`
	CORSOrigins []string        `mapstructure:"cors_origins"`
	FXRatesAED  string          `mapstructure:"fx_rates_aed"`
	Analytics   AnalyticsConfig `mapstructure:",squash"`
	RateLimit   RateLimitConfig `mapstructure:",squash"`
	DB          DBConfig        `mapstructure:",squash"`
	Auth        AuthConfig      `mapstructure:",squash"`
}

type AnalyticsConfig struct {
	CacheTTL time.Duration `mapstructure:"analytics_cache_ttl"`
}

// RateLimitConfig is applied per client address. RPS <= 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rate_limit_rps"`
	Burst int     `mapstructure:"rate_limit_burst"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"db_dsn"`
	Host            string        `mapstructure:"db_host"`
	Port            string        `mapstructure:"db_port"`
	User            string        `mapstructure:"db_user"`
	Password        string        `mapstructure:"db_password"`
	Name            string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"db_sslmode"`
	TimeZone        string        `mapstructure:"db_timezone"`
	MaxOpenConns    int           `mapstructure:"db_max_open_conns"`
	MaxIdleConns    int           `mapstructure:"db_max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"db_conn_max_lifetime"`
}

type AuthConfig struct {
	SupabaseURL            string        `mapstructure:"supabase_url"`
	SupabasePublishableKey string        `mapstructure:"supabase_publishable_key"`
	Timeout                time.Duration `mapstructure:"supabase_auth_timeout"`
	JWTSecret              string        `mapstructure:"auth_jwt_secret"`
	SkipAuth               bool          `mapstructure:"auth_skip"`
	MockUserID             string        `mapstructure:"auth_mock_user_id"`
	MockUserEmail          string        `mapstructure:"auth_mock_user_email"`
	MockUserName           string        `mapstructure:"auth_mock_user_name"`
}

var defaults = map[string]any{
	"http_port":                "8080",
	"env":                      "development",
	"data_backend":             BackendPostgres,
	"sqlite_path":              "opsboard.db",
	"cors_origins":             []string{"*"},
	"fx_rates_aed":             "USD=3.6725,EUR=4.02,GBP=4.66",
	"analytics_cache_ttl":      time.Minute,
	"rate_limit_rps":           20.0,
	"rate_limit_burst":         40,
	"db_dsn":                   "",
	"db_host":                  "localhost",
	"db_port":                  "5432",
	"db_user":                  "postgres",
	"db_password":              "postgres",
	"db_name":                  "opsboard",
	"db_sslmode":               "disable",
	"db_timezone":              "UTC",
	"db_max_open_conns":        10,
	"db_max_idle_conns":        5,
	"db_conn_max_lifetime":     30 * time.Minute,
	"supabase_url":             "",
	"supabase_publishable_key": "",
	"supabase_auth_timeout":    5 * time.Second,
	"auth_jwt_secret":          "",
	"auth_skip":                false,
	"auth_mock_user_id":        "00000000-0000-0000-0000-000000000001",
	"auth_mock_user_email":     "",
	"auth_mock_user_name":      "",
}

// Load reads .env (variables already present in the environment win), then
// the optional file named by OPSBOARD_CONFIG, then the environment.
func Load(log logger.Logger) (Config, error) {
	if err := loadDotEnv(log); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path := strings.TrimSpace(os.Getenv(configFileEnv)); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		log.Info("config: loaded file", "path", path)
	}

	return decode(v)
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.DataBackend = strings.ToLower(strings.TrimSpace(cfg.DataBackend))
	cfg.CORSOrigins = splitList(cfg.CORSOrigins)
	if cfg.Auth.SupabasePublishableKey == "" {
		cfg.Auth.SupabasePublishableKey = os.Getenv("VITE_SUPABASE_PUBLISHABLE_KEY")
	}
	return cfg, nil
}

func loadDotEnv(log logger.Logger) error {
	if _, err := os.Stat(dotenvFilename); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(dotenvFilename); err != nil {
		return err
	}
	log.Info("dotenv: loaded variables", "path", dotenvFilename)
	return nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.HTTPPort) == "" {
		errs = append(errs, errors.New("HTTP_PORT is required"))
	}

	switch c.DataBackend {
	case BackendPostgres:
		if c.DB.DSN == "" && (c.DB.Host == "" || c.DB.Name == "") {
			errs = append(errs, errors.New("DB_DSN or DB_HOST and DB_NAME are required for the postgres backend"))
		}
	case BackendSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite backend"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("DATA_BACKEND %q is not one of postgres, sqlite, memory", c.DataBackend))
	}

	if c.Analytics.CacheTTL < 0 {
		errs = append(errs, errors.New("ANALYTICS_CACHE_TTL must not be negative"))
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_BURST must be positive when RATE_LIMIT_RPS is set"))
	}

	if !c.Auth.SkipAuth && c.Auth.JWTSecret == "" && (c.Auth.SupabaseURL == "" || c.Auth.SupabasePublishableKey == "") {
		errs = append(errs, errors.New("AUTH_JWT_SECRET or SUPABASE_URL and SUPABASE_PUBLISHABLE_KEY are required unless AUTH_SKIP is set"))
	}

	return errors.Join(errs...)
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}

// splitList accepts both a real list (config file) and a single
// comma-separated value (environment).
func splitList(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				result = append(result, part)
			}
		}
	}
	return result
}
