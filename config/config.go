package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Voyages  VoyagesConfig  `yaml:"voyages"`
	Payment  PaymentConfig  `yaml:"payment"`
	Auth     AuthConfig     `yaml:"auth"`
	Worker   WorkerConfig   `yaml:"worker"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address             string `yaml:"address"`
	SwaggerDir          string `yaml:"swagger_dir"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	GinMode             string `yaml:"gin_mode"`
}

type DatabaseConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	Name           string `yaml:"name"`
	SSLMode        string `yaml:"ssl_mode"`
	MigrationsPath string `yaml:"migrations_path"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// URL is the connection string in the form golang-migrate expects.
func (d DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingTopic       string   `yaml:"booking_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
	PublishRetries     int      `yaml:"publish_retries"`
}

type BookingConfig struct {
	ReferencePrefix    string `yaml:"reference_prefix"`
	ReserveLeadMinutes int    `yaml:"reserve_lead_minutes"`
	HoldHours          int    `yaml:"hold_hours"`
	CutoffMinutes      int    `yaml:"cutoff_minutes"`
	DraftTTLMinutes    int    `yaml:"draft_ttl_minutes"`
	LockTTLSeconds     int    `yaml:"lock_ttl_seconds"`
	Timezone           string `yaml:"timezone"`
}

func (b BookingConfig) ReserveLead() time.Duration {
	return time.Duration(b.ReserveLeadMinutes) * time.Minute
}

func (b BookingConfig) Hold() time.Duration {
	return time.Duration(b.HoldHours) * time.Hour
}

func (b BookingConfig) Cutoff() time.Duration {
	return time.Duration(b.CutoffMinutes) * time.Minute
}

func (b BookingConfig) DraftTTL() time.Duration {
	return time.Duration(b.DraftTTLMinutes) * time.Minute
}

func (b BookingConfig) LockTTL() time.Duration {
	return time.Duration(b.LockTTLSeconds) * time.Second
}

// Location is the zone naive upstream timestamps are read in.
func (b BookingConfig) Location() (*time.Location, error) {
	if b.Timezone == "" || strings.EqualFold(b.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(b.Timezone)
}

type VoyagesConfig struct {
	RoutesCacheTTLSeconds int `yaml:"routes_cache_ttl_seconds"`
	SearchCacheTTLSeconds int `yaml:"search_cache_ttl_seconds"`
	TimeoutSeconds        int `yaml:"timeout_seconds"`
}

func (v VoyagesConfig) RoutesCacheTTL() time.Duration {
	return time.Duration(v.RoutesCacheTTLSeconds) * time.Second
}

func (v VoyagesConfig) SearchCacheTTL() time.Duration {
	return time.Duration(v.SearchCacheTTLSeconds) * time.Second
}

func (v VoyagesConfig) Timeout() time.Duration {
	return time.Duration(v.TimeoutSeconds) * time.Second
}

type PaymentConfig struct {
	StripeSecretKey string `yaml:"stripe_secret_key"`
	Currency        string `yaml:"currency"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
}

func (p PaymentConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type WorkerConfig struct {
	ExpirationSweepMinutes int `yaml:"expiration_sweep_minutes"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoadConfig reads the YAML file at path. A .env file next to the process is
// loaded first when present, and ${VAR} references in the YAML are expanded
// from the environment.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()

	if _, err := cfg.Booking.Location(); err != nil {
		return nil, fmt.Errorf("invalid booking timezone %q: %w", cfg.Booking.Timezone, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.HTTP.Address, ":8080")
	setDefault(&c.HTTP.GinMode, "release")
	setDefaultInt(&c.HTTP.ReadTimeoutSeconds, 15)
	setDefaultInt(&c.HTTP.WriteTimeoutSeconds, 30)

	setDefault(&c.Database.SSLMode, "disable")
	setDefaultInt(&c.Database.Port, 5432)

	setDefaultInt(&c.Kafka.PublishRetries, 3)

	setDefault(&c.Booking.ReferencePrefix, "HH")
	setDefaultInt(&c.Booking.ReserveLeadMinutes, 120)
	setDefaultInt(&c.Booking.HoldHours, 48)
	setDefaultInt(&c.Booking.CutoffMinutes, 90)
	setDefaultInt(&c.Booking.DraftTTLMinutes, 30)
	setDefaultInt(&c.Booking.LockTTLSeconds, 30)

	setDefaultInt(&c.Voyages.RoutesCacheTTLSeconds, 600)
	setDefaultInt(&c.Voyages.SearchCacheTTLSeconds, 300)
	setDefaultInt(&c.Voyages.TimeoutSeconds, 25)

	setDefault(&c.Payment.Currency, "php")
	setDefaultInt(&c.Payment.TimeoutSeconds, 10)

	setDefaultInt(&c.Worker.ExpirationSweepMinutes, 5)
	setDefault(&c.Log.Level, "info")
}

func setDefault(v *string, def string) {
	if strings.TrimSpace(*v) == "" {
		*v = def
	}
}

func setDefaultInt(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}
