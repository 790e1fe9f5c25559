package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "./config/local.yaml"

type HTTPServer struct {
	Addr string `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
}

type AddressAPI struct {
	UseRealAPI       bool          `yaml:"USE_REAL_API" env:"USE_REAL_API" env-default:"false"`
	BaseURL          string        `yaml:"BASE_URL" env:"ADDRESS_API_BASE_URL" env-default:"http://localhost:9000"`
	Timeout          time.Duration `yaml:"TIMEOUT" env:"ADDRESS_API_TIMEOUT" env-default:"10s"`
	FailureThreshold uint32        `yaml:"FAILURE_THRESHOLD" env:"ADDRESS_API_FAILURE_THRESHOLD" env-default:"5"`
	OpenTimeout      time.Duration `yaml:"OPEN_TIMEOUT" env:"ADDRESS_API_OPEN_TIMEOUT" env-default:"30s"`
}

type Lookup struct {
	Enabled bool          `yaml:"ENABLED" env:"LOOKUP_ENABLED"`
	URL     string        `yaml:"URL" env:"LOOKUP_URL" env-default:"https://myorder.mohd.it/api/search_intercom"`
	Mode    string        `yaml:"MODE" env:"LOOKUP_MODE" env-default:"test"`
	Timeout time.Duration `yaml:"TIMEOUT" env:"LOOKUP_TIMEOUT" env-default:"10s"`
}

type Wizard struct {
	LoadDelayMin  time.Duration `yaml:"LOAD_DELAY_MIN" env:"WIZARD_LOAD_DELAY_MIN" env-default:"900ms"`
	LoadDelayMax  time.Duration `yaml:"LOAD_DELAY_MAX" env:"WIZARD_LOAD_DELAY_MAX" env-default:"1400ms"`
	ConfirmDelay  time.Duration `yaml:"CONFIRM_DELAY" env:"WIZARD_CONFIRM_DELAY" env-default:"900ms"`
	SessionTTL    time.Duration `yaml:"SESSION_TTL" env:"WIZARD_SESSION_TTL" env-default:"30m"`
	SweepInterval time.Duration `yaml:"SWEEP_INTERVAL" env:"WIZARD_SWEEP_INTERVAL" env-default:"1m"`
}

type Security struct {
	JWTKey   string        `yaml:"JWT_KEY" env:"JWT_KEY" env-required:"true"`
	TokenTTL time.Duration `yaml:"TOKEN_TTL" env:"TOKEN_TTL" env-default:"1h"`
}

type Database struct {
	Enabled         bool          `yaml:"ENABLED" env:"PG_ENABLED" env-default:"false"`
	Host            string        `yaml:"PG_HOST" env:"PG_HOST" env-default:"localhost"`
	Port            string        `yaml:"PG_PORT" env:"PG_PORT" env-default:"5432"`
	User            string        `yaml:"PG_USER" env:"PG_USER"`
	Password        string        `yaml:"PG_PASSWORD" env:"PG_PASSWORD"`
	Name            string        `yaml:"PG_DBNAME" env:"PG_DBNAME"`
	SSLMode         string        `yaml:"PG_SSLMODE" env:"PG_SSLMODE" env-default:"require"`
	MaxOpenConns    int           `yaml:"MAX_OPEN_CONNS" env:"PG_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns    int           `yaml:"MAX_IDLE_CONNS" env:"PG_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"CONN_MAX_LIFETIME" env:"PG_CONN_MAX_LIFETIME" env-default:"30m"`
	ConnMaxIdleTime time.Duration `yaml:"CONN_MAX_IDLE_TIME" env:"PG_CONN_MAX_IDLE_TIME" env-default:"5m"`
}

type RedisConnect struct {
	Enabled  bool   `yaml:"ENABLED" env:"REDIS_ENABLED" env-default:"false"`
	Host     string `yaml:"REDIS_HOST" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"REDIS_PORT" env:"REDIS_PORT" env-default:"6379"`
	Username string `yaml:"REDIS_USER" env:"REDIS_USER"`
	Password string `yaml:"REDIS_PASSWORD" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"REDIS_DB" env:"REDIS_DB" env-default:"0"`
}

type RateConfig struct {
	MaxAttempts int64         `yaml:"MAX_ATTEMPTS" env:"MAX_ATTEMPTS" env-default:"5"`
	WindowSize  time.Duration `yaml:"WINDOW_SIZE" env:"WINDOW_SIZE" env-default:"15s"`
}

type CacheConfig struct {
	DefaultTTL time.Duration `yaml:"default_ttl" env:"CACHE_DEFAULT_TTL" env-default:"5m"`
}

type SendGrid struct {
	Enabled   bool   `yaml:"ENABLED" env:"SENDGRID_ENABLED" env-default:"false"`
	APIKey    string `yaml:"API_KEY" env:"SENDGRID_API_KEY"`
	FromEmail string `yaml:"FROM_EMAIL" env:"SENDGRID_FROM_EMAIL"`
	FromName  string `yaml:"FROM_NAME" env:"SENDGRID_FROM_NAME" env-default:"Servizio Clienti"`
}

type OtelConfig struct {
	Enabled          bool    `yaml:"ENABLED" env:"OTEL_ENABLED" env-default:"false"`
	ServiceName      string  `yaml:"SERVICE_NAME" env:"OTEL_SERVICE_NAME" env-default:"selfservice-widget"`
	ExporterEndpoint string  `yaml:"EXPORTER_ENDPOINT" env:"OTEL_EXPORTER_ENDPOINT" env-default:"localhost:4318"`
	SamplerRatio     float64 `yaml:"SAMPLER_RATIO" env:"OTEL_SAMPLER_RATIO" env-default:"1"`
}

type Config struct {
	Env          string `yaml:"env" env:"ENV" env-required:"true"`
	HTTPServer   `yaml:"http_server"`
	AddressAPI   AddressAPI   `yaml:"address_api"`
	Lookup       Lookup       `yaml:"lookup"`
	Wizard       Wizard       `yaml:"wizard"`
	Security     Security     `yaml:"security"`
	Database     Database     `yaml:"database"`
	RedisConnect RedisConnect `yaml:"redis"`
	RateConfig   RateConfig   `yaml:"rateConfig"`
	Cache        CacheConfig  `yaml:"cache"`
	SendGrid     SendGrid     `yaml:"sendgrid"`
	Otel         OtelConfig   `yaml:"otel"`
}

// LoadConfigFromPath reads the YAML file at path and applies environment overrides.
func LoadConfigFromPath(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("can not read config file: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {

	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {

		flags := flag.String("config", "", "gets the config flag value")

		flag.Parse()

		configPath = *flags

		if configPath == "" {
			configPath = defaultConfigPath
		}

	}

	cfg, err := LoadConfigFromPath(configPath)
	if err != nil {
		log.Fatal(err.Error())
	}

	return cfg

}

func (d *Database) GetDSN() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

func (r *RedisConnect) GetDSN() string {
	return fmt.Sprintf("redis://%s:%s@%s:%s", r.Username, r.Password, r.Host, r.Port)
}
