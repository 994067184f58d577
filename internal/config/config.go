package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	AppHost  string `env:"APP_HOST, default=0.0.0.0"`
	HTTPPort string `env:"APP_PORT, default=8097"`
	AppEnv   string `env:"APP_ENV, default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	DB    DBConfig
	Auth  AuthConfig
	Kafka KafkaConfig
	Mail  MailConfig
}

type DBConfig struct {
	Host     string `env:"DB_HOST, default=localhost"`
	Port     string `env:"DB_PORT, default=5432"`
	User     string `env:"DB_USER, default=postgres"`
	Password string `env:"DB_PASSWORD, default=postgres"`
	Database string `env:"DB_DATABASE, default=ticket_service"`
	SSLMode  string `env:"DB_SSLMODE, default=disable"`
}

// AuthConfig describes how tokens issued by the identity provider are verified.
type AuthConfig struct {
	JWTSecret string `env:"AUTH_JWT_SECRET"`
	Issuer    string `env:"AUTH_JWT_ISSUER"`
}

// KafkaConfig enables ticket event publishing when Brokers is non-empty.
type KafkaConfig struct {
	Brokers     []string `env:"KAFKA_BROKERS"`
	TopicTicket string   `env:"KAFKA_TOPIC_TICKET, default=ticket.events"`
}

// MailConfig selects the notification channel: empty APIURL keeps the log-only notifier.
type MailConfig struct {
	APIURL string `env:"MAIL_API_URL"`
	APIKey string `env:"MAIL_API_KEY"`
	From   string `env:"MAIL_FROM, default=CRTE Chamados <nao-responda@crte.local>"`
}

func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")
	return LoadFrom(envconfig.OsLookuper())
}

// LoadFrom processes the config from an explicit lookuper (tests use envconfig.MapLookuper).
func LoadFrom(l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DB.Host == "" || c.DB.Database == "" {
		return errors.New("config: DB_HOST and DB_DATABASE are required")
	}
	if c.IsProduction() && c.DB.Password == "" {
		return errors.New("config: in production DB_PASSWORD is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("config: AUTH_JWT_SECRET is required")
	}
	return nil
}

func (c *Config) IsProduction() bool  { return c.AppEnv == "production" }
func (c *Config) IsDevelopment() bool { return c.AppEnv == "development" }

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, quoteDSN(c.DB.Password), c.DB.Database, c.DB.SSLMode)
}

// quoteDSN quotes a libpq keyword/value so spaces and quotes survive.
func quoteDSN(v string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v) + "'"
}

func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB.User, c.DB.Password),
		Host:     c.DB.Host + ":" + c.DB.Port,
		Path:     "/" + c.DB.Database,
		RawQuery: "sslmode=" + url.QueryEscape(c.DB.SSLMode),
	}
	return u.String()
}

func (c *Config) Addr() string {
	return c.AppHost + ":" + c.HTTPPort
}
