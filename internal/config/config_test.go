package config

import (
	"testing"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.AppHost)
	assert.Equal(t, "8097", cfg.HTTPPort)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "ticket_service", cfg.DB.Database)
	assert.Equal(t, "ticket.events", cfg.Kafka.TopicTicket)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Empty(t, cfg.Mail.APIURL)
	assert.ErrorContains(t, cfg.Validate(), "AUTH_JWT_SECRET")

	cfg.Auth.JWTSecret = "dev"
	require.NoError(t, cfg.Validate())
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(envconfig.MapLookuper(map[string]string{
		"APP_PORT":        "9000",
		"DB_HOST":         "db",
		"DB_PASSWORD":     "p@ss word",
		"KAFKA_BROKERS":   "k1:9092,k2:9092",
		"AUTH_JWT_SECRET": "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Addr())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "host=db port=5432 user=postgres password='p@ss word' dbname=ticket_service sslmode=disable", cfg.DSN())
	assert.Equal(t, "postgres://postgres:p%40ss%20word@db:5432/ticket_service?sslmode=disable", cfg.DatabaseURL())
}

func TestValidate(t *testing.T) {
	cfg, err := LoadFrom(envconfig.MapLookuper(map[string]string{"APP_ENV": "production"}))
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.Validate(), "AUTH_JWT_SECRET")

	cfg.Auth.JWTSecret = "x"
	require.NoError(t, cfg.Validate())

	cfg.DB.Password = ""
	assert.ErrorContains(t, cfg.Validate(), "DB_PASSWORD")

	cfg.DB.Host = ""
	assert.ErrorContains(t, cfg.Validate(), "DB_HOST")
}
