package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_QuandoSemVariaveis_DeveUsarDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddress)
	assert.Equal(t, 10*time.Minute, cfg.ReservaExpiracao)
	assert.Equal(t, 30*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, 24*time.Hour, cfg.SweepGatewayGrace)
	assert.True(t, cfg.AutoMigrate)
}

func TestLoad_QuandoVariaveisDefinidas_DeveSobrescrever(t *testing.T) {
	t.Setenv("HTTP_ADDRESS", ":9999")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CHECKOUT_RESERVA_EXPIRACAO", "15m")
	t.Setenv("DB_AUTO_MIGRATE", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTPAddress)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 15*time.Minute, cfg.ReservaExpiracao)
	assert.False(t, cfg.AutoMigrate)
}

func TestLoad_QuandoRedisDBInvalido_DeveFalhar(t *testing.T) {
	t.Setenv("REDIS_DB", "abc")

	_, err := Load()
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	cfg := Config{
		PostgresUser:     "u",
		PostgresPassword: "p",
		PostgresHost:     "db",
		PostgresPort:     "5432",
		PostgresDB:       "rifa",
		PostgresSSLMode:  "disable",
	}
	assert.Equal(t, "postgres://u:p@db:5432/rifa?sslmode=disable", cfg.PostgresDSN())
}
