package config_test

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Returns-api/pkg/config"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := config.FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "returns-api", cfg.App.Name)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, 60*time.Second, cfg.Cache.TTL())
}

func TestFromViper_ValoresDeEntornoComoTexto(t *testing.T) {
	v := viper.New()
	v.Set("DB_PORT", "6543")
	v.Set("HTTP_PORT", "no-numerico")
	v.Set("CACHE_TTL_SECONDS", "5")

	cfg, err := config.FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 6543, cfg.DB.Port)
	assert.Equal(t, 8080, cfg.HTTP.Port, "un valor no numérico conserva el default")
	assert.Equal(t, 5*time.Second, cfg.Cache.TTL())
}

func TestFromViper_ProduccionSinSecretFalla(t *testing.T) {
	v := viper.New()
	v.Set("APP_ENV", "production")

	_, err := config.FromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := config.DBConfig{
		Host: "db", Port: 5432, User: "ops", Password: "p@ss:word", DBName: "returns", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://ops:p%40ss%3Aword@db:5432/returns?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
