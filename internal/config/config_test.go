package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("ACCESS_TOKEN_TTL", "")
	t.Setenv("RISK_PROVIDER", "")
	t.Setenv("TRUSTED_PROXIES", "")

	cfg := LoadConfig()
	assert.Equal(t, "8000", cfg.AppPort)
	assert.Equal(t, DriverMySQL, cfg.DBDriver)
	assert.Equal(t, 60*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, ProviderOpenAI, cfg.RiskProvider)
	assert.Equal(t, []string{"127.0.0.1"}, cfg.TrustedProxies)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("RISK_TIMEOUT", "5s")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, 10.0.0.2")

	cfg := LoadConfig()
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 5*time.Second, cfg.RiskTimeout)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.TrustedProxies)
}

func TestValidate(t *testing.T) {
	cfg := &Config{DBDriver: DriverMySQL, RiskProvider: ProviderOpenAI, AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour}
	require.Error(t, cfg.Validate(), "missing secret must fail")

	cfg.JWTSecret = "s3cret"
	require.NoError(t, cfg.Validate())

	cfg.DBDriver = "oracle"
	require.Error(t, cfg.Validate())

	cfg.DBDriver = DriverPostgres
	cfg.RiskProvider = "bedrock"
	require.Error(t, cfg.Validate())
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBDriver: DriverMySQL, DBUser: "u", DBPassword: "p", DBHost: "h", DBName: "d"}
	assert.Equal(t, "u:p@tcp(h:3306)/d?parseTime=true", cfg.DSN())

	cfg.DBDriver = DriverPostgres
	assert.Contains(t, cfg.DSN(), "port=5432")

	cfg.DBDriver = DriverSQLite
	cfg.DBPath = "x.db"
	assert.Equal(t, "x.db", cfg.DSN())
}

func TestString_MasksSecret(t *testing.T) {
	cfg := &Config{JWTSecret: "topsecret"}
	assert.NotContains(t, cfg.String(), "topsecret")
}
