package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/devcamper-api/config"
)

func testConfig() *config.Config {
	return &config.Config{
		AppName:       "devcamper-test",
		DBHost:        "db.internal",
		DBPort:        "5433",
		DBUser:        "camper",
		DBPassword:    "secret",
		DBName:        "audit",
		DBSSLMode:     "disable",
		DBMaxConns:    8,
		DBMinConns:    2,
		DBMaxConnLife: 30 * time.Minute,
	}
}

func TestPoolConfig_AppliesLimits(t *testing.T) {
	pc, err := poolConfig(testConfig())
	require.NoError(t, err)

	assert.Equal(t, int32(8), pc.MaxConns)
	assert.Equal(t, int32(2), pc.MinConns)
	assert.Equal(t, 30*time.Minute, pc.MaxConnLifetime)
	assert.Equal(t, "db.internal", pc.ConnConfig.Host)
	assert.Equal(t, uint16(5433), pc.ConnConfig.Port)
	assert.Equal(t, "audit", pc.ConnConfig.Database)
	assert.Equal(t, "devcamper-test", pc.ConnConfig.RuntimeParams["application_name"])
}

func TestPoolConfig_IgnoresMinAboveMax(t *testing.T) {
	cfg := testConfig()
	cfg.DBMaxConns = 2
	cfg.DBMinConns = 5

	pc, err := poolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(2), pc.MaxConns)
	assert.LessOrEqual(t, pc.MinConns, pc.MaxConns)
}

func TestPoolConfig_BadPort(t *testing.T) {
	cfg := testConfig()
	cfg.DBPort = "not-a-port"

	_, err := poolConfig(cfg)
	assert.Error(t, err)
}
