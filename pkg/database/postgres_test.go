package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riftvoice/backend/config"
)

func TestPoolConfig_AppliesLimits(t *testing.T) {
	cfg, err := poolConfig(config.DatabaseConfig{
		URL:             "postgres://u:p@localhost:5432/db?sslmode=disable",
		MaxConns:        7,
		MinConns:        2,
		MaxConnLifetime: 5 * time.Minute,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 7, cfg.MaxConns)
	assert.EqualValues(t, 2, cfg.MinConns)
	assert.Equal(t, 5*time.Minute, cfg.MaxConnLifetime)
}

func TestPoolConfig_ZeroKeepsDefaults(t *testing.T) {
	cfg, err := poolConfig(config.DatabaseConfig{URL: "postgres://u:p@localhost:5432/db"})
	require.NoError(t, err)
	assert.Positive(t, cfg.MaxConns)
}

func TestPoolConfig_BadURL(t *testing.T) {
	_, err := poolConfig(config.DatabaseConfig{URL: "postgres://%zz"})
	assert.Error(t, err)
}
