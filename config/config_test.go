package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, DriverMongo, cfg.Store.Driver)
	assert.Equal(t, 100, cfg.Feedback.DefaultListLimit)
	assert.False(t, cfg.Feedback.AllowUnboundedList)
	assert.Equal(t, 10, cfg.Stats.LeaderboardSize)
	assert.Equal(t, 10*time.Second, cfg.Mongo.ConnectTimeout)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("mongo:\n  uri: mongodb://file:27017\n  dbName: fromfile\nstats:\n  leaderboardSize: 3\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	t.Setenv("DATABASE_NAME", "fromenv")
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "mongodb://file:27017", cfg.Mongo.URI)
	assert.Equal(t, "fromenv", cfg.Mongo.DBName)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 3, cfg.Stats.LeaderboardSize)
}
