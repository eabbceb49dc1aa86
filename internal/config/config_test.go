package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "https://maps.googleapis.com/maps/api", cfg.Google.BaseURL)
	assert.Equal(t, 10000, cfg.Discovery.DefaultRadius)
	assert.Equal(t, 10, cfg.Discovery.MaxRounds)
	assert.Equal(t, 5, cfg.Discovery.MaxPages)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PROSPECT_STORE_DRIVER", "postgres")
	t.Setenv("PROSPECT_DISCOVERY_MAX_ROUNDS", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 3, cfg.Discovery.MaxRounds)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.Error(t, InitLogger(LogConfig{Level: "nope", Format: "json"}))
}
