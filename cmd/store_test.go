package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Moirius/La-Station-Prospection/internal/config"
)

func TestInitStore_SQLite(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: filepath.Join(t.TempDir(), "test.db"),
		},
	}

	st, err := initStore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st)
	defer st.Close() //nolint:errcheck

	// Migrations ran: the store is immediately usable.
	names, err := st.ExistingNames(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestInitStore_UnsupportedDriver(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{Driver: "mongodb"},
	}

	_, err := initStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}
