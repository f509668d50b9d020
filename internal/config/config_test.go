package config

import (
	"context"
	"testing"
	"time"

	"github.com/emrgen/lineage/internal/cache"
	"github.com/emrgen/lineage/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"DB_DRIVER", "DB_DSN", "DATA_DIR", "TREE", "COMPRESSION", "REDIS_ADDR", "LOG_LEVEL", "HISTORY_DEPTH", "PRUNE_INTERVAL", "CHECK_CRON"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, &Config{
		DBDriver:      DriverSqlite,
		DataDir:       ".lineage",
		Tree:          "default",
		Compression:   "gzip",
		LogLevel:      "info",
		HistoryDepth:  100,
		PruneInterval: time.Minute,
		CheckCron:     "@every 1h",
	}, cfg)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "driver", key: "DB_DRIVER", value: "mysql"},
		{name: "postgres without dsn", key: "DB_DRIVER", value: "postgres"},
		{name: "tree", key: "TREE", value: "../etc"},
		{name: "compression", key: "COMPRESSION", value: "zstd"},
		{name: "depth", key: "HISTORY_DEPTH", value: "many"},
		{name: "negative depth", key: "HISTORY_DEPTH", value: "-1"},
		{name: "interval", key: "PRUNE_INTERVAL", value: "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DB_DSN", "")
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestOpenStore_SqliteFilePerTree(t *testing.T) {
	ctx := context.Background()
	cfg := &Config{DBDriver: DriverSqlite, DataDir: t.TempDir(), Compression: "lz4"}

	provider := NewProvider(cfg)
	smiths, err := provider.Provide("smiths")
	require.NoError(t, err)
	require.NoError(t, smiths.Commit(ctx, &model.Note{Base: model.Base{Handle: "n1"}, Text: "hello"}))

	jones, err := provider.Provide("jones")
	require.NoError(t, err)
	_, err = jones.Get(ctx, model.KindNote, "n1")
	assert.Error(t, err)

	again, err := provider.Provide("smiths")
	require.NoError(t, err)
	assert.Same(t, smiths, again)
	assert.FileExists(t, cfg.DataDir+"/smiths.db")

	_, err = GetDb(cfg, "Bad Name")
	assert.Error(t, err)
}

func TestNewRedirects_WithoutRedis(t *testing.T) {
	redirects := NewRedirects(&Config{}, "default")
	assert.IsType(t, &cache.MemoryRedirects{}, redirects)
}
