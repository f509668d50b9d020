package tester

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emrgen/lineage/internal/compress"
	"github.com/emrgen/lineage/internal/loader"
	"github.com/emrgen/lineage/internal/model"
	"github.com/emrgen/lineage/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB opens a migrated sqlite database that lives as long as the test.
func TestDB(t testing.TB) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tree.db")
	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, model.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

// TestStore returns an empty store. Payloads are gzip encoded so codec paths are exercised.
func TestStore(t testing.TB) *store.GormStore {
	t.Helper()
	return store.NewGormStore(TestDB(t), compress.NewGZip())
}

// LoadTree returns a store holding the given YAML tree.
func LoadTree(t testing.TB, doc string) *store.GormStore {
	t.Helper()

	st := TestStore(t)
	_, err := loader.Load(context.Background(), st, strings.NewReader(doc))
	require.NoError(t, err)

	return st
}

// Snapshot captures everything observable in a store.
type Snapshot struct {
	Tree       *loader.Tree
	References []*model.Reference
}

func TakeSnapshot(t testing.TB, st store.Store) *Snapshot {
	t.Helper()

	ctx := context.Background()
	tree, err := loader.Export(ctx, st)
	require.NoError(t, err)
	refs, err := st.ListReferences(ctx)
	require.NoError(t, err)

	return &Snapshot{Tree: tree, References: refs}
}

// Redis connects to REDIS_ADDR and skips the test when it is not set.
func Redis(t testing.TB) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() { _ = client.Close() })

	return client
}
