// Package config reads the runtime configuration from the environment, with
// an optional .env file in the working directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/emrgen/lineage/internal/cache"
	"github.com/emrgen/lineage/internal/compress"
	"github.com/emrgen/lineage/internal/model"
	"github.com/emrgen/lineage/internal/store"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"
)

var treeName = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

type Config struct {
	DBDriver      string
	DBDSN         string
	DataDir       string
	Tree          string
	Compression   string
	RedisAddr     string
	LogLevel      string
	HistoryDepth  int
	PruneInterval time.Duration
	CheckCron     string
}

// LoadConfig reads the configuration. Variables already set in the
// environment win over the .env file.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{
		DBDriver:    getEnv("DB_DRIVER", DriverSqlite),
		DBDSN:       os.Getenv("DB_DSN"),
		DataDir:     getEnv("DATA_DIR", ".lineage"),
		Tree:        getEnv("TREE", "default"),
		Compression: getEnv("COMPRESSION", "gzip"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CheckCron:   getEnv("CHECK_CRON", "@every 1h"),
	}

	var err error
	if cfg.HistoryDepth, err = strconv.Atoi(getEnv("HISTORY_DEPTH", "100")); err != nil {
		return nil, fmt.Errorf("invalid HISTORY_DEPTH: %w", err)
	}
	if cfg.PruneInterval, err = time.ParseDuration(getEnv("PRUNE_INTERVAL", "1m")); err != nil {
		return nil, fmt.Errorf("invalid PRUNE_INTERVAL: %w", err)
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverSqlite:
	case DriverPostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required for the %s driver", c.DBDriver)
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	if !treeName.MatchString(c.Tree) {
		return fmt.Errorf("invalid tree name %q", c.Tree)
	}
	if c.HistoryDepth < 0 {
		return fmt.Errorf("HISTORY_DEPTH must not be negative")
	}
	if _, err := compress.New(c.Compression); err != nil {
		return err
	}

	return nil
}

// SetupLogging applies the configured log level.
func (c *Config) SetupLogging() error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return nil
}

// GetDb opens the database of a tree. Sqlite keeps one file per tree in the
// data directory; postgres keeps one schema per tree.
func GetDb(cfg *Config, tree string) (*gorm.DB, error) {
	if !treeName.MatchString(tree) {
		return nil, fmt.Errorf("invalid tree name %q", tree)
	}
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	switch cfg.DBDriver {
	case DriverPostgres:
		db, err := gorm.Open(postgres.Open(cfg.DBDSN+" search_path="+tree), gormConfig)
		if err != nil {
			return nil, err
		}
		if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %q", tree)).Error; err != nil {
			return nil, err
		}
		return db, nil
	default:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, err
		}
		path := filepath.Join(cfg.DataDir, tree+".db")
		logrus.Debugf("opening tree %s at %s", tree, path)
		return gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), gormConfig)
	}
}

// OpenStore opens and migrates the store of a tree.
func OpenStore(cfg *Config, tree string) (*store.GormStore, error) {
	codec, err := compress.New(cfg.Compression)
	if err != nil {
		return nil, err
	}
	db, err := GetDb(cfg, tree)
	if err != nil {
		return nil, err
	}
	if err := model.Migrate(db); err != nil {
		return nil, err
	}

	return store.NewGormStore(db, codec), nil
}

// NewProvider serves the stores of every tree named by callers.
func NewProvider(cfg *Config) *store.TreeProvider {
	return store.NewTreeProvider(func(tree string) (store.Store, error) {
		return OpenStore(cfg, tree)
	})
}

// NewRedirects returns a redis backed redirect cache when REDIS_ADDR is set,
// otherwise a process-local one.
func NewRedirects(cfg *Config, tree string) cache.Redirects {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryRedirects()
	}

	return cache.NewRedisRedirects(cache.NewRedisClient(cfg.RedisAddr), tree)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
