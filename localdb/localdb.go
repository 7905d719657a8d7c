// Package localdb opens the machine-local database backing the degraded
// tiers of the persistence chain: the view-counter fallback and the config
// snapshot history. It defaults to a SQLite file so a bare deployment still
// has a durable local tier, but honors DATABASE_DSN/DATABASE_DRIVER for
// installations that point it at a real server.
package localdb

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const defaultSQLitePath = "data/biolink.db"

var (
	openOnce sync.Once
	shared   *gorm.DB
	openErr  error
)

// Open returns the shared database handle, creating it on first use.
func Open() (*gorm.DB, error) {
	openOnce.Do(func() {
		shared, openErr = openFromEnv()
	})
	return shared, openErr
}

func openFromEnv() (*gorm.DB, error) {
	dsn := strings.TrimSpace(os.Getenv("DATABASE_DSN"))
	if dsn == "" {
		dsn = defaultSQLitePath
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("localdb: create data dir: %w", err)
			}
		}
		return openDatabase("sqlite", dsn)
	}

	driver := strings.TrimSpace(os.Getenv("DATABASE_DRIVER"))
	if driver == "" {
		driver = inferDriverFromDSN(dsn)
		if driver == "" {
			return nil, fmt.Errorf("localdb: DATABASE_DRIVER is required when DSN does not contain a scheme")
		}
	}
	return openDatabase(driver, dsn)
}

func openDatabase(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{NowFunc: func() time.Time { return time.Now().UTC() }}
	switch strings.ToLower(driver) {
	case "postgres", "postgresql", "pg":
		return gorm.Open(postgres.Open(dsn), cfg)
	case "mysql":
		return gorm.Open(mysql.Open(dsn), cfg)
	case "sqlite", "sqlite3":
		return gorm.Open(sqlite.Open(dsn), cfg)
	default:
		return nil, fmt.Errorf("localdb: unsupported database driver %q", driver)
	}
}

func inferDriverFromDSN(dsn string) string {
	lower := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(lower, "mysql://"), strings.Contains(lower, "://mysql"):
		return "mysql"
	case strings.HasPrefix(lower, "sqlite://"), strings.HasSuffix(lower, ".db"), strings.HasSuffix(lower, ".sqlite"):
		return "sqlite"
	default:
		return ""
	}
}

// OpenTest opens an isolated SQLite database at the given path. Mainly
// useful for tests that need their own handle instead of the shared one.
func OpenTest(path string) (*gorm.DB, error) {
	return openDatabase("sqlite", path)
}
