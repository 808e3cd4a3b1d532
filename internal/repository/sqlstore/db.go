// Package sqlstore implements domain.Store over database/sql for the
// sqlite (modernc.org/sqlite) and mysql (go-sql-driver/mysql) drivers.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ethdomperin2018/ai-assist/internal/config"
	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Supported driver names
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// DB wraps a database/sql handle with its dialect
type DB struct {
	SQL    *sql.DB
	driver string
}

// Open opens and verifies a connection pool for the given driver
func Open(ctx context.Context, driver string, cfg config.SQLConfig) (*DB, error) {
	if driver != DriverSQLite && driver != DriverMySQL {
		return nil, fmt.Errorf("unsupported sql driver: %s", driver)
	}

	sqlDB, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLife > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLife)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	return &DB{SQL: sqlDB, driver: driver}, nil
}

// Close closes the pool
func (db *DB) Close() error {
	return db.SQL.Close()
}

// Ping verifies database connectivity
func (db *DB) Ping(ctx context.Context) error {
	return db.SQL.PingContext(ctx)
}

// quote escapes a reserved identifier for the active dialect
func (db *DB) quote(ident string) string {
	if db.driver == DriverMySQL {
		return "`" + ident + "`"
	}
	return `"` + ident + `"`
}
