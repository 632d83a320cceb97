package config

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// InitDB opens the history database and ping-verifies it. The DSN scheme
// selects the driver: postgres:// DSNs go through pgx, everything else is
// treated as a MySQL DSN. Returns the pool and the driver name.
func InitDB(dsn string) (*sql.DB, string, error) {
	if dsn == "" {
		return nil, "", fmt.Errorf("InitDB: empty dsn")
	}

	driver := "mysql"
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = "pgx"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("InitDB: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("InitDB ping failed: %w", err)
	}

	return db, driver, nil
}
