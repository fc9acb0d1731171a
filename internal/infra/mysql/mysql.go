package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	driver "github.com/go-sql-driver/mysql"

	"shopify-reconciler/internal/config"
)

const pingTimeout = 5 * time.Second

// New opens and pings the ERP MySQL database.
func New(ctx context.Context, cfg config.MysqlConfig) (*sql.DB, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql connection error %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql: ping %w", err)
	}

	return db, nil
}

// DSN renders cfg in the driver's format. Port defaults to 3306.
func DSN(cfg config.MysqlConfig) (string, error) {
	if cfg.Host == "" || cfg.Username == "" || cfg.Database == "" {
		return "", fmt.Errorf("mysql host, username and database are required")
	}
	if cfg.Port == 0 {
		cfg.Port = 3306
	}

	dc := driver.NewConfig()
	dc.User = cfg.Username
	dc.Passwd = cfg.Password
	dc.Net = "tcp"
	dc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	dc.DBName = cfg.Database
	return dc.FormatDSN(), nil
}
