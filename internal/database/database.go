package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/jackc/pgx/v5/stdlib"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"planportal/internal/config"
)

const defaultPingTimeout = 5 * time.Second

var sqlOpen = sql.Open

// BuildPostgresDSN constructs a pgx URL DSN. Session settings ride along as query
// parameters: application_name, connect_timeout in whole seconds and statement_timeout
// in milliseconds, which pgx forwards to the server as a runtime parameter.
// Example: postgres://portal:pass@db:5432/portal?application_name=planportal&sslmode=disable
func BuildPostgresDSN(c config.DatabaseConfig) (string, error) {
	if c.Host == "" || c.Port == "" || c.User == "" || c.Name == "" {
		return "", fmt.Errorf("invalid database config: host, port, user, and name are required")
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%s", c.Host, c.Port),
		Path:   c.Name,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else {
		u.User = url.User(c.User)
	}

	q := u.Query()
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	if c.AppName != "" {
		q.Set("application_name", c.AppName)
	}
	if secs := int64(c.ConnectTimeout / time.Second); secs > 0 {
		q.Set("connect_timeout", strconv.FormatInt(secs, 10))
	}
	if ms := c.StatementTimeout.Milliseconds(); ms > 0 {
		q.Set("statement_timeout", strconv.FormatInt(ms, 10))
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// NewPostgres opens a database/sql connection using the pgx stdlib driver, applies
// the pool settings and pings within c.PingTimeout.
func NewPostgres(c config.DatabaseConfig) (*sql.DB, error) {
	dsn, err := BuildPostgresDSN(c)
	if err != nil {
		return nil, err
	}

	driverName, err := otelsql.Register("pgx",
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL, semconv.DBName(c.Name)),
		otelsql.WithSQLCommenter(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register otelsql: %w", err)
	}

	db, err := sqlOpen(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	applyPool(db, c)

	timeout := c.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	if err := Ping(context.Background(), db, timeout); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return db, nil
}

// applyPool copies the non-zero pool settings onto db.
func applyPool(db *sql.DB, c config.DatabaseConfig) {
	if c.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.MaxIdleConns > 0 {
		idle := c.MaxIdleConns
		if c.MaxOpenConns > 0 && idle > c.MaxOpenConns {
			idle = c.MaxOpenConns
		}
		db.SetMaxIdleConns(idle)
	}
	if c.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(c.ConnMaxLifetime)
	}
	if c.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(c.ConnMaxIdleTime)
	}
}

// Ping reports whether the database answers within timeout. Health endpoints use it.
func Ping(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return db.PingContext(ctx)
}
