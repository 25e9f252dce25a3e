package database

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"testing"
	"time"

	"planportal/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func portalDB() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:             "db",
		Port:             "5432",
		User:             "portal",
		Password:         "s3cret",
		Name:             "planportal",
		SSLMode:          "disable",
		AppName:          "planportal",
		ConnectTimeout:   10 * time.Second,
		StatementTimeout: 30 * time.Second,
		MaxOpenConns:     10,
		MaxIdleConns:     5,
		ConnMaxLifetime:  5 * time.Minute,
		ConnMaxIdleTime:  2 * time.Minute,
		PingTimeout:      time.Second,
	}
}

func TestBuildPostgresDSN(t *testing.T) {
	t.Run("portal settings", func(t *testing.T) {
		got, err := BuildPostgresDSN(portalDB())
		require.NoError(t, err)
		assert.Equal(t, "postgres://portal:s3cret@db:5432/planportal?application_name=planportal&connect_timeout=10&sslmode=disable&statement_timeout=30000", got)
	})

	t.Run("password with reserved characters is escaped", func(t *testing.T) {
		c := portalDB()
		c.Password = "p@ss/word"
		got, err := BuildPostgresDSN(c)
		require.NoError(t, err)

		u, err := url.Parse(got)
		require.NoError(t, err)
		pass, ok := u.User.Password()
		assert.True(t, ok)
		assert.Equal(t, "p@ss/word", pass)
		assert.Equal(t, "db:5432", u.Host)
	})

	t.Run("zero timeouts and empty names are omitted", func(t *testing.T) {
		got, err := BuildPostgresDSN(config.DatabaseConfig{
			Host: "localhost",
			Port: "5432",
			User: "portal",
			Name: "planportal",
		})
		require.NoError(t, err)
		assert.Equal(t, "postgres://portal@localhost:5432/planportal", got)
	})

	t.Run("sub-second connect timeout is dropped", func(t *testing.T) {
		c := portalDB()
		c.ConnectTimeout = 500 * time.Millisecond
		got, err := BuildPostgresDSN(c)
		require.NoError(t, err)
		assert.NotContains(t, got, "connect_timeout")
	})

	required := map[string]func(*config.DatabaseConfig){
		"host": func(c *config.DatabaseConfig) { c.Host = "" },
		"port": func(c *config.DatabaseConfig) { c.Port = "" },
		"user": func(c *config.DatabaseConfig) { c.User = "" },
		"name": func(c *config.DatabaseConfig) { c.Name = "" },
	}
	for field, unset := range required {
		t.Run("missing "+field, func(t *testing.T) {
			c := portalDB()
			unset(&c)
			_, err := BuildPostgresDSN(c)
			assert.Error(t, err)
		})
	}
}

func TestApplyPool(t *testing.T) {
	t.Run("limits open connections", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		applyPool(db, portalDB())
		assert.Equal(t, 10, db.Stats().MaxOpenConnections)
	})

	t.Run("zero values keep the driver defaults", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		applyPool(db, config.DatabaseConfig{})
		assert.Equal(t, 0, db.Stats().MaxOpenConnections)
	})
}

func withOpen(t *testing.T, db *sql.DB, openErr error) {
	t.Helper()
	orig := sqlOpen
	sqlOpen = func(driverName, dataSourceName string) (*sql.DB, error) {
		if openErr != nil {
			return nil, openErr
		}
		assert.Contains(t, dataSourceName, "application_name=planportal")
		return db, nil
	}
	t.Cleanup(func() { sqlOpen = orig })
}

func TestNewPostgres(t *testing.T) {
	t.Run("success applies pool", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()
		withOpen(t, db, nil)

		mock.ExpectPing()

		gotDB, err := NewPostgres(portalDB())
		require.NoError(t, err)
		assert.Equal(t, 10, gotDB.Stats().MaxOpenConnections)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("open error", func(t *testing.T) {
		withOpen(t, nil, errors.New("open error"))

		gotDB, err := NewPostgres(portalDB())
		assert.ErrorContains(t, err, "sql open: open error")
		assert.Nil(t, gotDB)
	})

	t.Run("ping error closes the pool", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		withOpen(t, db, nil)

		mock.ExpectPing().WillReturnError(errors.New("ping failed"))

		gotDB, err := NewPostgres(portalDB())
		assert.ErrorContains(t, err, "db ping: ping failed")
		assert.Nil(t, gotDB)
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.ErrorContains(t, db.Ping(), "database is closed")
	})

	t.Run("ping outlasting the timeout", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		withOpen(t, db, nil)

		c := portalDB()
		c.PingTimeout = 20 * time.Millisecond
		mock.ExpectPing().WillDelayFor(time.Second)

		gotDB, err := NewPostgres(c)
		assert.Error(t, err)
		assert.Nil(t, gotDB)
	})

	t.Run("invalid config", func(t *testing.T) {
		gotDB, err := NewPostgres(config.DatabaseConfig{})
		assert.Error(t, err)
		assert.Nil(t, gotDB)
	})
}

func TestPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()
	assert.NoError(t, Ping(context.Background(), db, time.Second))

	mock.ExpectPing().WillReturnError(errors.New("down"))
	assert.Error(t, Ping(context.Background(), db, time.Second))
	assert.NoError(t, mock.ExpectationsWereMet())
}
