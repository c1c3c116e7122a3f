package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPing_FailsWithinTimeout(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing().WillDelayFor(time.Second)

	started := time.Now()
	err = ping(context.Background(), db, 20*time.Millisecond)
	assert.ErrorContains(t, err, "failed to ping database")
	assert.Less(t, time.Since(started), 500*time.Millisecond)
}

func TestPing_OK(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()

	require.NoError(t, ping(context.Background(), db, time.Second))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPoolOptions_Defaults(t *testing.T) {
	got := PoolOptions{MaxOpenConns: 3, MaxIdleConns: 8}.withDefaults()

	assert.Equal(t, 3, got.MaxOpenConns)
	assert.Equal(t, 3, got.MaxIdleConns)
	assert.Equal(t, defaultConnMaxLifetime, got.ConnMaxLifetime)
	assert.Equal(t, defaultPingTimeout, got.PingTimeout)

	zero := PoolOptions{}.withDefaults()
	assert.Equal(t, defaultMaxOpenConns, zero.MaxOpenConns)
	assert.Equal(t, defaultMaxIdleConns, zero.MaxIdleConns)
}
