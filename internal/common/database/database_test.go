package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyPinger struct {
	failures int
	calls    int
}

func (f *flakyPinger) Ping(context.Context) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("connection refused")
	}
	return nil
}

func TestWaitReady(t *testing.T) {
	p := &flakyPinger{failures: 2}
	var retries []int

	err := WaitReady(context.Background(), p, 5, time.Millisecond, func(attempt int, _ error) {
		retries = append(retries, attempt)
	})
	require.NoError(t, err)
	assert.Equal(t, 3, p.calls)
	assert.Equal(t, []int{1, 2}, retries)

	err = WaitReady(context.Background(), &flakyPinger{failures: 10}, 3, time.Millisecond, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not ready after 3 attempts")
}

func TestPostgresClient_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	client := &PostgresClient{DB: db}

	mock.ExpectPing()
	assert.NoError(t, client.Ping(context.Background()))

	mock.ExpectClose()
	assert.NoError(t, client.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJSONHelpers(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	ctx := context.Background()

	type snapshot struct {
		Guarantors int `json:"guarantors"`
	}

	require.NoError(t, SetJSON(ctx, rdb, "community:snapshot:herat-2", snapshot{Guarantors: 4}, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("community:snapshot:herat-2"))

	var got snapshot
	require.NoError(t, GetJSON(ctx, rdb, "community:snapshot:herat-2", &got))
	assert.Equal(t, 4, got.Guarantors)

	err := GetJSON(ctx, rdb, "community:snapshot:missing", &got)
	assert.ErrorIs(t, err, redis.Nil)
}
