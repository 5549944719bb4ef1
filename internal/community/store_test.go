// internal/community/store_test.go
package community

import (
	"context"
	"database/sql"
	stderrors "errors"
	"net"
	"regexp"
	"testing"
	"time"

	"lending-workers/internal/assessment"
	"lending-workers/internal/common/database"
	"lending-workers/internal/common/errors"
	"lending-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Helpers
// ==========================

var lookupQuery = regexp.QuoteMeta("SELECT guarantor_count, avg_local_income")

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

// ==========================
// Lookup
// ==========================

func TestLookup_CacheHit(t *testing.T) {
	db, mock := setupMockDB(t)
	_, rdb := setupRedis(t)

	cached := assessment.Guarantors(4).WithIncome(410)
	require.NoError(t, database.SetJSON(context.Background(), rdb, CacheKey("herat-02"), cached, time.Minute))

	store := NewStore(db, rdb, time.Minute, logger.NewTestLogger(t))
	got, err := store.Lookup(context.Background(), "herat-02")
	require.NoError(t, err)

	require.NotNil(t, got.GuarantorCount)
	assert.Equal(t, 4, *got.GuarantorCount)
	assert.Equal(t, 410.0, *got.AvgLocalIncome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLookup_CacheMissPopulatesCache(t *testing.T) {
	db, mock := setupMockDB(t)
	mr, rdb := setupRedis(t)

	mock.ExpectQuery(lookupQuery).
		WithArgs("kabul-01").
		WillReturnRows(sqlmock.NewRows([]string{"guarantor_count", "avg_local_income"}).AddRow(3, 250.5))

	store := NewStore(db, rdb, 15*time.Minute, logger.NewTestLogger(t))
	got, err := store.Lookup(context.Background(), "kabul-01")
	require.NoError(t, err)

	assert.Equal(t, 3, *got.GuarantorCount)
	assert.Equal(t, 250.5, *got.AvgLocalIncome)
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.True(t, mr.Exists(CacheKey("kabul-01")))
	assert.Equal(t, 15*time.Minute, mr.TTL(CacheKey("kabul-01")))
}

func TestLookup_NullColumnsStayAbsent(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(lookupQuery).
		WithArgs("mazar-03").
		WillReturnRows(sqlmock.NewRows([]string{"guarantor_count", "avg_local_income"}).AddRow(nil, 180.0))

	store := NewStore(db, nil, time.Minute, logger.NewTestLogger(t))
	got, err := store.Lookup(context.Background(), "mazar-03")
	require.NoError(t, err)

	assert.Nil(t, got.GuarantorCount)
	assert.Equal(t, 180.0, *got.AvgLocalIncome)
}

func TestLookup_NotFoundYieldsEmptyContext(t *testing.T) {
	db, mock := setupMockDB(t)
	mr, rdb := setupRedis(t)

	mock.ExpectQuery(lookupQuery).WithArgs("nowhere").WillReturnError(sql.ErrNoRows)

	store := NewStore(db, rdb, time.Minute, logger.NewTestLogger(t))
	got, err := store.Lookup(context.Background(), "nowhere")
	require.NoError(t, err)

	assert.Equal(t, assessment.CommunityContext{}, got)
	assert.False(t, mr.Exists(CacheKey("nowhere")))
}

func TestLookup_DatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(lookupQuery).WithArgs("kabul-01").WillReturnError(stderrors.New("connection reset"))

	store := NewStore(db, nil, time.Minute, logger.NewTestLogger(t))
	_, err := store.Lookup(context.Background(), "kabul-01")
	require.Error(t, err)

	stdErr := errors.Normalize(err)
	assert.Equal(t, errors.ErrCodeCommunityLookupFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Contains(t, stdErr.Details, "kabul-01")
}

func TestLookup_ConnectionFailure(t *testing.T) {
	db, mock := setupMockDB(t)

	refused := &net.OpError{Op: "dial", Net: "tcp", Err: stderrors.New("connect: connection refused")}
	mock.ExpectQuery(lookupQuery).WithArgs("kabul-01").WillReturnError(refused)

	store := NewStore(db, nil, time.Minute, logger.NewTestLogger(t))
	_, err := store.Lookup(context.Background(), "kabul-01")
	require.Error(t, err)

	stdErr := errors.Normalize(err)
	assert.Equal(t, errors.ErrCodeDatabaseConnectionFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Equal(t, "kabul-01", stdErr.Metadata["communityId"])
}

func TestLookup_DatabaseTimeout(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(lookupQuery).WithArgs("kabul-01").WillReturnError(context.DeadlineExceeded)

	store := NewStore(db, nil, time.Minute, logger.NewTestLogger(t))
	_, err := store.Lookup(context.Background(), "kabul-01")

	assert.Equal(t, errors.ErrCodeQueryTimeout, errors.Normalize(err).Code)
}

func TestLookup_RedisFailureFallsBackWithoutWriting(t *testing.T) {
	db, mock := setupMockDB(t)
	rdb, redisMock := redismock.NewClientMock()

	redisMock.ExpectGet(CacheKey("kabul-01")).SetErr(stderrors.New("READONLY"))
	mock.ExpectQuery(lookupQuery).
		WithArgs("kabul-01").
		WillReturnRows(sqlmock.NewRows([]string{"guarantor_count", "avg_local_income"}).AddRow(1, 90.0))

	store := NewStore(db, rdb, time.Minute, logger.NewTestLogger(t))
	got, err := store.Lookup(context.Background(), "kabul-01")
	require.NoError(t, err)

	assert.Equal(t, 1, *got.GuarantorCount)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}
