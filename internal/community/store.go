// Package community resolves the local snapshot an assessment runs against
// when a job carries only a community id.
package community

import (
	"context"
	"database/sql"
	"database/sql/driver"
	stderrors "errors"
	"net"
	"time"

	"lending-workers/internal/assessment"
	"lending-workers/internal/common/database"
	"lending-workers/internal/common/errors"
	"lending-workers/internal/common/logger"
	"lending-workers/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "community:snapshot:"

const query = `
	SELECT guarantor_count, avg_local_income
	FROM communities
	WHERE id = $1`

// Store reads community snapshots from Postgres through a Redis cache.
// A nil redis disables caching.
type Store struct {
	db     *sql.DB
	redis  redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewStore(db *sql.DB, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *Store {
	return &Store{
		db:     db,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "community-store"}),
	}
}

// CacheKey is the Redis key holding the snapshot for id.
func CacheKey(id string) string { return cachePrefix + id }

// Lookup returns the snapshot for id. An unknown community yields an empty
// context so the engine defaults apply.
func (s *Store) Lookup(ctx context.Context, id string) (assessment.CommunityContext, error) {
	var snap assessment.CommunityContext

	cacheHealthy := s.redis != nil
	if cacheHealthy {
		err := database.GetJSON(ctx, s.redis, CacheKey(id), &snap)
		switch {
		case err == nil:
			metrics.CommunityLookups.WithLabelValues("cache").Inc()
			return snap, nil
		case stderrors.Is(err, redis.Nil):
		default:
			cacheHealthy = false
			s.logger.Warn("community cache read failed, falling back to database", map[string]interface{}{
				"communityId": id,
				"error":       err,
			})
		}
	}

	var (
		guarantors sql.NullInt64
		income     sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(&guarantors, &income)
	switch {
	case stderrors.Is(err, sql.ErrNoRows):
		metrics.CommunityLookups.WithLabelValues("not_found").Inc()
		s.logger.Info("community not found, using defaults", map[string]interface{}{"communityId": id})
		return assessment.CommunityContext{}, nil
	case err != nil:
		metrics.CommunityLookups.WithLabelValues("error").Inc()
		if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return snap, errors.NewQueryTimeoutError("community_snapshot").WithMetadata("communityId", id)
		}
		if isConnectionError(err) {
			return snap, errors.NewDatabaseConnectionFailedError(err).WithMetadata("communityId", id)
		}
		return snap, errors.NewCommunityLookupError(id, err)
	}

	if guarantors.Valid {
		n := int(guarantors.Int64)
		snap.GuarantorCount = &n
	}
	if income.Valid {
		v := income.Float64
		snap.AvgLocalIncome = &v
	}
	metrics.CommunityLookups.WithLabelValues("database").Inc()

	if cacheHealthy {
		if err := database.SetJSON(ctx, s.redis, CacheKey(id), snap, s.ttl); err != nil {
			s.logger.Warn("community cache write failed", map[string]interface{}{
				"communityId": id,
				"error":       err,
			})
		}
	}
	return snap, nil
}

func isConnectionError(err error) bool {
	var opErr *net.OpError
	return stderrors.Is(err, driver.ErrBadConn) ||
		stderrors.Is(err, sql.ErrConnDone) ||
		stderrors.As(err, &opErr)
}
