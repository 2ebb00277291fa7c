package exclusion

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const activeSetTTL = 15 * time.Minute

func activeSetKey(date time.Time) string {
	return fmt.Sprintf("exclusion:active:%s", date.Format("2006-01-02"))
}

//go:generate mockgen -source=exclusion_service.go -destination=mock/exclusion_service_mock.go -package=mock
type Service interface {
	Add(ctx context.Context, userID uuid.UUID, from time.Time, reason string) (*ExcludedEmployee, error)
	ActiveUserIDs(ctx context.Context, date time.Time) (map[uuid.UUID]struct{}, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("exclusion.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("exclusion.service")
	}
	return &service{db: db, repo: repo, rdb: rdb, sf: &singleflight.Group{}, logger: l}
}

// Add creates a new active exclusion, closing any prior active record for
// the user in the same transaction so at most one stays active.
func (s *service) Add(ctx context.Context, userID uuid.UUID, from time.Time, reason string) (*ExcludedEmployee, error) {
	record := &ExcludedEmployee{
		ID:        uuid.New(),
		UserID:    userID,
		ValidFrom: from,
		IsActive:  true,
		Reason:    reason,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)
		if err := qtx.DeactivateByUser(ctx, userID, from.AddDate(0, 0, -1)); err != nil {
			return err
		}
		return qtx.Create(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, from)
	return record, nil
}

// ActiveUserIDs returns the exclusion roster effective on the date,
// cache-aside with a short TTL since the roster changes rarely but is read
// on every generation pass.
func (s *service) ActiveUserIDs(ctx context.Context, date time.Time) (map[uuid.UUID]struct{}, error) {
	cacheKey := activeSetKey(date)

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var ids []uuid.UUID
			if err := json.Unmarshal([]byte(cached), &ids); err == nil {
				return toSet(ids), nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		ids, err := s.repo.ActiveUserIDs(ctx, date)
		if err != nil {
			return nil, err
		}

		if s.rdb != nil {
			if payload, err := json.Marshal(ids); err == nil {
				s.rdb.Set(ctx, cacheKey, payload, activeSetTTL)
			}
		}
		return ids, nil
	})
	if err != nil {
		return nil, err
	}

	return toSet(v.([]uuid.UUID)), nil
}

func (s *service) invalidate(ctx context.Context, from time.Time) {
	if s.rdb == nil {
		return
	}
	// Only today's cached roster matters for the running generator.
	key := activeSetKey(time.Now().UTC())
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		s.logger.Warn("exclusion cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}

func toSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
