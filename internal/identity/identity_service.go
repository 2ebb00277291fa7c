package identity

import (
	"context"
	"errors"
	"time"

	"go-timesheet/internal/biometric"
	"go-timesheet/internal/user"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// ErrUnknownPerson means a vendor person code could not be mapped to an
// internal user. Misses are negative-cached so ingestion does not hammer
// the vendor directory for codes that are simply unknown.
var ErrUnknownPerson = errors.New("unknown person code")

const (
	mapKey     = "identity:map"
	rebuiltKey = "identity:map:rebuilt_at"
	lockKey    = "identity:map:lock"
	missPrefix = "identity:miss:"

	mapTTL         = 9 * time.Hour
	missTTL        = 30 * time.Minute
	rebuildMinGap  = 10 * time.Minute
	rebuildLockTTL = 60 * time.Second
)

// PersonSource supplies the vendor directory the person-code map is built
// from.
type PersonSource interface {
	FetchPersons(ctx context.Context) ([]biometric.Person, error)
}

//go:generate mockgen -source=identity_service.go -destination=mock/identity_service_mock.go -package=mock
type Resolver interface {
	Resolve(ctx context.Context, personCode string) (*user.User, error)
}

type resolver struct {
	users  user.Repository
	source PersonSource
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewResolver(users user.Repository, source PersonSource, rdb *redis.Client, logger ...*zap.Logger) Resolver {
	l := zap.L().Named("identity.resolver")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("identity.resolver")
	}
	return &resolver{
		users:  users,
		source: source,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

// Resolve maps a vendor person code to an internal user via the cached
// person-code -> national-ID map, rebuilding the map when it is stale and
// the rebuild rate limit allows.
func (r *resolver) Resolve(ctx context.Context, personCode string) (*user.User, error) {
	if personCode == "" {
		return nil, ErrUnknownPerson
	}

	if hit, err := r.rdb.Exists(ctx, missPrefix+personCode).Result(); err == nil && hit > 0 {
		return nil, ErrUnknownPerson
	}

	pinfl, err := r.rdb.HGet(ctx, mapKey, personCode).Result()
	if errors.Is(err, redis.Nil) {
		if rebuildErr := r.rebuildIfStale(ctx); rebuildErr != nil {
			return nil, rebuildErr
		}
		pinfl, err = r.rdb.HGet(ctx, mapKey, personCode).Result()
		if errors.Is(err, redis.Nil) {
			r.cacheMiss(ctx, personCode)
			return nil, ErrUnknownPerson
		}
	}
	if err != nil {
		return nil, err
	}

	u, err := r.users.FindByPINFL(ctx, pinfl)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.cacheMiss(ctx, personCode)
			return nil, ErrUnknownPerson
		}
		return nil, err
	}
	return u, nil
}

func (r *resolver) cacheMiss(ctx context.Context, personCode string) {
	if err := r.rdb.Set(ctx, missPrefix+personCode, "1", missTTL).Err(); err != nil {
		r.logger.Warn("negative-cache write failed", zap.String("person_code", personCode), zap.Error(err))
	}
}

// rebuildIfStale refreshes the full person-code map from the vendor, at most
// once per rebuildMinGap and under a short distributed lock so concurrent
// ingestion runs do not duplicate the rebuild. Stale reads are acceptable:
// when the rebuild is skipped, lookups fall back to the negative cache.
func (r *resolver) rebuildIfStale(ctx context.Context) error {
	_, err, _ := r.sf.Do(mapKey, func() (interface{}, error) {
		if hit, err := r.rdb.Exists(ctx, rebuiltKey).Result(); err == nil && hit > 0 {
			return nil, nil
		}

		acquired, err := r.rdb.SetNX(ctx, lockKey, "1", rebuildLockTTL).Result()
		if err != nil {
			return nil, err
		}
		if !acquired {
			// Another instance is rebuilding; let this lookup fall through.
			return nil, nil
		}
		defer r.rdb.Del(ctx, lockKey)

		persons, err := r.source.FetchPersons(ctx)
		if err != nil {
			return nil, err
		}

		entries := make(map[string]string, len(persons))
		for _, p := range persons {
			if p.PersonCode == "" {
				continue
			}
			if nid := p.NationalID(); nid != "" {
				entries[p.PersonCode] = nid
			}
		}

		if len(entries) > 0 {
			pipe := r.rdb.TxPipeline()
			pipe.Del(ctx, mapKey)
			pipe.HSet(ctx, mapKey, entries)
			pipe.Expire(ctx, mapKey, mapTTL)
			pipe.Set(ctx, rebuiltKey, time.Now().UTC().Format(time.RFC3339), rebuildMinGap)
			if _, err := pipe.Exec(ctx); err != nil {
				return nil, err
			}
		} else {
			// Still stamp the attempt so an empty directory does not trigger
			// a rebuild per lookup.
			r.rdb.Set(ctx, rebuiltKey, time.Now().UTC().Format(time.RFC3339), rebuildMinGap)
		}

		r.logger.Info("identity map rebuilt", zap.Int("entries", len(entries)))
		return nil, nil
	})
	return err
}
