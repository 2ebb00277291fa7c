package identity

import (
	"context"
	"errors"
	"testing"

	"go-timesheet/internal/biometric"
	"go-timesheet/internal/user"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	findByPINFLFn func(ctx context.Context, pinfl string) (*user.User, error)
	findByIDsFn   func(ctx context.Context, ids []uuid.UUID) ([]user.User, error)
}

func (f *fakeUserRepo) FindByPINFL(ctx context.Context, pinfl string) (*user.User, error) {
	return f.findByPINFLFn(ctx, pinfl)
}
func (f *fakeUserRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]user.User, error) {
	return f.findByIDsFn(ctx, ids)
}

type fakePersonSource struct {
	fetchFn func(ctx context.Context) ([]biometric.Person, error)
}

func (f *fakePersonSource) FetchPersons(ctx context.Context) ([]biometric.Person, error) {
	return f.fetchFn(ctx)
}

func TestResolve_MapHit(t *testing.T) {
	ctx := context.Background()
	rdb, mock := redismock.NewClientMock()

	mock.ExpectExists(missPrefix + "p-1").SetVal(0)
	mock.ExpectHGet(mapKey, "p-1").SetVal("12345678901234")

	want := &user.User{ID: uuid.New(), PINFL: "12345678901234", FullName: "Aziz Karimov"}
	users := &fakeUserRepo{findByPINFLFn: func(ctx context.Context, pinfl string) (*user.User, error) {
		assert.Equal(t, "12345678901234", pinfl)
		return want, nil
	}}

	r := NewResolver(users, &fakePersonSource{}, rdb, zap.NewNop())

	got, err := r.Resolve(ctx, "p-1")
	assert.NoError(t, err)
	assert.Equal(t, want, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolve_NegativeCacheShortCircuits(t *testing.T) {
	ctx := context.Background()
	rdb, mock := redismock.NewClientMock()

	mock.ExpectExists(missPrefix + "ghost").SetVal(1)

	users := &fakeUserRepo{findByPINFLFn: func(ctx context.Context, pinfl string) (*user.User, error) {
		t.Fatal("directory must not be hit on a negative-cache hit")
		return nil, nil
	}}

	r := NewResolver(users, &fakePersonSource{}, rdb, zap.NewNop())

	_, err := r.Resolve(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUnknownPerson)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolve_EmptyCodeUnknown(t *testing.T) {
	r := NewResolver(&fakeUserRepo{}, &fakePersonSource{}, nil, zap.NewNop())

	_, err := r.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnknownPerson)
}

func TestResolve_MapMissTriggersRebuild(t *testing.T) {
	ctx := context.Background()
	rdb, mock := redismock.NewClientMock()

	mock.ExpectExists(missPrefix + "p-7").SetVal(0)
	mock.ExpectHGet(mapKey, "p-7").RedisNil()

	// Rebuild path: stamp is stale, lock is free, one directory entry.
	mock.ExpectExists(rebuiltKey).SetVal(0)
	mock.ExpectSetNX(lockKey, "1", rebuildLockTTL).SetVal(true)
	mock.ExpectTxPipeline()
	mock.ExpectDel(mapKey).SetVal(1)
	mock.ExpectHSet(mapKey, "p-7", "12345678901234").SetVal(1)
	mock.ExpectExpire(mapKey, mapTTL).SetVal(true)
	mock.Regexp().ExpectSet(rebuiltKey, `.+`, rebuildMinGap).SetVal("OK")
	mock.ExpectTxPipelineExec()
	mock.ExpectDel(lockKey).SetVal(1)

	mock.ExpectHGet(mapKey, "p-7").SetVal("12345678901234")

	source := &fakePersonSource{fetchFn: func(ctx context.Context) ([]biometric.Person, error) {
		return []biometric.Person{
			{
				PersonCode:   "p-7",
				Name:         "Malika Yusupova",
				CustomFields: []biometric.CustomField{{Name: "PINFL", Value: "12345678901234"}},
			},
		}, nil
	}}
	want := &user.User{ID: uuid.New(), PINFL: "12345678901234"}
	users := &fakeUserRepo{findByPINFLFn: func(ctx context.Context, pinfl string) (*user.User, error) {
		return want, nil
	}}

	r := NewResolver(users, source, rdb, zap.NewNop())

	got, err := r.Resolve(ctx, "p-7")
	assert.NoError(t, err)
	assert.Equal(t, want, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolve_FreshMapMissGetsNegativeCached(t *testing.T) {
	ctx := context.Background()
	rdb, mock := redismock.NewClientMock()

	mock.ExpectExists(missPrefix + "ghost").SetVal(0)
	mock.ExpectHGet(mapKey, "ghost").RedisNil()
	// Map was rebuilt recently, so the rebuild is skipped entirely.
	mock.ExpectExists(rebuiltKey).SetVal(1)
	mock.ExpectHGet(mapKey, "ghost").RedisNil()
	mock.ExpectSet(missPrefix+"ghost", "1", missTTL).SetVal("OK")

	r := NewResolver(&fakeUserRepo{}, &fakePersonSource{}, rdb, zap.NewNop())

	_, err := r.Resolve(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUnknownPerson)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolve_NoMatchingUserGetsNegativeCached(t *testing.T) {
	ctx := context.Background()
	rdb, mock := redismock.NewClientMock()

	mock.ExpectExists(missPrefix + "p-1").SetVal(0)
	mock.ExpectHGet(mapKey, "p-1").SetVal("99999999999999")
	mock.ExpectSet(missPrefix+"p-1", "1", missTTL).SetVal("OK")

	users := &fakeUserRepo{findByPINFLFn: func(ctx context.Context, pinfl string) (*user.User, error) {
		return nil, gorm.ErrRecordNotFound
	}}

	r := NewResolver(users, &fakePersonSource{}, rdb, zap.NewNop())

	_, err := r.Resolve(ctx, "p-1")
	assert.ErrorIs(t, err, ErrUnknownPerson)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolve_VendorOutageDuringRebuildPropagates(t *testing.T) {
	ctx := context.Background()
	rdb, mock := redismock.NewClientMock()

	mock.ExpectExists(missPrefix + "p-1").SetVal(0)
	mock.ExpectHGet(mapKey, "p-1").RedisNil()
	mock.ExpectExists(rebuiltKey).SetVal(0)
	mock.ExpectSetNX(lockKey, "1", rebuildLockTTL).SetVal(true)
	mock.ExpectDel(lockKey).SetVal(1)

	source := &fakePersonSource{fetchFn: func(ctx context.Context) ([]biometric.Person, error) {
		return nil, biometric.ErrSourceUnavailable
	}}

	r := NewResolver(&fakeUserRepo{}, source, rdb, zap.NewNop())

	_, err := r.Resolve(ctx, "p-1")
	assert.ErrorIs(t, err, biometric.ErrSourceUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolve_LockHeldElsewhereFallsThrough(t *testing.T) {
	ctx := context.Background()
	rdb, mock := redismock.NewClientMock()

	mock.ExpectExists(missPrefix + "p-1").SetVal(0)
	mock.ExpectHGet(mapKey, "p-1").RedisNil()
	mock.ExpectExists(rebuiltKey).SetVal(0)
	mock.ExpectSetNX(lockKey, "1", rebuildLockTTL).SetVal(false)
	mock.ExpectHGet(mapKey, "p-1").RedisNil()
	mock.ExpectSet(missPrefix+"p-1", "1", missTTL).SetVal("OK")

	fetched := false
	source := &fakePersonSource{fetchFn: func(ctx context.Context) ([]biometric.Person, error) {
		fetched = true
		return nil, errors.New("must not fetch without the lock")
	}}

	r := NewResolver(&fakeUserRepo{}, source, rdb, zap.NewNop())

	_, err := r.Resolve(ctx, "p-1")
	assert.ErrorIs(t, err, ErrUnknownPerson)
	assert.False(t, fetched)
	assert.NoError(t, mock.ExpectationsWereMet())
}
