package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tableboard/board-svc/internal/domain"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	reservationsList = "tableBookings"
	joinedList       = "joinedTables"

	lockTTL = 5 * time.Second
)

var ErrStoreBusy = errors.New("store is locked by another writer")

func RedisKey(branchID, name string) string {
	return "tableboard:" + branchID + ":" + name
}

// redisList stores a JSON array under one key. Every write is a
// read-modify-write under a redislock lock on "<key>:lock".
type redisList[K comparable, T any] struct {
	client *redis.Client
	locker *redislock.Client
	key    string
	itemID func(T) K
}

func (l *redisList[K, T]) load(ctx context.Context) ([]T, error) {
	raw, err := l.client.Get(ctx, l.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", l.key, err)
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", l.key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (l *redisList[K, T]) update(ctx context.Context, mutate func([]T) []T) error {
	lock, err := l.locker.Obtain(ctx, l.key+":lock", lockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(25*time.Millisecond), 40),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return ErrStoreBusy
	}
	if err != nil {
		return fmt.Errorf("lock %s: %w", l.key, err)
	}
	defer func() {
		_ = lock.Release(context.Background())
	}()

	items, err := l.load(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(mutate(items))
	if err != nil {
		return err
	}
	if err := l.client.Set(ctx, l.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("write %s: %w", l.key, err)
	}
	return nil
}

func (l *redisList[K, T]) add(ctx context.Context, item T) error {
	return l.update(ctx, func(items []T) []T {
		return upsert(items, item, l.itemID)
	})
}

func (l *redisList[K, T]) remove(ctx context.Context, k K) (bool, error) {
	var removed bool
	err := l.update(ctx, func(items []T) []T {
		var out []T
		out, removed = without(items, k, l.itemID)
		return out
	})
	return removed, err
}

type RedisReservationStore struct {
	list *redisList[int, domain.Reservation]
}

func NewRedisReservationStore(client *redis.Client, branchID string) *RedisReservationStore {
	return &RedisReservationStore{list: &redisList[int, domain.Reservation]{
		client: client,
		locker: redislock.New(client),
		key:    RedisKey(branchID, reservationsList),
		itemID: reservationKey,
	}}
}

func (s *RedisReservationStore) Add(ctx context.Context, reservation domain.Reservation) error {
	return s.list.add(ctx, reservation)
}

func (s *RedisReservationStore) List(ctx context.Context) ([]domain.Reservation, error) {
	return s.list.load(ctx)
}

func (s *RedisReservationStore) Remove(ctx context.Context, tableID int) (bool, error) {
	return s.list.remove(ctx, tableID)
}

type RedisJoinedTableStore struct {
	list *redisList[uuid.UUID, domain.JoinedTableRecord]
}

func NewRedisJoinedTableStore(client *redis.Client, branchID string) *RedisJoinedTableStore {
	return &RedisJoinedTableStore{list: &redisList[uuid.UUID, domain.JoinedTableRecord]{
		client: client,
		locker: redislock.New(client),
		key:    RedisKey(branchID, joinedList),
		itemID: joinedKey,
	}}
}

func (s *RedisJoinedTableStore) Add(ctx context.Context, record domain.JoinedTableRecord) error {
	return s.list.add(ctx, record)
}

func (s *RedisJoinedTableStore) List(ctx context.Context) ([]domain.JoinedTableRecord, error) {
	return s.list.load(ctx)
}

func (s *RedisJoinedTableStore) Remove(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.list.remove(ctx, id)
}
