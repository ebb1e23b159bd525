package storage

import (
	"context"
	"sync"

	"tableboard/board-svc/internal/domain"

	"github.com/google/uuid"
)

// memoryList keeps items unique by key; adding an existing key replaces it.
type memoryList[K comparable, T any] struct {
	mu    sync.Mutex
	items []T
	key   func(T) K
}

func (m *memoryList[K, T]) add(item T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = upsert(m.items, item, m.key)
}

func (m *memoryList[K, T]) list() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]T, len(m.items))
	copy(out, m.items)
	return out
}

func (m *memoryList[K, T]) remove(k K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed bool
	m.items, removed = without(m.items, k, m.key)
	return removed
}

func upsert[K comparable, T any](items []T, item T, key func(T) K) []T {
	k := key(item)
	for i := range items {
		if key(items[i]) == k {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}

func without[K comparable, T any](items []T, k K, key func(T) K) ([]T, bool) {
	out := items[:0:0]
	removed := false
	for _, item := range items {
		if key(item) == k {
			removed = true
			continue
		}
		out = append(out, item)
	}
	return out, removed
}

func reservationKey(r domain.Reservation) int { return r.TableID }

func joinedKey(j domain.JoinedTableRecord) uuid.UUID { return j.ID }

type MemoryReservationStore struct {
	list memoryList[int, domain.Reservation]
}

func NewMemoryReservationStore() *MemoryReservationStore {
	return &MemoryReservationStore{list: memoryList[int, domain.Reservation]{key: reservationKey}}
}

func (s *MemoryReservationStore) Add(_ context.Context, reservation domain.Reservation) error {
	s.list.add(reservation)
	return nil
}

func (s *MemoryReservationStore) List(_ context.Context) ([]domain.Reservation, error) {
	return s.list.list(), nil
}

func (s *MemoryReservationStore) Remove(_ context.Context, tableID int) (bool, error) {
	return s.list.remove(tableID), nil
}

type MemoryJoinedTableStore struct {
	list memoryList[uuid.UUID, domain.JoinedTableRecord]
}

func NewMemoryJoinedTableStore() *MemoryJoinedTableStore {
	return &MemoryJoinedTableStore{list: memoryList[uuid.UUID, domain.JoinedTableRecord]{key: joinedKey}}
}

func (s *MemoryJoinedTableStore) Add(_ context.Context, record domain.JoinedTableRecord) error {
	s.list.add(record)
	return nil
}

func (s *MemoryJoinedTableStore) List(_ context.Context) ([]domain.JoinedTableRecord, error) {
	return s.list.list(), nil
}

func (s *MemoryJoinedTableStore) Remove(_ context.Context, id uuid.UUID) (bool, error) {
	return s.list.remove(id), nil
}
