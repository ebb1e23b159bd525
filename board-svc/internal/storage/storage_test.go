package storage_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tableboard/board-svc/internal/domain"
	"tableboard/board-svc/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reservationStore interface {
	Add(ctx context.Context, reservation domain.Reservation) error
	List(ctx context.Context) ([]domain.Reservation, error)
	Remove(ctx context.Context, tableID int) (bool, error)
}

type joinedStore interface {
	Add(ctx context.Context, record domain.JoinedTableRecord) error
	List(ctx context.Context) ([]domain.JoinedTableRecord, error)
	Remove(ctx context.Context, id uuid.UUID) (bool, error)
}

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func exerciseReservations(t *testing.T, store reservationStore) {
	ctx := context.Background()
	at := time.Date(2026, 10, 16, 19, 30, 0, 0, time.UTC)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, store.Add(ctx, domain.Reservation{TableID: 3, CustomerName: "Budi", DateTime: at, GuestCount: 4}))
	require.NoError(t, store.Add(ctx, domain.Reservation{TableID: 5, CustomerName: "Sari", DateTime: at}))
	require.NoError(t, store.Add(ctx, domain.Reservation{TableID: 3, CustomerName: "Budi Santoso", DateTime: at, GuestCount: 6}))

	list, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Budi Santoso", list[0].CustomerName)
	assert.Equal(t, 6, list[0].GuestCount)

	removed, err := store.Remove(ctx, 3)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.Remove(ctx, 3)
	require.NoError(t, err)
	assert.False(t, removed)

	list, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 5, list[0].TableID)
}

func exerciseJoined(t *testing.T, store joinedStore) {
	ctx := context.Background()
	record := domain.JoinedTableRecord{ID: uuid.New(), TableIDs: []int{1, 2}, Label: "1 + 2", GuestCount: 4, OrderCount: 2}

	require.NoError(t, store.Add(ctx, record))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []int{1, 2}, list[0].TableIDs)

	removed, err := store.Remove(ctx, record.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	list, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemoryReservationStore(t *testing.T) {
	exerciseReservations(t, storage.NewMemoryReservationStore())
}

func TestMemoryJoinedTableStore(t *testing.T) {
	exerciseJoined(t, storage.NewMemoryJoinedTableStore())
}

func TestRedisReservationStore(t *testing.T) {
	exerciseReservations(t, storage.NewRedisReservationStore(setupRedis(t), "1"))
}

func TestRedisJoinedTableStore(t *testing.T) {
	exerciseJoined(t, storage.NewRedisJoinedTableStore(setupRedis(t), "1"))
}

func TestRedisReservationStore_KeyLayout(t *testing.T) {
	client := setupRedis(t)
	store := storage.NewRedisReservationStore(client, "7")

	require.NoError(t, store.Add(context.Background(), domain.Reservation{TableID: 1, CustomerName: "Budi"}))

	raw, err := client.Get(context.Background(), "tableboard:7:tableBookings").Result()
	require.NoError(t, err)
	assert.Contains(t, raw, `"customer_name":"Budi"`)
}

func TestRedisReservationStore_ConcurrentAddsAreNotLost(t *testing.T) {
	store := storage.NewRedisReservationStore(setupRedis(t), "1")
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			errs <- store.Add(ctx, domain.Reservation{TableID: id, CustomerName: "guest"})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 10)
}

func TestMemoryReservationStore_ConcurrentAddsAreNotLost(t *testing.T) {
	store := storage.NewMemoryReservationStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_ = store.Add(ctx, domain.Reservation{TableID: id})
		}(i)
	}
	wg.Wait()

	list, _ := store.List(ctx)
	assert.Len(t, list, 50)
}

func setupPostgres(t *testing.T) (*storage.PostgresReservationStore, *storage.PostgresJoinedTableStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return storage.NewPostgresReservationStore(db, "1"), storage.NewPostgresJoinedTableStore(db, "1"), mock
}

func TestPostgresReservationStore_Add(t *testing.T) {
	reservations, _, mock := setupPostgres(t)
	at := time.Date(2026, 10, 16, 19, 30, 0, 0, time.UTC)
	created := at.Add(-time.Hour)

	mock.ExpectExec("INSERT INTO table_bookings").
		WithArgs("1", 3, "Budi", at, 4, "window seat", created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := reservations.Add(context.Background(), domain.Reservation{
		TableID: 3, CustomerName: "Budi", DateTime: at, GuestCount: 4, Notes: "window seat", CreatedAt: created,
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReservationStore_AddError(t *testing.T) {
	reservations, _, mock := setupPostgres(t)

	mock.ExpectExec("INSERT INTO table_bookings").WillReturnError(errors.New("db down"))

	err := reservations.Add(context.Background(), domain.Reservation{TableID: 1})
	assert.Error(t, err)
}

func TestPostgresReservationStore_List(t *testing.T) {
	reservations, _, mock := setupPostgres(t)
	at := time.Date(2026, 10, 16, 19, 30, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"table_id", "customer_name", "date_time", "guest_count", "notes", "created_at"}).
		AddRow(3, "Budi", at, 4, "", at).
		AddRow(5, "Sari", at, 2, "birthday", at)
	mock.ExpectQuery("SELECT table_id, customer_name").WithArgs("1").WillReturnRows(rows)

	list, err := reservations.List(context.Background())

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Sari", list[1].CustomerName)
	assert.Equal(t, "birthday", list[1].Notes)
}

func TestPostgresReservationStore_Remove(t *testing.T) {
	reservations, _, mock := setupPostgres(t)

	mock.ExpectExec("DELETE FROM table_bookings").WithArgs("1", 3).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM table_bookings").WithArgs("1", 4).WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := reservations.Remove(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = reservations.Remove(context.Background(), 4)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestPostgresJoinedTableStore_AddAndList(t *testing.T) {
	_, joined, mock := setupPostgres(t)
	id := uuid.New()
	at := time.Date(2026, 10, 16, 19, 30, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO joined_tables").
		WithArgs(id.String(), "1", sqlmock.AnyArg(), "1 + 2", 4, 2, at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows := sqlmock.NewRows([]string{"id", "table_ids", "label", "guest_count", "order_count", "created_at"}).
		AddRow(id.String(), "{1,2}", "1 + 2", 4, 2, at)
	mock.ExpectQuery("SELECT id, table_ids").WithArgs("1").WillReturnRows(rows)

	err := joined.Add(context.Background(), domain.JoinedTableRecord{
		ID: id, TableIDs: []int{1, 2}, Label: "1 + 2", GuestCount: 4, OrderCount: 2, CreatedAt: at,
	})
	require.NoError(t, err)

	list, err := joined.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.Equal(t, []int{1, 2}, list[0].TableIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresJoinedTableStore_Remove(t *testing.T) {
	_, joined, mock := setupPostgres(t)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM joined_tables").WithArgs("1", id.String()).WillReturnResult(sqlmock.NewResult(0, 1))

	removed, err := joined.Remove(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, removed)
}
