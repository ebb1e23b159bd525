package service

import (
	"context"
	"time"

	"tableboard/board-svc/internal/apiclient"
	"tableboard/board-svc/internal/domain"
	"tableboard/board-svc/internal/events"
	"tableboard/board-svc/internal/storage"

	"github.com/google/uuid"
)

type Backend interface {
	ListTables(ctx context.Context) ([]domain.Table, error)
	ListActiveOrders(ctx context.Context) ([]domain.Order, error)
	ListUnpaidOrders(ctx context.Context) ([]domain.Order, error)
	ListProcessingOrders(ctx context.Context) ([]domain.Order, error)
	SetTableAvailable(ctx context.Context, tableID int) error
	SetTableOccupied(ctx context.Context, tableID int) error
}

// Catalog is the read-only slice of the backend the sibling pages use.
type Catalog interface {
	FetchAllInventory(ctx context.Context, filter apiclient.InventoryFilter) ([]domain.InventoryItem, error)
	ListPurchaseOrders(ctx context.Context, filter apiclient.PurchaseOrderFilter) ([]domain.PurchaseOrder, error)
	ListCashierSessions(ctx context.Context, filter apiclient.CashierSessionFilter) ([]domain.CashierSession, error)
	ListVendors(ctx context.Context, filter apiclient.VendorFilter) ([]domain.Vendor, error)
}

type ReservationStore interface {
	Add(ctx context.Context, reservation domain.Reservation) error
	List(ctx context.Context) ([]domain.Reservation, error)
	Remove(ctx context.Context, tableID int) (bool, error)
}

type JoinedTableStore interface {
	Add(ctx context.Context, record domain.JoinedTableRecord) error
	List(ctx context.Context) ([]domain.JoinedTableRecord, error)
	Remove(ctx context.Context, id uuid.UUID) (bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event domain.BoardEvent) error
}

type ActivityReader interface {
	Daily(ctx context.Context, branchID string, day time.Time) (domain.ActivitySummary, error)
}

type QRGenerator interface {
	Generate(link string) ([]byte, error)
}

type BoardServiceInterface interface {
	Refresh(ctx context.Context) (*domain.Board, error)
	Latest() *domain.Board
	CreateBooking(ctx context.Context, req BookingRequest) (*domain.Reservation, error)
	CancelBooking(ctx context.Context, tableID int) error
	ListBookings(ctx context.Context) ([]domain.Reservation, error)
	JoinTables(ctx context.Context, tableIDs []int) (*domain.JoinedTableRecord, error)
	ListJoined(ctx context.Context) ([]domain.JoinedTableRecord, error)
	Unjoin(ctx context.Context, id uuid.UUID) error
	ProcessAction(ctx context.Context, tableID int) (*ActionResult, error)
	ReleaseTable(ctx context.Context, tableID int) error
	OrderEntryQR(tableID int) ([]byte, error)
}

var (
	_ BoardServiceInterface = (*BoardService)(nil)
	_ Backend               = (*apiclient.Client)(nil)
	_ Catalog               = (*apiclient.Client)(nil)
	_ ReservationStore      = (*storage.MemoryReservationStore)(nil)
	_ ReservationStore      = (*storage.RedisReservationStore)(nil)
	_ ReservationStore      = (*storage.PostgresReservationStore)(nil)
	_ JoinedTableStore      = (*storage.MemoryJoinedTableStore)(nil)
	_ JoinedTableStore      = (*storage.RedisJoinedTableStore)(nil)
	_ JoinedTableStore      = (*storage.PostgresJoinedTableStore)(nil)
	_ EventPublisher        = (*events.KafkaPublisher)(nil)
	_ ActivityReader        = (*storage.RedisActivityStore)(nil)
	_ QRGenerator           = DefaultQRGenerator{}
)

var _ events.ActivityRecorder = (*storage.RedisActivityStore)(nil)
