package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TableStatus string

const (
	StatusAvailable TableStatus = "available"
	StatusOccupied  TableStatus = "occupied"
	StatusReserved  TableStatus = "reserved"
	StatusCleaning  TableStatus = "cleaning"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderPreparing OrderStatus = "PREPARING"
	OrderReady     OrderStatus = "READY"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCancelled OrderStatus = "CANCELLED"
)

type Table struct {
	ID          int    `json:"id"`
	Number      string `json:"number"`
	Capacity    int    `json:"capacity"`
	IsAvailable bool   `json:"is_available"`
	Branch      int    `json:"branch,omitempty"`
}

type Order struct {
	ID            int             `json:"id"`
	OrderNumber   string          `json:"order_number"`
	TableID       *int            `json:"table"`
	Status        OrderStatus     `json:"status"`
	OrderType     string          `json:"order_type,omitempty"`
	PaymentStatus string          `json:"payment_status,omitempty"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CreatedAt     time.Time       `json:"created_at"`
	Items         []OrderItem     `json:"items"`
}

// IsActive reports whether the order still occupies its table.
func (o Order) IsActive() bool {
	return o.Status != OrderCompleted && o.Status != OrderCancelled
}

type OrderItem struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

type Payment struct {
	ID            int             `json:"id"`
	OrderID       int             `json:"order"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

type InventoryItem struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit"`
	MinStock decimal.Decimal `json:"min_stock"`
}

type PurchaseOrder struct {
	ID          int             `json:"id"`
	PONumber    string          `json:"po_number"`
	VendorID    int             `json:"vendor"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	OrderDate   string          `json:"order_date"`
}

type CashierSession struct {
	ID             int              `json:"id"`
	Cashier        int              `json:"cashier"`
	Status         string           `json:"status"`
	OpeningBalance decimal.Decimal  `json:"opening_balance"`
	ClosingBalance *decimal.Decimal `json:"closing_balance"`
	OpenedAt       time.Time        `json:"opened_at"`
	ClosedAt       *time.Time       `json:"closed_at"`
}

type Vendor struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
}

// Page is the paginated list envelope returned by the backend.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Reservation is kept locally, keyed by table id. The backend never sees it.
type Reservation struct {
	TableID      int       `json:"table_id"`
	CustomerName string    `json:"customer_name"`
	DateTime     time.Time `json:"date_time"`
	GuestCount   int       `json:"guest_count"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// JoinedTableRecord is a display hint only: backend orders stay on their
// original tables.
type JoinedTableRecord struct {
	ID         uuid.UUID `json:"id"`
	TableIDs   []int     `json:"table_ids"`
	Label      string    `json:"label"`
	GuestCount int       `json:"guest_count"`
	OrderCount int       `json:"order_count"`
	CreatedAt  time.Time `json:"created_at"`
}

type TableView struct {
	Table
	Status           TableStatus     `json:"status"`
	ActiveOrders     int             `json:"active_orders"`
	OccupiedDuration string          `json:"occupied_duration,omitempty"`
	EstimatedGuests  int             `json:"estimated_guests"`
	Revenue          decimal.Decimal `json:"revenue"`
	Reservation      *Reservation    `json:"reservation,omitempty"`
}

type BoardSummary struct {
	Total     int             `json:"total"`
	Available int             `json:"available"`
	Occupied  int             `json:"occupied"`
	Reserved  int             `json:"reserved"`
	Cleaning  int             `json:"cleaning"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type Board struct {
	Generation       uint64       `json:"generation"`
	RefreshedAt      time.Time    `json:"refreshed_at"`
	Tables           []TableView  `json:"tables"`
	UnpaidOrders     []Order      `json:"unpaid_orders"`
	ProcessingOrders []Order      `json:"processing_orders"`
	Summary          BoardSummary `json:"summary"`
}

// Table returns the view for id, if present.
func (b *Board) Table(id int) (TableView, bool) {
	if b == nil {
		return TableView{}, false
	}
	for _, view := range b.Tables {
		if view.ID == id {
			return view, true
		}
	}
	return TableView{}, false
}

type EventType string

const (
	EventBookingCreated   EventType = "booking_created"
	EventBookingCancelled EventType = "booking_cancelled"
	EventTablesJoined     EventType = "tables_joined"
	EventTableCheckedIn   EventType = "table_checked_in"
	EventTableReleased    EventType = "table_released"
)

type BoardEvent struct {
	Type      EventType `json:"type"`
	BranchID  string    `json:"branch_id"`
	TableIDs  []int     `json:"table_ids"`
	Customer  string    `json:"customer,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ActivitySummary is the per-day tally of board events for one branch.
type ActivitySummary struct {
	BranchID      string              `json:"branch_id"`
	Date          string              `json:"date"`
	Counts        map[EventType]int64 `json:"counts"`
	TablesTouched int64               `json:"tables_touched"`
}
