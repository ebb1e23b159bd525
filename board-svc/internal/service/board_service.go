package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"tableboard/board-svc/internal/domain"
	"tableboard/board-svc/internal/reconciler"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type ActionKind string

const (
	ActionOrderEntry ActionKind = "order_entry"
	ActionPayment    ActionKind = "payment"
	ActionDetail     ActionKind = "detail"
	ActionCheckIn    ActionKind = "check_in"
)

type ActionResult struct {
	Kind   ActionKind       `json:"kind"`
	Target string           `json:"target,omitempty"`
	Table  domain.TableView `json:"table"`
}

type Options struct {
	BranchID      string
	OrderEntryURL string
	PaymentURL    string
	QR            QRGenerator
	Logger        logrus.FieldLogger
	Now           func() time.Time
}

type BoardService struct {
	backend      Backend
	reservations ReservationStore
	joined       JoinedTableStore
	publisher    EventPublisher
	qr           QRGenerator

	branchID      string
	orderEntryURL string
	paymentURL    string
	logger        logrus.FieldLogger
	now           func() time.Time

	generation atomic.Uint64

	mu     sync.RWMutex
	latest *domain.Board
	// boards with a generation below writtenAt predate one of our own writes
	writtenAt uint64
}

func NewBoardService(backend Backend, reservations ReservationStore, joined JoinedTableStore, publisher EventPublisher, opts Options) *BoardService {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	qr := opts.QR
	if qr == nil {
		qr = DefaultQRGenerator{}
	}

	return &BoardService{
		backend:       backend,
		reservations:  reservations,
		joined:        joined,
		publisher:     publisher,
		qr:            qr,
		branchID:      opts.BranchID,
		orderEntryURL: opts.OrderEntryURL,
		paymentURL:    opts.PaymentURL,
		logger:        logger.WithField("module", "board"),
		now:           now,
	}
}

// Refresh fetches tables and the three order lists concurrently and rebuilds
// the board. Any failure aborts the refresh and keeps the previous board.
// A result older than the board already applied is dropped.
func (s *BoardService) Refresh(ctx context.Context) (*domain.Board, error) {
	gen := s.generation.Add(1)

	var (
		tables     []domain.Table
		active     []domain.Order
		unpaid     []domain.Order
		processing []domain.Order
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		tables, err = s.backend.ListTables(gctx)
		return err
	})
	g.Go(func() (err error) {
		active, err = s.backend.ListActiveOrders(gctx)
		return err
	})
	g.Go(func() (err error) {
		unpaid, err = s.backend.ListUnpaidOrders(gctx)
		return err
	})
	g.Go(func() (err error) {
		processing, err = s.backend.ListProcessingOrders(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.WithField("generation", gen).WithError(err).Error("refresh failed")
		return nil, err
	}

	reservations, err := s.reservations.List(ctx)
	if err != nil {
		s.logger.WithField("generation", gen).WithError(err).Error("failed to load reservations")
		return nil, fmt.Errorf("load reservations: %w", err)
	}

	now := s.now()
	views := reconciler.Reconcile(tables, active, reservations, now)
	board := &domain.Board{
		Generation:       gen,
		RefreshedAt:      now,
		Tables:           views,
		UnpaidOrders:     nonNil(unpaid),
		ProcessingOrders: nonNil(processing),
		Summary:          reconciler.Summarize(views),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen < s.writtenAt {
		s.logger.WithField("generation", gen).Debug("refresh started before a local write, not applying")
		return board, nil
	}
	if s.latest != nil && s.latest.Generation > gen {
		s.logger.WithFields(logrus.Fields{
			"generation": gen,
			"applied":    s.latest.Generation,
		}).Debug("discarding superseded refresh")
		return s.latest, nil
	}
	s.latest = board
	return board, nil
}

func (s *BoardService) Latest() *domain.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// current returns the cached board unless a write made through this service
// has happened since it was fetched.
func (s *BoardService) current(ctx context.Context) (*domain.Board, error) {
	s.mu.RLock()
	board, writtenAt := s.latest, s.writtenAt
	s.mu.RUnlock()
	if board != nil && board.Generation > writtenAt {
		return board, nil
	}
	return s.Refresh(ctx)
}

// markWritten makes the next dispatch refetch instead of trusting the cache.
func (s *BoardService) markWritten() {
	gen := s.generation.Add(1)
	s.mu.Lock()
	s.writtenAt = gen
	s.mu.Unlock()
}

func (s *BoardService) tableView(ctx context.Context, tableID int) (domain.TableView, error) {
	board, err := s.current(ctx)
	if err != nil {
		return domain.TableView{}, err
	}
	view, ok := board.Table(tableID)
	if !ok {
		return domain.TableView{}, fmt.Errorf("%w: %d", ErrTableNotFound, tableID)
	}
	return view, nil
}

func (s *BoardService) CreateBooking(ctx context.Context, req BookingRequest) (*domain.Reservation, error) {
	reservation, err := req.reservation(s.now())
	if err != nil {
		s.logger.WithField("table_id", req.TableID).Info(err.Error())
		return nil, err
	}

	if err := s.backend.SetTableOccupied(ctx, reservation.TableID); err != nil {
		s.logger.WithField("table_id", reservation.TableID).WithError(err).Error("failed to mark table occupied for booking")
		return nil, err
	}

	if err := s.reservations.Add(ctx, reservation); err != nil {
		log := s.logger.WithField("table_id", reservation.TableID)
		log.WithError(err).Error("failed to save reservation")
		if rerr := s.backend.SetTableAvailable(ctx, reservation.TableID); rerr != nil {
			log.WithError(rerr).Error("failed to undo occupy after reservation save failure")
		}
		s.markWritten()
		return nil, fmt.Errorf("save reservation: %w", err)
	}
	s.markWritten()

	s.publish(ctx, domain.BoardEvent{
		Type:     domain.EventBookingCreated,
		TableIDs: []int{reservation.TableID},
		Customer: reservation.CustomerName,
	})
	return &reservation, nil
}

func (s *BoardService) CancelBooking(ctx context.Context, tableID int) error {
	removed, err := s.reservations.Remove(ctx, tableID)
	if err != nil {
		return fmt.Errorf("remove reservation: %w", err)
	}
	if !removed {
		return fmt.Errorf("%w: table %d", ErrReservationNotFound, tableID)
	}
	s.markWritten()
	s.publish(ctx, domain.BoardEvent{Type: domain.EventBookingCancelled, TableIDs: []int{tableID}})
	return nil
}

func (s *BoardService) ListBookings(ctx context.Context) ([]domain.Reservation, error) {
	return s.reservations.List(ctx)
}

// JoinTables records a display hint grouping tables. Backend orders are not
// moved between tables.
func (s *BoardService) JoinTables(ctx context.Context, tableIDs []int) (*domain.JoinedTableRecord, error) {
	req := joinRequest{TableIDs: dedupe(tableIDs)}
	if err := validate.Struct(req); err != nil {
		return nil, validationErrorFrom(err)
	}

	board, err := s.current(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]domain.TableView, 0, len(req.TableIDs))
	for _, id := range req.TableIDs {
		view, ok := board.Table(id)
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrTableNotFound, id)
		}
		views = append(views, view)
	}
	reconciler.SortByNumber(views)

	record := domain.JoinedTableRecord{
		ID:        uuid.New(),
		TableIDs:  make([]int, 0, len(views)),
		CreatedAt: s.now(),
	}
	numbers := make([]string, 0, len(views))
	for _, view := range views {
		record.TableIDs = append(record.TableIDs, view.ID)
		record.GuestCount += view.EstimatedGuests
		record.OrderCount += view.ActiveOrders
		numbers = append(numbers, view.Number)
	}
	record.Label = strings.Join(numbers, " + ")

	if err := s.joined.Add(ctx, record); err != nil {
		s.logger.WithField("table_ids", record.TableIDs).WithError(err).Error("failed to save joined tables")
		return nil, fmt.Errorf("save joined tables: %w", err)
	}

	s.publish(ctx, domain.BoardEvent{Type: domain.EventTablesJoined, TableIDs: record.TableIDs})
	return &record, nil
}

func (s *BoardService) ListJoined(ctx context.Context) ([]domain.JoinedTableRecord, error) {
	return s.joined.List(ctx)
}

func (s *BoardService) Unjoin(ctx context.Context, id uuid.UUID) error {
	removed, err := s.joined.Remove(ctx, id)
	if err != nil {
		return fmt.Errorf("remove joined tables: %w", err)
	}
	if !removed {
		return fmt.Errorf("%w: %s", ErrJoinNotFound, id)
	}
	return nil
}

// ProcessAction dispatches on the table's resolved status. Only the reserved
// branch talks to the backend (check-in).
func (s *BoardService) ProcessAction(ctx context.Context, tableID int) (*ActionResult, error) {
	view, err := s.tableView(ctx, tableID)
	if err != nil {
		return nil, err
	}

	switch view.Status {
	case domain.StatusAvailable, domain.StatusCleaning:
		return &ActionResult{Kind: ActionOrderEntry, Target: s.OrderEntryLink(tableID), Table: view}, nil
	case domain.StatusOccupied:
		if view.ActiveOrders > 0 {
			return &ActionResult{Kind: ActionPayment, Target: withTable(s.paymentURL, tableID), Table: view}, nil
		}
		return &ActionResult{Kind: ActionDetail, Table: view}, nil
	case domain.StatusReserved:
		if err := s.backend.SetTableOccupied(ctx, tableID); err != nil {
			s.logger.WithField("table_id", tableID).WithError(err).Error("check-in failed")
			return nil, err
		}
		s.markWritten()
		s.publish(ctx, domain.BoardEvent{Type: domain.EventTableCheckedIn, TableIDs: []int{tableID}})
		return &ActionResult{Kind: ActionCheckIn, Table: view}, nil
	}
	return nil, fmt.Errorf("unknown table status %q", view.Status)
}

func (s *BoardService) ReleaseTable(ctx context.Context, tableID int) error {
	if err := s.backend.SetTableAvailable(ctx, tableID); err != nil {
		s.logger.WithField("table_id", tableID).WithError(err).Error("failed to release table")
		return err
	}
	s.markWritten()
	s.publish(ctx, domain.BoardEvent{Type: domain.EventTableReleased, TableIDs: []int{tableID}})
	return nil
}

func (s *BoardService) OrderEntryLink(tableID int) string {
	return withTable(s.orderEntryURL, tableID)
}

func (s *BoardService) OrderEntryQR(tableID int) ([]byte, error) {
	return s.qr.Generate(s.OrderEntryLink(tableID))
}

// publish never fails the operation that triggered it.
func (s *BoardService) publish(ctx context.Context, event domain.BoardEvent) {
	if s.publisher == nil {
		return
	}
	event.BranchID = s.branchID
	event.Timestamp = s.now()
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithField("event", event.Type).WithError(err).Warn("failed to publish board event")
	}
}

func withTable(base string, tableID int) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("table", strconv.Itoa(tableID))
	u.RawQuery = q.Encode()
	return u.String()
}

func dedupe(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

func nonNil(orders []domain.Order) []domain.Order {
	if orders == nil {
		return []domain.Order{}
	}
	return orders
}

// IsNotFound reports whether err names a missing table, reservation or join.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTableNotFound) || errors.Is(err, ErrReservationNotFound) || errors.Is(err, ErrJoinNotFound)
}
