// Package reconciler merges the backend table list, the active orders and the
// locally stored reservations into one display status per table.
package reconciler

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"tableboard/board-svc/internal/domain"

	"github.com/shopspring/decimal"
)

// GuestsPerOrder is the headcount assumed for each active order.
const GuestsPerOrder = 2

// Reconcile returns one view per table, sorted by numeric table number.
// Status priority: reservation, active orders, backend availability flag,
// then cleaning.
func Reconcile(tables []domain.Table, orders []domain.Order, reservations []domain.Reservation, now time.Time) []domain.TableView {
	reserved := make(map[int]domain.Reservation, len(reservations))
	for _, res := range reservations {
		if _, seen := reserved[res.TableID]; !seen {
			reserved[res.TableID] = res
		}
	}

	active := make(map[int][]domain.Order)
	for _, order := range orders {
		if order.TableID == nil || !order.IsActive() {
			continue
		}
		active[*order.TableID] = append(active[*order.TableID], order)
	}

	views := make([]domain.TableView, 0, len(tables))
	for _, table := range tables {
		tableOrders := active[table.ID]
		view := domain.TableView{
			Table:        table,
			ActiveOrders: len(tableOrders),
			Revenue:      Revenue(tableOrders),
		}

		res, isReserved := reserved[table.ID]
		switch {
		case isReserved:
			view.Status = domain.StatusReserved
			r := res
			view.Reservation = &r
		case len(tableOrders) > 0:
			view.Status = domain.StatusOccupied
		case table.IsAvailable:
			view.Status = domain.StatusAvailable
		default:
			view.Status = domain.StatusCleaning
		}

		if len(tableOrders) > 0 {
			view.OccupiedDuration = FormatDuration(now.Sub(earliest(tableOrders)))
			view.EstimatedGuests = EstimateGuests(len(tableOrders), table.Capacity)
		}

		views = append(views, view)
	}

	SortByNumber(views)
	return views
}

// Revenue sums total_amount over the active orders in the list.
func Revenue(orders []domain.Order) decimal.Decimal {
	total := decimal.Zero
	for _, order := range orders {
		if order.IsActive() {
			total = total.Add(order.TotalAmount)
		}
	}
	return total
}

func EstimateGuests(activeOrders, capacity int) int {
	guests := activeOrders * GuestsPerOrder
	if guests > capacity {
		guests = capacity
	}
	if guests < 0 {
		return 0
	}
	return guests
}

// FormatDuration renders "H jam M menit" from one hour up, "M menit" below.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d / time.Minute)
	if minutes >= 60 {
		return fmt.Sprintf("%d jam %d menit", minutes/60, minutes%60)
	}
	return fmt.Sprintf("%d menit", minutes)
}

func earliest(orders []domain.Order) time.Time {
	first := orders[0].CreatedAt
	for _, order := range orders[1:] {
		if order.CreatedAt.Before(first) {
			first = order.CreatedAt
		}
	}
	return first
}

// TableNumber reads the leading digits of a display number ("12B" is 12).
// Numbers that do not start with a digit sort as 0.
func TableNumber(number string) int {
	number = strings.TrimSpace(number)
	end := strings.IndexFunc(number, func(r rune) bool { return r < '0' || r > '9' })
	if end == -1 {
		end = len(number)
	}
	n, err := strconv.Atoi(number[:end])
	if err != nil {
		return 0
	}
	return n
}

func SortByNumber(views []domain.TableView) {
	sort.SliceStable(views, func(i, j int) bool {
		ni, nj := TableNumber(views[i].Number), TableNumber(views[j].Number)
		if ni != nj {
			return ni < nj
		}
		return views[i].ID < views[j].ID
	})
}

func Summarize(views []domain.TableView) domain.BoardSummary {
	summary := domain.BoardSummary{Total: len(views), Revenue: decimal.Zero}
	for _, view := range views {
		switch view.Status {
		case domain.StatusAvailable:
			summary.Available++
		case domain.StatusOccupied:
			summary.Occupied++
		case domain.StatusReserved:
			summary.Reserved++
		case domain.StatusCleaning:
			summary.Cleaning++
		}
		summary.Revenue = summary.Revenue.Add(view.Revenue)
	}
	return summary
}
