package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"tableboard/board-svc/internal/domain"
)

func (c *Client) withBranch(v url.Values) url.Values {
	if v == nil {
		v = url.Values{}
	}
	if c.branchID != "" {
		v.Set("branch", c.branchID)
	}
	return v
}

func (c *Client) ListTables(ctx context.Context) ([]domain.Table, error) {
	page, err := list[domain.Table](ctx, c, "/tables/", c.withBranch(nil))
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

func (c *Client) SetTableAvailable(ctx context.Context, tableID int) error {
	return c.request(ctx, http.MethodPost, fmt.Sprintf("/tables/%d/set_available/", tableID), nil, nil, nil)
}

func (c *Client) SetTableOccupied(ctx context.Context, tableID int) error {
	return c.request(ctx, http.MethodPost, fmt.Sprintf("/tables/%d/set_occupied/", tableID), nil, nil, nil)
}

// collect walks pages until the backend reports no next page. query returns
// the values for a given page number, starting at 1.
// The backend's pagination is the only bound; ctx cancellation stops the walk.
func collect[T any](ctx context.Context, c *Client, endpoint string, query func(page int) url.Values) ([]T, error) {
	items := []T{}
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := list[T](ctx, c, endpoint, query(n))
		if err != nil {
			return nil, err
		}
		items = append(items, page.Results...)
		if page.Next == nil {
			return items, nil
		}
	}
}

// orderPages leaves the first request unpaged so unpaginated order
// endpoints see the same query they always did.
func (c *Client) orderPages(filter OrderFilter) func(int) url.Values {
	return func(n int) url.Values {
		v := c.withBranch(filter.values())
		if n > 1 {
			v.Set("page", strconv.Itoa(n))
		}
		return v
	}
}

// ListOrders returns every page of matching orders.
func (c *Client) ListOrders(ctx context.Context, filter OrderFilter) ([]domain.Order, error) {
	return collect[domain.Order](ctx, c, "/orders/", c.orderPages(filter))
}

// ListActiveOrders returns branch orders that are neither completed nor
// cancelled.
func (c *Client) ListActiveOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := c.ListOrders(ctx, OrderFilter{})
	if err != nil {
		return nil, err
	}
	active := make([]domain.Order, 0, len(orders))
	for _, order := range orders {
		if order.IsActive() {
			active = append(active, order)
		}
	}
	return active, nil
}

func (c *Client) ListUnpaidOrders(ctx context.Context) ([]domain.Order, error) {
	return collect[domain.Order](ctx, c, "/orders/unpaid/", c.orderPages(OrderFilter{}))
}

func (c *Client) ListProcessingOrders(ctx context.Context) ([]domain.Order, error) {
	return collect[domain.Order](ctx, c, "/orders/processing/", c.orderPages(OrderFilter{}))
}

func (c *Client) GetOrder(ctx context.Context, orderID int) (*domain.Order, error) {
	var order domain.Order
	if err := c.request(ctx, http.MethodGet, fmt.Sprintf("/orders/%d/", orderID), nil, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) ListPayments(ctx context.Context, filter PaymentFilter) ([]domain.Payment, error) {
	page, err := list[domain.Payment](ctx, c, "/payments/", filter.values())
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

func (c *Client) ListInventory(ctx context.Context, filter InventoryFilter) (domain.Page[domain.InventoryItem], error) {
	return list[domain.InventoryItem](ctx, c, "/inventory/", filter.values())
}

func (c *Client) FetchAllInventory(ctx context.Context, filter InventoryFilter) ([]domain.InventoryItem, error) {
	return collect[domain.InventoryItem](ctx, c, "/inventory/", func(n int) url.Values {
		filter.Page = n
		return filter.values()
	})
}

func (c *Client) ListPurchaseOrders(ctx context.Context, filter PurchaseOrderFilter) ([]domain.PurchaseOrder, error) {
	page, err := list[domain.PurchaseOrder](ctx, c, "/purchase-orders/", filter.values())
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

func (c *Client) ListCashierSessions(ctx context.Context, filter CashierSessionFilter) ([]domain.CashierSession, error) {
	page, err := list[domain.CashierSession](ctx, c, "/cashier-sessions/", filter.values())
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

func (c *Client) ListVendors(ctx context.Context, filter VendorFilter) ([]domain.Vendor, error) {
	page, err := list[domain.Vendor](ctx, c, "/vendors/", filter.values())
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}
