package apiclient

import (
	"net/url"
	"strconv"
)

// Filters only carry the query parameters each resource recognizes. Zero
// values are left out of the query string entirely.

type OrderFilter struct {
	Status    string
	Table     int
	OrderType string
}

func (f OrderFilter) values() url.Values {
	v := url.Values{}
	setString(v, "status", f.Status)
	setInt(v, "table", f.Table)
	setString(v, "order_type", f.OrderType)
	return v
}

type PaymentFilter struct {
	Order  int
	Method string
}

func (f PaymentFilter) values() url.Values {
	v := url.Values{}
	setInt(v, "order", f.Order)
	setString(v, "payment_method", f.Method)
	return v
}

type InventoryFilter struct {
	Search   string
	Category string
	LowStock bool
	Page     int
}

func (f InventoryFilter) values() url.Values {
	v := url.Values{}
	setString(v, "search", f.Search)
	setString(v, "category", f.Category)
	if f.LowStock {
		v.Set("low_stock", "true")
	}
	setInt(v, "page", f.Page)
	return v
}

type PurchaseOrderFilter struct {
	Status string
	Vendor int
}

func (f PurchaseOrderFilter) values() url.Values {
	v := url.Values{}
	setString(v, "status", f.Status)
	setInt(v, "vendor", f.Vendor)
	return v
}

type CashierSessionFilter struct {
	Status  string
	Cashier int
}

func (f CashierSessionFilter) values() url.Values {
	v := url.Values{}
	setString(v, "status", f.Status)
	setInt(v, "cashier", f.Cashier)
	return v
}

type VendorFilter struct {
	Search string
}

func (f VendorFilter) values() url.Values {
	v := url.Values{}
	setString(v, "search", f.Search)
	return v
}

func setString(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func setInt(v url.Values, key string, value int) {
	if value != 0 {
		v.Set(key, strconv.Itoa(value))
	}
}
