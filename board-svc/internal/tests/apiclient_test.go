package tests

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"tableboard/board-svc/internal/apiclient"
	"tableboard/board-svc/internal/domain"
	"tableboard/board-svc/internal/mocks"
	"tableboard/board-svc/internal/service"
	"tableboard/board-svc/internal/storage"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
}

type backendStub struct {
	mu       sync.Mutex
	requests []recordedRequest
	handler  http.HandlerFunc
}

func (b *backendStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.requests = append(b.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
	})
	b.mu.Unlock()
	b.handler(w, r)
}

func (b *backendStub) recorded() []recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recordedRequest(nil), b.requests...)
}

func newStubClient(t *testing.T, handler http.HandlerFunc, csrf string) (*apiclient.Client, *backendStub) {
	t.Helper()
	stub := &backendStub{handler: handler}
	ts := httptest.NewServer(stub)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	base, _ := url.Parse(ts.URL + "/api")
	if csrf != "" {
		jar.SetCookies(base, []*http.Cookie{{Name: "csrftoken", Value: csrf, Path: "/"}})
	}

	logger, _ := test.NewNullLogger()
	client, err := apiclient.New(apiclient.Options{
		BaseURL:    ts.URL + "/api",
		BranchID:   "7",
		HTTPClient: &http.Client{Jar: jar},
		Jar:        jar,
		Logger:     logger,
	})
	require.NoError(t, err)
	return client, stub
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}
}

func TestClient_New_RejectsInvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8000", "://bad"} {
		_, err := apiclient.New(apiclient.Options{BaseURL: raw})
		assert.Error(t, err, raw)
	}
}

func TestClient_CSRFHeaderOnlyOnMutatingRequests(t *testing.T) {
	client, stub := newStubClient(t, respond(http.StatusOK, `[]`), "tok-123")

	_, err := client.ListTables(context.Background())
	require.NoError(t, err)
	require.NoError(t, client.SetTableOccupied(context.Background(), 4))
	require.NoError(t, client.SetTableAvailable(context.Background(), 4))

	reqs := stub.recorded()
	require.Len(t, reqs, 3)

	assert.Equal(t, http.MethodGet, reqs[0].Method)
	assert.Equal(t, "/api/tables/", reqs[0].Path)
	assert.Empty(t, reqs[0].Header.Get("X-CSRFToken"))
	assert.Equal(t, "7", reqs[0].Query.Get("branch"))

	assert.Equal(t, http.MethodPost, reqs[1].Method)
	assert.Equal(t, "/api/tables/4/set_occupied/", reqs[1].Path)
	assert.Equal(t, "tok-123", reqs[1].Header.Get("X-CSRFToken"))
	assert.Equal(t, "application/json", reqs[1].Header.Get("Content-Type"))

	assert.Equal(t, "/api/tables/4/set_available/", reqs[2].Path)
	assert.Equal(t, "tok-123", reqs[2].Header.Get("X-CSRFToken"))
}

func TestClient_NoCSRFCookieSendsNoHeader(t *testing.T) {
	client, stub := newStubClient(t, respond(http.StatusOK, ``), "")

	require.NoError(t, client.SetTableOccupied(context.Background(), 1))

	reqs := stub.recorded()
	require.Len(t, reqs, 1)
	_, present := reqs[0].Header["X-Csrftoken"]
	assert.False(t, present)
}

func TestClient_ListOrders_OmitsZeroFilters(t *testing.T) {
	client, stub := newStubClient(t, respond(http.StatusOK, `{"count":0,"next":null,"previous":null,"results":[]}`), "")

	_, err := client.ListOrders(context.Background(), apiclient.OrderFilter{Status: "PENDING"})
	require.NoError(t, err)

	query := stub.recorded()[0].Query
	assert.Equal(t, url.Values{"status": {"PENDING"}, "branch": {"7"}}, query)
}

func TestClient_ListInventory_SinglePageIsUnscoped(t *testing.T) {
	body := `{"count":1,"next":"http://backend/api/inventory/?page=2","previous":null,"results":[{"id":5,"name":"Beras","category":"dry","quantity":"12.5","unit":"kg","min_stock":"20"}]}`
	client, stub := newStubClient(t, respond(http.StatusOK, body), "")

	page, err := client.ListInventory(context.Background(), apiclient.InventoryFilter{Category: "dry", LowStock: true, Page: 1})
	require.NoError(t, err)

	require.Len(t, page.Results, 1)
	assert.Equal(t, "Beras", page.Results[0].Name)
	assert.Equal(t, "12.5", page.Results[0].Quantity.String())
	assert.NotNil(t, page.Next)

	requests := stub.recorded()
	require.Len(t, requests, 1)
	assert.Equal(t, url.Values{"category": {"dry"}, "low_stock": {"true"}, "page": {"1"}}, requests[0].Query)
}

func TestClient_ListTables_AcceptsEnvelopeAndBareArray(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "bare array", body: `[{"id":1,"number":"1","capacity":4,"is_available":true}]`},
		{name: "page envelope", body: `{"count":1,"next":null,"previous":null,"results":[{"id":1,"number":"1","capacity":4,"is_available":true}]}`},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			client, _ := newStubClient(t, respond(http.StatusOK, testCase.body), "")

			tables, err := client.ListTables(context.Background())
			require.NoError(t, err)
			assert.Equal(t, []domain.Table{{ID: 1, Number: "1", Capacity: 4, IsAvailable: true}}, tables)
		})
	}
}

func TestClient_ListActiveOrders_DropsClosedOrders(t *testing.T) {
	body := `[
		{"id":1,"table":2,"status":"PENDING","total_amount":"10000.00","created_at":"2026-10-16T18:00:00Z"},
		{"id":2,"table":2,"status":"COMPLETED","total_amount":"5000.00","created_at":"2026-10-16T18:00:00Z"},
		{"id":3,"table":null,"status":"READY","total_amount":"7000.00","created_at":"2026-10-16T18:00:00Z"},
		{"id":4,"table":3,"status":"CANCELLED","total_amount":"1000.00","created_at":"2026-10-16T18:00:00Z"}
	]`
	client, stub := newStubClient(t, respond(http.StatusOK, body), "")

	orders, err := client.ListActiveOrders(context.Background())
	require.NoError(t, err)

	require.Len(t, orders, 2)
	assert.Equal(t, 1, orders[0].ID)
	assert.Equal(t, 3, orders[1].ID)
	assert.Nil(t, orders[1].TableID)
	assert.Len(t, stub.recorded(), 1)
}

func TestClient_ListActiveOrders_WalksEveryPage(t *testing.T) {
	var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			respond(http.StatusOK, `{"count":2,"next":null,"previous":"http://backend/api/orders/","results":[
				{"id":2,"table":5,"status":"READY","total_amount":"7000.00","created_at":"2026-10-16T18:30:00Z"}
			]}`)(w, r)
			return
		}
		respond(http.StatusOK, `{"count":2,"next":"http://backend/api/orders/?page=2","previous":null,"results":[
			{"id":1,"table":2,"status":"PENDING","total_amount":"10000.00","created_at":"2026-10-16T18:00:00Z"}
		]}`)(w, r)
	}
	client, stub := newStubClient(t, handler, "")

	orders, err := client.ListActiveOrders(context.Background())
	require.NoError(t, err)

	require.Len(t, orders, 2)
	assert.Equal(t, 5, *orders[1].TableID)

	reqs := stub.recorded()
	require.Len(t, reqs, 2)
	assert.Empty(t, reqs[0].Query.Get("page"))
	assert.Equal(t, "2", reqs[1].Query.Get("page"))
	assert.Equal(t, "7", reqs[1].Query.Get("branch"))
}

func TestClient_ErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "detail", status: http.StatusNotFound, body: `{"detail":"Not found."}`, wantMsg: "Not found."},
		{name: "error", status: http.StatusBadRequest, body: `{"error":"Table is already occupied"}`, wantMsg: "Table is already occupied"},
		{name: "message", status: http.StatusConflict, body: `{"message":"Conflict"}`, wantMsg: "Conflict"},
		{name: "detail wins over error", status: http.StatusBadRequest, body: `{"error":"second","detail":"first"}`, wantMsg: "first"},
		{name: "field errors", status: http.StatusBadRequest, body: `{"number":["table with this number already exists."]}`, wantMsg: "number: table with this number already exists."},
		{name: "html body", status: http.StatusInternalServerError, body: `<html>oops</html>`, wantMsg: "request failed with status 500"},
		{name: "empty body", status: http.StatusBadGateway, body: ``, wantMsg: "request failed with status 502"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			client, _ := newStubClient(t, respond(testCase.status, testCase.body), "")

			err := client.SetTableOccupied(context.Background(), 1)

			var reqErr *apiclient.RequestError
			require.True(t, errors.As(err, &reqErr))
			assert.Equal(t, testCase.wantMsg, reqErr.Message)
			assert.Equal(t, testCase.status, reqErr.StatusCode)
			assert.ErrorIs(t, err, apiclient.ErrRequestFailed)
			assert.NotErrorIs(t, err, apiclient.ErrParseFailed)
		})
	}
}

func TestClient_InvalidJSONIsParseFailure(t *testing.T) {
	client, _ := newStubClient(t, respond(http.StatusOK, `not json at all`), "")

	_, err := client.GetOrder(context.Background(), 5)

	assert.ErrorIs(t, err, apiclient.ErrParseFailed)
	assert.ErrorIs(t, err, apiclient.ErrRequestFailed)
}

func TestClient_TransportFailure(t *testing.T) {
	mockClient := mocks.NewHTTPClient(t)
	mockClient.On("Do", mock.Anything).Return(nil, errors.New("connection refused")).Once()

	logger, _ := test.NewNullLogger()
	client, err := apiclient.New(apiclient.Options{BaseURL: "http://backend.invalid/api", HTTPClient: mockClient, Logger: logger})
	require.NoError(t, err)

	_, err = client.ListTables(context.Background())

	var reqErr *apiclient.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, 0, reqErr.StatusCode)
	assert.Contains(t, reqErr.Message, "connection refused")
	assert.ErrorIs(t, err, apiclient.ErrRequestFailed)
}

func TestClient_FetchAllInventory_WalksEveryPage(t *testing.T) {
	const total, pageSize = 25, 10

	var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		start := (page - 1) * pageSize
		end := start + pageSize
		if end > total {
			end = total
		}

		results := ""
		for i := start; i < end; i++ {
			if results != "" {
				results += ","
			}
			results += fmt.Sprintf(`{"id":%d,"name":"item %d","quantity":"1"}`, i+1, i+1)
		}
		next := "null"
		if end < total {
			next = fmt.Sprintf(`"http://backend/api/inventory/?page=%d"`, page+1)
		}
		respond(http.StatusOK, fmt.Sprintf(`{"count":%d,"next":%s,"previous":null,"results":[%s]}`, total, next, results))(w, r)
	}
	client, stub := newStubClient(t, handler, "")

	items, err := client.FetchAllInventory(context.Background(), apiclient.InventoryFilter{Category: "dry goods", LowStock: true})
	require.NoError(t, err)

	assert.Len(t, items, total)
	assert.Equal(t, 25, items[24].ID)

	reqs := stub.recorded()
	require.Len(t, reqs, 3)
	for i, req := range reqs {
		assert.Equal(t, strconv.Itoa(i+1), req.Query.Get("page"))
		assert.Equal(t, "dry goods", req.Query.Get("category"))
		assert.Equal(t, "true", req.Query.Get("low_stock"))
	}
}

func TestClient_FetchAllInventory_StopsOnCancelledContext(t *testing.T) {
	client, stub := newStubClient(t, respond(http.StatusOK, `{"count":1,"next":null,"results":[]}`), "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchAllInventory(ctx, apiclient.InventoryFilter{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, stub.recorded())
}

func TestClient_CatalogEndpoints(t *testing.T) {
	client, stub := newStubClient(t, respond(http.StatusOK, `[]`), "")
	ctx := context.Background()

	_, err := client.ListPurchaseOrders(ctx, apiclient.PurchaseOrderFilter{Status: "draft", Vendor: 3})
	require.NoError(t, err)
	_, err = client.ListCashierSessions(ctx, apiclient.CashierSessionFilter{Status: "open"})
	require.NoError(t, err)
	_, err = client.ListVendors(ctx, apiclient.VendorFilter{Search: "kopi"})
	require.NoError(t, err)
	_, err = client.ListPayments(ctx, apiclient.PaymentFilter{Order: 12})
	require.NoError(t, err)

	reqs := stub.recorded()
	require.Len(t, reqs, 4)
	assert.Equal(t, "/api/purchase-orders/", reqs[0].Path)
	assert.Equal(t, url.Values{"status": {"draft"}, "vendor": {"3"}}, reqs[0].Query)
	assert.Equal(t, "/api/cashier-sessions/", reqs[1].Path)
	assert.Equal(t, "/api/vendors/", reqs[2].Path)
	assert.Equal(t, "kopi", reqs[2].Query.Get("search"))
	assert.Equal(t, "/api/payments/", reqs[3].Path)
	assert.Equal(t, "12", reqs[3].Query.Get("order"))
}

func TestCreateBooking_InvalidRequestNeverReachesBackend(t *testing.T) {
	mockClient := mocks.NewHTTPClient(t)
	logger, _ := test.NewNullLogger()
	client, err := apiclient.New(apiclient.Options{BaseURL: "http://backend.local/api", HTTPClient: mockClient, Logger: logger})
	require.NoError(t, err)

	svc := service.NewBoardService(client, storage.NewMemoryReservationStore(), storage.NewMemoryJoinedTableStore(), nil, service.Options{Logger: logger})

	_, err = svc.CreateBooking(context.Background(), service.BookingRequest{TableID: 1, CustomerName: "", DateTime: "2026-10-16T20:00"})
	assert.ErrorIs(t, err, service.ErrValidationFailed)
	mockClient.AssertNotCalled(t, "Do", mock.Anything)
}
