package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"tableboard/board-svc/internal/apiclient"
	"tableboard/board-svc/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	Board   service.BoardServiceInterface
	Catalog service.Catalog
	Logger  logrus.FieldLogger

	// Activity is nil unless event aggregation is enabled.
	Activity service.ActivityReader
	BranchID string
}

func NewHandler(board service.BoardServiceInterface, catalog service.Catalog, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		Board:   board,
		Catalog: catalog,
		Logger:  logger.WithField("module", "httpapi"),
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/api/board", h.refreshBoard).Methods("GET")
	r.HandleFunc("/api/board/latest", h.latestBoard).Methods("GET")

	r.HandleFunc("/api/bookings", h.listBookings).Methods("GET")
	r.HandleFunc("/api/tables/{id:[0-9]+}/bookings", h.createBooking).Methods("POST")
	r.HandleFunc("/api/tables/{id:[0-9]+}/bookings", h.cancelBooking).Methods("DELETE")
	r.HandleFunc("/api/tables/{id:[0-9]+}/action", h.processAction).Methods("POST")
	r.HandleFunc("/api/tables/{id:[0-9]+}/release", h.releaseTable).Methods("POST")
	r.HandleFunc("/api/tables/{id:[0-9]+}/qrcode", h.orderEntryQR).Methods("GET")

	r.HandleFunc("/api/tables/join", h.joinTables).Methods("POST")
	r.HandleFunc("/api/tables/joined", h.listJoined).Methods("GET")
	r.HandleFunc("/api/tables/joined/{joinId}", h.unjoin).Methods("DELETE")

	r.HandleFunc("/api/activity", h.dailyActivity).Methods("GET")

	r.HandleFunc("/api/inventory", h.listInventory).Methods("GET")
	r.HandleFunc("/api/purchase-orders", h.listPurchaseOrders).Methods("GET")
	r.HandleFunc("/api/cashier-sessions", h.listCashierSessions).Methods("GET")
	r.HandleFunc("/api/vendors", h.listVendors).Methods("GET")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "board-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) refreshBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.Board.Refresh(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *Handler) latestBoard(w http.ResponseWriter, r *http.Request) {
	board := h.Board.Latest()
	if board == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "board has not been loaded yet"})
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *Handler) listBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.Board.ListBookings(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *Handler) createBooking(w http.ResponseWriter, r *http.Request) {
	tableID, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req service.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON: " + err.Error()})
		return
	}
	req.TableID = tableID

	reservation, err := h.Board.CreateBooking(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reservation)
}

func (h *Handler) cancelBooking(w http.ResponseWriter, r *http.Request) {
	tableID, _ := strconv.Atoi(mux.Vars(r)["id"])
	if err := h.Board.CancelBooking(r.Context(), tableID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) processAction(w http.ResponseWriter, r *http.Request) {
	tableID, _ := strconv.Atoi(mux.Vars(r)["id"])
	result, err := h.Board.ProcessAction(r.Context(), tableID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) releaseTable(w http.ResponseWriter, r *http.Request) {
	tableID, _ := strconv.Atoi(mux.Vars(r)["id"])
	if err := h.Board.ReleaseTable(r.Context(), tableID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) orderEntryQR(w http.ResponseWriter, r *http.Request) {
	tableID, _ := strconv.Atoi(mux.Vars(r)["id"])
	png, err := h.Board.OrderEntryQR(tableID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

type joinBody struct {
	TableIDs []int `json:"table_ids"`
}

func (h *Handler) joinTables(w http.ResponseWriter, r *http.Request) {
	var body joinBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON: " + err.Error()})
		return
	}

	record, err := h.Board.JoinTables(r.Context(), body.TableIDs)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (h *Handler) listJoined(w http.ResponseWriter, r *http.Request) {
	records, err := h.Board.ListJoined(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) unjoin(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["joinId"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid join id"})
		return
	}
	if err := h.Board.Unjoin(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) dailyActivity(w http.ResponseWriter, r *http.Request) {
	if h.Activity == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "activity tracking is disabled"})
		return
	}

	day := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "date must be YYYY-MM-DD", Fields: map[string]string{"date": "datetime"}})
			return
		}
		day = parsed
	}

	summary, err := h.Activity.Daily(r.Context(), h.BranchID, day)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) listInventory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lowStock, _ := strconv.ParseBool(q.Get("low_stock"))
	items, err := h.Catalog.FetchAllInventory(r.Context(), apiclient.InventoryFilter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		LowStock: lowStock,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) listPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	vendor, _ := strconv.Atoi(q.Get("vendor"))
	orders, err := h.Catalog.ListPurchaseOrders(r.Context(), apiclient.PurchaseOrderFilter{
		Status: q.Get("status"),
		Vendor: vendor,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) listCashierSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cashier, _ := strconv.Atoi(q.Get("cashier"))
	sessions, err := h.Catalog.ListCashierSessions(r.Context(), apiclient.CashierSessionFilter{
		Status:  q.Get("status"),
		Cashier: cashier,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *Handler) listVendors(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.Catalog.ListVendors(r.Context(), apiclient.VendorFilter{Search: r.URL.Query().Get("search")})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vendors)
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var validation *service.ValidationError
	var request *apiclient.RequestError

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: validation.Error(), Fields: validation.Fields})
	case service.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.As(err, &request):
		h.Logger.WithFields(logrus.Fields{
			"endpoint": request.Endpoint,
			"status":   request.StatusCode,
		}).Warn("backend request failed")
		writeJSON(w, http.StatusBadGateway, errorBody{Error: request.Message})
	default:
		h.Logger.WithError(err).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
