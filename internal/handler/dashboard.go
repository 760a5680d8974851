package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nore-menu/api/internal/database"
	"github.com/nore-menu/api/internal/service"
)

// DashboardServicer defines the service methods needed by dashboard
// handlers. Satisfied by *service.DashboardService.
type DashboardServicer interface {
	ConsolidatedData(ctx context.Context, restaurantID uuid.UUID, page, limit int, f service.ConsolidatedFilters) (*service.ConsolidatedData, error)
	Stats(ctx context.Context, restaurantID uuid.UUID, days int) (*service.StatsResult, error)
}

// DashboardHandler handles the owner dashboard endpoints.
type DashboardHandler struct {
	svc DashboardServicer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(svc DashboardServicer) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// RegisterRoutes registers dashboard endpoints on the given Chi router.
// Expected to be mounted behind authentication and tenant scoping.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Consolidated)
	r.Get("/stats", h.Stats)
}

// --- Response types ---

type kpiResponse struct {
	WhatsappEmitted   int64  `json:"whatsapp_emitted"`
	WhatsappValidated int64  `json:"whatsapp_validated"`
	WhatsappCancelled int64  `json:"whatsapp_cancelled"`
	PosTotal          int64  `json:"pos_total"`
	PosServed         int64  `json:"pos_served"`
	PosCancelled      int64  `json:"pos_cancelled"`
	PosRevenue        string `json:"pos_revenue"`
	WhatsappRevenue   string `json:"whatsapp_revenue"`
	TotalRevenue      string `json:"total_revenue"`
}

type unifiedOrderResponse struct {
	ID           uuid.UUID `json:"id"`
	Source       string    `json:"source"`
	OrderType    string    `json:"order_type"`
	Status       string    `json:"status"`
	CustomerName *string   `json:"customer_name"`
	TableNumber  *string   `json:"table_number"`
	TotalPrice   string    `json:"total_price"`
	IsPaid       bool      `json:"is_paid"`
	ProcessedBy  *string   `json:"processed_by"`
	CreatedAt    time.Time `json:"created_at"`
}

type consolidatedResponse struct {
	Stats  kpiResponse            `json:"stats"`
	Orders []unifiedOrderResponse `json:"orders"`
	Page   int                    `json:"page"`
	Limit  int                    `json:"limit"`
	Total  int64                  `json:"total"`
}

type statsPointResponse struct {
	Date      string `json:"date"`
	QRScans   int64  `json:"qr_scans"`
	DishViews int64  `json:"dish_views"`
}

type dishCountResponse struct {
	DishID uuid.UUID `json:"dish_id"`
	Name   string    `json:"name"`
	Count  int64     `json:"count"`
}

type statsResponse struct {
	Series    []statsPointResponse `json:"series"`
	TopViewed []dishCountResponse  `json:"top_viewed"`
	TopLiked  []dishCountResponse  `json:"top_liked"`
}

// --- Handlers ---

// Consolidated handles GET /analytics/dashboard/{restaurantID}.
func (h *DashboardHandler) Consolidated(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "restaurantID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	q := r.URL.Query()

	page := 1
	if s := q.Get("page"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			page = v
		}
	}
	limit := 0
	if s := q.Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}

	filters := service.ConsolidatedFilters{
		Source:    q.Get("source"),
		OrderType: q.Get("type"),
		Status:    q.Get("status"),
		Search:    q.Get("search"),
	}
	if s := q.Get("dateStart"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid dateStart format, use YYYY-MM-DD"})
			return
		}
		filters.DateStart = &t
	}
	if s := q.Get("dateEnd"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid dateEnd format, use YYYY-MM-DD"})
			return
		}
		filters.DateEnd = &t
	}

	data, err := h.svc.ConsolidatedData(r.Context(), restaurantID, page, limit, filters)
	if err != nil {
		log.Printf("ERROR: consolidated dashboard: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	orders := make([]unifiedOrderResponse, len(data.Orders))
	for i, o := range data.Orders {
		orders[i] = dbUnifiedOrderToResponse(o)
	}

	writeJSON(w, http.StatusOK, consolidatedResponse{
		Stats: kpiResponse{
			WhatsappEmitted:   data.Stats.WhatsappEmitted,
			WhatsappValidated: data.Stats.WhatsappValidated,
			WhatsappCancelled: data.Stats.WhatsappCancelled,
			PosTotal:          data.Stats.PosTotal,
			PosServed:         data.Stats.PosServed,
			PosCancelled:      data.Stats.PosCancelled,
			PosRevenue:        data.Stats.PosRevenue.StringFixed(2),
			WhatsappRevenue:   data.Stats.WhatsappRevenue.StringFixed(2),
			TotalRevenue:      data.Stats.TotalRevenue.StringFixed(2),
		},
		Orders: orders,
		Page:   data.Page,
		Limit:  data.Limit,
		Total:  data.Total,
	})
}

// Stats handles GET /analytics/dashboard/{restaurantID}/stats.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "restaurantID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	days := 7
	if s := r.URL.Query().Get("days"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			days = v
		}
	}

	result, err := h.svc.Stats(r.Context(), restaurantID, days)
	if err != nil {
		log.Printf("ERROR: dashboard stats: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := statsResponse{
		Series:    make([]statsPointResponse, len(result.Series)),
		TopViewed: make([]dishCountResponse, len(result.TopViewed)),
		TopLiked:  make([]dishCountResponse, len(result.TopLiked)),
	}
	for i, p := range result.Series {
		resp.Series[i] = statsPointResponse{Date: p.Date, QRScans: p.QRScans, DishViews: p.DishViews}
	}
	for i, d := range result.TopViewed {
		resp.TopViewed[i] = dishCountResponse{DishID: d.DishID, Name: d.Name, Count: d.Count}
	}
	for i, d := range result.TopLiked {
		resp.TopLiked[i] = dishCountResponse{DishID: d.DishID, Name: d.Name, Count: d.Count}
	}
	writeJSON(w, http.StatusOK, resp)
}

func dbUnifiedOrderToResponse(o database.UnifiedOrder) unifiedOrderResponse {
	return unifiedOrderResponse{
		ID:           o.ID,
		Source:       o.Source,
		OrderType:    string(o.OrderType),
		Status:       o.Status,
		CustomerName: textPtr(o.CustomerName),
		TableNumber:  textPtr(o.TableNumber),
		TotalPrice:   numericToString(o.TotalPrice),
		IsPaid:       o.IsPaid,
		ProcessedBy:  uuidPtr(o.ProcessedBy),
		CreatedAt:    o.CreatedAt,
	}
}
