package service

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/nore-menu/api/internal/database"
	"github.com/nore-menu/api/internal/enum"
	"github.com/shopspring/decimal"
)

const (
	defaultDashboardLimit = 50
	maxDashboardLimit     = 200
	topDishCount          = 5
)

// DashboardStore defines the DB methods needed by the dashboard
// service. Satisfied by *database.Queries.
type DashboardStore interface {
	GetPosOrderStats(ctx context.Context, restaurantID uuid.UUID) (database.GetPosOrderStatsRow, error)
	GetWhatsappOrderStats(ctx context.Context, restaurantID uuid.UUID) (database.GetWhatsappOrderStatsRow, error)
	ListUnifiedOrders(ctx context.Context, arg database.ListUnifiedOrdersParams) ([]database.UnifiedOrder, error)
	CountUnifiedOrders(ctx context.Context, arg database.CountUnifiedOrdersParams) (int64, error)
	ListDailyAggregates(ctx context.Context, arg database.ListDailyAggregatesParams) ([]database.DailyAggregate, error)
	CountEventsBetween(ctx context.Context, arg database.CountEventsBetweenParams) (int64, error)
	ListDishEventCountsBetween(ctx context.Context, arg database.CountEventsBetweenParams) ([]database.DishEventCountRow, error)
	ListDishesByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]database.Dish, error)
}

// ConsolidatedFilters are the optional filters on the unified feed.
type ConsolidatedFilters struct {
	Source    string // POS | WHATSAPP | ALL
	OrderType string
	Status    string // matched case-insensitively across origins
	Search    string // customer name or order id fragment
	DateStart *time.Time
	DateEnd   *time.Time
}

// DashboardKPIs are the unfiltered headline tallies. POS and WhatsApp
// revenue come from disjoint tables and are summed without
// deduplication.
type DashboardKPIs struct {
	WhatsappEmitted   int64
	WhatsappValidated int64
	WhatsappCancelled int64
	PosTotal          int64
	PosServed         int64
	PosCancelled      int64
	PosRevenue        decimal.Decimal
	WhatsappRevenue   decimal.Decimal
	TotalRevenue      decimal.Decimal
}

// ConsolidatedData is the full dashboard payload: KPIs plus one page
// of the unified feed.
type ConsolidatedData struct {
	Stats  DashboardKPIs
	Orders []database.UnifiedOrder
	Page   int
	Limit  int
	Total  int64
}

// StatsPoint is one day of the time series.
type StatsPoint struct {
	Date      string
	QRScans   int64
	DishViews int64
}

// DishCount is a ranked dish with its event count.
type DishCount struct {
	DishID uuid.UUID
	Name   string
	Count  int64
}

// StatsResult is the dashboard's analytics payload.
type StatsResult struct {
	Series    []StatsPoint
	TopViewed []DishCount
	TopLiked  []DishCount
}

// DashboardService builds the consolidated read models.
type DashboardService struct {
	store DashboardStore
	now   func() time.Time
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(store DashboardStore) *DashboardService {
	return &DashboardService{store: store, now: time.Now}
}

// ConsolidatedData merges both order origins into one paginated,
// filterable feed plus unfiltered KPI tallies. If the paginated query
// fails the feed degrades to an empty page while the KPIs still load;
// a broken filter must not take down the whole dashboard.
func (s *DashboardService) ConsolidatedData(ctx context.Context, restaurantID uuid.UUID, page, limit int, f ConsolidatedFilters) (*ConsolidatedData, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultDashboardLimit
	}
	if limit > maxDashboardLimit {
		limit = maxDashboardLimit
	}

	posStats, err := s.store.GetPosOrderStats(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	waStats, err := s.store.GetWhatsappOrderStats(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	posRevenue := numericToDecimal(posStats.Revenue)
	waRevenue := numericToDecimal(waStats.Revenue)

	data := &ConsolidatedData{
		Stats: DashboardKPIs{
			WhatsappEmitted:   waStats.Total,
			WhatsappValidated: waStats.Validated,
			WhatsappCancelled: waStats.Cancelled,
			PosTotal:          posStats.Total,
			PosServed:         posStats.Served,
			PosCancelled:      posStats.Cancelled,
			PosRevenue:        posRevenue,
			WhatsappRevenue:   waRevenue,
			TotalRevenue:      posRevenue.Add(waRevenue),
		},
		Orders: []database.UnifiedOrder{},
		Page:   page,
		Limit:  limit,
	}

	source := enum.SourceAll
	if f.Source == enum.SourcePOS || f.Source == enum.SourceWhatsapp {
		source = f.Source
	}

	orderType := pgtype.Text{}
	if f.OrderType != "" {
		orderType = pgtype.Text{String: f.OrderType, Valid: true}
	}
	status := pgtype.Text{}
	if f.Status != "" {
		status = pgtype.Text{String: f.Status, Valid: true}
	}
	search := pgtype.Text{}
	if f.Search != "" {
		search = pgtype.Text{String: f.Search, Valid: true}
	}
	dateStart := pgtype.Timestamptz{}
	if f.DateStart != nil {
		dateStart = pgtype.Timestamptz{Time: startOfDay(*f.DateStart), Valid: true}
	}
	dateEnd := pgtype.Timestamptz{}
	if f.DateEnd != nil {
		dateEnd = pgtype.Timestamptz{Time: endOfDay(*f.DateEnd), Valid: true}
	}

	orders, err := s.store.ListUnifiedOrders(ctx, database.ListUnifiedOrdersParams{
		RestaurantID: restaurantID,
		Source:       source,
		OrderType:    orderType,
		Status:       status,
		Search:       search,
		DateStart:    dateStart,
		DateEnd:      dateEnd,
		Limit:        int32(limit),
		Offset:       int32((page - 1) * limit),
	})
	if err != nil {
		log.Printf("ERROR: list unified orders: %v", err)
		return data, nil
	}

	total, err := s.store.CountUnifiedOrders(ctx, database.CountUnifiedOrdersParams{
		RestaurantID: restaurantID,
		Source:       source,
		OrderType:    orderType,
		Status:       status,
		Search:       search,
		DateStart:    dateStart,
		DateEnd:      dateEnd,
	})
	if err != nil {
		log.Printf("ERROR: count unified orders: %v", err)
		return data, nil
	}

	data.Orders = orders
	data.Total = total
	return data, nil
}

// Stats merges today's live counts from raw menu events with
// historical counts from the daily aggregates, so a dashboard load
// never rescans raw event history older than today.
func (s *DashboardService) Stats(ctx context.Context, restaurantID uuid.UUID, days int) (*StatsResult, error) {
	if days < 1 {
		days = 7
	}

	now := s.now()
	today := startOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	windowStart := today.AddDate(0, 0, -(days - 1))

	series := make(map[string]*StatsPoint, days)
	for d := windowStart; d.Before(tomorrow); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		series[key] = &StatsPoint{Date: key}
	}
	viewsByDish := make(map[uuid.UUID]int64)

	// History before today comes from the pre-aggregated table.
	if days > 1 {
		aggs, err := s.store.ListDailyAggregates(ctx, database.ListDailyAggregatesParams{
			RestaurantID: restaurantID,
			Since:        pgtype.Date{Time: windowStart, Valid: true},
			Until:        pgtype.Date{Time: today.AddDate(0, 0, -1), Valid: true},
		})
		if err != nil {
			return nil, err
		}
		for _, a := range aggs {
			point, ok := series[a.MetricDate.Time.Format("2006-01-02")]
			if !ok {
				continue
			}
			switch a.MetricName {
			case enum.MetricQRScans:
				point.QRScans += a.Value
			case enum.MetricDishView:
				point.DishViews += a.Value
				if a.DishID.Valid {
					viewsByDish[uuid.UUID(a.DishID.Bytes)] += a.Value
				}
			}
		}
	}

	// Today is always live.
	qrToday, err := s.store.CountEventsBetween(ctx, database.CountEventsBetweenParams{
		RestaurantID: restaurantID,
		EventType:    enum.EventQRScan,
		From:         today,
		To:           tomorrow,
	})
	if err != nil {
		return nil, err
	}
	viewsToday, err := s.store.ListDishEventCountsBetween(ctx, database.CountEventsBetweenParams{
		RestaurantID: restaurantID,
		EventType:    enum.EventDishView,
		From:         today,
		To:           tomorrow,
	})
	if err != nil {
		return nil, err
	}

	todayKey := today.Format("2006-01-02")
	if point, ok := series[todayKey]; ok {
		point.QRScans += qrToday
		for _, v := range viewsToday {
			point.DishViews += v.Count
			viewsByDish[v.DishID] += v.Count
		}
	}

	// Likes are not aggregated; count them raw over the whole window.
	likes, err := s.store.ListDishEventCountsBetween(ctx, database.CountEventsBetweenParams{
		RestaurantID: restaurantID,
		EventType:    enum.EventDishLike,
		From:         windowStart,
		To:           tomorrow,
	})
	if err != nil {
		return nil, err
	}
	likesByDish := make(map[uuid.UUID]int64, len(likes))
	for _, l := range likes {
		likesByDish[l.DishID] = l.Count
	}

	dishes, err := s.store.ListDishesByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(dishes))
	for _, d := range dishes {
		names[d.ID] = d.Name
	}

	result := &StatsResult{
		Series:    make([]StatsPoint, 0, len(series)),
		TopViewed: topDishes(viewsByDish, names),
		TopLiked:  topDishes(likesByDish, names),
	}
	for d := windowStart; d.Before(tomorrow); d = d.AddDate(0, 0, 1) {
		result.Series = append(result.Series, *series[d.Format("2006-01-02")])
	}
	return result, nil
}

// topDishes ranks dish counts in memory. Tenant menus are small, so
// sorting the whole map beats maintaining an index-backed top-K.
func topDishes(counts map[uuid.UUID]int64, names map[uuid.UUID]string) []DishCount {
	ranked := make([]DishCount, 0, len(counts))
	for id, count := range counts {
		ranked = append(ranked, DishCount{DishID: id, Name: names[id], Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > topDishCount {
		ranked = ranked[:topDishCount]
	}
	return ranked
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
