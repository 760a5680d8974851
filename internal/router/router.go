package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nore-menu/api/internal/config"
	"github.com/nore-menu/api/internal/database"
	"github.com/nore-menu/api/internal/handler"
	mw "github.com/nore-menu/api/internal/middleware"
	"github.com/nore-menu/api/internal/service"
	"github.com/nore-menu/api/internal/ws"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// New creates a Chi router with all application routes wired up.
// Customer-facing menu routes stay public; terminal routes resolve the
// staff member from the X-Staff-Id header; dashboard routes require a
// bearer token scoped to the restaurant in the path.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub, aggregator *service.AggregationService) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(mw.Metrics)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",     // SvelteKit dev server
			"https://app.nore.menu",     // Production dashboard
			"https://stg-app.nore.menu", // Staging dashboard
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Staff-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	r.Route("/auth", authHandler.RegisterRoutes)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/restaurants/{rid}/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Services
	orderService := service.NewOrderService(queries)
	whatsappService := service.NewWhatsappService(
		pool,
		func(db database.DBTX) service.WhatsappStore {
			return database.New(db)
		},
		queries,
	)
	dashboardService := service.NewDashboardService(queries)

	// POS orders: customer status tracking is public, everything else
	// is attributed to a staff member.
	orderHandler := handler.NewOrderHandler(orderService, queries, hub)
	r.Route("/orders", func(r chi.Router) {
		orderHandler.RegisterPublicRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireStaff(queries))
			orderHandler.RegisterStaffRoutes(r)
		})
	})

	// Public menu plus the staff stock toggle.
	dishHandler := handler.NewDishHandler(
		pool,
		func(db database.DBTX) handler.DishStore {
			return database.New(db)
		},
		queries,
	)
	r.Route("/dishes", func(r chi.Router) {
		dishHandler.RegisterPublicRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireStaff(queries))
			dishHandler.RegisterStaffRoutes(r)
		})
	})

	// Analytics: intent logging and menu events come from the public
	// menu, the dashboard reads require a bearer token.
	whatsappHandler := handler.NewWhatsappHandler(whatsappService, queries)
	eventHandler := handler.NewEventHandler(queries)
	aggregateHandler := handler.NewAggregateHandler(aggregator)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	activityHandler := handler.NewActivityHandler(queries)
	r.Route("/analytics", func(r chi.Router) {
		whatsappHandler.RegisterPublicRoutes(r)
		eventHandler.RegisterRoutes(r)
		aggregateHandler.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.JWTSecret))
			r.With(mw.RequireRestaurant).Get("/whatsapp-orders/{restaurantID}", whatsappHandler.List)
			r.With(mw.RequireRestaurant).Get("/activity/{restaurantID}", activityHandler.List)
			r.Route("/dashboard/{restaurantID}", func(r chi.Router) {
				r.Use(mw.RequireRestaurant)
				dashboardHandler.RegisterRoutes(r)
			})
		})
	})

	// Staff management (owner only)
	staffHandler := handler.NewStaffHandler(queries)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))
		r.Use(mw.RequireOwner)
		r.Route("/staff/{restaurantID}", func(r chi.Router) {
			r.Use(mw.RequireRestaurant)
			staffHandler.RegisterRoutes(r)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
