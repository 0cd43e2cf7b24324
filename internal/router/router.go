package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/larder-pos/api/internal/config"
	"github.com/larder-pos/api/internal/database"
	"github.com/larder-pos/api/internal/handler"
	mw "github.com/larder-pos/api/internal/middleware"
	"github.com/larder-pos/api/internal/service"
	"github.com/larder-pos/api/internal/ws"
	"go.uber.org/zap"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication, outlet scoping, and role-based middleware as needed.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(mw.RequestLogger(zap.L()))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// Floor plan push (auth via ?token=)
	r.Get("/ws/outlets/{oid}/floor", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	purchasingService := service.NewPurchasingService(pool, func(db database.DBTX) service.PurchasingStore {
		return database.New(db)
	}, cfg.InvoiceGSTRate)
	invoiceService := service.NewInvoiceService(pool, func(db database.DBTX) service.InvoiceStore {
		return database.New(db)
	})
	countService := service.NewCountService(pool, func(db database.DBTX) service.CountStore {
		return database.New(db)
	})
	recipeService := service.NewRecipeService(pool, func(db database.DBTX) service.RecipeStore {
		return database.New(db)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		r.Route("/outlets/{oid}", func(r chi.Router) {
			r.Use(mw.RequireOutlet)

			// Any role
			dashboardHandler := handler.NewDashboardHandler(queries)
			r.Route("/dashboard", dashboardHandler.RegisterRoutes)

			tableHandler := handler.NewTableHandler(queries, hub)
			r.Route("/tables", tableHandler.RegisterRoutes)

			userHandler := handler.NewUserHandler(queries)
			r.Route("/users", userHandler.RegisterRoutes)

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireArea(mw.AreaPurchasing))

				vendorHandler := handler.NewVendorHandler(queries)
				r.Route("/vendors", vendorHandler.RegisterRoutes)

				poHandler := handler.NewPurchaseOrderHandler(purchasingService, queries)
				r.Route("/purchase-orders", poHandler.RegisterRoutes)

				invoiceHandler := handler.NewInvoiceHandler(invoiceService, queries)
				r.Route("/invoices", invoiceHandler.RegisterRoutes)

				billHandler := handler.NewBillHandler(queries, pool, func(db database.DBTX) handler.BillStore {
					return database.New(db)
				}, cfg.BillGSTRate)
				r.Route("/bills", billHandler.RegisterRoutes)
			})

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireArea(mw.AreaKitchen))

				inventoryHandler := handler.NewInventoryHandler(queries)
				r.Route("/inventory", inventoryHandler.RegisterRoutes)

				countHandler := handler.NewCountHandler(countService, queries)
				r.Route("/counts", countHandler.RegisterRoutes)

				wasteHandler := handler.NewWasteHandler(queries)
				r.Route("/waste", wasteHandler.RegisterRoutes)
			})

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireArea(mw.AreaRecipes))
				recipeHandler := handler.NewRecipeHandler(recipeService, queries)
				r.Route("/recipes", recipeHandler.RegisterRoutes)
			})
		})
	})

	zap.L().Info("router initialized")
	return r
}
