package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/riceshop/ricestore-backend/api/controllers"
	"github.com/riceshop/ricestore-backend/api/middleware"
	authsvc "github.com/riceshop/ricestore-backend/internal/auth"
	cartsvc "github.com/riceshop/ricestore-backend/internal/cart"
	catalogsvc "github.com/riceshop/ricestore-backend/internal/catalog"
	ordersvc "github.com/riceshop/ricestore-backend/internal/orders"
	productsvc "github.com/riceshop/ricestore-backend/internal/products"
	usersvc "github.com/riceshop/ricestore-backend/internal/users"
	"github.com/riceshop/ricestore-backend/pkg/auth/session"
	"github.com/riceshop/ricestore-backend/pkg/config"
	"github.com/riceshop/ricestore-backend/pkg/db"
	"github.com/riceshop/ricestore-backend/pkg/enums"
	"github.com/riceshop/ricestore-backend/pkg/logger"
	"github.com/riceshop/ricestore-backend/pkg/metrics"
	"github.com/riceshop/ricestore-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    redis.Pinger
	Sessions session.SessionChecker
	Registry *prometheus.Registry

	Auth     authsvc.Service
	Users    usersvc.Service
	Products productsvc.Service
	Catalog  catalogsvc.Service
	Cart     cartsvc.Service
	Orders   ordersvc.Service
}

// NewRouter assembles the full route tree.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	httpMetrics := metrics.NewHTTPMetrics(registry)

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	authRequired := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	authOptional := middleware.OptionalAuth(cfg.JWT, deps.Sessions, logg)
	adminOnly := middleware.RequireRole(string(enums.UserRoleAdmin), logg)

	r.Route("/healthz", func(r chi.Router) {
		r.Get("/", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
		r.Get("/live", controllers.HealthLive(cfg))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", controllers.Signup(deps.Auth, logg))
		r.Post("/signin", controllers.Signin(deps.Auth, logg))
		r.Post("/refresh", controllers.RefreshToken(deps.Auth, logg))
		r.With(authRequired).Post("/logout", controllers.Logout(deps.Auth, logg))
	})

	r.Route("/api/products", func(r chi.Router) {
		r.With(authOptional).Get("/", controllers.ListProducts(deps.Products, logg))
		r.Get("/{productID}", controllers.GetProduct(deps.Products, logg))

		r.Group(func(r chi.Router) {
			r.Use(authRequired, adminOnly)
			r.Post("/", controllers.CreateProduct(deps.Products, logg))
			r.Put("/{productID}", controllers.UpdateProduct(deps.Products, logg))
			r.Delete("/{productID}", controllers.DeleteProduct(deps.Products, logg))
			r.Post("/{productID}/activate", controllers.ActivateProduct(deps.Products, logg))
		})
	})

	r.Route("/api/origins", func(r chi.Router) {
		r.Get("/", controllers.ListOrigins(deps.Catalog, logg))
		r.Get("/{originID}", controllers.GetOrigin(deps.Catalog, logg))

		r.Group(func(r chi.Router) {
			r.Use(authRequired, adminOnly)
			r.Post("/", controllers.CreateOrigin(deps.Catalog, logg))
			r.Put("/{originID}", controllers.UpdateOrigin(deps.Catalog, logg))
			r.Delete("/{originID}", controllers.DeleteOrigin(deps.Catalog, logg))
			r.Post("/{originID}/activate", controllers.ActivateOrigin(deps.Catalog, logg))
		})
	})

	r.Route("/api/rice-types", func(r chi.Router) {
		r.Get("/", controllers.ListRiceTypes(deps.Catalog, logg))
		r.Get("/{riceTypeID}", controllers.GetRiceType(deps.Catalog, logg))

		r.Group(func(r chi.Router) {
			r.Use(authRequired, adminOnly)
			r.Post("/", controllers.CreateRiceType(deps.Catalog, logg))
			r.Put("/{riceTypeID}", controllers.UpdateRiceType(deps.Catalog, logg))
			r.Delete("/{riceTypeID}", controllers.DeleteRiceType(deps.Catalog, logg))
			r.Post("/{riceTypeID}/activate", controllers.ActivateRiceType(deps.Catalog, logg))
		})
	})

	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authRequired)
		r.Get("/", controllers.GetCart(deps.Cart, logg))
		r.Delete("/", controllers.ClearCart(deps.Cart, logg))
		r.Post("/items", controllers.AddCartItem(deps.Cart, logg))
		r.Put("/items/{itemID}", controllers.UpdateCartItem(deps.Cart, logg))
		r.Delete("/items/{itemID}", controllers.RemoveCartItem(deps.Cart, logg))
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authRequired)
		r.Post("/", controllers.CreateOrder(deps.Orders, logg))
		r.Get("/my", controllers.ListMyOrders(deps.Orders, logg))

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/", controllers.ListOrders(deps.Orders, logg))
			r.Get("/dashboard", controllers.OrdersDashboard(deps.Orders, logg))
			r.Patch("/{orderID}/status", controllers.UpdateOrderStatus(deps.Orders, logg))
		})

		r.Get("/{orderID}", controllers.GetOrder(deps.Orders, logg))
		r.Post("/{orderID}/cancel", controllers.CancelOrder(deps.Orders, logg))
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(authRequired)
		r.Get("/me", controllers.Me(deps.Users, logg))
		r.Get("/{userID}", controllers.GetUser(deps.Users, logg))
		r.Put("/{userID}", controllers.UpdateUser(deps.Users, logg))

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/", controllers.ListUsers(deps.Users, logg))
			r.Patch("/{userID}/role", controllers.UpdateUserRole(deps.Users, logg))
			r.Delete("/{userID}", controllers.DeleteUser(deps.Users, logg))
		})
	})

	return r
}
