package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/granduer/granduer-backend/api/controllers"
	"github.com/granduer/granduer-backend/api/middleware"
	cartsvc "github.com/granduer/granduer-backend/internal/cart"
	checkoutsvc "github.com/granduer/granduer-backend/internal/checkout"
	productssvc "github.com/granduer/granduer-backend/internal/products"
	userssvc "github.com/granduer/granduer-backend/internal/users"
	"github.com/granduer/granduer-backend/pkg/logger"
	"github.com/granduer/granduer-backend/pkg/metrics"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Logger   *logger.Logger
	Metrics  *metrics.HTTP
	IdemStor middleware.IdempotencyStore

	CartService     cartsvc.Service
	CheckoutService checkoutsvc.Service
	ProductService  productssvc.Service
	UserService     userssvc.Service

	DB    controllers.Pinger
	Redis controllers.Pinger
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
	)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health/live", controllers.HealthLive())
	r.Get("/health/ready", controllers.HealthReady(deps.Logger, map[string]controllers.Pinger{
		"db":    deps.DB,
		"redis": deps.Redis,
	}))
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", controllers.AuthRegister(deps.UserService, deps.Logger))
			r.Get("/verify-email", controllers.AuthVerifyEmail(deps.UserService, deps.Logger))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Post("/", controllers.CartAdd(deps.CartService, deps.Logger))
			r.Patch("/", controllers.CartUpdate(deps.CartService, deps.Logger))
			r.Delete("/", controllers.CartRemove(deps.CartService, deps.Logger))
			r.Get("/{userId}", controllers.CartFetch(deps.CartService, deps.Logger))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Use(middleware.Idempotency(deps.IdemStor, deps.Logger))
			r.Post("/initiate", controllers.CheckoutInitiate(deps.CheckoutService, deps.Logger))
			r.Post("/verify", controllers.CheckoutVerify(deps.CheckoutService, deps.Logger))
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.ProductCreate(deps.ProductService, deps.Logger))
			r.Get("/", controllers.ProductList(deps.ProductService, deps.Logger))
			r.Get("/{id}", controllers.ProductFetch(deps.ProductService, deps.Logger))
			r.Patch("/{id}", controllers.ProductUpdate(deps.ProductService, deps.Logger))
			r.Delete("/{id}", controllers.ProductDelete(deps.ProductService, deps.Logger))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", controllers.CategoryCreate(deps.ProductService, deps.Logger))
			r.Get("/", controllers.CategoryList(deps.ProductService, deps.Logger))
			r.Delete("/{id}", controllers.CategoryDelete(deps.ProductService, deps.Logger))
		})
	})

	return r
}
