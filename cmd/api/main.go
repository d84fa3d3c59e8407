package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/granduer/granduer-backend/api/routes"
	"github.com/granduer/granduer-backend/internal/cart"
	"github.com/granduer/granduer-backend/internal/checkout"
	"github.com/granduer/granduer-backend/internal/notifications"
	"github.com/granduer/granduer-backend/internal/products"
	"github.com/granduer/granduer-backend/internal/users"
	"github.com/granduer/granduer-backend/pkg/config"
	"github.com/granduer/granduer-backend/pkg/db"
	"github.com/granduer/granduer-backend/pkg/flutterwave"
	"github.com/granduer/granduer-backend/pkg/logger"
	"github.com/granduer/granduer-backend/pkg/metrics"
	"github.com/granduer/granduer-backend/pkg/migrate"
	"github.com/granduer/granduer-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gateway, err := flutterwave.NewClient(cfg.Flutterwave, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment gateway client", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	productsRepo := products.NewRepository(dbClient.DB())
	cartRepo := cart.NewRepository(dbClient.DB())
	receiptsRepo := checkout.NewRepository(dbClient.DB())

	mailer := notifications.NewMailer(cfg.SMTP, logg)

	cartService := cart.NewService(cartRepo, productsRepo, logg)
	checkoutService := checkout.NewService(receiptsRepo, usersRepo, cartRepo, gateway, dbClient, cfg.Checkout, logg)
	productService := products.NewService(productsRepo)
	userService := users.NewService(usersRepo, mailer, cfg.JWT, cfg.Password, cfg.SMTP, logg)

	httpMetrics := metrics.NewHTTP()

	router := routes.NewRouter(routes.Deps{
		Logger:          logg,
		Metrics:         httpMetrics,
		IdemStor:        redisClient,
		CartService:     cartService,
		CheckoutService: checkoutService,
		ProductService:  productService,
		UserService:     userService,
		DB:              dbClient,
		Redis:           redisClient,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
