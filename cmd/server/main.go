package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mkamenev/storefront/internal/config"
	"github.com/mkamenev/storefront/internal/handlers"
	"github.com/mkamenev/storefront/internal/logging"
	"github.com/mkamenev/storefront/internal/mykafka"
	"github.com/mkamenev/storefront/internal/payment"
	"github.com/mkamenev/storefront/internal/repo"
	"github.com/mkamenev/storefront/internal/service"
	"github.com/mkamenev/storefront/internal/session"
	httpserver "github.com/mkamenev/storefront/internal/transport/http"
)

func main() {
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("db init: %v", err)
	}

	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(configuration.JWT_SECRET, "JWT_SECRET")
	config.MustNonEmpty(configuration.STRIPE_SECRET_KEY, "STRIPE_SECRET_KEY")
	config.MustNonEmpty(configuration.STRIPE_WEBHOOK_SECRET, "STRIPE_WEBHOOK_SECRET")

	logger := logging.New(config.EnvDefault("LOG_LEVEL", "info"))

	jwtSecret := []byte(configuration.JWT_SECRET)
	sessionStore := &session.Store{Secret: []byte(configuration.SESSION_SECRET)}

	prod, err := mykafka.NewProducer(config.CSV(configuration.KAFKA_ADDRESS))
	if err != nil {
		logger.Warn("kafka disabled", "error", err)
		prod = nil
	}

	gateway := payment.NewStripeGateway(
		configuration.STRIPE_SECRET_KEY,
		configuration.STRIPE_WEBHOOK_SECRET,
	)

	gormRepo := &repo.GormRepo{DB: db}
	cartSvc := &service.CartService{Repo: gormRepo}
	orderSvc := &service.OrderService{
		Repo:     gormRepo,
		Email:    service.NewEmailService(),
		Producer: prod,
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), logging.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:             db,
		ProductHandler: &handlers.ProductHTTP{Repo: gormRepo},
		CartHandler:    &handlers.CartHTTP{Svc: cartSvc, Producer: prod, JWTSecret: jwtSecret},
		CheckoutHandler: &handlers.CheckoutHTTP{
			Cart:      cartSvc,
			Orders:    orderSvc,
			Gateway:   gateway,
			Session:   sessionStore,
			JWTSecret: jwtSecret,
			BaseURL:   configuration.BASE_URL,
		},
		OrderHandler:   &handlers.OrderHTTP{Svc: orderSvc, JWTSecret: jwtSecret},
		WebhookHandler: &handlers.WebhookHTTP{Gateway: gateway, Orders: orderSvc},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
