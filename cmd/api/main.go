package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/decoder-44/vehicle-service-super-app/internal/auth"
	"github.com/decoder-44/vehicle-service-super-app/internal/catalog"
	"github.com/decoder-44/vehicle-service-super-app/internal/config"
	"github.com/decoder-44/vehicle-service-super-app/internal/events"
	"github.com/decoder-44/vehicle-service-super-app/internal/httpx"
	kafkax "github.com/decoder-44/vehicle-service-super-app/internal/kafka"
	"github.com/decoder-44/vehicle-service-super-app/internal/orders"
	"github.com/decoder-44/vehicle-service-super-app/internal/postgres"
	"github.com/decoder-44/vehicle-service-super-app/internal/redisx"
	"github.com/decoder-44/vehicle-service-super-app/internal/rental"
	"github.com/decoder-44/vehicle-service-super-app/internal/rsa"
	"github.com/decoder-44/vehicle-service-super-app/internal/workshop"
)

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "api").Logger()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("db migrate")
	}

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	orderProd := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderCreated, 1024)
	orderProd.Start(ctx)
	statusProd := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderStatus, 1024)
	statusProd.Start(ctx)
	bookingProd := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicBookingStatus, 1024)
	bookingProd.Start(ctx)

	tokens := auth.NewTokens(cfg.JWTSecret)
	bookingPub := &httpx.BookingPublisher{Producer: bookingProd, Redis: rdb, Service: cfg.ServiceName}

	router := httpx.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(httpx.Authenticate(tokens))

		(&httpx.CatalogHandler{Repo: &catalog.Repo{DB: db}}).Register(r)
		(&httpx.OrdersHandler{
			Repo:           &orders.Repo{DB: db},
			Producer:       orderProd,
			StatusProducer: statusProd,
			Redis:          rdb,
			Service:        cfg.ServiceName,
		}).Register(r)
		(&httpx.WorkshopHandler{Repo: &workshop.Repo{DB: db}, Publisher: bookingPub}).Register(r)
		(&httpx.RentalHandler{Repo: &rental.Repo{DB: db}, Publisher: bookingPub}).Register(r)
		(&httpx.RSAHandler{Repo: &rsa.Repo{DB: db}, Publisher: bookingPub}).Register(r)
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info().Msg("shutting down")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)

	orderProd.Close()
	statusProd.Close()
	bookingProd.Close()
	cancel()
	orderProd.WaitClosed()
	statusProd.WaitClosed()
	bookingProd.WaitClosed()
}
