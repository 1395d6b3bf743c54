package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/flight-booking/internal/cache"
	"github.com/iliyamo/flight-booking/internal/config"
	"github.com/iliyamo/flight-booking/internal/database"
	"github.com/iliyamo/flight-booking/internal/handler"
	"github.com/iliyamo/flight-booking/internal/jobs"
	"github.com/iliyamo/flight-booking/internal/logger"
	"github.com/iliyamo/flight-booking/internal/middleware"
	"github.com/iliyamo/flight-booking/internal/notify"
	"github.com/iliyamo/flight-booking/internal/payment"
	"github.com/iliyamo/flight-booking/internal/queue"
	"github.com/iliyamo/flight-booking/internal/repository"
	"github.com/iliyamo/flight-booking/internal/router"
	"github.com/iliyamo/flight-booking/internal/service"
	"github.com/iliyamo/flight-booking/internal/updates"
	"github.com/iliyamo/flight-booking/internal/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	db, err := database.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	// Redis is optional: without it caching and rate limiting are off.
	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Warn("redis unavailable, cache and rate limit disabled", zap.String("addr", cfg.Redis.Address()))
	} else {
		defer rdb.Close()
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	flights := repository.NewFlightRepo(db)
	fares := repository.NewFareRepo(db)
	bookings := repository.NewBookingRepo(db)
	stats := repository.NewStatsRepo(db)

	var fareCache service.FareCache
	if rdb != nil {
		fareCache = cache.NewFareCache(rdb)
	}
	rzp := payment.NewClient(cfg.Razorpay)
	var verifier service.PaymentVerifier
	if rzp.KeyID() != "" && cfg.Razorpay.KeySecret != "" {
		verifier = rzp
	} else {
		log.Warn("razorpay keys missing, payment signatures will not be verified")
	}
	publisher := queue.NewPublisher(cfg.RabbitMQ, log)

	fareSvc := service.NewFareService(log, fares, flights, fareCache, cfg.Fares.CacheTTL)
	searchSvc := service.NewSearchService(flights, fareSvc)
	bookingSvc := service.NewBookingService(log, users, bookings, nil, publisher, verifier)
	dashboardSvc := service.NewDashboardService(stats)

	e := echo.New()
	e.HideBanner = true
	// request contexts end on shutdown so open event streams return
	e.Server.BaseContext = func(net.Listener) context.Context { return ctx }
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.NewTokenBucket(cfg.Redis.RateLimit, rdb, log))

	bookingHandler := handler.NewBookingHandler(bookingSvc, validation.MustLoad(validation.Booking))
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg.Auth, users, tokens), cfg.Auth.JWTSecret)
	router.RegisterPublic(e, router.Public{
		Flights:  handler.NewFlightHandler(searchSvc),
		Fares:    handler.NewFareHandler(fareSvc),
		Bookings: bookingHandler,
		Payments: handler.NewPaymentHandler(rzp, fareSvc),
		Updates:  handler.NewUpdatesHandler(updates.NewStream(bookings, cfg.Updates.PollInterval, log)),
		Checkout: middleware.NewTokenBucket(cfg.Redis.RateLimit.Checkout(), rdb, log),
	}, middleware.NewRedisCache(cfg.Redis.Cache, rdb))
	router.RegisterCustomer(e, bookingHandler, cfg.Auth.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(flights, fareSvc), handler.NewDashboardHandler(dashboardSvc), cfg.Auth.JWTSecret)

	scheduler, err := jobs.NewScheduler(cfg.Jobs, tokens, log)
	if err != nil {
		return err
	}
	scheduler.Start()

	var wg sync.WaitGroup
	if cfg.RabbitMQ.ConsumerEnabled {
		var notifier queue.Notifier
		if cfg.Notify.SESEnabled {
			mailer, err := notify.NewSESMailer(cfg.Notify)
			if err != nil {
				return err
			}
			notifier = mailer
		}
		consumer := queue.NewConsumer(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, cfg.Notify.LogDir, notifier, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("booking consumer stopped", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("flight-booking listening", zap.String("addr", cfg.Addr()), zap.String("env", cfg.Env))
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	scheduler.Stop(shutdownCtx)
	wg.Wait()
	return nil
}
