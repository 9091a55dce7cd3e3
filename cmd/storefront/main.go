package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guntanalaganesh-web/shoe-store/internal/cart"
	"github.com/guntanalaganesh-web/shoe-store/internal/catalog"
	"github.com/guntanalaganesh-web/shoe-store/internal/config"
	"github.com/guntanalaganesh-web/shoe-store/internal/db"
	"github.com/guntanalaganesh-web/shoe-store/internal/dedup"
	"github.com/guntanalaganesh-web/shoe-store/internal/events"
	httpserver "github.com/guntanalaganesh-web/shoe-store/internal/http"
	"github.com/guntanalaganesh-web/shoe-store/internal/notifications"
	"github.com/guntanalaganesh-web/shoe-store/internal/order"
	"github.com/guntanalaganesh-web/shoe-store/internal/redisx"
	"github.com/guntanalaganesh-web/shoe-store/internal/sequence"
	"github.com/guntanalaganesh-web/shoe-store/internal/session"
	"github.com/guntanalaganesh-web/shoe-store/internal/user"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "[storefront] ", log.LstdFlags|log.Lmicroseconds)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
			logger.Fatalf("migrations: %v", err)
		}
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	rdb := redisx.New(cfg.RedisAddr)
	if err := redisx.Ping(ctx, rdb); err != nil {
		logger.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	rabbitConn := events.MustDialRabbit(cfg.RabbitURL)
	defer rabbitConn.Close()

	catalogSvc := catalog.NewService(catalog.NewPostgresRepository(pool))
	cartSvc := cart.NewService(cart.NewRedisStore(rdb, cfg.SessionTTL), catalogSvc, cfg.Pricing)
	userSvc := user.NewService(user.NewPostgresRepository(pool))
	sessions := session.NewRedisStore(rdb, cfg.SessionTTL)

	publisher, err := events.NewPublisher(rabbitConn, sequence.NewPostgresRepository(pool))
	if err != nil {
		logger.Fatalf("rabbitmq publisher: %v", err)
	}
	defer publisher.Close()

	orderRepo := order.NewPostgresRepository(pool, order.LockMode(cfg.StockLocking))
	orderSvc := order.NewService(orderRepo, cartSvc, publisher, cfg.Pricing, logger)

	feed := notifications.NewPostgresRepository(pool)
	checkpoints := dedup.NewPostgresRepository(pool)
	if err := events.StartNotificationsConsumer(ctx, rabbitConn, pool, checkpoints, feed, logger); err != nil {
		logger.Fatalf("start notifications consumer: %v", err)
	}

	router := httpserver.NewRouter(httpserver.Deps{
		Logger:   logger,
		Cfg:      cfg,
		Catalog:  catalogSvc,
		Carts:    cartSvc,
		Orders:   orderSvc,
		Users:    userSvc,
		Sessions: sessions,
		Feed:     feed,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Printf("storefront listening on %s (stock locking: %s)", cfg.HTTPAddr, cfg.StockLocking)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	cancel()
}
