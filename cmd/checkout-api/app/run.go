package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/configs"
	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/adapter/addressbook"
	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/adapter/cache"
	checkouthttp "github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/adapter/http"
	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/adapter/inventory"
	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/adapter/kafka"
	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/adapter/queue"
	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/adapter/repo"
	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/logging"
	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/reconciler"
	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/usecase"
)

type App struct {
	router *gin.Engine
	server *http.Server
}

func (a *App) Run() error {
	return a.server.ListenAndServe()
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	logger := logging.Init(cfg.App.Name, cfg.App.LogFile, cfg.App.LogLevel)

	// mysql
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, nil, fmt.Errorf("ping mysql: %w", err)
	}

	// redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}

	// rabbitmq
	conn, err := amqp.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	producer, err := queue.NewRabbitProducer(ch, cfg.Rabbit.Exchange)
	if err != nil {
		return nil, nil, fmt.Errorf("setup rabbit producer: %w", err)
	}

	defaults := usecase.ParamDefaults{
		CheckoutTTLSeconds: cfg.Checkout.TTLSeconds,
		MaxItems:           cfg.Checkout.MaxItems,
		MaxQuantityPerItem: cfg.Checkout.MaxQuantityPerItem,
		UseRedis:           cfg.Checkout.UseRedis,
		ExpiryCheckSeconds: cfg.Checkout.ExpiryCheckSeconds,
		OrderIDPrefix:      cfg.Checkout.OrderIDPrefix,
		PaymentCodePrefix:  cfg.Checkout.PaymentCodePrefix,
	}

	// infra
	checkoutRepo := repo.NewMySQLCheckoutRepo(db)
	cartRepo := repo.NewMySQLCartRepo(db)
	params := cache.NewRedisParamCache(rdb, repo.NewMySQLParamRepo(db), cfg.Checkout.ParamCacheTTL)
	checkoutCache := cache.NewRedisCheckoutCache(rdb)
	// lock records must outlive the payment window
	ledger := inventory.NewRedisLedger(rdb, 4*time.Duration(cfg.Checkout.TTLSeconds)*time.Second)
	book := addressbook.NewClient(cfg.AddressBook.BaseURL, cfg.AddressBook.Timeout)

	// use cases
	carts := usecase.NewCartService(cartRepo, params, defaults)
	checkouts := usecase.NewCheckoutService(
		checkoutRepo, carts, ledger, book, params, checkoutCache, producer, defaults)

	appCtx, stop := context.WithCancel(context.Background())

	// payment results from the gateway
	if err := startKafkaListener(appCtx, cfg, checkouts, logger); err != nil {
		stop()
		return nil, nil, err
	}

	// expiry sweep
	rec := reconciler.New(checkouts, params, defaults)
	go func() {
		if err := rec.Run(appCtx); err != nil && appCtx.Err() == nil {
			logger.Error("reconciler exited", "error", err)
		}
	}()

	// http
	router := checkouthttp.NewRouter(
		checkouthttp.NewCartHandler(carts),
		checkouthttp.NewCheckoutHandler(checkouts),
		logging.New("http"),
	)
	server := &http.Server{
		Addr:         cfg.App.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	cleanup := func() {
		stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		_ = ch.Close()
		_ = conn.Close()
		_ = rdb.Close()
		_ = db.Close()
	}

	return &App{router: router, server: server}, cleanup, nil
}

func startKafkaListener(ctx context.Context, cfg configs.Config, checkouts *usecase.CheckoutService, logger *slog.Logger) error {
	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	if err != nil {
		return fmt.Errorf("kafka consumer group: %w", err)
	}

	h := kafka.NewPaymentStatusHandler(checkouts)
	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.PaymentTopic}, h.Handle, logging.New("kafka"))

	go func() {
		if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Error("kafka consumer exited", "error", err)
		}
	}()
	return nil
}
