package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront-core/internal/adapter/cache"
	"github.com/nikolayk812/storefront-core/internal/adapter/kafka"
	"github.com/nikolayk812/storefront-core/internal/adapter/queue"
	"github.com/nikolayk812/storefront-core/internal/config"
	"github.com/nikolayk812/storefront-core/internal/logging"
	"github.com/nikolayk812/storefront-core/internal/notification"
	"github.com/nikolayk812/storefront-core/internal/observability"
	"github.com/nikolayk812/storefront-core/internal/port"
	"github.com/nikolayk812/storefront-core/internal/repository"
	"github.com/nikolayk812/storefront-core/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const ServiceVersion = "0.1.0"

// Container owns the long-lived clients and the services built on top of them.
// Close releases everything in reverse order of construction.
type Container struct {
	Logger   *zap.Logger
	Registry *prometheus.Registry

	Pool  *pgxpool.Pool
	Redis *redis.Client

	Catalog         port.ProductCatalog
	Carts           *service.CartService
	Checkout        *service.CheckoutService
	SalesReport     *service.SalesReportJob
	NotificationLog *cache.NotificationLog
	ReportLog       *cache.ReportLog

	dispatcher  *notification.Dispatcher
	kafkaWriter *kafkago.Writer
	amqpConn    *amqp.Connection
	amqpChannel *amqp.Channel

	shutdownTracing func(context.Context) error
}

// New connects to every configured backend and wires the services. Redis, RabbitMQ and
// Kafka are optional: an empty address leaves the matching notifier or publisher out.
func New(ctx context.Context, cfg config.Config) (_ *Container, err error) {
	logger, err := logging.New(logging.Config{
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
		Service: cfg.App.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("logging.New: %w", err)
	}

	c := &Container{
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}

	defer func() {
		if err != nil {
			err = errors.Join(err, c.Close(context.WithoutCancel(ctx)))
		}
	}()

	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c.shutdownTracing, err = observability.SetupTracing(ctx, observability.Config{
		Endpoint:       cfg.Otel.Endpoint,
		Insecure:       cfg.Otel.Insecure,
		ServiceName:    cfg.App.Name,
		ServiceVersion: ServiceVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("observability.SetupTracing: %w", err)
	}

	if err := c.connectPostgres(ctx, cfg); err != nil {
		return nil, err
	}
	if err := c.connectRedis(ctx, cfg); err != nil {
		return nil, err
	}

	cur, err := cfg.StoreCurrency()
	if err != nil {
		return nil, err
	}
	location, err := cfg.ReportLocation()
	if err != nil {
		return nil, err
	}

	metrics := service.NewMetrics(c.Registry)

	products := repository.NewProduct(c.Pool)
	orders := repository.NewOrder(c.Pool)
	c.Catalog = products
	c.Carts = service.NewCartService(repository.NewCart(c.Pool), products, cur, logger)

	dispatcher, err := c.buildDispatcher(ctx, cfg)
	if err != nil {
		return nil, err
	}

	c.Checkout = service.NewCheckoutService(
		repository.NewTransactor(c.Pool),
		orders,
		dispatcher,
		service.NewStockAlertPolicy(cfg.Store.LowStockThreshold),
		cur,
		logger,
		metrics,
	)

	c.SalesReport = service.NewSalesReportJob(
		orders,
		c.reportPublishers(cfg),
		cfg.Reports.Enabled,
		location,
		logger,
		metrics,
	)

	return c, nil
}

func (c *Container) connectPostgres(ctx context.Context, cfg config.Config) error {
	poolCfg, err := pgxpool.ParseConfig(cfg.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}
	if cfg.Postgres.MaxConns > 0 {
		poolCfg.MaxConns = cfg.Postgres.MaxConns
	}

	c.Pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}

	if err := c.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("pool.Ping: %w", err)
	}

	return nil
}

func (c *Container) connectRedis(ctx context.Context, cfg config.Config) error {
	if cfg.Redis.Addr == "" {
		return nil
	}

	c.Redis = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := c.Redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis.Ping: %w", err)
	}

	c.NotificationLog = cache.NewNotificationLog(c.Redis, cfg.Notifications.MaxCached, cfg.Notifications.MaxAge)
	c.ReportLog = cache.NewReportLog(c.Redis, cfg.Reports.MaxCached, cfg.Reports.MaxAge)

	return nil
}

func (c *Container) buildDispatcher(ctx context.Context, cfg config.Config) (port.SignalDispatcher, error) {
	if !cfg.Notifications.Enabled {
		c.Logger.Warn("stock notifications are disabled")
		return notification.NewDiscard(c.Logger), nil
	}

	var notifiers []port.StockNotifier

	if c.NotificationLog != nil {
		notifiers = append(notifiers, c.NotificationLog)
	}

	if cfg.Rabbit.URL != "" {
		var err error

		c.amqpConn, err = amqp.Dial(cfg.Rabbit.URL)
		if err != nil {
			return nil, fmt.Errorf("amqp.Dial: %w", err)
		}

		c.amqpChannel, err = c.amqpConn.Channel()
		if err != nil {
			return nil, fmt.Errorf("conn.Channel: %w", err)
		}

		notifier, err := queue.NewStockNotifier(c.amqpChannel, cfg.Rabbit.Exchange)
		if err != nil {
			return nil, fmt.Errorf("queue.NewStockNotifier: %w", err)
		}
		notifiers = append(notifiers, notifier)
	}

	dispatcherCfg := notification.DefaultConfig()
	dispatcherCfg.Workers = cfg.Notifications.Workers
	dispatcherCfg.BufferSize = cfg.Notifications.BufferSize
	if cfg.Notifications.MaxRetries > 0 {
		dispatcherCfg.MaxRetries = cfg.Notifications.MaxRetries
	}

	c.dispatcher = notification.NewDispatcher(dispatcherCfg, c.Logger, c.Registry, notifiers...)

	// workers outlive the construction context
	if err := c.dispatcher.Start(context.WithoutCancel(ctx)); err != nil {
		return nil, fmt.Errorf("dispatcher.Start: %w", err)
	}

	return c.dispatcher, nil
}

func (c *Container) reportPublishers(cfg config.Config) []port.ReportPublisher {
	var publishers []port.ReportPublisher

	if c.ReportLog != nil {
		publishers = append(publishers, c.ReportLog)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		c.kafkaWriter = kafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.ReportTopic)
		publishers = append(publishers, kafka.NewReportPublisher(c.kafkaWriter))
	}

	return publishers
}

// Close drains pending notifications first so they still reach Redis and RabbitMQ.
func (c *Container) Close(ctx context.Context) error {
	var errs []error

	if c.dispatcher != nil {
		if err := c.dispatcher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("dispatcher.Close: %w", err))
		}
	}

	if c.kafkaWriter != nil {
		if err := c.kafkaWriter.Close(); err != nil {
			errs = append(errs, fmt.Errorf("kafkaWriter.Close: %w", err))
		}
	}

	if c.amqpChannel != nil {
		if err := c.amqpChannel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, fmt.Errorf("amqpChannel.Close: %w", err))
		}
	}
	if c.amqpConn != nil {
		if err := c.amqpConn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, fmt.Errorf("amqpConn.Close: %w", err))
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis.Close: %w", err))
		}
	}

	if c.Pool != nil {
		c.Pool.Close()
	}

	if c.shutdownTracing != nil {
		if err := c.shutdownTracing(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdownTracing: %w", err))
		}
	}

	// stdout sync fails on some terminals
	_ = c.Logger.Sync()

	return errors.Join(errs...)
}
