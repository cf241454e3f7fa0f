package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"smartparking-backend/internal/cache"
	"smartparking-backend/internal/config"
	"smartparking-backend/internal/events"
	"smartparking-backend/internal/logger"
	"smartparking-backend/internal/repository"
	"smartparking-backend/internal/repository/memory"
	"smartparking-backend/internal/repository/postgres"
	"smartparking-backend/internal/service"
)

// Infrastructure holds the store and the optional external collaborators
// selected by the configuration.
type Infrastructure struct {
	Tx        repository.Transactor
	Cache     service.SpaceCache
	Publisher service.EventPublisher
	Notifier  service.Notifier

	db       *sql.DB
	redis    *redis.Client
	producer *events.Producer
}

// Open connects the store and wires redis, kafka and sendgrid when they are
// configured. Unconfigured collaborators are left nil and the services fall
// back to no-ops.
func Open(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	infra := &Infrastructure{}

	switch cfg.Store.Type {
	case config.StoreTypeMemory:
		logger.Info("Using in-memory store")
		infra.Tx = memory.NewStore()
	default:
		logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
		db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if cfg.Database.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		}
		if cfg.Database.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		}
		infra.db = db

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			infra.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		logger.Info("Database connection established")

		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				infra.Close()
				return nil, err
			}
			logger.Info("Database schema applied")
		}

		infra.Tx = postgres.NewStore(db, postgres.Options{
			MaxAttempts:  cfg.Booking.MaxTxAttempts,
			LockTimeout:  cfg.Booking.LockTimeout(),
			RetryBackoff: cfg.Booking.RetryBackoff(),
		})
	}

	if cfg.Redis.Addr != "" {
		infra.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		infra.Cache = cache.NewSpaceCache(infra.redis, cfg.Redis.CacheTTL())
		logger.Info("Available-space cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL())
	}

	if len(cfg.Kafka.Brokers) > 0 {
		infra.producer = events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		infra.Publisher = infra.producer
		logger.Info("Event publishing enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	if cfg.SendGrid.APIKey != "" {
		infra.Notifier = service.NewSendGridNotifier(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
		logger.Info("Email notifications enabled", "from", cfg.SendGrid.FromEmail)
	} else {
		infra.Notifier = service.NewNoopNotifier()
		logger.Info("SendGrid API key not set, email notifications disabled")
	}

	return infra, nil
}

// Services builds the application services over the infrastructure
type Services struct {
	Spaces       service.SpaceService
	Users        service.UserService
	Reservations service.ReservationService
	Billing      service.BillingService
}

func (i *Infrastructure) Services(cfg *config.Config) *Services {
	return &Services{
		Spaces:       service.NewSpaceService(i.Tx, i.Cache),
		Users:        service.NewUserService(i.Tx, i.Publisher),
		Reservations: service.NewReservationService(i.Tx, cfg.Billing.Tariff(), i.Cache, i.Publisher, i.Notifier),
		Billing:      service.NewBillingService(i.Tx, i.Publisher),
	}
}

// Health pings the database when one is in use
func (i *Infrastructure) Health() error {
	if i.db == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return i.db.PingContext(ctx)
}

func (i *Infrastructure) Close() error {
	var errs []error
	if i.producer != nil {
		errs = append(errs, i.producer.Close())
	}
	if i.redis != nil {
		errs = append(errs, i.redis.Close())
	}
	if i.db != nil {
		errs = append(errs, i.db.Close())
	}
	return errors.Join(errs...)
}
