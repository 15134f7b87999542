// Package bootstrap builds the object graph shared by the binaries under cmd/.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rentshare-backend/internal/config"
	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/lock"
	"rentshare-backend/internal/logger"
	"rentshare-backend/internal/notify"
	"rentshare-backend/internal/payment"
	"rentshare-backend/internal/repository/postgres"
	"rentshare-backend/internal/service"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	_ "github.com/lib/pq"
)

const lockWait = 5 * time.Second

// App holds every service the binaries need.
type App struct {
	Config *config.Config
	DB     *sql.DB
	Store  *postgres.Store
	Redis  *redis.Client

	Locker       lock.Locker
	Gateway      payment.Gateway
	Availability service.AvailabilityService
	Settlement   service.SettlementService
	Booking      service.BookingService
	Ledger       service.LedgerService
	Notification service.NotificationService

	closers []func() error
}

// OpenDatabase connects to PostgreSQL and verifies the connection.
func OpenDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("Database connection established")
	return db, nil
}

// RedisClientOpt returns the asynq connection settings for the event queue.
func RedisClientOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.QueueDB,
	}
}

// New wires repositories, collaborators and services. Redis is optional: when
// it cannot be reached the lock falls back to in-process and events are
// delivered inline.
func New(ctx context.Context, cfg *config.Config, db *sql.DB) (*App, error) {
	app := &App{
		Config: cfg,
		DB:     db,
		Store:  postgres.NewStore(db),
	}

	app.Redis = connectRedis(ctx, cfg)
	if app.Redis != nil {
		app.closers = append(app.closers, app.Redis.Close)
		app.Locker = lock.NewRedisLocker(app.Redis, time.Duration(cfg.Redis.LockTTLSeconds)*time.Second, lockWait)
	} else {
		app.Locker = lock.NewLocalLocker(lockWait)
	}

	switch cfg.Payment.Type {
	case "stripe":
		logger.Info("Using Stripe payment gateway", "currency", cfg.Payment.Currency)
		app.Gateway = payment.NewStripeGateway(cfg.Payment.StripeSecretKey, cfg.Payment.Currency)
	default:
		logger.Info("Using mock payment gateway")
		app.Gateway = payment.NewMockGateway()
	}

	var push service.PushSender = notify.LogSender{}
	if cfg.Notifications.FirebaseCredentialsFile != "" {
		fcm, err := notify.NewFCMSender(ctx, cfg.Notifications.FirebaseCredentialsFile)
		if err != nil {
			return nil, err
		}
		push = fcm
	}
	emailSvc := service.NewEmailService(cfg.Notifications.SendGridAPIKey, cfg.Notifications.FromEmail, cfg.Notifications.FromName)

	app.Notification = service.NewNotificationService(app.Store.NotificationRepository, app.Store.UserRepository, push, emailSvc)
	app.Ledger = service.NewLedgerService(app.Store.LedgerRepository)
	app.Availability = service.NewAvailabilityService(app.Store.AvailabilityRepository, app.Store.ListingRepository, app.Locker)
	app.Settlement = service.NewSettlementService(
		app.Store.BookingRepository,
		app.Store.PayeeAccountRepository,
		app.Store.LedgerRepository,
		app.Gateway,
		app.Locker,
		cfg.Payment.Currency,
	)

	var dispatcher service.EventDispatcher
	if app.Redis != nil {
		client := asynq.NewClient(RedisClientOpt(cfg))
		app.closers = append(app.closers, client.Close)
		dispatcher = service.NewQueueDispatcher(client)
	} else {
		logger.Warn("Event queue unavailable, delivering notifications inline")
		dispatcher = service.NewInlineDispatcher(app.Notification)
	}

	app.Booking = service.NewBookingService(
		app.Store.BookingRepository,
		app.Store.ListingRepository,
		app.Store.LedgerRepository,
		app.Availability,
		app.Settlement,
		app.Gateway,
		service.NewFlexibleCancellationPolicy(cfg.Booking.FreeCancellationHours),
		dispatcher,
		app.Locker,
		service.BookingSettings{
			Rates:         PricingRates(cfg),
			MaxFutureDays: cfg.Booking.MaxFutureDays,
			Currency:      cfg.Payment.Currency,
		},
	)
	return app, nil
}

// PricingRates converts the configured percentages.
func PricingRates(cfg *config.Config) domain.PricingRates {
	return domain.PricingRates{
		ServiceFeePercent: cfg.Pricing.ServiceFeePercent,
		InsurancePercent:  cfg.Pricing.InsurancePercent,
		CommissionPercent: cfg.Pricing.CommissionPercent,
		MaxCreditPercent:  cfg.Pricing.MaxCreditPercent,
	}
}

func connectRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unavailable, using in-process booking locks", "addr", cfg.Redis.Addr, "error", err)
		client.Close()
		return nil
	}
	logger.Info("Redis connection established", "addr", cfg.Redis.Addr)
	return client
}

// Close releases Redis and queue connections. The database is owned by the
// caller.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("Close failed", "error", err)
		}
	}
}
