package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"lyrnios-backend/internal/cache"
	"lyrnios-backend/internal/config"
	"lyrnios-backend/internal/platform/database"
	"lyrnios-backend/internal/platform/logger"
	rabbitmqClient "lyrnios-backend/internal/platform/rabbitmq"
	redisClient "lyrnios-backend/internal/platform/redis"
	"lyrnios-backend/internal/repository"
	"lyrnios-backend/internal/worker"
)

// App owns the process-wide clients. Redis and RabbitMQ are optional and
// stay nil when their address is not configured.
type App struct {
	Config        *config.Config
	Log           *zap.Logger
	DB            *gorm.DB
	Redis         *redis.Client
	HistoryCache  *cache.HistoryCache
	MQConn        *amqp.Connection
	Publisher     *rabbitmqClient.MessagePublisher
	MessageWorker BackgroundWorker

	StartedAt time.Time
}

// BackgroundWorker is stopped by Close before the clients it depends on.
type BackgroundWorker interface {
	Close()
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	return NewWithConfig(ctx, cfg)
}

func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Log: log, StartedAt: time.Now()}
	if err := app.init(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	log, err := logger.New(logger.Options{
		Level:    cfg.Log.Level,
		FilePath: cfg.Log.FilePath,
		Prod:     cfg.IsProd(),
	})
	if err != nil {
		return nil, fmt.Errorf("build logger failed: %w", err)
	}
	return log.With(zap.String("app", cfg.App.Name)), nil
}

// OpenDatabase connects with the configured driver and migrates the schema.
func OpenDatabase(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	db, err := database.New(ctx, cfg.Database.Driver, cfg.DatabaseDSN())
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config

	db, err := OpenDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	a.DB = db
	a.Log.Info("database ready", zap.String("driver", cfg.Database.Driver))

	if cfg.Redis.Addr != "" {
		redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		a.Redis = redisCli
		a.HistoryCache = cache.NewHistoryCache(
			redisCli,
			time.Duration(cfg.Redis.HistoryTTLSeconds)*time.Second,
			time.Duration(cfg.Redis.HistoryDirtyTTLSeconds)*time.Second,
		)
		a.Log.Info("redis history cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	if cfg.RabbitMQ.URL != "" {
		mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
		if err != nil {
			return err
		}
		a.MQConn = mqConn
		a.Publisher = rabbitmqClient.NewMessagePublisher(mqConn, cfg.RabbitMQ.MessagePersistQueue)

		var history worker.HistoryInvalidator
		if a.HistoryCache != nil {
			history = a.HistoryCache
		}
		messageWorker := worker.NewMessagePersistWorker(
			mqConn,
			repository.NewMessageRepository(db),
			history,
			cfg.RabbitMQ.MessagePersistQueue,
			a.Log.Named("worker"),
		)
		if err := messageWorker.Start(ctx); err != nil {
			return fmt.Errorf("start message worker failed: %w", err)
		}
		a.MessageWorker = messageWorker
	}
	return nil
}

func (a *App) Close() error {
	var closeErr error
	// the worker drains into redis and the db
	if a.MessageWorker != nil {
		a.MessageWorker.Close()
	}
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	if a.Log != nil {
		_ = a.Log.Sync()
	}
	return closeErr
}
