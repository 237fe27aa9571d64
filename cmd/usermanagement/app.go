package main

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/example/usermanagement/internal/core/ports"
	"github.com/example/usermanagement/internal/core/service"
	"github.com/example/usermanagement/internal/core/token"
	"github.com/example/usermanagement/internal/infrastructure/crypto"
	"github.com/example/usermanagement/internal/infrastructure/db/memory"
	"github.com/example/usermanagement/internal/infrastructure/db/mongo"
	"github.com/example/usermanagement/internal/infrastructure/db/redis"
	"github.com/example/usermanagement/internal/infrastructure/mq"
	"github.com/example/usermanagement/internal/infrastructure/queue"
	"github.com/example/usermanagement/internal/pkg/config"
	"github.com/example/usermanagement/pkg/logger"
)

const serviceName = "usermanagement"

// app holds the wired components shared by every subcommand.
type app struct {
	cfg *config.Config
	log zerolog.Logger

	repo     ports.AccountRepository
	accounts *service.AccountService
	auth     *service.AuthService
	resolver *service.IdentityResolver
	events   *queue.Dispatcher

	mongoClient *mongodriver.Client
	mongoDB     *mongodriver.Database
	redis       *goredis.Client
	rabbit      *mq.Publisher
}

func loadApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})

	return newApp(ctx, cfg, log)
}

// newApp connects the configured backends and builds the services. On
// error everything opened so far is closed again.
func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}
	if err := a.wire(ctx); err != nil {
		a.close(context.Background())
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context) error {
	cfg, log := a.cfg, a.log

	codec, err := token.NewCodec(token.Config{
		Secret:   cfg.Auth.JWTSecret,
		Validity: cfg.TokenTTL(),
	})
	if err != nil {
		return err
	}
	hasher := crypto.NewBcryptHasher(cfg.Auth.BcryptCost)

	publishers := queue.FanOut{}
	switch cfg.StoreKind {
	case config.StoreMemory:
		a.repo = memory.NewAccountRepository()
		log.Warn().Msg("using in-memory account store, data is lost on restart")
	default:
		a.mongoClient, a.mongoDB, err = mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  serviceName,
		})
		if err != nil {
			return err
		}
		repo := mongo.NewAccountRepository(a.mongoDB)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return err
		}
		a.repo = repo
		publishers = append(publishers, mongo.NewAuditRepository(a.mongoDB))
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")
	}

	var limiter ports.LoginLimiter
	a.redis, err = redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	switch {
	case errors.Is(err, redis.ErrNotConfigured):
		log.Warn().Msg("REDIS_ADDR not set, login throttling disabled")
	case err != nil:
		return err
	default:
		limiter = redis.NewLoginLimiter(a.redis, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow)
	}

	if cfg.Rabbit.URL != "" {
		a.rabbit, err = mq.NewPublisher(mq.Config{URL: cfg.Rabbit.URL, Queue: cfg.Rabbit.Queue})
		if err != nil {
			return err
		}
		publishers = append(publishers, a.rabbit)
		log.Info().Str("queue", cfg.Rabbit.Queue).Msg("publishing account events to rabbitmq")
	}
	if len(publishers) == 0 {
		publishers = append(publishers, queue.LogPublisher{Log: log})
	}

	a.events = queue.NewDispatcher(cfg.Events.Workers, publishers, log)
	a.accounts = service.NewAccountService(a.repo, hasher, a.events, cfg.Auth.PhoneRegion, log)
	a.auth = service.NewAuthService(a.repo, a.accounts, hasher, codec, limiter, log)
	a.resolver = service.NewIdentityResolver(codec, a.repo, log)
	return nil
}

func (a *app) seed(ctx context.Context) (int, error) {
	n, err := service.SeedDefaults(ctx, a.repo, a.accounts, service.DefaultAccounts, a.log)
	if err != nil {
		return n, fmt.Errorf("seed default accounts: %w", err)
	}
	return n, nil
}

// close drains the event queue and releases the backends.
func (a *app) close(ctx context.Context) {
	if a.events != nil {
		drainCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		if err := a.events.Close(drainCtx); err != nil {
			a.log.Warn().Err(err).Msg("account events not fully delivered")
		}
		cancel()
	}
	if a.rabbit != nil {
		if err := a.rabbit.Close(); err != nil {
			a.log.Warn().Err(err).Msg("rabbitmq close")
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn().Err(err).Msg("redis close")
		}
	}
	if err := mongo.Disconnect(ctx, a.mongoClient); err != nil {
		a.log.Warn().Err(err).Msg("mongo disconnect")
	}
}
