// Command api serves the todo application's account and task endpoints.
//
// @title                       Todo API
// @version                     1.0
// @description                 Accounts, sessions and per-user tasks.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"github.com/taskflow/todo-api/internal/api"
	"github.com/taskflow/todo-api/internal/api/metrics"
	"github.com/taskflow/todo-api/internal/core/ports"
	"github.com/taskflow/todo-api/internal/core/service"
	"github.com/taskflow/todo-api/internal/infrastructure/config"
	"github.com/taskflow/todo-api/internal/infrastructure/db/memory"
	mongostore "github.com/taskflow/todo-api/internal/infrastructure/db/mongo"
	redisstore "github.com/taskflow/todo-api/internal/infrastructure/db/redis"
	"github.com/taskflow/todo-api/internal/infrastructure/http/handlers"
	"github.com/taskflow/todo-api/internal/infrastructure/oauth"
	"github.com/taskflow/todo-api/internal/infrastructure/password"
	"github.com/taskflow/todo-api/internal/infrastructure/queue"
	"github.com/taskflow/todo-api/internal/infrastructure/token"
	"github.com/taskflow/todo-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "todo-api:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Service: "todo-api",
		Env:     cfg.Env,
	})

	// The pool outlives ctx so in-flight requests can finish hashing during
	// shutdown; it is stopped after the server.
	pool := queue.NewPool(cfg.Auth.HashWorkers, log)
	pool.Start(context.Background())
	defer pool.Stop()
	metrics.ObserveHashQueue(pool.Depth)

	checks := map[string]handlers.Check{}

	var (
		users ports.CredentialStore
		tasks ports.TaskRepository
	)
	switch cfg.StorageDriver {
	case config.DriverMemory:
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		users = memory.NewUserStore()
		tasks = memory.NewTaskStore()
	default:
		client, db, err := connectMongo(ctx, cfg.Mongo, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Error().Err(err).Msg("mongo disconnect")
			}
		}()

		userRepo := mongostore.NewUserRepository(db)
		if err := userRepo.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("user indexes: %w", err)
		}
		taskRepo := mongostore.NewTaskRepository(db)
		if err := taskRepo.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("task indexes: %w", err)
		}
		users, tasks = userRepo, taskRepo
		checks["mongodb"] = mongostore.Ping(client)
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
	}

	var authOpts []service.AuthOption
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		throttle := redisstore.NewLoginThrottle(rdb, cfg.Auth.LoginMaxFailures, cfg.Auth.LoginLockout)
		authOpts = append(authOpts, service.WithLoginThrottle(throttle))
		checks["redis"] = redisstore.Ping(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("login throttling enabled")
	} else {
		log.Warn().Msg("REDIS_ADDR not set, login throttling disabled")
	}

	tokens, err := token.NewIssuer(cfg.Auth.JWTSecret)
	if err != nil {
		return err
	}
	verifier, err := oauth.NewGoogleVerifier(ctx, oauth.Config{
		CertsURL: cfg.Auth.GoogleCertsURL,
		Timeout:  cfg.Auth.OAuthTimeout,
	})
	if err != nil {
		return err
	}
	hasher := password.NewHasher(pool, cfg.Auth.BcryptCost)

	authService, err := service.NewAuthService(users, hasher, tokens, verifier, cfg.Auth.GoogleClientID, log, authOpts...)
	if err != nil {
		return err
	}
	taskService := service.NewTaskService(tasks, log)

	e := api.NewRouter(api.Deps{
		Auth:          authService,
		Tasks:         taskService,
		Tokens:        tokens,
		Checks:        checks,
		Log:           log,
		CORSOrigins:   cfg.HTTP.CORSOrigins,
		AuthRateLimit: cfg.HTTP.AuthRateLimit,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("storage", cfg.StorageDriver).
			Int("hash_workers", pool.Workers()).
			Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// connectMongo retries the initial connection with exponential backoff so the
// service tolerates the database starting after it.
func connectMongo(ctx context.Context, cfg config.MongoConfig, log zerolog.Logger) (*mongodriver.Client, *mongodriver.Database, error) {
	var (
		client *mongodriver.Client
		db     *mongodriver.Database
	)
	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		c, d, err := mongostore.Connect(ctx, mongostore.Config{
			URI:         cfg.URI,
			Database:    cfg.Database,
			MaxPoolSize: cfg.MaxPoolSize,
		})
		if err != nil {
			log.Warn().Err(err).Msg("mongodb not reachable, retrying")
			return retry.RetryableError(err)
		}
		client, db = c, d
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return client, db, nil
}
