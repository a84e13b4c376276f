package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/Ovii2/EventSync/internal/api"
	"github.com/Ovii2/EventSync/internal/core/ports"
	"github.com/Ovii2/EventSync/internal/core/service"
	"github.com/Ovii2/EventSync/internal/infrastructure/classifier"
	"github.com/Ovii2/EventSync/internal/infrastructure/db/memory"
	"github.com/Ovii2/EventSync/internal/infrastructure/db/mongo"
	"github.com/Ovii2/EventSync/internal/infrastructure/db/redis"
	"github.com/Ovii2/EventSync/internal/infrastructure/http/handlers"
	"github.com/Ovii2/EventSync/internal/infrastructure/notify"
	"github.com/Ovii2/EventSync/internal/infrastructure/queue"
	"github.com/Ovii2/EventSync/internal/pkg/config"
	"github.com/Ovii2/EventSync/internal/pkg/token"
	"github.com/Ovii2/EventSync/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

type repositories struct {
	users    ports.AuthRepository
	sessions ports.SessionRepository
	events   ports.EventRepository
	feedback ports.FeedbackRepository
}

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "eventsync",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(parent context.Context, cfg *config.Config, log zerolog.Logger) error {
	// Background workers stop on ctx and are joined before the stores close.
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	var background sync.WaitGroup

	clock := clockwork.NewRealClock()
	checks := map[string]handlers.Checker{}

	repos, closeStore, err := openStore(ctx, cfg, checks)
	if err != nil {
		return err
	}
	defer closeStore()

	hub := notify.NewHub(log)
	var (
		notifier ports.Notifier = hub
		marker   ports.DeliveryMarker
	)
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()

		notifier = redis.NewBroadcaster(rdb)
		marker = redis.NewDeliveryMarker(rdb, 0)
		checks["redis"] = redis.Pinger{Client: rdb}
		background.Add(1)
		go func() {
			defer background.Done()
			runRelay(ctx, rdb, hub, log)
		}()
		defer func() {
			cancel()
			background.Wait()
		}()
	}

	codec := token.NewCodec(cfg.Session.JWTSecret, cfg.Session.TTL, clock)
	sessions := service.NewSessionService(repos.sessions, codec, clock, log)
	auth := service.NewAuthService(repos.users, sessions, log)
	if cfg.Admin.Enabled() {
		if err := auth.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			return err
		}
	}

	cls := classifier.NewClient(classifier.Config{
		URL:     cfg.Classifier.URL,
		APIKey:  cfg.Classifier.APIKey,
		Timeout: cfg.Classifier.Timeout,
	}, log)

	dispatcher := queue.NewDispatcher(cfg.Classifier.Workers, log)
	feedback := service.NewFeedbackService(repos.events, repos.feedback, cls, notifier, dispatcher, clock, log)
	dispatcher.Start(ctx, feedback)

	sweeper := service.NewSessionSweeper(repos.sessions, codec, notifier, marker, clock, cfg.Session.SweepInterval, log)
	sweepDone := sweeper.Start(ctx)

	e := api.NewRouter(api.Deps{
		Auth:     auth,
		Sessions: sessions,
		Events:   service.NewEventService(repos.events, repos.feedback, log),
		Feedback: feedback,
		Push:     notify.NewGateway(hub, sessions, cfg.WebSocket.AllowedOrigins, log),
		Checks:   checks,
		Log:      log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("storage", cfg.Storage).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	cancel()
	dispatcher.Wait()
	<-sweepDone
	background.Wait()
	return serveErr
}

func openStore(ctx context.Context, cfg *config.Config, checks map[string]handlers.Checker) (repositories, func(), error) {
	if cfg.Storage == config.StorageMemory {
		return repositories{
			users:    memory.NewAuthRepository(),
			sessions: memory.NewSessionRepository(),
			events:   memory.NewEventRepository(),
			feedback: memory.NewFeedbackRepository(),
		}, func() {}, nil
	}

	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return repositories{}, nil, err
	}
	checks["mongodb"] = mongo.Pinger{Client: client}

	closeFn := func() { disconnect(client) }
	return repositories{
		users:    mongo.NewAuthRepository(db),
		sessions: mongo.NewSessionRepository(db),
		events:   mongo.NewEventRepository(db),
		feedback: mongo.NewFeedbackRepository(db),
	}, closeFn, nil
}

func disconnect(client *mongodriver.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = client.Disconnect(ctx)
}

// runRelay keeps the Redis subscription alive until ctx is cancelled.
func runRelay(ctx context.Context, rdb *goredis.Client, hub *notify.Hub, log zerolog.Logger) {
	for {
		err := redis.Relay(ctx, rdb, hub, nil, log)
		if ctx.Err() != nil {
			return
		}
		log.Warn().Err(err).Msg("notification relay interrupted, resubscribing")
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}
