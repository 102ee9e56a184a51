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

	"github.com/sirupsen/logrus"

	"github.com/Overland-East-Bay/club-registry/internal/adapters/fanout"
	"github.com/Overland-East-Bay/club-registry/internal/adapters/httpapi"
	kafkasink "github.com/Overland-East-Bay/club-registry/internal/adapters/kafka/eventsink"
	"github.com/Overland-East-Bay/club-registry/internal/adapters/logsink"
	memclubrepo "github.com/Overland-East-Bay/club-registry/internal/adapters/memory/clubrepo"
	memidempotency "github.com/Overland-East-Bay/club-registry/internal/adapters/memory/idempotency"
	"github.com/Overland-East-Bay/club-registry/internal/adapters/postgres"
	pgclubrepo "github.com/Overland-East-Bay/club-registry/internal/adapters/postgres/clubrepo"
	pgidempotency "github.com/Overland-East-Bay/club-registry/internal/adapters/postgres/idempotency"
	redisadapter "github.com/Overland-East-Bay/club-registry/internal/adapters/redis"
	redisclubrepo "github.com/Overland-East-Bay/club-registry/internal/adapters/redis/clubrepo"
	sqliteclubrepo "github.com/Overland-East-Bay/club-registry/internal/adapters/sqlite/clubrepo"
	"github.com/Overland-East-Bay/club-registry/internal/app/clubs"
	"github.com/Overland-East-Bay/club-registry/internal/domain"
	"github.com/Overland-East-Bay/club-registry/internal/platform/auth/jwtverifier"
	platformclock "github.com/Overland-East-Bay/club-registry/internal/platform/clock"
	"github.com/Overland-East-Bay/club-registry/internal/platform/config"
	"github.com/Overland-East-Bay/club-registry/internal/platform/genesis"
	"github.com/Overland-East-Bay/club-registry/internal/platform/logging"
	clubrepoport "github.com/Overland-East-Bay/club-registry/internal/ports/out/clubrepo"
	"github.com/Overland-East-Bay/club-registry/internal/ports/out/eventsink"
	idempotencyport "github.com/Overland-East-Bay/club-registry/internal/ports/out/idempotency"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid logging config: %v\n", err)
		os.Exit(1)
	}
	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("api exited")
	}
}

func run(cfg config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Auth configuration:
	// - Production: require JWT_* env vars and enforce bearer auth
	// - Local dev: set AUTH_MODE=dev to bypass JWT verification and use X-Debug-Subject
	var authMW func(http.Handler) http.Handler
	authIssuer := ""
	switch cfg.AuthMode {
	case config.AuthModeDev:
		log.Warn("AUTH_MODE=dev: X-Debug-Subject is trusted, do not expose this instance")
		authMW = httpapi.NewDevAuthMiddleware(cfg.DevSubject)
		authIssuer = cfg.DevIssuer
	default:
		jwtCfg, err := config.LoadJWTConfigFromEnv()
		if err != nil {
			return fmt.Errorf("invalid auth config: %w", err)
		}
		authMW = httpapi.NewAuthMiddleware(jwtverifier.New(jwtCfg))
		authIssuer = jwtCfg.Issuer
	}

	repo, idemStore, closeStores, err := openStores(ctx, cfg, authIssuer)
	if err != nil {
		return err
	}
	defer closeStores()

	sink, closeSinks, err := openSinks(cfg, log)
	if err != nil {
		return err
	}
	defer closeSinks()

	svc := clubs.NewService(repo, sink, platformclock.NewSystemClock())

	g, err := genesis.Load(cfg.BootstrapFile)
	if err != nil {
		return err
	}
	applied, err := svc.Bootstrap(ctx, g)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	log.WithFields(logrus.Fields{
		"applied": applied,
		"clubs":   len(g.Clubs),
		"file":    cfg.BootstrapFile,
	}).Info("bootstrap")

	api := httpapi.NewServer(svc, idemStore, domain.SubjectID(cfg.RootSubject), log)
	handler := httpapi.NewRouterWithOptions(api, httpapi.RouterOptions{
		AuthMiddleware: authMW,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"port":    cfg.Port,
			"storage": cfg.StorageBackend,
			"auth":    cfg.AuthMode,
		}).Info("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStores(ctx context.Context, cfg config.Config, issuer string) (clubrepoport.Repository, idempotencyport.Store, func(), error) {
	noop := func() {}

	switch cfg.StorageBackend {
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			return nil, nil, noop, fmt.Errorf("invalid postgres config: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, noop, err
		}
		return pgclubrepo.NewRepo(pool), pgidempotency.NewStore(pool, issuer), pool.Close, nil

	case config.StorageSQLite:
		repo, err := sqliteclubrepo.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, noop, err
		}
		return repo, memidempotency.NewStore(), func() { _ = repo.Close() }, nil

	case config.StorageRedis:
		client, err := redisadapter.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, noop, err
		}
		return redisclubrepo.NewRepo(client, cfg.RedisNamespace), memidempotency.NewStore(), func() { _ = client.Close() }, nil

	default:
		return memclubrepo.NewRepo(), memidempotency.NewStore(), noop, nil
	}
}

// openSinks always logs events and additionally publishes them to Kafka when
// KAFKA_BROKERS is set.
func openSinks(cfg config.Config, log *logrus.Logger) (eventsink.Sink, func(), error) {
	sinks := []eventsink.Sink{logsink.New(log)}
	closeFn := func() {}

	if len(cfg.KafkaBrokers) > 0 {
		pub, err := kafkasink.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, closeFn, err
		}
		sinks = append(sinks, pub)
		closeFn = func() {
			if err := pub.Close(); err != nil {
				log.WithError(err).Warn("close kafka publisher")
			}
		}
	}
	return fanout.New(sinks...), closeFn, nil
}
