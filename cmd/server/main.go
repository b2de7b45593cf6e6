package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"avelements/internal/address"
	"avelements/internal/enrichment"
	"avelements/internal/events"
	kafkastore "avelements/internal/events/store/kafka"
	eventmemory "avelements/internal/events/store/memory"
	pgstore "avelements/internal/events/store/postgres"
	"avelements/internal/gateway"
	"avelements/internal/platform/config"
	"avelements/internal/platform/httpserver"
	"avelements/internal/platform/logger"
	"avelements/internal/platform/metrics"
	"avelements/internal/platform/redis"
	"avelements/internal/session"
	httptransport "avelements/internal/transport/http"
	"avelements/internal/verification/client"
	"avelements/internal/verification/controller"
	vmetrics "avelements/internal/verification/metrics"
	"avelements/pkg/platform/circuit"
)

var version = "dev"

const shutdownTimeout = 10 * time.Second

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

type infra struct {
	registry  *metrics.Registry
	store     session.Store
	publisher *events.Publisher
	events    httptransport.EventLister
	health    map[string]httptransport.HealthChecker
	closers   []func()
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	inf, err := buildInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		for i := len(inf.closers) - 1; i >= 0; i-- {
			inf.closers[i]()
		}
	}()

	verifyMetrics := vmetrics.NewWithRegisterer(inf.registry)
	breaker := circuit.New("verification")
	newClient := func(apiKey string, endpoints client.Endpoints, messages address.Messages) *client.Client {
		if apiKey == "" {
			apiKey = cfg.Verification.APIKey
		}
		return client.New(endpoints,
			client.WithAPIKey(apiKey),
			client.WithOrigin(cfg.Origin),
			client.WithTimeout(cfg.VerificationTimeout),
			client.WithInternationalVerification(cfg.VerifyIntl),
			client.WithBreaker(breaker),
			client.WithLogger(log),
			client.WithMetrics(verifyMetrics),
			client.WithMessages(messages),
		)
	}
	verifiers := func(sess *session.Session) controller.Verifier {
		return newClient(sess.APIKey, sess.Endpoints, sess.Config.Messages)
	}

	opts := []gateway.Option{
		gateway.WithLogger(log),
		gateway.WithMetrics(verifyMetrics),
		gateway.WithAutocompleter(newClient("", client.DefaultEndpoints(cfg.Env).Merge(cfg.Verification.Endpoints), nil)),
	}
	opts = append(opts, gateway.WithSink(events.Fanout{events.NewLogSink(log, slog.LevelDebug), inf.publisher}))

	enricher := enrichment.New(cfg.Verification,
		enrichment.WithLogger(log),
		enrichment.WithInitializer(gateway.NewPageInitializer(inf.store)),
	)
	svc := gateway.New(inf.store, enricher, verifiers, opts...)

	routerCfg := httptransport.RouterConfig{
		Forms:      httptransport.NewFormHandler(svc, log),
		AdminToken: cfg.AdminToken,
		Gatherer:   inf.registry,
		Logger:     log,
		Health:     inf.health,
	}
	if inf.events != nil {
		routerCfg.Admin = httptransport.NewAdminHandler(inf.events, log)
	}
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(routerCfg))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting avelements gateway", "addr", cfg.Addr, "env", cfg.Env, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		if err := inf.publisher.Close(shutdownCtx); err != nil {
			log.Warn("event publisher did not drain", "error", err, "dropped", inf.publisher.Dropped())
		}
		return nil
	})
	return g.Wait()
}

// buildInfra connects the optional backends. Each one that is not configured
// falls back to an in-process implementation.
func buildInfra(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	inf := &infra{
		registry: metrics.New(version),
		health:   make(map[string]httptransport.HealthChecker),
	}

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if rdb != nil {
		inf.store = session.NewRedis(rdb.Client)
		inf.health["redis"] = pingCheck(rdb.Health)
		inf.closers = append(inf.closers, func() { _ = rdb.Close() })
		log.Info("session store: redis")
	} else {
		inf.store = session.New()
		log.Info("session store: memory")
	}

	var store events.Store
	switch {
	case len(cfg.Kafka.Brokers) > 0:
		ks, err := kafkastore.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return nil, err
		}
		if err := ks.EnsureTopic(ctx, 3, 1); err != nil {
			log.Warn("could not ensure event topic", "topic", cfg.Kafka.Topic, "error", err)
		}
		inf.health["kafka"] = pingCheck(ks.Ping)
		inf.closers = append(inf.closers, ks.Close)
		store = ks
		log.Info("event store: kafka", "topic", cfg.Kafka.Topic)
	case cfg.Database.URL != "":
		db, err := sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		inf.closers = append(inf.closers, func() { _ = db.Close() })
		ps := pgstore.New(db)
		if err := ps.Migrate(ctx); err != nil {
			return nil, err
		}
		inf.health["postgres"] = pingCheck(db.PingContext)
		inf.events = ps
		store = ps
		log.Info("event store: postgres")
	default:
		ms := eventmemory.New()
		inf.events = ms
		store = ms
		log.Info("event store: memory")
	}
	inf.publisher = events.NewPublisher(store,
		events.WithPublisherLogger(log),
		events.WithPublisherMetrics(events.NewMetrics(inf.registry)),
		events.WithStoreBreaker(circuit.New("event-store")),
	)
	return inf, nil
}

func pingCheck(ping func(context.Context) error) httptransport.HealthChecker {
	return func(r *http.Request) error {
		return ping(r.Context())
	}
}
