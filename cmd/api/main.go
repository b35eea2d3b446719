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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/squadlog/squadlog-backend/api/routes"
	"github.com/squadlog/squadlog-backend/internal/groups"
	"github.com/squadlog/squadlog-backend/internal/memberships"
	"github.com/squadlog/squadlog-backend/internal/notifications"
	"github.com/squadlog/squadlog-backend/internal/visibility"
	"github.com/squadlog/squadlog-backend/pkg/config"
	"github.com/squadlog/squadlog-backend/pkg/db"
	"github.com/squadlog/squadlog-backend/pkg/invitecode"
	"github.com/squadlog/squadlog-backend/pkg/logger"
	"github.com/squadlog/squadlog-backend/pkg/metrics"
	"github.com/squadlog/squadlog-backend/pkg/migrate"
	"github.com/squadlog/squadlog-backend/pkg/pubsub"
	"github.com/squadlog/squadlog-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Console:     cfg.App.LogFormat == "console",
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(context.Background(), logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	err = migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient)
	requireResource(context.Background(), logg, "dev migrations", err)

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	requireResource(context.Background(), logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	groupRepo := groups.NewRepository(dbClient.DB())
	memberRepo := memberships.NewRepository(dbClient.DB())
	notificationRepo := notifications.NewRepository(dbClient.DB())

	sink, closeSink, err := buildSink(context.Background(), cfg, logg, notificationRepo)
	requireResource(context.Background(), logg, "notification sink", err)
	defer closeSink()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	engine, err := memberships.NewEngine(memberships.EngineDeps{
		Tx:          dbClient,
		Groups:      groupRepo,
		Memberships: memberRepo,
		Codes:       invitecode.NewRandomGenerator(nil),
		Sink:        sink,
		Metrics:     metrics.NewMembershipMetrics(registry),
		Logger:      logg,
		Rules:       cfg.Groups,
	})
	requireResource(context.Background(), logg, "membership engine", err)

	visibilityService, err := visibility.NewService(groupRepo, memberRepo)
	requireResource(context.Background(), logg, "visibility service", err)

	notificationsService, err := notifications.NewService(notificationRepo)
	requireResource(context.Background(), logg, "notifications service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":                    cfg.App.Env,
		"addr":                   addr,
		"notification_transport": cfg.Notifications.Transport,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			redisClient,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			engine,
			visibilityService,
			notificationsService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}
}

// buildSink picks the notification transport. The direct sink writes the
// inbox row itself; the pubsub sink leaves that to the notification worker.
func buildSink(ctx context.Context, cfg *config.Config, logg *logger.Logger, repo notifications.Repository) (notifications.Sink, func(), error) {
	if cfg.Notifications.Transport != config.NotificationTransportPubSub {
		sink, err := notifications.NewStoreSink(repo)
		return sink, func() {}, err
	}

	client, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, false, logg)
	if err != nil {
		return nil, nil, err
	}
	publisher, err := pubsub.NewTopicPublisher(client.NotificationPublisher())
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	sink, err := notifications.NewPublisherSink(publisher)
	if err != nil {
		publisher.Stop()
		_ = client.Close()
		return nil, nil, err
	}
	closer := func() {
		publisher.Stop()
		if err := client.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub", err)
		}
	}
	return sink, closer, nil
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
