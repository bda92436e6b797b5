package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	filmhandler "github.com/narwhalmedia/wrongopinions/internal/film/handler"
	filmrepo "github.com/narwhalmedia/wrongopinions/internal/film/repository"
	filmservice "github.com/narwhalmedia/wrongopinions/internal/film/service"
	"github.com/narwhalmedia/wrongopinions/internal/infrastructure/adapters/external/catalog"
	"github.com/narwhalmedia/wrongopinions/internal/infrastructure/adapters/external/musicbrainz"
	"github.com/narwhalmedia/wrongopinions/internal/infrastructure/adapters/external/tmdb"
	brokers "github.com/narwhalmedia/wrongopinions/internal/infrastructure/events"
	"github.com/narwhalmedia/wrongopinions/internal/infrastructure/events/kafka"
	"github.com/narwhalmedia/wrongopinions/internal/infrastructure/events/nats"
	"github.com/narwhalmedia/wrongopinions/internal/infrastructure/grpc/healthcheck"
	schema "github.com/narwhalmedia/wrongopinions/internal/infrastructure/persistence/gorm"
	musichandler "github.com/narwhalmedia/wrongopinions/internal/music/handler"
	musicrepo "github.com/narwhalmedia/wrongopinions/internal/music/repository"
	musicservice "github.com/narwhalmedia/wrongopinions/internal/music/service"
	"github.com/narwhalmedia/wrongopinions/internal/server"
	userhandler "github.com/narwhalmedia/wrongopinions/internal/user/handler"
	userrepo "github.com/narwhalmedia/wrongopinions/internal/user/repository"
	userservice "github.com/narwhalmedia/wrongopinions/internal/user/service"
	weekhandler "github.com/narwhalmedia/wrongopinions/internal/week/handler"
	weekrepo "github.com/narwhalmedia/wrongopinions/internal/week/repository"
	weekservice "github.com/narwhalmedia/wrongopinions/internal/week/service"
	"github.com/narwhalmedia/wrongopinions/pkg/auth"
	"github.com/narwhalmedia/wrongopinions/pkg/config"
	"github.com/narwhalmedia/wrongopinions/pkg/database"
	"github.com/narwhalmedia/wrongopinions/pkg/events"
	"github.com/narwhalmedia/wrongopinions/pkg/interfaces"
	"github.com/narwhalmedia/wrongopinions/pkg/logger"
)

const healthProbeInterval = 15 * time.Second

func main() {
	root := &cobra.Command{
		Use:           "wrongopinions",
		Short:         "Weekly film and album selections API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
	root.AddCommand(&cobra.Command{
		Use:   "secret",
		Short: "Print a random signing key suitable for auth.secret_key",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), auth.GenerateSecret())
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.LoggerConfig) (*logger.ZapLogger, error) {
	return logger.NewFromConfig(&logger.Config{
		Level:       cfg.Level,
		Development: cfg.Development,
		Encoding:    cfg.Format,
		OutputPaths: []string{cfg.OutputPath},
		ErrorPaths:  []string{"stderr"},
		InitialFields: map[string]interface{}{
			"service": config.DefaultServiceName,
		},
	})
}

func serve(cfg *config.Config) error {
	log, err := newLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	version := config.GetServiceVersion(&cfg.Service)
	log.Info("Service starting",
		interfaces.String("version", version),
		interfaces.String("environment", cfg.Service.Environment))
	for _, warning := range cfg.Warnings() {
		log.Warn(warning)
	}

	// Database
	log.Info("Connecting to database...", interfaces.String("driver", cfg.Database.Driver))
	db, closeDB, err := database.Open(cfg.Database, log.Zap(), cfg.Service.Debug)
	if err != nil {
		return err
	}
	defer closeDB()

	log.Info("Running database migrations...")
	if err := database.NewMigrator(db, schema.Migrations(), log).Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Events
	eventBus := events.NewLocalEventBus(log)
	broker, closeBroker, err := newBroker(context.Background(), cfg.Events, log.Zap())
	if err != nil {
		return err
	}
	// Pending async publishes drain before the broker goes away.
	defer func() {
		_ = eventBus.Stop()
		if broker != nil {
			if err := broker.Close(); err != nil {
				log.Error("failed to close event broker", interfaces.Error(err))
			}
		}
		closeBroker()
	}()
	if broker != nil {
		if err := brokers.NewForwarder(broker, log).Attach(eventBus); err != nil {
			return fmt.Errorf("failed to attach event forwarder: %w", err)
		}
		log.Info("Forwarding events", interfaces.String("broker", cfg.Events.Broker))
	}

	// Upstream catalogs share one connection pool
	httpClient := catalog.NewHTTPClient(max(cfg.TMDB.Timeout, cfg.MusicBrainz.Timeout))
	tmdbClient := tmdb.NewClient(cfg.TMDB, httpClient, log)
	mbClient, err := musicbrainz.NewClient(cfg.MusicBrainz, httpClient, log)
	if err != nil {
		return fmt.Errorf("failed to create MusicBrainz client: %w", err)
	}

	jwtManager := auth.NewJWTManager(cfg.Auth.SecretKey, cfg.Service.Name, cfg.Auth.AccessTokenExpire)

	// Services
	uow := database.NewUnitOfWork(db)
	users := userrepo.NewGormRepository(db)
	userService := userservice.NewUserService(users, uow, eventBus, log)
	authService := userservice.NewAuthService(users, jwtManager, eventBus, log)
	filmService := filmservice.NewFilmService(tmdbClient, filmrepo.NewGormRepository(db), uow, eventBus, log)
	musicService := musicservice.NewMusicService(mbClient, musicrepo.NewGormRepository(db), uow, eventBus, log)
	weekManager := weekservice.NewWeekManager(filmService, musicService, weekrepo.NewGormRepository(db), uow, eventBus, log)

	router := server.NewRouter(server.Options{
		Version:    version,
		Debug:      cfg.Service.Debug,
		DB:         db,
		JWT:        jwtManager,
		Principals: userService,
		Logger:     log,
	}, server.Handlers{
		Users: userhandler.NewHTTPHandler(userService, authService),
		Films: filmhandler.NewHTTPHandler(filmService, tmdbClient),
		Music: musichandler.NewHTTPHandler(musicService, mbClient),
		Weeks: weekhandler.NewHTTPHandler(weekManager, tmdbClient),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// gRPC health
	checker := healthcheck.NewChecker(db, cfg.Service.Name, log)
	grpcServer := healthcheck.NewServer(checker, log)
	grpcAddr := config.GetGRPCListenAddress(&cfg.Service)
	listener, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", grpcAddr, err)
	}
	go checker.Run(ctx, healthProbeInterval)
	go func() {
		log.Info("gRPC health server starting", interfaces.String("address", grpcAddr))
		if err := grpcServer.Serve(listener); err != nil {
			log.Error("gRPC health server failed", interfaces.Error(err))
		}
	}()

	// HTTP
	httpServer := &http.Server{
		Addr:              config.GetListenAddress(&cfg.Service),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", interfaces.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down...")
	case err := <-serveErr:
		if err != nil {
			log.Error("HTTP server failed", interfaces.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Service.ShutdownTimeout)
	defer cancel()

	checker.Shutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", interfaces.Error(err))
	}
	grpcServer.GracefulStop()

	log.Info("Service stopped")
	return nil
}

// newBroker connects the configured broker. A nil broker means events stay
// in process.
func newBroker(ctx context.Context, cfg config.EventsConfig, log *zap.Logger) (brokers.Broker, func(), error) {
	switch cfg.Broker {
	case config.BrokerNATS:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		client, cleanup, err := nats.NewClient(connectCtx, cfg, config.DefaultServiceName, log)
		if err != nil {
			return nil, nil, err
		}
		return nats.NewPublisher(client.JetStream(), log), cleanup, nil
	case config.BrokerKafka:
		publisher, err := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Kafka: %w", err)
		}
		return publisher, func() {}, nil
	default:
		return nil, func() {}, nil
	}
}
