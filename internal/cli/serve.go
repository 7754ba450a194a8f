package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/config"
	storehttp "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/persistence"
	"github.com/fjod/go_cart/storefront/internal/publisher"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "serve",
		Short:         "Run the cart HTTP service",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(rootOpts)
		},
	}
}

func serve(opts *RootOptions) error {
	logger, err := newLogger(opts.Verbose)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := catalog.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()
	if err := repo.RunMigrations(); err != nil {
		return err
	}
	logger.Info("catalog ready", zap.String("path", cfg.CatalogDBPath))

	persister, closePersister, err := openPersister(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closePersister()

	var submitter service.OrderSubmitter = publisher.NewLogSubmitter(logger)
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSubmitter := publisher.NewKafkaSubmitter(publisher.NewKafkaWriter(cfg.KafkaBrokers...), logger)
		defer kafkaSubmitter.Close()
		submitter = kafkaSubmitter
		logger.Info("publishing checkouts to kafka", zap.Strings("brokers", cfg.KafkaBrokers))
	}

	svc := service.NewCartService(persister, repo, submitter, cfg.Pricing, logger)
	if err := svc.RefreshCatalog(ctx); err != nil {
		return err
	}
	go service.NewCatalogRefresher(svc, cfg.CatalogRefreshInterval, cfg.SessionIdleTimeout, logger).Run(ctx)

	handler := storehttp.NewCartHandler(svc, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      storehttp.NewRouter(handler, cfg.RequestTimeout, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront listening", zap.String("port", cfg.HTTPPort), zap.String("cart_backend", cfg.CartBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exited")
	return nil
}

func openPersister(ctx context.Context, cfg *config.Config, logger *zap.Logger) (persistence.Persister, func(), error) {
	switch cfg.CartBackend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis connection failed: %w", err)
		}
		logger.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))
		p := persistence.NewRedisPersister(client, cfg.CartTTL, logger)
		return withBreaker(p, cfg, logger), func() { client.Close() }, nil

	case config.BackendMongo:
		mongoOpts := persistence.DefaultMongoOptions(cfg.MongoURI, cfg.MongoDBName)
		mongoOpts.MaxPoolSize = cfg.MongoMaxPool
		mongoOpts.MinPoolSize = cfg.MongoMinPool
		db, err := persistence.ConnectMongoDB(ctx, mongoOpts)
		if err != nil {
			return nil, nil, err
		}
		p := persistence.NewMongoPersister(db, logger)
		if err := p.CreateIndexes(ctx); err != nil {
			logger.Warn("could not create cart indexes", zap.Error(err))
		}
		logger.Info("connected to MongoDB", zap.String("db", cfg.MongoDBName))
		closeFn := func() {
			if err := db.Client().Disconnect(context.Background()); err != nil {
				logger.Warn("mongo disconnect failed", zap.Error(err))
			}
		}
		return withBreaker(p, cfg, logger), closeFn, nil

	default:
		logger.Warn("carts are kept in memory and lost on restart")
		return persistence.NewMemoryPersister(), func() {}, nil
	}
}

func withBreaker(p persistence.Persister, cfg *config.Config, logger *zap.Logger) persistence.Persister {
	return persistence.NewBreakerPersister(p, cfg.BreakerFailures, cfg.BreakerCooldown, logger)
}

// exitCode maps a command error to a process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	return 1
}
