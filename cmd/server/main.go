package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/cache"
	appcfg "github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/rabbitmq"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/storage"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
)

type closer struct {
	name  string
	close func() error
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := appcfg.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if cfg.DBAutoMigrate {
		if err := db.AutoMigrate(models.All()...); err != nil {
			log.Fatalf("db migrate: %v", err)
		}
	}

	var closers []closer

	store, mediaDir, err := openStorage(cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	var effects service.Effects
	switch cfg.EventsBackend {
	case "kafka":
		prod, err := mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		effects.Events = prod
		closers = append(closers, closer{"kafka", prod.Close})
	case "amqp":
		pub, err := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatalf("amqp: %v", err)
		}
		effects.Events = pub
		closers = append(closers, closer{"amqp", pub.Close})
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			log.Fatalf("redis ping: %v", err)
		}
		carts := cache.NewCartCache(rdb, cache.DefaultPrefix, cfg.CartCacheTTL)
		effects.Carts = carts
		closers = append(closers, closer{"redis", carts.Close})
	}

	var searcher httpserver.Searcher
	if cfg.Search.URL != "" {
		es, err := search.NewClient(cfg.Search)
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		idx := search.NewIndex(es, cfg.Search.Index)
		effects.Index = idx
		searcher = idx
	}

	r := &repo.GormRepo{DB: db}
	deps := &httpserver.Deps{
		Catalog: &httpserver.CatalogHTTP{
			Svc:    &service.CatalogService{Repo: r, Storage: store, Effects: effects},
			Search: searcher,
		},
		Carts: &httpserver.CartHTTP{Svc: &service.CartService{Repo: r, Effects: effects}},
		Users: &httpserver.UserHTTP{
			Svc:          &service.UserService{Repo: r, JWTSecret: cfg.JWTAccessSecret, AccessTTL: cfg.AccessTokenTTL, Effects: effects},
			SecureCookie: cfg.SecureCookie,
		},
		Sales: &service.SalesService{Repo: r},

		JWTSecret:       cfg.JWTAccessSecret,
		AdminOnlyWrites: cfg.AdminOnlyWrites,
		CSRF:            cfg.CSRFProtect,
		MediaDir:        mediaDir,
		Ready:           func(ctx context.Context) error { return ping(ctx, db) },
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())
	e.Use(echomw.BodyLimit(cfg.BodyLimit()))

	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server_listening", "addr", srv.Addr, "storage", cfg.StorageBackend, "events", cfg.EventsBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_failed", "error", err)
	}
	for _, c := range closers {
		if err := c.close(); err != nil {
			logger.Error("close_failed", "client", c.name, "error", err)
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("server_stopped")
}

// openStorage returns the object store and, for the local backend, the
// directory echo should serve under /media.
func openStorage(cfg appcfg.ServiceConfig) (storage.Storage, string, error) {
	if cfg.StorageBackend == "local" {
		base := cfg.S3.PublicURL
		if base == "" {
			base = "/media"
		}
		store, err := storage.NewLocalStore(cfg.StorageDir, base)
		if err != nil {
			return nil, "", err
		}
		return store, cfg.StorageDir, nil
	}
	store, err := storage.NewS3Store(cfg.S3)
	if err != nil {
		return nil, "", err
	}
	return store, "", nil
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
