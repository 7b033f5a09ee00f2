package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/Abhijadhav03/momentum/api"
	"github.com/Abhijadhav03/momentum/app"
	"github.com/Abhijadhav03/momentum/auth"
	"github.com/Abhijadhav03/momentum/notify"
	"github.com/Abhijadhav03/momentum/storage"
	"github.com/Abhijadhav03/momentum/toast"
)

func main() {
	if envBool("DEBUG") {
		log.SetLevel(log.DebugLevel)
	}
	cfg := loadConfig()
	logger := log.StandardLogger()

	var rc *redis.Client
	if cfg.redisConn != "" {
		rc = redis.NewClient(redisOptions(cfg.redisConn))
		defer rc.Close()
	}

	kv, closeKV := openStore(cfg, rc, logger)
	defer closeKV()

	saver := storage.NewSaver(kv, logger, cfg.saverTimeout)
	toaster := toast.New(cfg.toastTTL)
	defer toaster.Close()

	broker := notify.NewBroker(cfg.subscriberBuff)
	publishers := notify.Multi{broker}
	if rc != nil {
		publishers = append(publishers, notify.NewRedisPublisher(rc, cfg.eventsChannel))
	}
	if cfg.activityQueue != "" {
		qp, err := notify.NewQueuePublisher(cfg.storageConn, cfg.activityQueue)
		if err != nil {
			log.Fatalf("queue: %v", err)
		}
		publishers = append(publishers, qp)
	}

	reg := prometheus.NewRegistry()
	authn := auth.New([]byte(cfg.jwtSecret), cfg.sessionTTL)
	ctrl, err := app.New(app.Config{
		KV:             kv,
		Saver:          saver,
		Auth:           authn,
		Toaster:        toaster,
		Publisher:      publishers,
		PublishTimeout: cfg.publishTimeout,
		Logger:         logger,
		Registerer:     reg,
	})
	if err != nil {
		log.Fatalf("controller: %v", err)
	}

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	if err := ctrl.Load(loadCtx); err != nil {
		log.Fatalf("load state: %v", err)
	}
	cancelLoad()

	opts := api.Options{
		Logger:   logger,
		Auth:     authn,
		Broker:   broker,
		Registry: reg,
	}
	if rc != nil {
		opts.Deduper = api.NewRedisDeduper(rc, cfg.deduperTTL)
		opts.Health = func(ctx context.Context) error { return rc.Ping(ctx).Err() }
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Idempotency-Key"},
	}))
	api.Register(e, ctrl, opts)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		if err := e.Start(cfg.listenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()
	log.WithFields(log.Fields{"addr": cfg.listenAddr, "backend": cfg.backend}).Info("momentum listening")

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server shutdown")
	}
	ctrl.Close()
	saver.Close()
	log.Info("momentum stopped")
}

// openStore selects the persistence backend. The returned func releases it.
func openStore(cfg config, rc *redis.Client, logger *log.Logger) (storage.KV, func()) {
	switch cfg.backend {
	case "badger":
		db, err := storage.OpenBadger(storage.BadgerConfig{Path: cfg.badgerPath, SyncWrites: true, Logger: logger})
		if err != nil {
			log.Fatalf("badger: %v", err)
		}
		return db, func() {
			if err := db.Close(); err != nil {
				log.WithError(err).Warn("badger close")
			}
		}
	case "redis":
		return storage.NewRedis(rc, "momentum:"), func() {}
	case "tables":
		tables, err := storage.NewTables(cfg.storageConn, cfg.snapshotTable, "")
		if err != nil {
			log.Fatalf("tables: %v", err)
		}
		if rc != nil {
			return storage.NewCache(tables, rc, cfg.cacheTTL), func() {}
		}
		return tables, func() {}
	}
	return storage.NewMemory(), func() {}
}
