package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"

	"maintenance-records-backend/config"
	"maintenance-records-backend/internal/api"
	"maintenance-records-backend/internal/db"
	"maintenance-records-backend/internal/logging"
	"maintenance-records-backend/internal/maintenance"
	"maintenance-records-backend/internal/mw"
	"maintenance-records-backend/internal/notification"
	"maintenance-records-backend/internal/storage"
	"maintenance-records-backend/internal/store"
)

const (
	shutdownTimeout  = 10 * time.Second
	limiterEvictTick = time.Minute
	limiterMaxIdle   = 10 * time.Minute
)

func cmdServe(configPath *string) *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := logging.Default()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.With(ctx, logger)

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		return err
	}
	appStore := store.NewGormStore(gormDB)

	attachments, closeAttachments, err := newAttachmentStore(ctx, &cfg.Storage)
	if err != nil {
		return err
	}
	defer closeAttachments()

	webpushOptions := newWebPushOptions(&cfg.Notification.Push)
	senders := notification.NewMultiSender(newSenders(cfg, appStore, webpushOptions)...)
	if senders.Len() == 0 {
		logger.Warn("no notification sender configured, assignments will not be announced")
	}

	notifier := notification.NewNotifier(appStore, senders, cfg.Notification.AppURL)
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()
	pool := notification.NewWorkerPool(cfg.Notification.WorkerPool.Size, cfg.Notification.WorkerPool.QueueSize, notifier)
	pool.Start(workerCtx)

	svc := maintenance.New(appStore, attachments, pool, maintenance.WithObjectPrefix(cfg.Storage.ObjectPrefix))

	limiter := mw.NewIPRateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)
	go evictLimiters(ctx, limiter)

	if !strings.EqualFold(cfg.Logging.Level, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := api.NewHandler(svc, appStore, webpushOptions, api.Options{
		UserHeader:     cfg.Server.UserHeader,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	})
	routerCfg := api.RouterConfig{Limiter: limiter}
	if cfg.Server.CacheEnabled() {
		routerCfg.Cache = mw.NewResponseCache(cfg.Server.CacheTTL(), cfg.Server.UserHeader)
		logger.Info("GET response cache enabled, run a single instance", "ttl", cfg.Server.CacheTTL())
	}
	router := api.NewRouter(handler, routerCfg)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- goerr.Wrap(err, "HTTP server failed")
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping services")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return goerr.Wrap(err, "HTTP server shutdown failed")
	}

	cancelWorkers()
	pool.Wait()

	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("server gracefully stopped")
	return nil
}

func newAttachmentStore(ctx context.Context, cfg *config.StorageConfig) (storage.AttachmentStore, func(), error) {
	switch cfg.Backend {
	case "gcs":
		gcs, err := storage.NewGCSStore(ctx, cfg.Bucket, cfg.PublicBaseURL, cfg.CredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		closer := func() {
			if err := gcs.Close(); err != nil {
				logging.Default().Error("failed to close storage client", logging.ErrAttrs(err)...)
			}
		}
		logging.Default().Info("photo storage on Google Cloud Storage", "bucket", cfg.Bucket)
		return gcs, closer, nil
	case "memory":
		logging.Default().Warn("photo storage is in memory, uploads are lost on restart")
		return storage.NewMemoryStore(cfg.PublicBaseURL, cfg.Bucket), func() {}, nil
	default:
		return nil, nil, goerr.New("unsupported storage backend", goerr.V("backend", cfg.Backend))
	}
}

// newWebPushOptions returns nil when VAPID keys are not configured.
func newWebPushOptions(cfg *config.PushConfig) *webpush.Options {
	if !cfg.Enabled() {
		return nil
	}
	return &webpush.Options{
		VAPIDPublicKey:  cfg.PublicKey,
		VAPIDPrivateKey: cfg.PrivateKey,
		Subscriber:      cfg.Subject,
		TTL:             cfg.TTL,
	}
}

// newSenders builds the configured notification senders.
func newSenders(cfg *config.Config, subs notification.SubscriptionStore, webpushOptions *webpush.Options) []notification.Sender {
	logger := logging.Default()
	var senders []notification.Sender

	if token := cfg.Notification.Slack.BotToken; token != "" {
		slackSender, err := notification.NewSlackSender(token)
		if err != nil {
			logger.Error("failed to configure slack sender", logging.ErrAttrs(err)...)
		} else {
			senders = append(senders, slackSender)
			logger.Info("slack notifications enabled")
		}
	}

	if webpushOptions != nil {
		senders = append(senders, notification.NewPushSender(subs, webpushOptions))
		logger.Info("web push notifications enabled")
	}

	return senders
}

func evictLimiters(ctx context.Context, limiter *mw.IPRateLimiter) {
	ticker := time.NewTicker(limiterEvictTick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := limiter.Evict(limiterMaxIdle); n > 0 {
				logging.Default().Debug("evicted idle rate limiters", "count", n)
			}
		case <-ctx.Done():
			return
		}
	}
}
