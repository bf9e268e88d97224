package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"estatehub/config"
	"estatehub/internal/db"
	"estatehub/internal/mq"
	"estatehub/internal/mqhandler"
	"estatehub/internal/ratelimit"
	"estatehub/internal/redis"
	"estatehub/internal/repository"
	"estatehub/internal/service/digest"
	"estatehub/internal/service/email"
	"estatehub/internal/util"
	"estatehub/pkg/logger"
)

const (
	digestSweepInterval = time.Minute
	digestDedupTTL      = 24 * time.Hour
)

func main() {
	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Sync()

	pool, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	rdb := redis.NewClient(cfg.Redis)

	userRepo := repository.NewUserRepository(pool)
	prefRepo := repository.NewPreferenceRepository(pool)
	notifRepo := repository.NewNotificationRepository(pool)
	digestRepo := repository.NewDigestQueueRepository(pool)
	emailLogRepo := repository.NewEmailLogRepository(pool)

	limiter := buildLimiter(cfg, rdb, log)
	scheduler := digest.NewScheduler(log)
	provider := email.NewClient(cfg.Email.ProviderURL, cfg.Email.APIKey)

	dispatcher := email.NewDispatcher(
		prefRepo, userRepo, digestRepo, emailLogRepo,
		limiter, scheduler, provider,
		cfg.Email.From, cfg.JWT.Secret, log,
	)

	consumer, err := mq.NewConsumer(cfg.MQ.URL, "email_dispatch", mq.KeyNotificationCreated, log)
	if err != nil {
		log.Fatal("Failed to initialize consumer", zap.Error(err))
	}
	defer consumer.Close()
	consumer.SetHandler(mqhandler.NotificationCreated(dispatcher, log))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := digest.NewSender(
		digestRepo, notifRepo, userRepo, emailLogRepo,
		util.NewDeduper(rdb, digestDedupTTL),
		provider, cfg.Email.From, cfg.JWT.Secret, log,
	)
	go sender.Start(ctx, digestSweepInterval)

	go func() {
		if err := consumer.StartConsuming(); err != nil {
			log.Fatal("Consumer stopped", zap.Error(err))
		}
	}()

	log.Info("Worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Worker shutting down")
	cancel()
}

func buildLimiter(cfg *config.Config, rdb *goredis.Client, log *zap.Logger) ratelimit.Limiter {
	window := time.Duration(cfg.Email.RateWindowMins) * time.Minute
	if cfg.Email.LimiterBackend == "redis" {
		return ratelimit.NewRedisLimiter(rdb, window, cfg.Email.RateMaxPerUser, log)
	}
	return ratelimit.NewMemoryLimiter(window, cfg.Email.RateMaxPerUser)
}
