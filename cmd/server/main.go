package main

import (
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"estatehub/config"
	"estatehub/internal/db"
	"estatehub/internal/httpserver"
	"estatehub/internal/mq"
	"estatehub/internal/ratelimit"
	"estatehub/internal/redis"
	"estatehub/internal/repository"
	"estatehub/internal/service/auth"
	"estatehub/internal/service/digest"
	"estatehub/internal/service/email"
	"estatehub/internal/service/notify"
	"estatehub/internal/service/security"
	"estatehub/pkg/logger"
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
	projectRepo := repository.NewProjectRepository(pool, log)
	costRepo := repository.NewCostRepository(pool)
	docRepo := repository.NewDocumentRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	notifRepo := repository.NewNotificationRepository(pool)
	prefRepo := repository.NewPreferenceRepository(pool)
	digestRepo := repository.NewDigestQueueRepository(pool)
	emailLogRepo := repository.NewEmailLogRepository(pool)
	secEventRepo := repository.NewSecurityEventRepository(pool)

	limiter := buildLimiter(cfg, rdb, log)
	scheduler := digest.NewScheduler(log)
	provider := email.NewClient(cfg.Email.ProviderURL, cfg.Email.APIKey)
	emailDispatcher := email.NewDispatcher(
		prefRepo, userRepo, digestRepo, emailLogRepo,
		limiter, scheduler, provider,
		cfg.Email.From, cfg.JWT.Secret, log,
	)

	// With a broker the worker owns the email leg; without one the server
	// runs it in-process.
	var dispatcher notify.AsyncDispatcher
	if cfg.MQ.URL != "" {
		pub, err := mq.NewPublisher(cfg.MQ.URL)
		if err != nil {
			log.Fatal("Failed to connect to message queue", zap.Error(err))
		}
		defer pub.Close()
		dispatcher = notify.NewMQDispatcher(pub, log)
	} else {
		log.Warn("No MQ configured, dispatching email in-process")
		dispatcher = notify.NewLocalDispatcher(emailDispatcher, log)
	}

	notifier := notify.NewService(projectRepo, notifRepo, commentRepo, userRepo, dispatcher, log)
	secService := security.NewService(secEventRepo, log)
	authService := auth.NewService(userRepo, cfg.JWT.Secret)

	handlers := httpserver.Handlers{
		Auth:         httpserver.NewAuthHandler(authService, secService),
		Project:      httpserver.NewProjectHandler(projectRepo, costRepo, userRepo, notifier, secService, log),
		Cost:         httpserver.NewCostHandler(costRepo, projectRepo, userRepo, notifier, cfg.Email.LargeThreshold),
		Document:     httpserver.NewDocumentHandler(docRepo, projectRepo, userRepo, notifier),
		Event:        httpserver.NewEventHandler(eventRepo, projectRepo, userRepo, notifier),
		Comment:      httpserver.NewCommentHandler(commentRepo, projectRepo, userRepo, notifier),
		Notification: httpserver.NewNotificationHandler(notifRepo),
		Preference:   httpserver.NewPreferenceHandler(prefRepo, cfg.JWT.Secret, log),
		Security:     httpserver.NewSecurityHandler(secService),
		EmailLog:     httpserver.NewEmailLogHandler(emailLogRepo),
	}

	router := httpserver.NewRouter(handlers, cfg.JWT.Secret)

	log.Info("Server listening", zap.String("port", cfg.Server.Port))
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal("Server stopped", zap.Error(err))
	}
}

func buildLimiter(cfg *config.Config, rdb *goredis.Client, log *zap.Logger) ratelimit.Limiter {
	window := time.Duration(cfg.Email.RateWindowMins) * time.Minute
	if cfg.Email.LimiterBackend == "redis" {
		return ratelimit.NewRedisLimiter(rdb, window, cfg.Email.RateMaxPerUser, log)
	}
	return ratelimit.NewMemoryLimiter(window, cfg.Email.RateMaxPerUser)
}
