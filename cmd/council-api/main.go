package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/council-portal-api/api/swagger"
	"github.com/noah-isme/council-portal-api/internal/handler"
	"github.com/noah-isme/council-portal-api/internal/models"
	"github.com/noah-isme/council-portal-api/internal/repository"
	"github.com/noah-isme/council-portal-api/internal/service"
	"github.com/noah-isme/council-portal-api/pkg/cache"
	"github.com/noah-isme/council-portal-api/pkg/config"
	"github.com/noah-isme/council-portal-api/pkg/database"
	"github.com/noah-isme/council-portal-api/pkg/export"
	"github.com/noah-isme/council-portal-api/pkg/jobs"
	"github.com/noah-isme/council-portal-api/pkg/logger"
	"github.com/noah-isme/council-portal-api/pkg/notify"
	"github.com/noah-isme/council-portal-api/pkg/ratelimit"
	"github.com/noah-isme/council-portal-api/pkg/storage"
)

// @title Student Council Appeal Portal API
// @version 1.0.0
// @description Anonymous appeal intake, triage workflow and notifications for the student council.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, stats cache disabled and rate limits kept in process", zap.Error(err))
	} else {
		defer redisClient.Close() //nolint:errcheck
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	appealRepo := repository.NewAppealRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	contentRepo := repository.NewContentRepository(db)
	directionRepo := repository.NewDirectionRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	dispatcher := service.NewNotificationDispatcher(service.NotificationDispatcherParams{
		Settings:  notificationRepo,
		Logs:      notificationRepo,
		Profiles:  userRepo,
		Senders:   buildSenders(ctx, cfg.Notifications, logr),
		Templates: service.NewNotificationTemplates(cfg.Notifications.PublicBaseURL),
		Metrics:   metrics,
		Logger:    logr,
		Config: service.NotificationDispatcherConfig{
			ChannelTimeout:  cfg.Notifications.ChannelTimeout,
			DispatchTimeout: cfg.Notifications.DispatchTimeout,
		},
	})
	queue := jobs.NewQueue("notifications", dispatcher.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.QueueSize,
		MaxRetries: 0,
		Logger:     logr,
	})
	queue.Start(ctx)
	publisher := service.NewQueuePublisher(queue, time.Second)

	authService := service.NewAuthService(roleRepo, logr, service.AuthConfig{
		AccessTokenSecret: cfg.Auth.JWTSecret,
		Issuer:            cfg.Auth.Issuer,
		Audience:          firstOrEmpty(cfg.Auth.Audience),
	})
	appealService := service.NewAppealService(service.AppealServiceParams{
		Appeals:    appealRepo,
		Directions: directionRepo,
		Holders:    roleRepo,
		Publisher:  publisher,
		Validator:  validate,
		Logger:     logr,
	})
	cacheService := service.NewCacheService(cacheRepo, metrics, logr, service.CacheConfig{
		Namespace:  cfg.Redis.KeyPrefix,
		DefaultTTL: cfg.Stats.CacheTTL,
		Enabled:    redisClient != nil,
	})
	lifecycleService := service.NewLifecycleService(service.LifecycleServiceParams{
		Appeals:   appealRepo,
		Grants:    roleRepo,
		Publisher: publisher,
		Cache:     cacheService,
		Metrics:   metrics,
		Logger:    logr,
	})

	fileStorage, err := storage.NewLocalStorage(cfg.Attachments.StorageDir)
	if err != nil {
		logr.Fatal("attachment storage unavailable", zap.Error(err))
	}
	attachmentService := service.NewAttachmentService(
		attachmentRepo,
		appealService,
		appealService,
		fileStorage,
		storage.NewSignedURLSigner(cfg.Attachments.SignedURLSecret, cfg.Attachments.SignedURLTTL),
		logr,
		service.AttachmentServiceConfig{
			MaxFileSize:  cfg.Attachments.MaxFileSizeBytes,
			MaxPerAppeal: cfg.Attachments.MaxPerAppeal,
			AllowedMIMEs: cfg.Attachments.AllowedMIMEs,
			APIPrefix:    cfg.APIPrefix,
		},
	)

	statsService := service.NewStatsService(service.StatsServiceParams{
		Repo:       statsRepo,
		Directions: directionRepo,
		Cache:      cacheService,
		Renderer:   export.NewPDFExporter(),
		Logger:     logr,
		Config:     service.StatsServiceConfig{CacheTTL: cfg.Stats.CacheTTL},
	})

	if cfg.Overdue.Enabled {
		overdue := service.NewOverdueService(appealRepo, publisher, logr, service.OverdueServiceConfig{Interval: cfg.Overdue.Interval})
		go overdue.Start(ctx)
	}

	var limiter ratelimit.Limiter = ratelimit.NewMemoryLimiter()
	if cfg.RateLimit.Backend == config.RateLimitBackendRedis && redisClient != nil {
		limiter = ratelimit.NewRedisLimiter(redisClient, cfg.Redis.KeyPrefix+":ratelimit")
	}

	router := newRouter(routerDeps{
		cfg:           cfg,
		logger:        logr,
		metrics:       metrics,
		auth:          authService,
		limiter:       limiter,
		auditRepo:     userRepo,
		publicAppeals: handler.NewPublicAppealHandler(appealService, attachmentService),
		appeals:       handler.NewAppealHandler(appealService, lifecycleService, attachmentService),
		downloads:     handler.NewAttachmentHandler(attachmentService),
		settings:      handler.NewNotificationSettingsHandler(service.NewNotificationSettingsService(notificationRepo, userRepo, validate, logr)),
		content:       handler.NewContentHandler(service.NewContentService(contentRepo, userRepo, validate, logr)),
		directions:    handler.NewDirectionHandler(service.NewDirectionService(directionRepo, userRepo, validate, logr)),
		roles:         handler.NewRoleHandler(service.NewRoleService(roleRepo, directionRepo, userRepo, validate, logr)),
		stats:         handler.NewStatsHandler(statsService),
		ops:           handler.NewMetricsHandler(metrics, readinessChecks(db.PingContext, redisClient)),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("http shutdown incomplete", zap.Error(err))
	}
	queue.Stop(shutdownCtx)
	logr.Info("shutdown complete")
}

func buildSenders(ctx context.Context, cfg config.NotificationsConfig, logr *zap.Logger) map[models.NotificationChannel]notify.Sender {
	senders := map[models.NotificationChannel]notify.Sender{}

	switch cfg.EmailProvider {
	case config.EmailProviderResend:
		if cfg.ResendAPIKey != "" {
			senders[models.ChannelEmail] = notify.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom)
		}
	default:
		if cfg.SMTPHost != "" {
			senders[models.ChannelEmail] = notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.EmailFrom)
		}
	}
	if _, ok := senders[models.ChannelEmail]; !ok {
		logr.Warn("email channel not configured", zap.String("provider", cfg.EmailProvider))
	}

	if cfg.FirebaseCredentialsPath != "" {
		fcm, err := notify.NewFCMSender(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			logr.Warn("push channel disabled", zap.Error(err))
		} else {
			senders[models.ChannelPush] = fcm
		}
	}

	if cfg.TelegramBotToken != "" {
		senders[models.ChannelTelegram] = notify.NewTelegramSender(cfg.TelegramAPIURL, cfg.TelegramBotToken)
	}

	return senders
}

func readinessChecks(pingDB func(context.Context) error, redisClient *redis.Client) map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{"database": pingDB}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	return checks
}

func firstOrEmpty(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
