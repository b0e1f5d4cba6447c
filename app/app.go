// Package app builds the application object graph from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lmittmann/tint"

	"github.com/canvistapp/canvist/internal/cache"
	"github.com/canvistapp/canvist/internal/catalog"
	"github.com/canvistapp/canvist/internal/config"
	"github.com/canvistapp/canvist/internal/crypto"
	"github.com/canvistapp/canvist/internal/db"
	"github.com/canvistapp/canvist/internal/email"
	"github.com/canvistapp/canvist/internal/handlers"
	"github.com/canvistapp/canvist/internal/logging"
	"github.com/canvistapp/canvist/internal/ratelimit"
	"github.com/canvistapp/canvist/internal/services"
	"github.com/canvistapp/canvist/internal/session"
	"github.com/canvistapp/canvist/internal/storage"
)

const (
	loginMaxAttempts = 5
	loginWindow      = 15 * time.Minute
	loginBlock       = 15 * time.Minute
)

type App struct {
	Config         *config.Config
	Logger         *slog.Logger
	DB             *pgxpool.Pool
	CacheProvider  cache.Provider
	SessionManager *session.Manager
	Handlers       *handlers.Handlers
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	database, err := db.Connect(startupCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(startupCtx, database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cacheProvider, err := cache.NewProvider(cache.Config{
		Provider:              cfg.CacheProvider,
		RedisConnectionString: cfg.RedisConnectionString,
	})
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize cache provider: %w", err)
	}

	sessionStore, err := session.NewStore(startupCtx, session.Config{
		Provider:              cfg.SessionStoreProvider,
		RedisConnectionString: cfg.RedisConnectionString,
	})
	if err != nil {
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}
	sessionManager := session.NewManager(sessionStore, cfg.SecureCookies())

	encryptor, err := crypto.NewEncryptor(cfg.EncryptionKey)
	if err != nil {
		closeSessionManager(logger, sessionManager)
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize encryptor: %w", err)
	}

	storageProvider, err := storage.NewProvider(storage.Config{
		Provider:           cfg.StorageProvider,
		UploadsRoot:        cfg.UploadsRoot,
		SupabaseURL:        cfg.SupabaseURL,
		SupabaseServiceKey: cfg.SupabaseServiceKey,
		SupabaseBucket:     cfg.SupabaseBucket,
	})
	if err != nil {
		closeSessionManager(logger, sessionManager)
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize storage provider: %w", err)
	}

	themes, err := catalog.LoadDefaultThemes()
	if err != nil {
		closeSessionManager(logger, sessionManager)
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to load theme catalog: %w", err)
	}

	orderStore, err := db.NewOrderStore(database, encryptor)
	if err != nil {
		closeSessionManager(logger, sessionManager)
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize order store: %w", err)
	}
	uploadStore := db.NewUploadStore(database)
	eventStore := db.NewEventStore(database)
	userStore := db.NewUserStore(database)

	var emailProvider email.Provider = email.NoopProvider{}
	if cfg.ResendAPIKey != "" {
		emailProvider = email.NewResendProvider(cfg.ResendAPIKey, cfg.EmailFrom)
	}
	emailSender := services.NewNotificationSender(emailProvider, cfg.AdminEmail, cfg.BaseURL)

	orderService := services.NewOrderService(orderStore, themes, emailSender, logger.With("component", "order_service"))
	uploadService := services.NewUploadService(orderStore, uploadStore, storageProvider, emailSender, logger.With("component", "upload_service"))
	authService := services.NewAuthService(
		userStore,
		ratelimit.New(cacheProvider, "login", loginMaxAttempts, loginWindow, loginBlock),
		ratelimit.New(cacheProvider, "admin", loginMaxAttempts, loginWindow, loginBlock),
		emailProvider,
		services.AuthConfig{
			AdminPasswordHash: cfg.AdminPasswordHash,
			TokenSecret:       cfg.AuthTokenSecret,
			BaseURL:           cfg.BaseURL,
		},
		logger.With("component", "auth_service"),
	)
	adminService := services.NewAdminService(orderStore, uploadStore, eventStore, logger.With("component", "admin_service"))

	h, err := handlers.New(handlers.Dependencies{
		Config:         cfg,
		DB:             database,
		OrderService:   orderService,
		UploadService:  uploadService,
		AuthService:    authService,
		AdminService:   adminService,
		Storage:        storageProvider,
		SessionManager: sessionManager,
		Themes:         themes,
		Logger:         logger,
	})
	if err != nil {
		closeSessionManager(logger, sessionManager)
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	return &App{
		Config:         cfg,
		Logger:         logger,
		DB:             database,
		CacheProvider:  cacheProvider,
		SessionManager: sessionManager,
		Handlers:       h,
	}, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.SessionManager != nil {
		closeSessionManager(a.Logger, a.SessionManager)
	}
	if a.CacheProvider != nil {
		closeCacheProvider(a.Logger, a.CacheProvider)
	}
	if a.DB != nil {
		a.DB.Close()
	}
	if a.Config != nil && a.Config.SentryDSN != "" {
		sentry.Flush(2 * time.Second)
	}
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var local slog.Handler
	switch strings.ToLower(strings.TrimSpace(cfg.LogFormat)) {
	case "json":
		local = slog.NewJSONHandler(os.Stdout, opts)
	default:
		local = tint.NewHandler(os.Stdout, &tint.Options{Level: cfg.LogLevel})
	}

	if cfg.SentryDSN == "" {
		return slog.New(local), nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		EnableTracing:    true,
		TracesSampleRate: 0.1,
		EnableLogs:       true,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize sentry: %w", err)
	}

	sentryHandler := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelInfo},
	}.NewSentryHandler(context.Background())

	return slog.New(logging.MultiHandler(local, sentryHandler)), nil
}

func closeSessionManager(logger *slog.Logger, manager *session.Manager) {
	if manager == nil {
		return
	}
	if err := manager.Close(); err != nil && logger != nil {
		logger.Warn("failed to close session manager", "error", err)
	}
}

func closeCacheProvider(logger *slog.Logger, provider cache.Provider) {
	if provider == nil {
		return
	}
	if err := provider.Close(); err != nil && logger != nil {
		logger.Warn("failed to close cache provider", "error", err)
	}
}
