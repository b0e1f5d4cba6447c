package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/canvistapp/canvist/internal/catalog"
	"github.com/canvistapp/canvist/internal/config"
	"github.com/canvistapp/canvist/internal/logging"
	"github.com/canvistapp/canvist/internal/services"
	"github.com/canvistapp/canvist/internal/session"
	"github.com/canvistapp/canvist/internal/storage"
)

// Handlers provides the HTTP request handlers for the storefront API.
type Handlers struct {
	config         *config.Config
	db             *pgxpool.Pool
	orderService   *services.OrderService
	uploadService  *services.UploadService
	authService    *services.AuthService
	adminService   *services.AdminService
	storage        storage.Provider
	sessionManager *session.Manager
	themes         *catalog.Themes
	logger         *slog.Logger
}

type Dependencies struct {
	Config         *config.Config
	DB             *pgxpool.Pool
	OrderService   *services.OrderService
	UploadService  *services.UploadService
	AuthService    *services.AuthService
	AdminService   *services.AdminService
	Storage        storage.Provider
	SessionManager *session.Manager
	Themes         *catalog.Themes
	Logger         *slog.Logger
}

func New(deps Dependencies) (*Handlers, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if deps.Config == nil {
		return nil, fmt.Errorf("handlers dependencies: config is required")
	}
	if deps.DB == nil {
		return nil, fmt.Errorf("handlers dependencies: db is required")
	}
	if deps.OrderService == nil {
		return nil, fmt.Errorf("handlers dependencies: orderService is required")
	}
	if deps.UploadService == nil {
		return nil, fmt.Errorf("handlers dependencies: uploadService is required")
	}
	if deps.AuthService == nil {
		return nil, fmt.Errorf("handlers dependencies: authService is required")
	}
	if deps.AdminService == nil {
		return nil, fmt.Errorf("handlers dependencies: adminService is required")
	}
	if deps.Storage == nil {
		return nil, fmt.Errorf("handlers dependencies: storage is required")
	}
	if deps.SessionManager == nil {
		return nil, fmt.Errorf("handlers dependencies: sessionManager is required")
	}
	if deps.Themes == nil {
		return nil, fmt.Errorf("handlers dependencies: themes is required")
	}

	return &Handlers{
		config:         deps.Config,
		db:             deps.DB,
		orderService:   deps.OrderService,
		uploadService:  deps.UploadService,
		authService:    deps.AuthService,
		adminService:   deps.AdminService,
		storage:        deps.Storage,
		sessionManager: deps.SessionManager,
		themes:         deps.Themes,
		logger:         logger.With("component", "handlers"),
	}, nil
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.db.Ping(ctx); err != nil {
		h.loggerFromContext(ctx).Error("database health check failed", "error", err)
		http.Error(w, "Database unhealthy", http.StatusServiceUnavailable)
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]string{"status": "healthy"})
}

// SessionMiddleware adds session data to the request context.
func (h *Handlers) SessionMiddleware(next http.Handler) http.Handler {
	return h.sessionManager.Middleware(next)
}

func (h *Handlers) RequireUser(next http.Handler) http.Handler {
	return h.sessionManager.RequireUser(next)
}

func (h *Handlers) RequireAdmin(next http.Handler) http.Handler {
	return h.sessionManager.RequireAdmin(next)
}

func (h *Handlers) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, h.logger)
}

func (h *Handlers) viewer(r *http.Request) services.Viewer {
	return services.ViewerFromSession(session.FromContext(r.Context()))
}
