// Package server wires the HTTP router and owns the http.Server lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/canvistapp/canvist/internal/config"
	"github.com/canvistapp/canvist/internal/handlers"
)

type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	handlers   *handlers.Handlers
	httpServer *http.Server
}

func New(cfg *config.Config, logger *slog.Logger, h *handlers.Handlers) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if h == nil {
		return nil, fmt.Errorf("handlers are required")
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		handlers: h,
	}

	router := s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

func (s *Server) Run() error {
	s.logger.Info("server starting", "port", s.cfg.Port)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Close(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return nil
	}

	s.logger.Info("server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) buildRouter() *mux.Router {
	h := s.handlers

	r := mux.NewRouter()
	r.Use(h.RequestLogger)
	r.Use(h.SecurityHeaders)
	r.HandleFunc("/health", h.Health).Methods("GET").Name("health")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not found"}`))
	})

	// Stored files, local provider only. Signed URLs from object-store
	// providers bypass this route entirely.
	r.PathPrefix("/files/").HandlerFunc(h.ServeFile).Methods("GET").Name("files")

	// Public catalog.
	r.HandleFunc("/api/themes", h.Themes).Methods("GET").Name("catalog.themes")
	r.HandleFunc("/api/catalog", h.Catalog).Methods("GET").Name("catalog.options")
	r.HandleFunc("/api/shipping/{country}", h.ShippingRate).Methods("GET").Name("catalog.shipping")

	// Auth.
	auth := r.PathPrefix("/api/auth").Subrouter()
	auth.Use(h.SessionMiddleware)
	auth.HandleFunc("/signup", h.SignUp).Methods("POST").Name("auth.signup")
	auth.HandleFunc("/login", h.Login).Methods("POST").Name("auth.login")
	auth.HandleFunc("/logout", h.Logout).Methods("POST").Name("auth.logout")
	auth.HandleFunc("/me", h.Me).Methods("GET").Name("auth.me")
	auth.HandleFunc("/forgot-password", h.ForgotPassword).Methods("POST").Name("auth.forgot_password")
	auth.HandleFunc("/reset-password", h.ResetPassword).Methods("POST").Name("auth.reset_password")
	auth.HandleFunc("/admin/login", h.AdminLogin).Methods("POST").Name("auth.admin.login")

	// Customer order flow. Guest orders are reachable by capability URL, so
	// these routes attach session data without requiring it.
	orders := r.PathPrefix("/api/orders").Subrouter()
	orders.Use(h.SessionMiddleware)
	orders.HandleFunc("", h.CreateOrder).Methods("POST").Name("orders.create")
	orders.Handle("/mine", h.RequireUser(http.HandlerFunc(h.ListMyOrders))).Methods("GET").Name("orders.mine")
	orders.HandleFunc("/{orderId}", h.GetOrder).Methods("GET").Name("orders.get")
	orders.HandleFunc("/{orderId}/items", h.AddItem).Methods("POST").Name("orders.items.add")
	orders.HandleFunc("/{orderId}/items/{itemId}", h.ConfigureItem).Methods("PUT").Name("orders.items.configure")
	orders.HandleFunc("/{orderId}/address", h.SetShippingAddress).Methods("PUT").Name("orders.address")
	orders.HandleFunc("/{orderId}/pay", h.Pay).Methods("POST").Name("orders.pay")
	orders.HandleFunc("/{orderId}/items/{itemId}/approve", h.ApproveItem).Methods("POST").Name("orders.items.approve")
	orders.HandleFunc("/{orderId}/items/{itemId}/revision", h.RequestRevision).Methods("POST").Name("orders.items.revision")
	orders.HandleFunc("/{orderId}/items/{itemId}/photos", h.UploadCustomerPhoto).Methods("POST").Name("orders.items.photos.upload")
	orders.HandleFunc("/{orderId}/items/{itemId}/photos/sign", h.SignCustomerPhotoUpload).Methods("POST").Name("orders.items.photos.sign")
	orders.HandleFunc("/{orderId}/items/{itemId}/photos/confirm", h.ConfirmCustomerPhotoUpload).Methods("POST").Name("orders.items.photos.confirm")
	orders.HandleFunc("/{orderId}/photos/{uploadId}", h.DeleteCustomerPhoto).Methods("DELETE").Name("orders.photos.delete")

	// Back office.
	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(h.SessionMiddleware)
	admin.Use(h.RequireAdmin)
	admin.Use(h.RequireSameOrigin)
	admin.HandleFunc("/orders", h.AdminListOrders).Methods("GET").Name("admin.orders.list")
	admin.HandleFunc("/orders/{orderId}", h.AdminGetOrder).Methods("GET").Name("admin.orders.get")
	admin.HandleFunc("/orders/{orderId}/events", h.AdminListEvents).Methods("GET").Name("admin.orders.events")
	admin.HandleFunc("/orders/{orderId}/items/{itemId}/preview", h.AdminUploadPreview).Methods("POST").Name("admin.items.preview")
	admin.HandleFunc("/orders/{orderId}/items/{itemId}/status", h.AdminOverrideStatus).Methods("POST").Name("admin.items.status")
	admin.HandleFunc("/orders/{orderId}/cancel", h.AdminCancelOrder).Methods("POST").Name("admin.orders.cancel")
	admin.HandleFunc("/orders/{orderId}/uploads/{uploadId}/assign", h.AdminAssignUpload).Methods("POST").Name("admin.uploads.assign")

	return r
}
