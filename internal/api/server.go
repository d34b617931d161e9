package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/martijn/clientbook/internal/api/handler"
	"github.com/martijn/clientbook/internal/api/middleware"
	"github.com/martijn/clientbook/internal/core/service"
	"github.com/martijn/clientbook/internal/logging"
	"github.com/martijn/clientbook/pkg/config"
)

type Server struct {
	router *gin.Engine
	srv    *http.Server
	config *config.Config
	logger *slog.Logger
}

// NewServer creates a new API server
func NewServer(
	cfg *config.Config,
	clientService *service.ClientService,
	authService *service.AuthService,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "api")

	if !cfg.IsDevMode() && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(logging.GinMiddleware(logger))
	router.Use(middleware.ErrorHandlerMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	authHandler := handler.NewAuthHandler(authService)
	clientHandler := handler.NewClientHandler(clientService)
	settingHandler := handler.NewSettingHandler(clientService)

	// Public routes (no auth required)
	auth := router.Group("/auth")
	{
		auth.POST("/token", authHandler.Token)
	}

	authMiddleware := middleware.AuthMiddleware(authService)

	clients := router.Group("/clients")
	clients.Use(authMiddleware)
	{
		clients.POST("", clientHandler.CreateClient)
		clients.GET("", clientHandler.ListClients)
		clients.GET("/lookup", clientHandler.LookupClient)
		clients.GET("/:id", clientHandler.GetClient)
		clients.PUT("/:id", clientHandler.UpdateClient)
		clients.DELETE("/:id", clientHandler.DeleteClient)
	}

	router.GET("/settings", authMiddleware, settingHandler.ListSettings)

	// Health never opens the store.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"opened": clientService.Handle().Opened(),
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	return &Server{
		router: router,
		config: cfg,
		logger: logger,
		srv: &http.Server{
			Addr:           fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort),
			Handler:        router,
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   15 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 1 << 20, // 1 MB
		},
	}
}

// Router exposes the handler for tests and embedding.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops. A clean shutdown
// returns nil.
func (s *Server) Start() error {
	addr := s.srv.Addr

	var err error
	if s.config.SSLCert != "" && s.config.SSLKey != "" {
		s.logger.Info("starting HTTPS server", "addr", addr)
		err = s.srv.ListenAndServeTLS(s.config.SSLCert, s.config.SSLKey)
	} else {
		s.logger.Info("starting HTTP server", "addr", addr)
		err = s.srv.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
