package http

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"giveaway-bot/internal/common/logger"
	"giveaway-bot/internal/common/middleware"
	"giveaway-bot/internal/domain/giveaway"
	"giveaway-bot/internal/http/docs"
)

// ReadyCheck reports whether a dependency can serve traffic.
type ReadyCheck func(ctx context.Context) error

// Options configures the status server.
type Options struct {
	Port    int
	Origin  string
	Debug   bool
	Service string

	Giveaways giveaway.Reader
	Metrics   nethttp.Handler
	// Checks are run by /ready, keyed by dependency name.
	Checks map[string]ReadyCheck
}

// Server is the bot's HTTP surface: keep-alive, probes, metrics and the
// read-only giveaway API.
type Server struct {
	engine *gin.Engine
	srv    *nethttp.Server
}

// @title           Giveaway Bot API
// @version         1.0
// @description     Read-only status API of the Discord giveaway bot.
// @BasePath        /api/v1

// @tag.name giveaways
// @tag.description Live giveaway snapshots

func NewServer(opts Options) *Server {
	if !opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if opts.Service == "" {
		opts.Service = "giveaway-bot"
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger("/", "/live", "/metrics"))
	router.Use(middleware.ErrorHandler())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{opts.Origin}
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Accept", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	health := &healthHandlers{service: opts.Service, checks: opts.Checks}
	health.register(router)

	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	docs.SwaggerInfo.BasePath = "/api/v1"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.HandleErrors())
	if opts.Giveaways != nil {
		NewGiveawayHandlers(opts.Giveaways).Register(v1)
	}

	return &Server{
		engine: router,
		srv: &nethttp.Server{
			Addr:         fmt.Sprintf(":%d", opts.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() nethttp.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", s.srv.Addr).Msg("Starting HTTP server")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server forced to shutdown")
		return err
	}
	logger.Info().Msg("HTTP server exited")
	return nil
}
