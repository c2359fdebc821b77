// Package server is the HTTP edge: routing, middleware, and the JSON
// envelopes clients depend on.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"imgd/internal/config"
	"imgd/internal/logging"
	"imgd/internal/network"
	"imgd/internal/observability"
	"imgd/internal/pipeline"
)

// dnsResolver is the slice of network.Resolver the handlers use.
type dnsResolver interface {
	Resolve(ctx context.Context, domain string) (*network.Resolution, error)
}

// Server owns the gin engine and the long-lived collaborators behind it.
type Server struct {
	cfg       config.Config
	obs       *observability.Observability
	processor *pipeline.Processor
	resolver  dnsResolver

	engine     *gin.Engine
	httpServer *http.Server
	startTime  time.Time
}

// NewServer wires the processor, resolver and middleware stack from an
// already validated configuration.
func NewServer(cfg config.Config, obs *observability.Observability) (*Server, error) {
	level := logging.ParseLevel(cfg.Observability.Logging.Level)
	processor := pipeline.NewProcessor(
		logging.New(os.Stderr, level, "Pipeline"),
		obs.Metrics,
		obs.Tracer,
	)

	resolver, err := network.NewResolver(
		cfg.Network.Nameservers,
		cfg.Network.CacheSize,
		logging.New(os.Stderr, level, "Resolver"),
		observability.NewResolverMetrics(),
	)
	if err != nil {
		return nil, fmt.Errorf("build resolver: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	s := &Server{
		cfg:       cfg,
		obs:       obs,
		processor: processor,
		resolver:  resolver,
		engine:    engine,
		startTime: time.Now(),
	}

	engine.Use(requestID())
	engine.Use(s.telemetry())
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware(cfg.Server.CORSOrigins))
	engine.Use(bodyLimit(cfg.Server.MaxUploadBytes))

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s, nil
}

func (s *Server) setupRoutes() {
	s.engine.GET("/", s.handleHome)
	s.engine.GET("/ping", s.handlePing)
	s.engine.GET("/hello", s.handleHello)

	s.engine.GET("/ip", s.handleIP)
	s.engine.GET("/dns/resolve", s.handleResolve)

	images := s.engine.Group("/images")
	{
		images.GET("/info", serveDoc(infoDoc))
		images.POST("/info", s.handleImageInfo)

		images.GET("/prepare_jpeg", serveDoc(prepareJPEGDoc))
		images.POST("/prepare_jpeg", s.handlePrepareJPEG)

		images.GET("/fit/:box", serveDoc(fitDoc))
		images.POST("/fit/:box", s.handleFit)

		images.GET("/resize_avatar", serveDoc(resizeAvatarDoc()))
		images.POST("/resize_avatar", s.handleResizeAvatar)
	}
}

// Start blocks serving requests until Stop is called.
func (s *Server) Start() error {
	s.obs.Logger.Info("imgd listening",
		"addr", s.httpServer.Addr,
		"uid", s.cfg.Worker.UID,
		"region", s.cfg.Worker.Region,
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop drains in-flight requests before shutting the listener down.
func (s *Server) Stop(ctx context.Context) error {
	s.obs.Logger.Info("imgd shutting down")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the engine for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) uptime() float64 {
	return time.Since(s.startTime).Seconds()
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	allowAll := len(origins) == 0
	for _, origin := range origins {
		if origin == "*" {
			allowAll = true
		}
	}
	if allowAll {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	return cors.New(corsConfig)
}
