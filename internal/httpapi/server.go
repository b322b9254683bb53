// Package httpapi provides the HTTP API for the EDI assistant.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/MeghanaMH1/rag-edi-assistant/internal/edi"
	"github.com/MeghanaMH1/rag-edi-assistant/internal/explain"
	"github.com/MeghanaMH1/rag-edi-assistant/internal/intent"
	"github.com/MeghanaMH1/rag-edi-assistant/internal/lifecycle"
	"github.com/MeghanaMH1/rag-edi-assistant/internal/logging"
	"github.com/MeghanaMH1/rag-edi-assistant/internal/query"
	"github.com/MeghanaMH1/rag-edi-assistant/internal/retrieval"
)

// Config holds HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	MaxUploadSizeMB int
	SearchTopK      int
}

// Server wires the assistant's components behind an Echo router.
type Server struct {
	echo       *echo.Echo
	store      *edi.Store
	classifier *intent.Classifier
	engine     *query.Engine
	builder    *lifecycle.Builder
	searcher   *retrieval.Searcher
	explainer  *explain.Explainer
	logger     *zap.Logger
	config     *Config
}

// NewServer creates the HTTP server. The searcher and explainer are
// optional; the corresponding endpoints degrade when they are nil.
func NewServer(
	store *edi.Store,
	classifier *intent.Classifier,
	engine *query.Engine,
	builder *lifecycle.Builder,
	searcher *retrieval.Searcher,
	explainer *explain.Explainer,
	logger *zap.Logger,
	cfg *Config,
) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if classifier == nil || engine == nil || builder == nil {
		return nil, fmt.Errorf("classifier, engine and builder are required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{Host: "localhost", Port: 8000}
	}
	if cfg.MaxUploadSizeMB <= 0 {
		cfg.MaxUploadSizeMB = 10
	}
	if cfg.SearchTopK <= 0 {
		cfg.SearchTopK = retrieval.DefaultTopK
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", cfg.MaxUploadSizeMB)))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Carry the request ID in the context so handlers and the
			// packages below them correlate their log lines with this one.
			req := c.Request()
			ctx := logging.WithRequestID(req.Context(), c.Response().Header().Get(echo.HeaderXRequestID))
			c.SetRequest(req.WithContext(ctx))

			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			fields := append(logging.ContextFields(ctx),
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
			)
			logger.Info("http request", fields...)

			return err
		}
	})
	e.Use(NewHTTPMetrics(logger).MetricsMiddleware())

	s := &Server{
		echo:       e,
		store:      store,
		classifier: classifier,
		engine:     engine,
		builder:    builder,
		searcher:   searcher,
		explainer:  explainer,
		logger:     logger,
		config:     cfg,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleRoot)
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	s.echo.POST("/upload-csv", s.handleUploadCSV)
	s.echo.POST("/ask", s.handleAsk)

	v1 := s.echo.Group("/api/v1")
	v1.GET("/lifecycle/pos", s.handlePOList)
	v1.GET("/lifecycle/pos/:id", s.handleLifecycle)
	v1.POST("/search", s.handleSearch)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "RAG EDI Assistant backend running"})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
