// ABOUTME: HTTP host for the patient document store and the server-side side-effect lookup.
// ABOUTME: Builds the echo instance, middleware chain, and routes under /api.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/harperreed/medtrack/internal/resolver"
	"github.com/harperreed/medtrack/internal/storage"
)

// DefaultBodyLimit caps request bodies.
const DefaultBodyLimit = "1M"

// Options configures access control for the server.
type Options struct {
	APIKey        string
	AllowedOrigin string
	BodyLimit     string
}

// Server serves the document and lookup endpoints.
type Server struct {
	echo     *echo.Echo
	store    storage.Repository
	resolver *resolver.Resolver
	opts     Options
	logger   zerolog.Logger
}

// New wires the routes. res should be built without a proxy; the server is
// the proxy.
func New(opts Options, store storage.Repository, res *resolver.Resolver, logger zerolog.Logger) *Server {
	if opts.BodyLimit == "" {
		opts.BodyLimit = DefaultBodyLimit
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	s := &Server{
		echo:     e,
		store:    store,
		resolver: res,
		opts:     opts,
		logger:   logger,
	}

	e.Use(Recovery(logger))
	e.Use(RequestID())
	e.Use(Logger(logger))
	e.Use(OriginGuard(opts.AllowedOrigin))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{opts.AllowedOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowHeaders: []string{echo.HeaderContentType, APIKeyHeader, RequestIDHeader},
	}))
	e.Use(echomw.BodyLimit(opts.BodyLimit))

	api := e.Group("/api", APIKey(opts.APIKey))
	api.GET("/data", s.getData)
	api.PUT("/data", s.putData)
	api.POST("/side-effects", s.sideEffects)
	api.GET("/health", s.health)

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info().Str("addr", addr).Str("origin", s.opts.AllowedOrigin).Msg("starting server")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// errorHandler renders every error as {"error": message}.
func errorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := http.StatusText(code)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(code)
			}
		} else {
			logger.Error().Err(err).Str("path", c.Request().URL.Path).Msg("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, map[string]string{"error": msg})
	}
}
