//nolint:revive // Package name 'api' is intentionally generic for the HTTP API layer
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/semaphore"

	"github.com/overfiltrr/overfiltrr/internal/api/handlers"
	"github.com/overfiltrr/overfiltrr/internal/api/middleware"
	"github.com/overfiltrr/overfiltrr/internal/api/ratelimit"
	"github.com/overfiltrr/overfiltrr/internal/config"
	"github.com/overfiltrr/overfiltrr/internal/health"
	"github.com/overfiltrr/overfiltrr/internal/logger"
	"github.com/overfiltrr/overfiltrr/internal/media"
	"github.com/overfiltrr/overfiltrr/internal/notification"
	"github.com/overfiltrr/overfiltrr/internal/pipeline"
	"github.com/overfiltrr/overfiltrr/internal/scheduler"
)

const (
	defaultThreads         = 5
	defaultConnectionLimit = 200
)

// Engine is the decision pipeline as seen by the HTTP layer.
type Engine interface {
	Authenticate(token string) error
	Process(ctx context.Context, ev pipeline.Event) (*pipeline.Result, error)
	Preview(ctx context.Context, mt media.Type, tmdbID int) (*pipeline.Preview, error)
	Decisions(limit int) []pipeline.Result
	Stats() map[pipeline.State]int
}

// LogsProvider provides access to recent log entries.
type LogsProvider interface {
	Recent(limit int, minLevel string) []logger.LogEntry
}

// NotificationTester sends a test message through every notifier.
type NotificationTester interface {
	Test(ctx context.Context) []notification.TestResult
}

// Options carries the optional collaborators of the server. Nil fields
// disable the routes that need them.
type Options struct {
	Logs          LogsProvider
	Notifications NotificationTester
	Scheduler     *scheduler.Scheduler
	Health        *health.Service
}

// Server handles HTTP requests for overfiltrr.
type Server struct {
	echo      *echo.Echo
	cfg       *config.Config
	engine    Engine
	opts      Options
	limiter   *ratelimit.AuthLimiter
	runs      *semaphore.Weighted
	threads   int
	logger    zerolog.Logger
	startedAt time.Time
}

// NewServer creates a new API server instance.
func NewServer(cfg *config.Config, engine Engine, opts Options, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	threads := cfg.Server.Threads
	if threads <= 0 {
		threads = defaultThreads
	}

	s := &Server{
		echo:      e,
		cfg:       cfg,
		engine:    engine,
		opts:      opts,
		limiter:   ratelimit.NewAuthLimiter(),
		runs:      semaphore.NewWeighted(int64(threads)),
		threads:   threads,
		logger:    logger.With().Str("component", "api").Logger(),
		startedAt: time.Now(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(echomw.Recover())
	s.echo.Use(echomw.RequestID())

	s.echo.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogMethod:    true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			// Tokens may travel in the query string.
			uri := v.URI
			if i := strings.IndexByte(uri, '?'); i >= 0 {
				uri = uri[:i]
			}
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", uri).
					Str("httpRequestId", v.RequestID).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Debug().
					Str("method", v.Method).
					Str("uri", uri).
					Str("httpRequestId", v.RequestID).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	s.echo.Use(middleware.SecurityHeaders())
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)

	s.echo.POST("/webhook", s.handleWebhook, s.limiter.Middleware())

	api := s.echo.Group("/api/v1",
		s.limiter.Middleware(),
		middleware.RequireToken(tokenFromRequest, s.engine.Authenticate, s.tokenRecorder()),
	)

	api.GET("/status", s.getStatus)
	api.POST("/preview", s.preview)
	api.GET("/decisions", s.listDecisions)

	if s.opts.Logs != nil {
		api.GET("/logs", s.getLogs)
	}
	if s.opts.Notifications != nil {
		api.POST("/notifications/test", s.testNotifications)
	}
	if s.opts.Health != nil {
		api.GET("/health", s.getHealth)
	}
	if s.opts.Scheduler != nil {
		handlers.NewSchedulerHandler(s.opts.Scheduler).RegisterRoutes(api.Group("/scheduler"))
	}
}

// tokenRecorder returns the lockout limiter when a token is configured.
func (s *Server) tokenRecorder() middleware.FailureRecorder {
	if s.cfg.Webhook.Token == "" {
		return nil
	}
	return s.limiter
}

// tokenFromRequest reads the credential from the Authorization header,
// with or without a Bearer prefix, falling back to the token query parameter.
func tokenFromRequest(c echo.Context) string {
	if h := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization)); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
		return h
	}
	return c.QueryParam("token")
}

// Start listens on address, capping concurrent connections at
// server.connection_limit. It blocks until the server stops.
func (s *Server) Start(address string) error {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	limit := s.cfg.Server.ConnectionLimit
	if limit <= 0 {
		limit = defaultConnectionLimit
	}
	s.echo.Listener = netutil.LimitListener(ln, limit)

	s.logger.Info().
		Str("address", ln.Addr().String()).
		Int("connectionLimit", limit).
		Int("threads", s.threads).
		Msg("starting HTTP server")

	if err := s.echo.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server, waiting for in-flight runs.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Limiter returns the failed-token lockout limiter.
func (s *Server) Limiter() *ratelimit.AuthLimiter {
	return s.limiter
}
