// Package server exposes the template gallery and conversation sessions as a
// JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"promptdeck/internal/logger"
	"promptdeck/internal/session"
	"promptdeck/pkg/decktypes"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP front end.
type Server struct {
	echo      *echo.Echo
	templates decktypes.TemplateLookup
	sessions  *session.Manager
	addr      string
	log       *log.Logger
}

// New creates a Server listening on addr once started.
func New(templates decktypes.TemplateLookup, sessions *session.Manager, addr string) *Server {
	l := logger.NewStyledLogger("Server")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			l.Debug("HTTP request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))

	s := &Server{
		echo:      e,
		templates: templates,
		sessions:  sessions,
		addr:      addr,
		log:       l,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := s.echo.Group("/api")
	api.GET("/templates", s.listTemplates)
	api.GET("/templates/:id", s.getTemplate)

	api.POST("/sessions", s.createSession)
	api.GET("/sessions", s.listSessions)
	api.GET("/sessions/:id", s.getSession)
	api.DELETE("/sessions/:id", s.deleteSession)
	api.POST("/sessions/:id/messages", s.postMessage)
	api.POST("/sessions/:id/attachments", s.postAttachment)
}

// Handler returns the routed http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until ctx is cancelled, then shuts down gracefully and closes
// every open session.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", "addr", s.addr)
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.sessions.CloseAll()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.log.Info("HTTP server shutting down", "sessions", s.sessions.Len())
	s.sessions.CloseAll()
	return s.echo.Shutdown(shutdownCtx)
}
