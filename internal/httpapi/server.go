// Package httpapi serves the task collection over a local JSON API.
//
// Routes:
//
//	GET    /api/tasks?search=&category=&sort=
//	POST   /api/tasks
//	GET    /api/tasks/:id
//	PUT    /api/tasks/:id
//	POST   /api/tasks/:id/toggle
//	DELETE /api/tasks/:id
//	GET    /api/categories
//	GET    /healthz
//
// Handlers hold one mutex around every store call, so the store sees one
// operation at a time.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/cors"

	"github.com/nibzard/todolist-go/internal/store"
	"github.com/nibzard/todolist-go/internal/todo"
	"github.com/nibzard/todolist-go/internal/view"
)

// Options configures a Server.
type Options struct {
	Logger          *log.Logger
	CORSOrigins     []string
	DefaultSort     view.SortOption
	DefaultPriority todo.Priority
	// Location interprets YYYY-MM-DD due dates. Nil means time.Local.
	Location *time.Location
}

// Server exposes a store over HTTP.
type Server struct {
	mu     sync.Mutex
	store  *store.Store
	opts   Options
	logger *log.Logger
	echo   *echo.Echo
}

// New builds the API for s.
func New(s *store.Store, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.DefaultPriority == "" {
		opts.DefaultPriority = todo.PriorityMedium
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	srv := &Server{
		store:  s,
		opts:   opts,
		logger: opts.Logger,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = sonicSerializer{}
	e.HTTPErrorHandler = srv.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			srv.logger.Debug("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	srv.register(e)
	srv.echo = e
	return srv
}

func (s *Server) register(e *echo.Echo) {
	e.GET("/healthz", s.healthz)
	api := e.Group("/api")
	api.GET("/tasks", s.listTasks)
	api.POST("/tasks", s.createTask)
	api.GET("/tasks/:id", s.getTask)
	api.PUT("/tasks/:id", s.updateTask)
	api.POST("/tasks/:id/toggle", s.toggleTask)
	api.DELETE("/tasks/:id", s.deleteTask)
	api.GET("/categories", s.listCategories)
}

// Handler returns the API handler, wrapped for CORS when origins are set.
func (s *Server) Handler() http.Handler {
	if len(s.opts.CORSOrigins) == 0 {
		return s.echo
	}
	c := cors.New(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept"},
	})
	return c.Handler(s.echo)
}

// ListenAndServe serves on addr until ctx is done, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) handleError(err error, c echo.Context) {
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
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", "uri", c.Request().RequestURI, "err", err)
	}
	if err := c.JSON(code, errorResponse{Error: msg}); err != nil {
		s.logger.Error("write error response", "err", err)
	}
}
