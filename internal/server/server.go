// Package server serves the dashboard to browsers. Every websocket session
// runs its own App inside a tea.Program whose terminal is an xterm.js page.
package server

import (
	"context"
	_ "embed"
	"errors"
	"net"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/muesli/termenv"
	"github.com/sirupsen/logrus"

	"github.com/dm/stop/internal/logging"
	"github.com/dm/stop/internal/metrics"
)

// DefaultAddr is the listen address used when Config leaves it unset.
const DefaultAddr = ":8000"

const shutdownTimeout = 5 * time.Second

//go:embed static/index.html
var indexHTML []byte

// ModelFactory builds the model for one session. ctx is cancelled when the
// session ends.
type ModelFactory func(ctx context.Context) tea.Model

// Config holds configuration for Server.
type Config struct {
	Addr     string
	NewModel ModelFactory
	Metrics  *metrics.Set
	Logger   logrus.FieldLogger
}

// Server is the HTTP front end of server mode.
type Server struct {
	addr     string
	newModel ModelFactory
	metrics  *metrics.Set
	log      logrus.FieldLogger
	engine   *gin.Engine
	upgrader websocket.Upgrader
}

// New constructs a Server and its routes.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}

	// Sessions render into a browser terminal, not the server's stdout.
	lipgloss.SetColorProfile(termenv.TrueColor)
	lipgloss.SetHasDarkBackground(true)

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		addr:     cfg.Addr,
		newModel: cfg.NewModel,
		metrics:  cfg.Metrics,
		log:      cfg.Logger.WithField("component", "server"),
		engine:   gin.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 32 * 1024,
		},
	}
	s.engine.Use(gin.Recovery(), s.accessLog())
	s.engine.GET("/", s.index)
	s.engine.GET("/ws", s.terminal)
	s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return s
}

// Handler returns the HTTP handler, for tests and custom listeners.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start).Round(time.Millisecond),
		}).Debug("request")
	}
}

// RunMetrics serves only /metrics and /healthz on addr until ctx is done.
// Terminal mode uses it to expose fetch metrics without the browser UI.
func RunMetrics(ctx context.Context, addr string, set *metrics.Set, log logrus.FieldLogger) error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/metrics", gin.WrapH(set.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s := &Server{addr: addr, engine: r, log: log.WithField("component", "metrics")}
	return s.Run(ctx)
}
