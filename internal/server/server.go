package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"MacroDash/internal/cache"
	"MacroDash/internal/logging"
	"MacroDash/internal/model"
	"MacroDash/internal/recorder"
)

//go:embed templates/*.html
var templatesFS embed.FS

const requestIDHeader = "X-Request-ID"

// DataSource is the memoized dataset the handlers read from.
type DataSource interface {
	Get(ctx context.Context) (model.Dataset, error)
	Refresh(ctx context.Context) (model.Dataset, error)
	Stats() cache.Stats
	StoreName() string
}

// Server serves the dashboard page and its JSON endpoints.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	data       DataSource
	rec        recorder.Recorder
	log        logrus.FieldLogger
	started    time.Time
}

// New wires routes and middleware. rec may be nil.
func New(addr string, data DataSource, rec recorder.Recorder, log logrus.FieldLogger) *Server {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	s := &Server{
		data:    data,
		rec:     rec,
		log:     logging.Component(log, "server"),
		started: time.Now(),
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), accessLog(s.log))
	engine.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))
	s.routes(engine)
	s.engine = engine

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute, // a cold page load waits for both providers
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes(r *gin.Engine) {
	r.GET("/", s.handleDashboard)
	r.GET("/chart", s.handleChart)
	r.GET("/health", s.handleHealth)

	api := r.Group("/api")
	api.GET("/data", s.handleData)
	api.GET("/correlation", s.handleCorrelation)
	api.GET("/refreshes", s.handleRefreshes)
	api.POST("/refresh", s.handleRefresh)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.log.Infof("server starting on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func accessLog(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := log.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
			"request_id": c.GetString("request_id"),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Info("request completed")
	}
}

// statusFor maps the error taxonomy to HTTP codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrDataFetch):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
