// Package httpapi exposes the bookdist service over HTTP with gin.
package httpapi

import (
	"expvar"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bookdist/internal/core"
)

// Handler holds the dependencies of the API handlers.
type Handler struct {
	svc    *core.Service
	logger core.Logger
}

// Option configures the router.
type Option func(*routerConfig)

type routerConfig struct {
	logger  core.Logger
	metrics http.Handler
}

// WithLogger logs every request through l.
func WithLogger(l core.Logger) Option {
	return func(c *routerConfig) { c.logger = l }
}

// WithMetricsHandler serves h under /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(c *routerConfig) { c.metrics = h }
}

// NewRouter registers every API route for svc.
func NewRouter(svc *core.Service, opts ...Option) *gin.Engine {
	cfg := routerConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.logger != nil {
		r.Use(requestLogger(cfg.logger))
	}
	h := &Handler{svc: svc, logger: cfg.logger}

	api := r.Group("/api")
	api.GET("/state", h.GetState)
	api.GET("/calc", h.Calculate)

	api.GET("/schools", h.ListSchools)
	api.POST("/schools", h.AddSchool)
	api.POST("/last-school/classes", h.AddClassToLastSchool)
	api.PATCH("/schools/:schoolID", h.UpdateSchool)
	api.DELETE("/schools/:schoolID", h.RemoveSchool)
	api.PUT("/schools/:schoolID/defaults/:field", h.SetDefaultSubjectValue)

	api.POST("/schools/:schoolID/classes", h.AddClass)
	api.PATCH("/schools/:schoolID/classes/:classID", h.UpdateClass)
	api.DELETE("/schools/:schoolID/classes/:classID", h.RemoveClass)
	api.GET("/schools/:schoolID/classes/:classID/result", h.ClassResult)

	api.POST("/schools/:schoolID/classes/:classID/subjects", h.AddSubject)
	api.PATCH("/schools/:schoolID/classes/:classID/subjects/:subjectID", h.UpdateSubject)
	api.DELETE("/schools/:schoolID/classes/:classID/subjects/:subjectID", h.RemoveSubject)

	api.GET("/log", h.ListLog)
	api.POST("/log", h.Archive)
	api.DELETE("/log", h.ClearLog)
	api.GET("/log/:entryID", h.GetLogEntry)
	api.DELETE("/log/:entryID", h.DeleteLogEntry)

	api.GET("/confirmation", h.PendingConfirmation)
	api.POST("/confirmation", h.Confirm)
	api.DELETE("/confirmation", h.Cancel)

	api.GET("/settings", h.GetSettings)
	api.PUT("/settings", h.UpdateSettings)

	api.POST("/exports", h.Export)
	api.GET("/exports", h.ListExports)
	api.GET("/exports/*name", h.DownloadExport)
	api.HEAD("/exports/*name", h.StatExport)
	api.GET("/export/:format", h.Download)

	if cfg.metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.metrics))
	}
	r.GET("/debug/vars", gin.WrapH(expvar.Handler()))
	return r
}

func requestLogger(l core.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
