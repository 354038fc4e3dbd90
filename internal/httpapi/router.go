// Package httpapi exposes the service over HTTP: registration, login,
// enrollment, badge rendering, scans and reports.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rollcall/internal/auth"
	"rollcall/internal/config"
	"rollcall/internal/httpmiddleware"
	"rollcall/internal/identity"
	"rollcall/internal/ledger"
	"rollcall/internal/queue"
	"rollcall/internal/report"
	"rollcall/internal/school"
	"rollcall/internal/store"
)

// Handlers bundles the services the HTTP layer fronts.
type Handlers struct {
	cfg      config.App
	schools  *school.Service
	registry *identity.Service
	scans    *ledger.Service
	reports  *report.Service
	events   queue.Queue
	redis    *store.Redis
	db       *store.DB
}

// New creates the handler set.
func New(cfg config.App, schools *school.Service, registry *identity.Service, scans *ledger.Service, reports *report.Service, events queue.Queue, rds *store.Redis, db *store.DB) *Handlers {
	return &Handlers{
		cfg:      cfg,
		schools:  schools,
		registry: registry,
		scans:    scans,
		reports:  reports,
		events:   events,
		redis:    rds,
		db:       db,
	}
}

// Router builds the gin engine with the full middleware stack.
func (h *Handlers) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewTokenBucket(h.cfg.RateLimitPerMin, h.cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", h.health)

	r.POST("/v1/schools/register", h.registerSchool)
	r.POST("/v1/schools/login", h.login)

	authed := r.Group("/v1", auth.SchoolAuth(h.cfg.JWTSigningKey, h.cfg.JWTIssuer))
	authed.POST("/employees", h.enrollEmployee)
	authed.GET("/employees", h.listEmployees)
	authed.GET("/employees/:id/badge", h.employeeBadge)
	authed.POST("/scans", h.recordScan)
	authed.GET("/reports/attendance", h.attendanceReport)
	authed.GET("/dashboard", h.dashboard)

	return r
}

func (h *Handlers) health(c *gin.Context) {
	redisHealthy := h.redis.Healthy(c.Request.Context())
	dbHealthy := h.db != nil && h.db.Client != nil && h.db.Client.PingContext(c.Request.Context()) == nil
	status := http.StatusOK
	if !redisHealthy || !dbHealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

// clock returns the scan timestamp; a var so tests can pin time.
var clock = func() time.Time { return time.Now() }
