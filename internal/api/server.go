// Package api exposes flight enrichment, history and statistics over HTTP.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/felixhommels/mcsbt-capstone-be/internal/enrich"
	"github.com/felixhommels/mcsbt-capstone-be/internal/logging"
	"github.com/felixhommels/mcsbt-capstone-be/internal/metrics"
	"github.com/felixhommels/mcsbt-capstone-be/internal/store"
	"github.com/felixhommels/mcsbt-capstone-be/pkg/models"
)

var log = logging.For("api")

// Enricher composes and persists flight records.
type Enricher interface {
	EnrichAndStore(ctx context.Context, req enrich.EnrichRequest) (models.FlightRecord, error)
	ManualAndStore(ctx context.Context, in models.ManualFlight) (models.FlightRecord, error)
}

// RouteFinder lists scheduled flights between two airports.
type RouteFinder interface {
	Find(ctx context.Context, depIATA, arrIATA string) ([]models.RouteOption, error)
}

// Deps are the collaborators of the HTTP layer.
type Deps struct {
	Enricher    Enricher
	Store       store.Store
	Routes      RouteFinder
	Verifier    *Verifier
	CORSOrigins []string
}

// Server owns the gin engine.
type Server struct {
	deps      Deps
	engine    *gin.Engine
	startTime time.Time
}

// NewServer builds the router.
func NewServer(deps Deps) *Server {
	s := &Server{deps: deps, engine: gin.New(), startTime: time.Now()}

	s.engine.Use(gin.Recovery(), requestMetrics())
	s.engine.Use(cors.New(corsConfig(deps.CORSOrigins)))

	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := s.engine.Group("/api")
	if deps.Verifier != nil {
		api.Use(deps.Verifier.Middleware())
	}
	{
		api.POST("/flights/enrich", s.handleEnrich)
		api.POST("/flights/manual", s.handleManual)
		api.GET("/flights", s.handleListFlights)
		api.POST("/flights/soft-delete", s.handleSoftDelete)
		api.DELETE("/flights", s.handlePurge)
		api.GET("/statistics", s.handleStatistics)
		api.GET("/route-info", s.handleRouteInfo)
	}
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// requestMetrics records per-route counts and latency and logs each request.
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.ActiveConnections.Inc()
		defer metrics.ActiveConnections.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPLatency.WithLabelValues(route).Observe(elapsed.Seconds())
		log.Debug("request served",
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", elapsed.Milliseconds())
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
	})
}
