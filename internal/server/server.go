// Package server exposes the live record stream over HTTP: a websocket feed
// plus stats and health endpoints.
package server

import (
	"net/http"
	"net/http/pprof"

	"github.com/gin-gonic/gin"

	"github.com/Hubro/nso-log-reader/internal/aggregator"
	"github.com/Hubro/nso-log-reader/internal/hub"
)

// Server holds the Gin engine and its collaborators.
type Server struct {
	engine     *gin.Engine
	hub        *hub.Hub
	aggregator *aggregator.Aggregator
	addr       string
}

// New creates a record-streaming server listening on addr.
func New(h *hub.Hub, agg *aggregator.Aggregator, addr string) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:     engine,
		hub:        h,
		aggregator: agg,
		addr:       addr,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		stats := s.aggregator.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"status":          "ok",
			"uptime":          stats.Uptime,
			"sources":         stats.Sources,
			"records_per_sec": stats.RecordsPerSec,
			"dropped":         stats.Dropped,
		})
	})

	s.engine.GET("/api/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.aggregator.Snapshot())
	})

	s.engine.GET("/ws", s.handleWebSocket)

	// pprof profiling endpoints.
	s.engine.GET("/debug/pprof/", gin.WrapF(pprof.Index))
	s.engine.GET("/debug/pprof/profile", gin.WrapF(pprof.Profile))
	s.engine.GET("/debug/pprof/heap", gin.WrapH(pprof.Handler("heap")))
	s.engine.GET("/debug/pprof/goroutine", gin.WrapH(pprof.Handler("goroutine")))
}

// Start runs the server. Blocks until the listener fails or is closed.
func (s *Server) Start() error {
	return s.engine.Run(s.addr)
}
