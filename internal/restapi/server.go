/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

// Package restapi is the REST façade of §6: the exact literal routes
// and JSON shapes fixed there, built on gin the way the teacher engine
// builds its own HTTP surface.
package restapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"bpmn-runtime/internal/corelog"
	"bpmn-runtime/internal/manager"
)

// Config holds REST API server configuration.
type Config struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DefaultConfig returns default REST API configuration.
func DefaultConfig() *Config {
	return &Config{Host: "0.0.0.0", Port: 8080}
}

// Server is the gin-backed HTTP façade in front of one Manager.
type Server struct {
	config     *Config
	httpServer *http.Server
	router     *gin.Engine
	manager    *manager.Manager
	log        corelog.ComponentLogger

	idempotencyMu sync.Mutex
	idempotency   map[string]bool // process-wide PUT receipt table, §5/§6
}

// New builds a Server around an already-wired Manager.
func New(cfg *Config, mgr *manager.Manager) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s := &Server{
		config:      cfg,
		manager:     mgr,
		log:         corelog.NewComponentLogger("restapi"),
		idempotency: make(map[string]bool),
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)
	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.GET("/health", s.healthHandler)

	s.router.POST("/bpmnCollaborate", s.postCollaborate)
	s.router.POST("/:processName", s.postCreate)
	s.router.POST("/:processName/:startEventName", s.postCreateAndStart)
	s.router.GET("/:processName/:id", s.getInstance)
	s.router.GET("/:processName", s.listInstances)
	s.router.PUT("/:processName/:id/:messageName/:messageId", s.putMessage)
}

// Start launches the HTTP server in the background.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.log.Info("starting REST API server", corelog.String("address", addr))
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("REST API server failed", corelog.Any("error", err))
		}
	}()
	return nil
}

// Stop gracefully shuts the HTTP server down.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
