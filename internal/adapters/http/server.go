package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/longregen/slovo-agent/internal/adapters/http/handlers"
	"github.com/longregen/slovo-agent/internal/adapters/http/middleware"
	"github.com/longregen/slovo-agent/internal/config"
	"github.com/longregen/slovo-agent/internal/ports"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server wires the C12 orchestrator and C7 memory manager behind the
// bit-exact HTTP surface spec §6 names.
type Server struct {
	config       *config.Config
	router       *chi.Mux
	httpServer   *http.Server
	orchestrator ports.Orchestrator
	memory       ports.MemoryManager
	ids          ports.IDGenerator
}

func NewServer(cfg *config.Config, orchestrator ports.Orchestrator, memory ports.MemoryManager, ids ports.IDGenerator) *Server {
	s := &Server{
		config:       cfg,
		orchestrator: orchestrator,
		memory:       memory,
		ids:          ids,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS(s.config.Agent.CORSOrigins))
	r.Use(middleware.Metrics)

	healthHandler := handlers.NewHealthHandler()
	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	chatHandler := handlers.NewChatHandler(s.orchestrator, s.memory, s.ids)
	r.Post("/chat", chatHandler.Chat)
	r.Post("/chat/stream", chatHandler.ChatStream)

	conversationHandler := handlers.NewConversationHandler(s.memory)
	r.Get("/conversation/{id}", conversationHandler.Get)

	memoryHandler := handlers.NewMemoryHandler(s.memory)
	r.Get("/memory", memoryHandler.List)
	r.Get("/memory/health", memoryHandler.Health)
	r.Get("/memory/profile", memoryHandler.GetProfile)
	r.Put("/memory/profile", memoryHandler.SetProfile)
	r.Post("/memory/reset", memoryHandler.Reset)
	r.Get("/memory/{id}", memoryHandler.Get)
	r.Put("/memory/{id}", memoryHandler.Update)
	r.Delete("/memory/{id}", memoryHandler.Delete)

	s.router = r
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Agent.Host, s.config.Agent.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // no write timeout: /chat/stream holds the connection open
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Starting HTTP server on %s", addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *chi.Mux {
	return s.router
}
