// Package server hosts the WebSocket endpoint and wires sockets to the
// session router, connection registry and broadcaster.
package server

import (
	"context"
	"encoding/json"
	"math/rand"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/POKROnlineGit/Pokerv3-sub002/internal/history"
)

// Server owns the HTTP listener and the connection lifecycle
type Server struct {
	addr     string
	upgrader websocket.Upgrader
	logger   *log.Logger

	registry  *ConnectionRegistry
	broadcast *Broadcaster
	service   *Service
	router    *SessionRouter
	store     *history.Store

	mu          sync.Mutex
	connections map[*Connection]bool
	httpServer  *http.Server
	listener    net.Listener

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer assembles a server from configuration. clock and rng may be nil
// outside of tests.
func NewServer(cfg *Config, clock quartz.Clock, rng *rand.Rand, logger *log.Logger) (*Server, error) {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	ctx, cancel := context.WithCancel(context.Background())

	var store *history.Store
	if cfg.Server.HistoryPath != "" {
		var err error
		store, err = history.Open(cfg.Server.HistoryPath, logger)
		if err != nil {
			cancel()
			return nil, err
		}
	}

	registry := NewConnectionRegistry(logger)
	broadcast := NewBroadcaster(registry)
	service := NewService(cfg.Variants, registry, broadcast, store, clock, rng, logger)
	router := NewSessionRouter(service, broadcast, logger)

	return &Server{
		addr: cfg.Server.Addr(),
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:      logger.WithPrefix("server"),
		registry:    registry,
		broadcast:   broadcast,
		service:     service,
		router:      router,
		store:       store,
		connections: make(map[*Connection]bool),
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// Service returns the command service, mainly for tests
func (s *Server) Service() *Service {
	return s.service
}

// Start listens and serves until Stop or a listener error
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = listener
	s.httpServer = &http.Server{Handler: mux}
	s.mu.Unlock()

	s.logger.Info("listening", "addr", listener.Addr().String())
	err = s.httpServer.Serve(listener)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Addr returns the bound address once Start has begun listening
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down: no new connections, live games notified and
// closed, history flushed.
func (s *Server) Stop() error {
	s.cancel()

	s.mu.Lock()
	httpServer := s.httpServer
	conns := make([]*Connection, 0, len(s.connections))
	for conn := range s.connections {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	s.service.Shutdown()
	for _, conn := range conns {
		_ = conn.Close()
	}
	if httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(ctx)
	}
	if s.store != nil {
		_ = s.store.Close()
	}
	return nil
}

// handleWebSocket upgrades a socket and registers it for its user. Identity
// arrives as the userId query parameter; the edge in front of this service
// is trusted to have authenticated it.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("upgrade failed", "error", err)
		return
	}

	client := NewConnection(conn, userID, s.router, s.logger, func(c *Connection) {
		s.mu.Lock()
		delete(s.connections, c)
		s.mu.Unlock()
		s.registry.Remove(userID, c)
	})

	s.mu.Lock()
	s.connections[client] = true
	s.mu.Unlock()
	s.registry.Add(userID, client)

	s.logger.Info("client connected", "userId", userID)
	client.Start()
}

// handleHealth reports liveness and basic counts
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	connections := len(s.connections)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":      "ok",
		"connections": connections,
		"tables":      len(s.service.ListTables().Tables),
	})
}
