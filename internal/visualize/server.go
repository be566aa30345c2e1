// Package visualize serves a live view of the SB graph over WebSockets,
// broadcasting a fresh Graphviz dump to every connected client whenever the
// watched source file changes, per SPEC_FULL.md §4.12. The mutex-guarded
// client map and broadcast-to-all pattern is grounded on the teacher's
// internal/network WebSocket server.
package visualize

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server holds the set of connected viewer clients and broadcasts dumps to
// all of them.
type Server struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
}

// NewServer creates an empty Server.
func NewServer(logger *slog.Logger) *Server {
	return &Server{logger: logger, clients: make(map[*websocket.Conn]struct{})}
}

// ServeHTTP upgrades the request to a WebSocket and registers the
// connection as a broadcast recipient until it closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("visualize: upgrade failed", "error", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	s.logger.Info("visualize: client connected", "remote", r.RemoteAddr)

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	// Clients are passive viewers; the only read we do is to notice
	// disconnects (a close frame or error).
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends dot to every currently-connected client, dropping and
// closing any connection whose write fails, matching the teacher's
// WebSocketBroadcast behavior of marking a failed client closed rather
// than aborting the whole broadcast.
func (s *Server) Broadcast(dot string) {
	s.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		conns = append(conns, c)
	}
	s.mu.RUnlock()

	for _, c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, []byte(dot)); err != nil {
			s.logger.Warn("visualize: broadcast failed, dropping client", "error", err)
			s.mu.Lock()
			delete(s.clients, c)
			s.mu.Unlock()
			c.Close()
		}
	}
}
