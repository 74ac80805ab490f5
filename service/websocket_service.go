package service

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/deckwise/analyzer-be/types"
)

// WebSocketService pushes pipeline progress events to connected clients.
// Every connected client receives every broadcast event; clients filter on
// document_hash themselves.
type WebSocketService struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewWebSocketService() *WebSocketService {
	return &WebSocketService{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// HandleProgress upgrades the connection and keeps it registered until the
// client goes away. Incoming messages are drained and discarded; the socket
// is broadcast-only.
func (s *WebSocketService) HandleProgress(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(512 * 1024)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	s.register(conn)
	defer s.unregister(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
	}
}

// Broadcast sends a progress event to every connected client. Dead
// connections are dropped on write failure.
func (s *WebSocketService) Broadcast(event types.AnalysisProgress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(event); err != nil {
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

// Relay forwards a progress channel to all connected clients until the
// channel closes. Run it in its own goroutine per analysis.
func (s *WebSocketService) Relay(progress <-chan types.AnalysisProgress) {
	for event := range progress {
		s.Broadcast(event)
	}
}

func (s *WebSocketService) register(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[conn] = struct{}{}
}

func (s *WebSocketService) unregister(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, conn)
}
