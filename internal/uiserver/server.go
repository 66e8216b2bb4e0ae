// Package uiserver exposes settings events and commands over a WebSocket.
package uiserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"settings-service/internal/logger"
	"settings-service/internal/ui"

	"github.com/gorilla/websocket"
)

const (
	pingInterval = 30 * time.Second
	writeTimeout = 5 * time.Second
	sendBuffer   = 32
)

// Message is the frame format in both directions. Clients send
// {"type":"command","payload":"reboot"}.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type client struct {
	conn *websocket.Conn
	send chan Message
	done chan struct{}
}

type Server struct {
	listen    string
	logger    *logger.Logger
	onCommand func(string)
	upgrader  websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	last    map[string]Message
	http    *http.Server
}

func NewServer(listen string, l *logger.Logger, onCommand func(string)) *Server {
	return &Server{
		listen:    listen,
		logger:    l,
		onCommand: onCommand,
		upgrader: websocket.Upgrader{
			// The UI runs on the device itself
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
		last:    make(map[string]Message),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	return mux
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.listen, err)
	}

	s.mu.Lock()
	s.http = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	srv := s.http
	s.mu.Unlock()

	s.logger.Infof("WebSocket server listening on %s", ln.Addr())
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("WebSocket server stopped: %v", err)
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.conn.Close()
	}
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Publish broadcasts ev to every connected client. It satisfies ui.Publisher.
// The latest message per type is replayed to clients that connect later.
func (s *Server) Publish(ev ui.Event) error {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", ev.Type, err)
	}
	msg := Message{Type: ev.Type, Payload: payload}

	s.mu.Lock()
	s.last[ev.Type] = msg
	for c := range s.clients {
		select {
		case c.send <- msg:
		default:
			s.logger.Warnf("Dropping %s event for slow client %s", ev.Type, c.conn.RemoteAddr())
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("WebSocket upgrade failed: %v", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan Message, sendBuffer),
		done: make(chan struct{}),
	}

	s.mu.Lock()
	kinds := make([]string, 0, len(s.last))
	for t := range s.last {
		kinds = append(kinds, t)
	}
	sort.Strings(kinds)
	for _, t := range kinds {
		select {
		case c.send <- s.last[t]:
		default:
		}
	}
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	s.logger.Infof("UI client connected from %s", conn.RemoteAddr())

	go s.writeLoop(c)
	s.readLoop(c)

	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	close(c.done)
	conn.Close()

	s.logger.Infof("UI client %s disconnected", conn.RemoteAddr())
}

func (s *Server) readLoop(c *client) {
	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warnf("Read from %s failed: %v", c.conn.RemoteAddr(), err)
			}
			return
		}

		if msg.Type != "command" {
			s.logger.Debugf("Ignoring %s message", msg.Type)
			continue
		}

		var command string
		if err := json.Unmarshal(msg.Payload, &command); err != nil {
			s.logger.Warnf("Invalid command payload: %s", msg.Payload)
			continue
		}
		s.logger.Debugf("Received command over WebSocket: %s", command)
		if s.onCommand != nil {
			s.onCommand(command)
		}
	}
}

func (s *Server) writeLoop(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(msg); err != nil {
				s.logger.Warnf("Write to %s failed: %v", c.conn.RemoteAddr(), err)
				c.conn.Close()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.conn.Close()
				return
			}
		}
	}
}
