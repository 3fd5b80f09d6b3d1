package ws

import (
	"crash_backend/internal/logger"
	"crash_backend/internal/protocol"
	"crash_backend/internal/repository"
	"crash_backend/internal/service"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	sendBuffer     = 64
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
	opTimeout      = 5 * time.Second
)

type HubDeps struct {
	Game  service.GameService
	Auth  service.AuthService
	Users repository.UserRepository
	Log   *zap.Logger
}

// Hub - websocket front of the round engine
type Hub struct {
	game     service.GameService
	auth     service.AuthService
	users    repository.UserRepository
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	clients  map[*client]struct{}
	byPlayer map[string]*client
	names    map[string]string
	roundID  string
}

func NewHub(deps HubDeps) *Hub {
	return &Hub{
		game:  deps.Game,
		auth:  deps.Auth,
		users: deps.Users,
		log:   logger.OrNop(deps.Log).Named("hub"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients:  make(map[*client]struct{}),
		byPlayer: make(map[string]*client),
		names:    make(map[string]string),
	}
}

// ServeHTTP upgrades the request and serves the client until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go c.writer()
	c.reader(r.Context(), h)
}

// Clients - number of open connections
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close drops every connection.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.conn.Close()
	}
}

func (h *Hub) bind(c *client, playerID, name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.playerID = playerID
	h.byPlayer[playerID] = c
	h.names[playerID] = name
}

// unregister reports whether c was the live connection of its player.
func (h *Hub) unregister(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.clients, c)
	close(c.send)

	if c.playerID == "" || h.byPlayer[c.playerID] != c {
		return false
	}
	delete(h.byPlayer, c.playerID)
	return true
}

func (h *Hub) broadcast(t protocol.Type, data any) {
	msg, err := encode(t, 0, data)
	if err != nil {
		h.log.Error("encode broadcast", zap.String("type", string(t)), zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.push(msg)
	}
}

func (h *Hub) sendTo(playerID string, t protocol.Type, data any) {
	msg, err := encode(t, 0, data)
	if err != nil {
		h.log.Error("encode message", zap.String("type", string(t)), zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.byPlayer[playerID]; ok {
		c.push(msg)
	}
}

func encode(t protocol.Type, seq uint64, data any) ([]byte, error) {
	env, err := protocol.New(t, seq, data)
	if err != nil {
		return nil, err
	}
	return protocol.Encode(env)
}
