// Package feed fans recorded heartbeats out to WebSocket subscribers.
package feed

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/MacJediWizard/licenze/internal/models"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Client is a connected WebSocket subscriber.
type Client struct {
	id     uuid.UUID
	conn   *websocket.Conn
	send   chan models.HeartbeatEvent
	feed   *Feed
	filter *ClientFilter
	mu     sync.Mutex
}

// ClientFilter restricts the events a subscriber receives.
type ClientFilter struct {
	// Usernames limits events to these clients, compared ignoring case.
	Usernames []string `json:"usernames,omitempty"`
}

// Matches reports whether event passes the filter. A nil or empty filter matches everything.
func (f *ClientFilter) Matches(event models.HeartbeatEvent) bool {
	if f == nil || len(f.Usernames) == 0 {
		return true
	}
	key := models.UsernameKey(event.Username)
	for _, u := range f.Usernames {
		if models.UsernameKey(u) == key {
			return true
		}
	}
	return false
}

func (c *Client) matches(event models.HeartbeatEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter.Matches(event)
}

// Config holds configuration for the Feed.
type Config struct {
	// PingInterval is how often to send ping messages to clients.
	PingInterval time.Duration
	// WriteTimeout is the timeout for writing to a client.
	WriteTimeout time.Duration
	// ReadTimeout is the timeout for reading from a client.
	ReadTimeout time.Duration
	// MaxMessageSize is the maximum size of a message from a client.
	MaxMessageSize int64
	// SendBufferSize is the size of the send buffer per client.
	SendBufferSize int
	// AllowedOrigins restricts browser origins; empty allows all.
	AllowedOrigins []string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		PingInterval:   30 * time.Second,
		WriteTimeout:   10 * time.Second,
		ReadTimeout:    60 * time.Second,
		MaxMessageSize: 512,
		SendBufferSize: 64,
	}
}

// Feed broadcasts heartbeat events to connected clients.
type Feed struct {
	config   Config
	logger   zerolog.Logger
	upgrader websocket.Upgrader

	clients   map[uuid.UUID]*Client
	clientsMu sync.RWMutex

	broadcast  chan models.HeartbeatEvent
	register   chan *Client
	unregister chan *Client

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a Feed. Call Start before accepting connections.
func New(cfg Config, logger zerolog.Logger) *Feed {
	f := &Feed{
		config:     cfg,
		logger:     logger.With().Str("component", "heartbeat_feed").Logger(),
		clients:    make(map[uuid.UUID]*Client),
		broadcast:  make(chan models.HeartbeatEvent, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
	f.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     f.checkOrigin,
	}
	return f
}

func (f *Feed) checkOrigin(r *http.Request) bool {
	if len(f.config.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range f.config.AllowedOrigins {
		if o == origin {
			return true
		}
	}
	return false
}

// Start begins processing events and client management.
func (f *Feed) Start() {
	f.wg.Add(1)
	go f.run()
	f.logger.Info().Msg("heartbeat feed started")
}

// Stop closes all client connections and stops the event loop.
func (f *Feed) Stop() {
	f.stopOnce.Do(func() {
		close(f.done)
		f.wg.Wait()
		f.logger.Info().Msg("heartbeat feed stopped")
	})
}

func (f *Feed) run() {
	defer f.wg.Done()

	for {
		select {
		case <-f.done:
			f.closeAllClients()
			return

		case client := <-f.register:
			f.addClient(client)

		case client := <-f.unregister:
			f.removeClient(client)

		case event := <-f.broadcast:
			f.broadcastEvent(event)
		}
	}
}

func (f *Feed) addClient(client *Client) {
	f.clientsMu.Lock()
	defer f.clientsMu.Unlock()

	f.clients[client.id] = client
	f.logger.Debug().Str("client_id", client.id.String()).Msg("client connected")
}

func (f *Feed) removeClient(client *Client) {
	f.clientsMu.Lock()
	defer f.clientsMu.Unlock()

	if _, ok := f.clients[client.id]; !ok {
		return
	}
	delete(f.clients, client.id)
	close(client.send)

	f.logger.Debug().Str("client_id", client.id.String()).Msg("client disconnected")
}

func (f *Feed) closeAllClients() {
	f.clientsMu.Lock()
	defer f.clientsMu.Unlock()

	for _, client := range f.clients {
		close(client.send)
	}
	f.clients = make(map[uuid.UUID]*Client)
}

func (f *Feed) broadcastEvent(event models.HeartbeatEvent) {
	f.clientsMu.RLock()
	defer f.clientsMu.RUnlock()

	for _, client := range f.clients {
		if !client.matches(event) {
			continue
		}
		select {
		case client.send <- event:
		default:
			f.logger.Warn().
				Str("client_id", client.id.String()).
				Msg("client send buffer full, dropping event")
		}
	}
}

// PublishHeartbeat queues event for broadcast. It never blocks.
func (f *Feed) PublishHeartbeat(event models.HeartbeatEvent) {
	select {
	case f.broadcast <- event:
	default:
		f.logger.Warn().Msg("broadcast buffer full, dropping event")
	}
}

// HandleWebSocket upgrades the connection and subscribes it to the feed.
func (f *Feed) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Error().Err(err).Msg("failed to upgrade websocket connection")
		return
	}

	client := &Client{
		id:     uuid.New(),
		conn:   conn,
		send:   make(chan models.HeartbeatEvent, f.config.SendBufferSize),
		feed:   f,
		filter: parseQueryFilter(r),
	}

	select {
	case f.register <- client:
	case <-f.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// parseQueryFilter reads ?user=a&user=b into an initial filter.
func parseQueryFilter(r *http.Request) *ClientFilter {
	users := r.URL.Query()["user"]
	if len(users) == 0 {
		return &ClientFilter{}
	}
	return &ClientFilter{Usernames: users}
}

// ClientCount returns the number of connected clients.
func (f *Feed) ClientCount() int {
	f.clientsMu.RLock()
	defer f.clientsMu.RUnlock()
	return len(f.clients)
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.feed.unregister <- c:
		case <-c.feed.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.feed.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.feed.config.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.feed.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.feed.logger.Debug().Err(err).Msg("websocket read error")
			}
			break
		}

		var update struct {
			Type   string       `json:"type"`
			Filter ClientFilter `json:"filter"`
		}
		if err := json.Unmarshal(message, &update); err == nil && update.Type == "filter" {
			c.mu.Lock()
			c.filter = &update.Filter
			c.mu.Unlock()
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.feed.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.feed.config.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.feed.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
